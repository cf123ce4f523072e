package vm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/agenthands/xenon/pkg/core/diag"
)

const (
	// Magic opens every serialized assembly.
	Magic = "XenonCode!"
	// FormatVersion is the newest layout this package reads and the one it
	// writes.
	FormatVersion = 0
)

var (
	ErrBadAssembly        = diag.New(diag.Format, "Bad assembly")
	ErrUnsupportedVersion = diag.New(diag.Format, "Unsupported assembly version")
	ErrMalformed          = diag.New(diag.Format, "Malformed assembly")
	ErrTruncated          = diag.New(diag.Structural, "Truncated assembly")
)

// maxCount bounds every count read from a header: one more than the largest
// 24-bit index.
const maxCount = MaxValue + 1

// Write serializes a: a text header, the tables and constant pools as text,
// then both code sections as little-endian 32-bit cells. Nothing is written
// when a fails validation.
func (a *Assembly) Write(w io.Writer) error {
	if err := a.checkWritable(); err != nil {
		return err
	}
	if err := a.Verify(); err != nil {
		return err
	}

	names := make([]string, 0, len(a.FunctionRefs))
	for name := range a.FunctionRefs {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d\n", Magic, FormatVersion)
	fmt.Fprintf(bw, "%d %d %d %d\n", len(a.Init), len(a.Program), len(a.StorageRefs), len(a.FunctionRefs))
	fmt.Fprintf(bw, "%d %d\n", len(a.NumericConstants), len(a.TextConstants))
	fmt.Fprintf(bw, "%d %d %d %d %d\n", a.NumericVariables, a.TextVariables, a.DataReferences, a.NumericArrays, a.TextArrays)
	for _, name := range a.StorageRefs {
		bw.WriteString(name)
		bw.WriteByte('\n')
	}
	for _, name := range names {
		fmt.Fprintf(bw, "%s %d\n", name, a.FunctionRefs[name])
	}
	for _, v := range a.NumericConstants {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, s := range a.TextConstants {
		bw.WriteString(s)
		bw.WriteByte(0)
	}

	var cell [4]byte
	for _, section := range [][]ByteCode{a.Init, a.Program} {
		for _, bc := range section {
			binary.LittleEndian.PutUint32(cell[:], bc.Raw())
			bw.Write(cell[:])
		}
	}
	return bw.Flush()
}

func (a *Assembly) checkWritable() error {
	for _, name := range a.StorageRefs {
		if err := checkName("storage", name); err != nil {
			return err
		}
	}
	for name := range a.FunctionRefs {
		if err := checkName("function", name); err != nil {
			return err
		}
	}
	for i, s := range a.TextConstants {
		if len(s) > MaxTextLength {
			return fmt.Errorf("%w: text constant %d is %d bytes, limit %d", ErrMalformed, i, len(s), MaxTextLength)
		}
		if strings.IndexByte(s, 0) >= 0 {
			return fmt.Errorf("%w: text constant %d contains a NUL byte", ErrMalformed, i)
		}
	}
	counts := []struct {
		what string
		n    int
	}{
		{"init section", len(a.Init)},
		{"program section", len(a.Program)},
		{"storage table", len(a.StorageRefs)},
		{"function table", len(a.FunctionRefs)},
		{"numeric pool", len(a.NumericConstants)},
		{"text pool", len(a.TextConstants)},
		{"numeric variables", int(a.NumericVariables)},
		{"text variables", int(a.TextVariables)},
		{"data references", int(a.DataReferences)},
		{"numeric arrays", int(a.NumericArrays)},
		{"text arrays", int(a.TextArrays)},
	}
	for _, c := range counts {
		if c.n > maxCount {
			return fmt.Errorf("%w: %s has %d entries", ErrValueOverflow, c.what, c.n)
		}
	}
	for _, section := range [][]ByteCode{a.Init, a.Program} {
		for _, bc := range section {
			if bc.Value > MaxValue {
				return fmt.Errorf("%w: %s", ErrValueOverflow, bc)
			}
		}
	}
	return nil
}

func checkName(what, name string) error {
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: invalid %s name %q", ErrMalformed, what, name)
	}
	return nil
}

// Read deserializes an assembly written by Write and verifies it. On any
// error the returned assembly is nil.
func Read(r io.Reader) (*Assembly, error) {
	d := decoder{r: bufio.NewReader(r)}
	a, err := d.decode()
	if err != nil {
		return nil, err
	}
	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a, nil
}

type decoder struct {
	r *bufio.Reader
}

func (d *decoder) decode() (*Assembly, error) {
	header, err := d.line()
	if err != nil && !errors.Is(err, ErrTruncated) {
		return nil, err
	}
	magic, version, _ := strings.Cut(header, " ")
	if magic != Magic {
		return nil, ErrBadAssembly
	}
	if err != nil {
		return nil, err
	}
	v, perr := strconv.ParseUint(version, 10, 32)
	if perr != nil {
		return nil, fmt.Errorf("%w: version %q", ErrMalformed, version)
	}
	if v > FormatVersion {
		return nil, fmt.Errorf("%w: %d, newest supported is %d", ErrUnsupportedVersion, v, FormatVersion)
	}

	sizes, err := d.counts(4)
	if err != nil {
		return nil, err
	}
	pools, err := d.counts(2)
	if err != nil {
		return nil, err
	}
	ram, err := d.counts(5)
	if err != nil {
		return nil, err
	}

	a := &Assembly{
		FunctionRefs:     make(map[string]uint32, min(sizes[3], 4096)),
		NumericVariables: ram[0],
		TextVariables:    ram[1],
		DataReferences:   ram[2],
		NumericArrays:    ram[3],
		TextArrays:       ram[4],
	}

	for i := uint32(0); i < sizes[2]; i++ {
		name, err := d.line()
		if err != nil {
			return nil, err
		}
		if err := checkName("storage", name); err != nil {
			return nil, err
		}
		a.StorageRefs = append(a.StorageRefs, name)
	}

	for i := uint32(0); i < sizes[3]; i++ {
		line, err := d.line()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: function reference %q", ErrMalformed, line)
		}
		addr, err := parseCount(fields[1])
		if err != nil {
			return nil, err
		}
		if _, dup := a.FunctionRefs[fields[0]]; dup {
			return nil, fmt.Errorf("%w: duplicate function %q", ErrMalformed, fields[0])
		}
		a.FunctionRefs[fields[0]] = addr
	}

	for i := uint32(0); i < pools[0]; i++ {
		line, err := d.line()
		if err != nil {
			return nil, err
		}
		f, perr := strconv.ParseFloat(line, 64)
		if perr != nil {
			return nil, fmt.Errorf("%w: numeric constant %q", ErrMalformed, line)
		}
		a.NumericConstants = append(a.NumericConstants, f)
	}

	for i := uint32(0); i < pools[1]; i++ {
		s, err := d.text()
		if err != nil {
			return nil, err
		}
		a.TextConstants = append(a.TextConstants, s)
	}

	if a.Init, err = d.cells(sizes[0]); err != nil {
		return nil, err
	}
	if a.Program, err = d.cells(sizes[1]); err != nil {
		return nil, err
	}
	if err := d.end(); err != nil {
		return nil, err
	}
	return a, nil
}

// end checks that the stream holds nothing after the last cell.
func (d *decoder) end() error {
	_, err := d.r.Peek(1)
	switch {
	case err == nil:
		return fmt.Errorf("%w: trailing bytes after the program section", ErrMalformed)
	case errors.Is(err, io.EOF):
		return nil
	}
	return diag.Wrap(diag.Structural, "Read failed", err)
}

// line reads one newline-terminated text line, without the newline.
func (d *decoder) line() (string, error) {
	s, err := d.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return s, ErrTruncated
		}
		return s, diag.Wrap(diag.Structural, "Read failed", err)
	}
	return strings.TrimSuffix(s, "\n"), nil
}

// counts reads a line of exactly n decimal counts.
func (d *decoder) counts(n int) ([]uint32, error) {
	line, err := d.line()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: expected %d counts, got %q", ErrMalformed, n, line)
	}
	out := make([]uint32, n)
	for i, f := range fields {
		if out[i], err = parseCount(f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseCount(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", ErrMalformed, s)
	}
	if v > maxCount {
		return 0, fmt.Errorf("%w: count %d exceeds %d", ErrMalformed, v, maxCount)
	}
	return uint32(v), nil
}

// text reads one NUL-terminated text constant.
func (d *decoder) text() (string, error) {
	var sb strings.Builder
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrTruncated
			}
			return "", diag.Wrap(diag.Structural, "Read failed", err)
		}
		if b == 0 {
			return sb.String(), nil
		}
		if sb.Len() == MaxTextLength {
			return "", fmt.Errorf("%w: text constant longer than %d bytes", ErrMalformed, MaxTextLength)
		}
		sb.WriteByte(b)
	}
}

// cells reads n little-endian cells.
func (d *decoder) cells(n uint32) ([]ByteCode, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]ByteCode, 0, min(n, 4096))
	var buf [4]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrTruncated
			}
			return nil, diag.Wrap(diag.Structural, "Read failed", err)
		}
		out = append(out, DecodeByteCode(binary.LittleEndian.Uint32(buf[:])))
	}
	return out, nil
}
