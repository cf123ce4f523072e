package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/core/diag"
)

// SourceFile is the ordered list of non-empty lines of one source stream.
// The scope of each line is at most one more than the scope of the line
// before it.
type SourceFile struct {
	Name  string
	Lines []ParsedLine
}

// Parse reads r line by line and collects its parsed lines. It stops at the
// first failing line and returns the lines collected so far together with
// the error, so the result is never nil.
func Parse(r io.Reader, opts ...Option) (*SourceFile, error) {
	return NewParser(opts...).Parse(r)
}

// Parse is the method form of the package level Parse.
func (p *Parser) Parse(r io.Reader) (*SourceFile, error) {
	src := &SourceFile{Name: p.name}
	br := bufio.NewReader(r)
	scope := 0

	for lineNo := 1; ; lineNo++ {
		text, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			err := diag.Wrap(diag.Structural, "Read failed", readErr).At(lineNo, p.name)
			p.logger.Warn("parse stopped", "file", p.name, "line", lineNo, "err", err)
			return src, err
		}
		if text == "" && readErr != nil {
			break
		}
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

		line, err := p.ParseLine(text, lineNo)
		if err != nil {
			p.logger.Warn("parse stopped", "file", p.name, "line", lineNo, "err", err)
			return src, err
		}
		if line.Scope > scope+1 {
			err := diag.New(diag.Indentation, "Too many leading tabs").At(lineNo, p.name)
			p.logger.Warn("parse stopped", "file", p.name, "line", lineNo, "scope", line.Scope, "err", err)
			return src, err
		}
		scope = line.Scope

		if line.Empty() {
			continue
		}
		p.logger.Debug("line parsed", "file", p.name, "line", lineNo, "scope", line.Scope, "words", len(line.Words))
		src.Lines = append(src.Lines, line)

		if readErr != nil {
			break
		}
	}
	return src, nil
}

// Dump writes a listing of the retained lines, one per row, indented by
// scope.
func (f *SourceFile) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.Name != "" {
		fmt.Fprintf(bw, "; %s\n", f.Name)
	}
	for _, line := range f.Lines {
		fmt.Fprintf(bw, "%4d: %s%s\n", line.Line, strings.Repeat("    ", line.Scope), joinWords(line.Words))
	}
	return bw.Flush()
}

func joinWords(words []lexer.Word) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.String())
	}
	return sb.String()
}
