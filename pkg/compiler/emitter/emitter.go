// Package emitter builds vm.Assembly images: it interns constants, allocates
// storage and RAM slots, and appends cells to the two code sections.
package emitter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/core/diag"
	"github.com/agenthands/xenon/pkg/vm"
)

// Emitter accumulates an assembly. The zero value is not usable; call New.
type Emitter struct {
	asm *vm.Assembly

	numbers map[uint64]uint32
	texts   map[string]uint32
	storage map[string]vm.ByteCode

	maxText int

	file string // last FILE and LINE markers emitted in the program section
	line int
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithMaxTextLength bounds text constants to n bytes. Values outside
// 1..vm.MaxTextLength keep the format limit.
func WithMaxTextLength(n int) Option {
	return func(e *Emitter) {
		if n > 0 && n <= vm.MaxTextLength {
			e.maxText = n
		}
	}
}

// New returns an empty emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		asm:     &vm.Assembly{FunctionRefs: make(map[string]uint32)},
		numbers: make(map[uint64]uint32),
		texts:   make(map[string]uint32),
		storage: make(map[string]vm.ByteCode),
		maxText: vm.MaxTextLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddNumber interns a numeric constant and returns its reference.
func (e *Emitter) AddNumber(v float64) (vm.ByteCode, error) {
	key := math.Float64bits(v)
	if idx, ok := e.numbers[key]; ok {
		return vm.ByteCode{Type: vm.TypeRomConstNumeric, Value: idx}, nil
	}
	ref, err := vm.NewByteCode(vm.TypeRomConstNumeric, uint32(len(e.asm.NumericConstants)))
	if err != nil {
		return vm.ByteCode{}, err
	}
	e.numbers[key] = ref.Value
	e.asm.NumericConstants = append(e.asm.NumericConstants, v)
	return ref, nil
}

// AddText interns a text constant and returns its reference.
func (e *Emitter) AddText(s string) (vm.ByteCode, error) {
	if idx, ok := e.texts[s]; ok {
		return vm.ByteCode{Type: vm.TypeRomConstText, Value: idx}, nil
	}
	if len(s) > e.maxText {
		return vm.ByteCode{}, diag.Word(diag.Format, "Text too long", truncate(s, 16), "")
	}
	if strings.IndexByte(s, 0) >= 0 {
		return vm.ByteCode{}, diag.New(diag.Format, "Text contains a NUL byte")
	}
	ref, err := vm.NewByteCode(vm.TypeRomConstText, uint32(len(e.asm.TextConstants)))
	if err != nil {
		return vm.ByteCode{}, err
	}
	e.texts[s] = ref.Value
	e.asm.TextConstants = append(e.asm.TextConstants, s)
	return ref, nil
}

// Const interns the literal carried by a Numeric or Text word.
func (e *Emitter) Const(w lexer.Word) (vm.ByteCode, error) {
	switch w.Kind {
	case lexer.KindNumeric:
		v, err := strconv.ParseFloat(w.Text, 64)
		if err != nil {
			return vm.ByteCode{}, diag.Word(diag.Grammar, "Invalid number", w.Text, "")
		}
		return e.AddNumber(v)
	case lexer.KindText:
		return e.AddText(w.Text)
	}
	return vm.ByteCode{}, diag.Word(diag.Grammar, "Not a literal", w.String(), "")
}

// AddStorage declares a persistent variable or array and returns its
// reference. Storage references share one index space.
func (e *Emitter) AddStorage(name string, numeric, array bool) (vm.ByteCode, error) {
	if err := checkName(name); err != nil {
		return vm.ByteCode{}, err
	}
	if _, ok := e.storage[name]; ok {
		return vm.ByteCode{}, diag.Word(diag.Grammar, "Storage already defined", name, "")
	}

	var t vm.WordType
	switch {
	case numeric && !array:
		t = vm.TypeStorageVarNumeric
	case !numeric && !array:
		t = vm.TypeStorageVarText
	case numeric && array:
		t = vm.TypeStorageArrayNumeric
	default:
		t = vm.TypeStorageArrayText
	}
	ref, err := vm.NewByteCode(t, uint32(len(e.asm.StorageRefs)))
	if err != nil {
		return vm.ByteCode{}, err
	}
	e.storage[name] = ref
	e.asm.StorageRefs = append(e.asm.StorageRefs, name)
	return ref, nil
}

// Alloc reserves a slot in the RAM class of t and returns its reference.
func (e *Emitter) Alloc(t vm.WordType) (vm.ByteCode, error) {
	var counter *uint32
	switch t {
	case vm.TypeRamVarNumeric:
		counter = &e.asm.NumericVariables
	case vm.TypeRamVarText:
		counter = &e.asm.TextVariables
	case vm.TypeRamArrayNumeric:
		counter = &e.asm.NumericArrays
	case vm.TypeRamArrayText:
		counter = &e.asm.TextArrays
	case vm.TypeRamData:
		counter = &e.asm.DataReferences
	default:
		return vm.ByteCode{}, fmt.Errorf("emitter: %s is not a RAM class", t)
	}
	ref, err := vm.NewByteCode(t, *counter)
	if err != nil {
		return vm.ByteCode{}, err
	}
	*counter++
	return ref, nil
}

// Emit appends one cell to a section.
func (e *Emitter) Emit(section vm.Section, t vm.WordType, value uint32) error {
	bc, err := vm.NewByteCode(t, value)
	if err != nil {
		return err
	}
	code := e.code(section)
	if len(*code) > vm.MaxValue {
		return fmt.Errorf("%w: %s section is full", vm.ErrValueOverflow, section)
	}
	*code = append(*code, bc)
	return nil
}

// EmitRef appends an operand reference obtained from this emitter.
func (e *Emitter) EmitRef(section vm.Section, ref vm.ByteCode) error {
	return e.Emit(section, ref.Type, ref.Value)
}

// Here returns the address the next cell of section will get.
func (e *Emitter) Here(section vm.Section) uint32 {
	return uint32(len(*e.code(section)))
}

// Patch rewrites the value of an already emitted cell, for forward jumps.
func (e *Emitter) Patch(section vm.Section, addr, value uint32) error {
	code := e.code(section)
	if int(addr) >= len(*code) {
		return fmt.Errorf("emitter: patch address %d outside %s section", addr, section)
	}
	bc, err := vm.NewByteCode((*code)[addr].Type, value)
	if err != nil {
		return err
	}
	(*code)[addr] = bc
	return nil
}

// Position emits the FILE and LINE markers for a source line in the program
// section. A FILE marker is only emitted when the file changes.
func (e *Emitter) Position(file string, line int) error {
	if file != e.file {
		ref, err := e.AddText(file)
		if err != nil {
			return err
		}
		if err := e.Emit(vm.SectionProgram, vm.TypeFile, ref.Value); err != nil {
			return err
		}
		e.file = file
		e.line = 0
	}
	if line == e.line {
		return nil
	}
	if line < 0 {
		return fmt.Errorf("emitter: negative line %d", line)
	}
	e.line = line
	return e.Emit(vm.SectionProgram, vm.TypeLine, uint32(line))
}

// DeclareFunction records the current program address as the entry point of
// name.
func (e *Emitter) DeclareFunction(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if _, ok := e.asm.FunctionRefs[name]; ok {
		return diag.Word(diag.Grammar, "Function already defined", name, "")
	}
	e.asm.FunctionRefs[name] = e.Here(vm.SectionProgram)
	return nil
}

// Assembly verifies and returns the image built so far. The emitter keeps
// ownership; callers must not append to it afterwards.
func (e *Emitter) Assembly() (*vm.Assembly, error) {
	if err := e.asm.Verify(); err != nil {
		return nil, err
	}
	return e.asm, nil
}

func (e *Emitter) code(section vm.Section) *[]vm.ByteCode {
	if section == vm.SectionInit {
		return &e.asm.Init
	}
	return &e.asm.Program
}

func checkName(name string) error {
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return diag.Word(diag.Grammar, "Invalid name", name, "")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
