package vm

import (
	"strconv"

	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/core/diag"
)

// MaxTextLength is the longest text constant, in bytes, an assembly may hold.
const MaxTextLength = 256

// Function references of the entry points the runtime looks up by name.
const (
	EntryInit  = "system.init"
	EntryTick  = "system.tick"
	EntryInput = "system.input." // followed by the input number
	EntryTimer = "system.timer." // followed by frequency|interval and the timer index
)

// Assembly is a compiled program image: two code sections, the constant
// pools, the storage and function tables, and the sizes of the RAM classes
// the runtime must allocate.
type Assembly struct {
	Init    []ByteCode // runs once to initialize global variables
	Program []ByteCode // function bodies, addressed by FunctionRefs

	NumericConstants []float64
	TextConstants    []string

	StorageRefs  []string          // index = STORAGE_* value
	FunctionRefs map[string]uint32 // name -> entry address in Program

	NumericVariables uint32
	TextVariables    uint32
	NumericArrays    uint32
	TextArrays       uint32
	DataReferences   uint32
}

// ConstValue resolves a ROM constant reference to the word it was compiled
// from.
func (a *Assembly) ConstValue(ref ByteCode) (lexer.Word, error) {
	switch ref.Type {
	case TypeRomConstNumeric:
		if int(ref.Value) >= len(a.NumericConstants) {
			return lexer.Word{}, outOfRange(ref, len(a.NumericConstants))
		}
		return lexer.Word{
			Kind: lexer.KindNumeric,
			Text: strconv.FormatFloat(a.NumericConstants[ref.Value], 'g', -1, 64),
		}, nil
	case TypeRomConstText:
		if int(ref.Value) >= len(a.TextConstants) {
			return lexer.Word{}, outOfRange(ref, len(a.TextConstants))
		}
		return lexer.Word{Kind: lexer.KindText, Text: a.TextConstants[ref.Value]}, nil
	}
	return lexer.Word{}, diag.Word(diag.Structural, "Not const", ref.String(), "")
}

// classCount returns the number of slots addressable by references of type t.
func (a *Assembly) classCount(t WordType) (int, bool) {
	switch t {
	case TypeRomConstNumeric:
		return len(a.NumericConstants), true
	case TypeRomConstText:
		return len(a.TextConstants), true
	case TypeStorageVarNumeric, TypeStorageVarText, TypeStorageArrayNumeric, TypeStorageArrayText:
		return len(a.StorageRefs), true
	case TypeRamVarNumeric:
		return int(a.NumericVariables), true
	case TypeRamVarText:
		return int(a.TextVariables), true
	case TypeRamArrayNumeric:
		return int(a.NumericArrays), true
	case TypeRamArrayText:
		return int(a.TextArrays), true
	case TypeRamData:
		return int(a.DataReferences), true
	}
	return 0, false
}

func outOfRange(ref ByteCode, n int) error {
	return diag.Word(diag.Structural, "Reference out of range", ref.String(), "(size "+strconv.Itoa(n)+")")
}
