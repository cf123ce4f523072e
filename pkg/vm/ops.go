package vm

import "strconv"

// WordType is the 8-bit tag of a ByteCode cell.
type WordType uint8

const (
	// Control
	TypeReturn    WordType = 0x00
	TypeFile      WordType = 0x01
	TypeLine      WordType = 0x02
	TypeGoto      WordType = 0x03
	TypeGotoIf    WordType = 0x04
	TypeGotoIfNot WordType = 0x05

	// Operations
	TypeNumberOperation WordType = 0x10
	TypeTextOperation   WordType = 0x11
	TypeCompare         WordType = 0x12

	// Calls
	TypeInputFunction  WordType = 0x20
	TypeOutputFunction WordType = 0x21
	TypeSystemFunction WordType = 0x22
	TypeDeviceFunction WordType = 0x23
	TypeMathFunction   WordType = 0x24
	TypeUserFunction   WordType = 0x25

	// Operand references
	TypeRomConstNumeric     WordType = 130
	TypeRomConstText        WordType = 131
	TypeStorageVarNumeric   WordType = 140
	TypeStorageVarText      WordType = 141
	TypeStorageArrayNumeric WordType = 150
	TypeStorageArrayText    WordType = 151
	TypeRamVarNumeric       WordType = 160
	TypeRamVarText          WordType = 161
	TypeRamArrayNumeric     WordType = 170
	TypeRamArrayText        WordType = 171
	TypeRamData             WordType = 180
)

var typeNames = map[WordType]string{
	TypeReturn:              "RETURN",
	TypeFile:                "FILE",
	TypeLine:                "LINE",
	TypeGoto:                "GOTO",
	TypeGotoIf:              "GOTO_IF",
	TypeGotoIfNot:           "GOTO_IF_NOT",
	TypeNumberOperation:     "NUMBER_OPERATION",
	TypeTextOperation:       "TEXT_OPERATION",
	TypeCompare:             "COMPARE",
	TypeInputFunction:       "INPUT_FUNCTION",
	TypeOutputFunction:      "OUTPUT_FUNCTION",
	TypeSystemFunction:      "SYSTEM_FUNCTION",
	TypeDeviceFunction:      "DEVICE_FUNCTION",
	TypeMathFunction:        "MATH_FUNCTION",
	TypeUserFunction:        "USER_FUNCTION",
	TypeRomConstNumeric:     "ROM_CONST_NUMERIC",
	TypeRomConstText:        "ROM_CONST_TEXT",
	TypeStorageVarNumeric:   "STORAGE_VAR_NUMERIC",
	TypeStorageVarText:      "STORAGE_VAR_TEXT",
	TypeStorageArrayNumeric: "STORAGE_ARRAY_NUMERIC",
	TypeStorageArrayText:    "STORAGE_ARRAY_TEXT",
	TypeRamVarNumeric:       "RAM_VAR_NUMERIC",
	TypeRamVarText:          "RAM_VAR_TEXT",
	TypeRamArrayNumeric:     "RAM_ARRAY_NUMERIC",
	TypeRamArrayText:        "RAM_ARRAY_TEXT",
	TypeRamData:             "RAM_DATA",
}

// Valid reports whether t is one of the defined word types.
func (t WordType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t WordType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "TYPE_" + strconv.Itoa(int(t))
}

// IsVar reports whether t is an assignable, non-array variable.
func IsVar(t WordType) bool {
	switch t {
	case TypeStorageVarNumeric, TypeStorageVarText, TypeRamVarNumeric, TypeRamVarText:
		return true
	}
	return false
}

// IsArray reports whether t refers to an array.
func IsArray(t WordType) bool {
	switch t {
	case TypeStorageArrayNumeric, TypeStorageArrayText, TypeRamArrayNumeric, TypeRamArrayText:
		return true
	}
	return false
}

// IsNumeric reports whether t refers to a single numeric value.
func IsNumeric(t WordType) bool {
	switch t {
	case TypeRomConstNumeric, TypeStorageVarNumeric, TypeRamVarNumeric:
		return true
	}
	return false
}

// IsText reports whether t refers to a single text value.
func IsText(t WordType) bool {
	switch t {
	case TypeRomConstText, TypeStorageVarText, TypeRamVarText:
		return true
	}
	return false
}

// IsConst reports whether t refers to the constant pools.
func IsConst(t WordType) bool {
	return t == TypeRomConstNumeric || t == TypeRomConstText
}

func isStorage(t WordType) bool {
	switch t {
	case TypeStorageVarNumeric, TypeStorageVarText, TypeStorageArrayNumeric, TypeStorageArrayText:
		return true
	}
	return false
}
