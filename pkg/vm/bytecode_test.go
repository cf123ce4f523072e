package vm_test

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/agenthands/xenon/pkg/core/diag"
	"github.com/agenthands/xenon/pkg/vm"
)

func TestByteCodePacking(t *testing.T) {
	tests := []struct {
		typ   vm.WordType
		value uint32
		raw   uint32
	}{
		{vm.TypeReturn, 0, 0x00000000},
		{vm.TypeGoto, 17, 0x03000011},
		{vm.TypeRomConstNumeric, 1, 0x82000001},
		{vm.TypeRamData, vm.MaxValue, 0xB4FFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			bc, err := vm.NewByteCode(tt.typ, tt.value)
			be.Err(t, err, nil)
			be.Equal(t, bc.Raw(), tt.raw)
			be.Equal(t, vm.DecodeByteCode(tt.raw), bc)
		})
	}
}

func TestByteCodeOverflow(t *testing.T) {
	_, err := vm.NewByteCode(vm.TypeRamVarNumeric, vm.MaxValue+1)
	be.Err(t, err, vm.ErrValueOverflow)
	be.Err(t, err, diag.ErrFormat)

	defer func() {
		be.True(t, recover() != nil)
	}()
	vm.MustByteCode(vm.TypeGoto, 1<<25)
}

func TestByteCodeRawMasksValue(t *testing.T) {
	bc := vm.ByteCode{Type: vm.TypeLine, Value: 1<<24 | 5}
	be.Equal(t, bc.Raw(), uint32(0x02000005))
}

func TestWordTypeNames(t *testing.T) {
	be.Equal(t, vm.TypeGotoIfNot.String(), "GOTO_IF_NOT")
	be.Equal(t, vm.TypeStorageArrayText.String(), "STORAGE_ARRAY_TEXT")
	be.Equal(t, vm.WordType(99).String(), "TYPE_99")
	be.True(t, vm.TypeUserFunction.Valid())
	be.True(t, !vm.WordType(99).Valid())
	be.Equal(t, vm.MustByteCode(vm.TypeRomConstText, 3).String(), "ROM_CONST_TEXT{3}")
}

func TestWordTypeClasses(t *testing.T) {
	tests := []struct {
		typ                                   vm.WordType
		isVar, isArray, isNum, isText, isCons bool
	}{
		{vm.TypeRomConstNumeric, false, false, true, false, true},
		{vm.TypeRomConstText, false, false, false, true, true},
		{vm.TypeStorageVarNumeric, true, false, true, false, false},
		{vm.TypeStorageVarText, true, false, false, true, false},
		{vm.TypeStorageArrayNumeric, false, true, false, false, false},
		{vm.TypeRamVarText, true, false, false, true, false},
		{vm.TypeRamArrayText, false, true, false, false, false},
		{vm.TypeRamData, false, false, false, false, false},
		{vm.TypeGoto, false, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			be.Equal(t, vm.IsVar(tt.typ), tt.isVar)
			be.Equal(t, vm.IsArray(tt.typ), tt.isArray)
			be.Equal(t, vm.IsNumeric(tt.typ), tt.isNum)
			be.Equal(t, vm.IsText(tt.typ), tt.isText)
			be.Equal(t, vm.IsConst(tt.typ), tt.isCons)
		})
	}
}
