package vm

import (
	"fmt"

	"github.com/agenthands/xenon/pkg/core/diag"
)

// MaxValue is the largest value a ByteCode cell can carry.
const MaxValue = 1<<24 - 1

// ErrValueOverflow is returned when a value does not fit in 24 bits.
var ErrValueOverflow = diag.New(diag.Format, "vm: value exceeds 24 bits")

// ByteCode is one 32-bit cell of a code section: an 8-bit type tag over a
// 24-bit value.
type ByteCode struct {
	Type  WordType
	Value uint32
}

// NewByteCode builds a cell, failing when v does not fit in 24 bits.
func NewByteCode(t WordType, v uint32) (ByteCode, error) {
	if v > MaxValue {
		return ByteCode{}, fmt.Errorf("%w: %s %d", ErrValueOverflow, t, v)
	}
	return ByteCode{Type: t, Value: v}, nil
}

// MustByteCode is like NewByteCode but panics on overflow.
func MustByteCode(t WordType, v uint32) ByteCode {
	bc, err := NewByteCode(t, v)
	if err != nil {
		panic(err)
	}
	return bc
}

// DecodeByteCode splits a raw cell.
func DecodeByteCode(raw uint32) ByteCode {
	return ByteCode{Type: WordType(raw >> 24), Value: raw & MaxValue}
}

// Raw packs the cell. Value bits above 24 are masked off; cells built with
// NewByteCode never have any.
func (b ByteCode) Raw() uint32 {
	return uint32(b.Type)<<24 | b.Value&MaxValue
}

func (b ByteCode) String() string {
	return fmt.Sprintf("%s{%d}", b.Type, b.Value)
}
