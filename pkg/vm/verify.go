package vm

import (
	"sort"
	"strconv"

	"github.com/agenthands/xenon/pkg/core/diag"
)

// Section names a code section of an Assembly.
type Section uint8

const (
	SectionInit Section = iota
	SectionProgram
)

func (s Section) String() string {
	if s == SectionInit {
		return "init"
	}
	return "program"
}

// Verify checks that every operand reference points inside its pool or RAM
// class and that every function entry lies inside the program section. Jump
// targets are not checked.
func (a *Assembly) Verify() error {
	if err := a.verifySection(SectionInit, a.Init); err != nil {
		return err
	}
	if err := a.verifySection(SectionProgram, a.Program); err != nil {
		return err
	}

	names := make([]string, 0, len(a.FunctionRefs))
	for name := range a.FunctionRefs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if addr := a.FunctionRefs[name]; int(addr) >= len(a.Program) {
			return diag.Word(diag.Structural, "Function entry out of range", name,
				"(address "+strconv.Itoa(int(addr))+", program size "+strconv.Itoa(len(a.Program))+")")
		}
	}
	return nil
}

func (a *Assembly) verifySection(section Section, code []ByteCode) error {
	for ip, cell := range code {
		if !cell.Type.Valid() {
			return cellError("Unknown word type", section, ip, cell)
		}
		if cell.Value > MaxValue {
			return cellError("Value exceeds 24 bits", section, ip, cell)
		}
		n, isRef := a.classCount(cell.Type)
		if isRef && int(cell.Value) >= n {
			return cellError("Reference out of range", section, ip, cell)
		}
	}
	return nil
}

func cellError(msg string, section Section, ip int, cell ByteCode) error {
	return diag.Word(diag.Structural, msg, cell.String(), "at "+section.String()+"["+strconv.Itoa(ip)+"]")
}
