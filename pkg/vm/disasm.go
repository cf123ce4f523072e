package vm

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Disassemble writes a readable listing of a: the table sizes, then both
// code sections one cell per row. Function entries are printed as labels
// and constant and storage references are resolved inline.
func (a *Assembly) Disassemble(w io.Writer) error {
	labels := make(map[uint32][]string, len(a.FunctionRefs))
	for name, addr := range a.FunctionRefs {
		labels[addr] = append(labels[addr], name)
	}
	for _, names := range labels {
		sort.Strings(names)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; %s v%d\n", Magic, FormatVersion)
	fmt.Fprintf(bw, "; constants: %d numeric, %d text\n", len(a.NumericConstants), len(a.TextConstants))
	fmt.Fprintf(bw, "; ram: %d numeric vars, %d text vars, %d numeric arrays, %d text arrays, %d data refs\n",
		a.NumericVariables, a.TextVariables, a.NumericArrays, a.TextArrays, a.DataReferences)
	for i, name := range a.StorageRefs {
		fmt.Fprintf(bw, "; storage %d: %s\n", i, name)
	}

	bw.WriteString("init:\n")
	for ip, bc := range a.Init {
		a.writeCell(bw, ip, bc)
	}
	bw.WriteString("program:\n")
	for ip, bc := range a.Program {
		for _, name := range labels[uint32(ip)] {
			fmt.Fprintf(bw, "%s:\n", name)
		}
		a.writeCell(bw, ip, bc)
	}
	return bw.Flush()
}

func (a *Assembly) writeCell(bw *bufio.Writer, ip int, bc ByteCode) {
	fmt.Fprintf(bw, "  %04d  %s", ip, bc)
	switch {
	case IsConst(bc.Type):
		if word, err := a.ConstValue(bc); err == nil {
			fmt.Fprintf(bw, "  ; %s", word)
		}
	case isStorage(bc.Type):
		if int(bc.Value) < len(a.StorageRefs) {
			fmt.Fprintf(bw, "  ; %s", a.StorageRefs[bc.Value])
		}
	case bc.Type == TypeUserFunction:
		if names := a.functionsAt(bc.Value); len(names) > 0 {
			bw.WriteString("  ; " + names[0])
		}
	case bc.Type == TypeGoto, bc.Type == TypeGotoIf, bc.Type == TypeGotoIfNot:
		bw.WriteString("  ; -> " + strconv.Itoa(int(bc.Value)))
	}
	bw.WriteByte('\n')
}

func (a *Assembly) functionsAt(addr uint32) []string {
	var names []string
	for name, at := range a.FunctionRefs {
		if at == addr {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
