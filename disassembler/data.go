package disassembler

import (
	"fmt"
	"strings"
)

// minCharRun is the shortest run of printable bytes rendered as C'...'.
const minCharRun = 2

// isPrintableASCII checks if a byte can appear inside a C'...' constant.
func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7E && b != '\''
}

// allPrintable reports whether all bytes are printable.
func allPrintable(b []byte) bool {
	for _, c := range b {
		if !isPrintableASCII(c) {
			return false
		}
	}
	return true
}

// formatData renders a BYTE operand for raw data.
func formatData(data []byte) string {
	if len(data) >= minCharRun && allPrintable(data) {
		return "C'" + string(data) + "'"
	}
	return fmt.Sprintf("X'%X'", data)
}

// dataByte wraps a single undecodable byte.
func dataByte(code []byte, addr int) Instruction {
	return Instruction{
		Address:  addr,
		Code:     code[:1:1],
		Mnemonic: "BYTE",
		Target:   -1,
	}
}

// reserve covers an address range with no text bytes.
func reserve(addr, size int) Instruction {
	return Instruction{
		Address:  addr,
		Mnemonic: "RESB",
		Target:   -1,
		reserved: size,
	}
}

// splitAt cuts a data or reservation entry at every label address inside it.
func splitAt(inst Instruction, labels map[int]LabelType) []Instruction {
	if inst.Format != 0 {
		return []Instruction{inst}
	}
	var out []Instruction
	start, end := inst.Address, inst.Address+inst.Size()
	cur := start
	for a := start + 1; a < end; a++ {
		if _, ok := labels[a]; !ok {
			continue
		}
		out = append(out, inst.slice(cur, a))
		cur = a
	}
	return append(out, inst.slice(cur, end))
}

func (inst Instruction) slice(from, to int) Instruction {
	part := inst
	part.Address = from
	if inst.Mnemonic == "RESB" {
		part.reserved = to - from
		return part
	}
	off := from - inst.Address
	part.Code = inst.Code[off : off+to-from : off+to-from]
	return part
}

// joinData appends b to a when both are contiguous data.
func joinData(a *Instruction, b Instruction) bool {
	if a.Mnemonic != "BYTE" || b.Mnemonic != "BYTE" || a.Address+len(a.Code) != b.Address {
		return false
	}
	a.Code = append(a.Code, b.Code...)
	return true
}

// Format renders instructions as an address/label/mnemonic/operand/code listing.
func Format(insts []Instruction) string {
	var out strings.Builder
	for _, inst := range insts {
		line := fmt.Sprintf("%06X  %-8s %-8s %-18s %X", inst.Address, inst.Label, inst.Mnemonic, inst.Operands, inst.Code)
		out.WriteString(strings.TrimRight(line, " "))
		out.WriteByte('\n')
	}
	return out.String()
}
