// Package disassembler turns SIC/XE object programs back into assembly.
package disassembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/object"
	"github.com/Urethramancer/sicxe/optab"
)

// LabelType defines the context of a label. Higher values win when an
// address is referenced in several ways.
type LabelType int

const (
	// DataReference is an operand of a load, store or compare.
	DataReference LabelType = iota
	// JumpTarget is the target of J, JEQ, JGT or JLT.
	JumpTarget
	// SubroutineEntry is a JSUB target.
	SubroutineEntry
)

// Instruction represents a single decoded element at a specific address.
type Instruction struct {
	Address int
	Code    []byte
	// Format is 2, 3 or 4 for instructions and 0 for data and reservations.
	Format   int
	Label    string
	Mnemonic string
	Operands string
	// Target is the memory address the operand refers to, or -1.
	Target int

	prefix   string
	indexed  bool
	operand  bool
	value    int
	reserved int
}

// Size is the number of bytes the element occupies.
func (inst Instruction) Size() int {
	if inst.Mnemonic == "RESB" {
		return inst.reserved
	}
	return len(inst.Code)
}

// Disassemble decodes every Text record of p linearly. Bytes that do not form
// a valid instruction become BYTE data, and gaps between records become RESB.
func Disassemble(p *object.Program, t *optab.Table) ([]Instruction, error) {
	if p == nil {
		return nil, fmt.Errorf("no program to disassemble")
	}
	if t == nil {
		t = optab.Default()
	}

	// --- Linear sweep ---
	var list []Instruction
	loc := p.Header.Start
	base := -1
	for _, rec := range p.Texts {
		if rec.Start < loc {
			return nil, fmt.Errorf("text record at %06X overlaps code ending at %06X", rec.Start, loc)
		}
		if rec.Start > loc {
			list = append(list, reserve(loc, rec.Start-loc))
		}
		for pc := 0; pc < len(rec.Code); {
			inst := decode(rec.Code[pc:], rec.Start+pc, t, base)
			if inst.Mnemonic == "LDB" && inst.prefix == "#" {
				base = inst.value
			}
			if len(list) == 0 || !joinData(&list[len(list)-1], inst) {
				list = append(list, inst)
			}
			pc += len(inst.Code)
		}
		loc = rec.End()
	}
	end := p.Header.Start + p.Header.Length
	if end > loc {
		list = append(list, reserve(loc, end-loc))
	}

	// --- Labels ---
	labels := make(map[int]LabelType)
	mark := func(addr int, typ LabelType) {
		if addr < p.Header.Start || addr >= end {
			return
		}
		if old, ok := labels[addr]; !ok || typ > old {
			labels[addr] = typ
		}
	}
	mark(p.Entry, JumpTarget)
	for _, inst := range list {
		if inst.Target >= 0 {
			mark(inst.Target, referenceType(inst.Mnemonic))
		}
	}

	// --- Render ---
	var out []Instruction
	for _, inst := range list {
		out = append(out, splitAt(inst, labels)...)
	}
	placed := make(map[int]LabelType)
	for i := range out {
		if typ, ok := labels[out[i].Address]; ok {
			out[i].Label = labelName(out[i].Address, typ)
			placed[out[i].Address] = typ
		}
	}
	for i := range out {
		out[i].render(placed)
	}
	return out, nil
}

func referenceType(mnemonic string) LabelType {
	switch strings.TrimPrefix(mnemonic, "+") {
	case "JSUB":
		return SubroutineEntry
	case "J", "JEQ", "JGT", "JLT":
		return JumpTarget
	}
	return DataReference
}

// labelName generates a label string based on the address and its context.
func labelName(addr int, typ LabelType) string {
	prefix := "DAT"
	switch typ {
	case JumpTarget:
		prefix = "LOC"
	case SubroutineEntry:
		prefix = "SUB"
	}
	return fmt.Sprintf("%s%04X", prefix, addr)
}

// decode returns the element starting at code[0], which lives at addr.
// base is the last known base register value, or -1.
func decode(code []byte, addr int, t *optab.Table, base int) Instruction {
	name, op, ok := t.ByOpcode(code[0])
	if !ok {
		return dataByte(code, addr)
	}
	switch op.Format {
	case cpu.Format2:
		if len(code) < 2 {
			return dataByte(code, addr)
		}
		return decodeRegister(name, code, addr)
	case cpu.Format3:
		if len(code) < 3 {
			return dataByte(code, addr)
		}
		return decodeMemory(name, code, addr, base)
	}
	return dataByte(code, addr)
}

func decodeRegister(name string, code []byte, addr int) Instruction {
	r1, r2 := code[1]>>4, code[1]&0x0F
	inst := Instruction{Address: addr, Code: code[:2:2], Format: cpu.Format2, Mnemonic: name, Target: -1}
	n1, ok1 := cpu.RegisterName(r1)
	n2, ok2 := cpu.RegisterName(r2)
	switch name {
	case "SVC":
		inst.Operands = strconv.Itoa(int(r1))
	case "CLEAR", "TIXR":
		if !ok1 {
			return dataByte(code, addr)
		}
		inst.Operands = n1
	case "SHIFTL", "SHIFTR":
		if !ok1 {
			return dataByte(code, addr)
		}
		inst.Operands = fmt.Sprintf("%s,%d", n1, r2+1)
	default:
		if !ok1 || !ok2 {
			return dataByte(code, addr)
		}
		inst.Operands = n1 + "," + n2
	}
	return inst
}

func decodeMemory(name string, code []byte, addr, base int) Instruction {
	ni := code[0] & cpu.FlagSimple
	if ni == 0 {
		// Plain SIC encoding is never produced by the assembler.
		return dataByte(code, addr)
	}
	xbpe := code[1] >> 4
	size := cpu.Format3
	if xbpe&cpu.FlagE != 0 {
		size = cpu.Format4
	}
	if len(code) < size {
		return dataByte(code, addr)
	}

	inst := Instruction{
		Address:  addr,
		Code:     code[:size:size],
		Format:   size,
		Mnemonic: name,
		Target:   -1,
		indexed:  xbpe&cpu.FlagX != 0,
		operand:  true,
	}
	switch ni {
	case cpu.FlagI:
		inst.prefix = "#"
	case cpu.FlagN:
		inst.prefix = "@"
	}

	relative := xbpe&(cpu.FlagB|cpu.FlagP) != 0
	if size == cpu.Format4 {
		if relative {
			return dataByte(code, addr)
		}
		inst.Mnemonic = "+" + name
		inst.value = int(code[1]&0x0F)<<16 | int(code[2])<<8 | int(code[3])
		if ni != cpu.FlagI {
			inst.Target = inst.value
		}
		return inst
	}

	disp := int(code[1]&0x0F)<<8 | int(code[2])
	switch {
	case xbpe&cpu.FlagB != 0 && xbpe&cpu.FlagP != 0:
		return dataByte(code, addr)
	case xbpe&cpu.FlagP != 0:
		if disp >= cpu.PCMax {
			disp -= cpu.BaseMax
		}
		inst.value = addr + size + disp
	case xbpe&cpu.FlagB != 0:
		if base < 0 {
			inst.Operands = fmt.Sprintf("%s%d(B)", inst.prefix, disp)
			return inst
		}
		inst.value = base + disp
	default:
		inst.value = disp
	}
	if relative || ni != cpu.FlagI {
		inst.Target = inst.value
	}
	if name == "RSUB" && ni == cpu.FlagSimple && xbpe == 0 && disp == 0 {
		inst.operand = false
		inst.Target = -1
	}
	return inst
}

// render fills in Operands once label placement is known.
func (inst *Instruction) render(placed map[int]LabelType) {
	if inst.Format == 0 {
		if inst.Mnemonic == "RESB" {
			inst.Operands = strconv.Itoa(inst.reserved)
		} else {
			inst.Operands = formatData(inst.Code)
		}
		return
	}
	if !inst.operand || inst.Operands != "" {
		return
	}
	v := strconv.Itoa(inst.value)
	if typ, ok := placed[inst.Target]; ok && inst.Target >= 0 {
		v = labelName(inst.Target, typ)
	}
	inst.Operands = inst.prefix + v
	if inst.indexed {
		inst.Operands += ",X"
	}
}

// Source renders a disassembly as a program the assembler accepts,
// bracketed by START and END.
func Source(p *object.Program, insts []Instruction) string {
	var out strings.Builder
	line := func(label, mnemonic, operands string) {
		l := fmt.Sprintf("%-8s %-8s %s", label, mnemonic, operands)
		out.WriteString(strings.TrimRight(l, " "))
		out.WriteByte('\n')
	}

	line(p.Header.Title, "START", fmt.Sprintf("%X", p.Header.Start))
	labels := make(map[int]string)
	for _, inst := range insts {
		if inst.Label != "" {
			labels[inst.Address] = inst.Label
		}
	}
	for _, inst := range insts {
		line(inst.Label, inst.Mnemonic, inst.Operands)
		if inst.Mnemonic == "LDB" && strings.HasPrefix(inst.Operands, "#") {
			line("", "BASE", strings.TrimPrefix(inst.Operands, "#"))
		}
	}

	entry := strconv.Itoa(p.Entry)
	if name, ok := labels[p.Entry]; ok {
		entry = name
	}
	line("", "END", entry)
	return out.String()
}
