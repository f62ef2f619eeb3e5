package assembler

import (
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/Urethramancer/sicxe/cpu"
)

// directiveSize returns how far a directive advances the location counter.
// EQU binds its label and ORG moves the counter through loc.
func (asm *Assembler) directiveSize(d *Directive, loc *int) (int, error) {
	switch d.Name {
	case "START", "BASE", "NOBASE", "LTORG":
		return 0, nil

	case "EXTDEF", "EXTREF":
		for _, name := range strings.Split(d.Operand, ",") {
			if name != "" {
				asm.external = append(asm.external, name)
			}
		}
		return 0, nil

	case "WORD":
		if d.Operand == "" {
			return 0, &ValueError{Token: d.Name, Msg: "WORD requires a value"}
		}
		return 3, nil

	case "RESW", "RESB":
		n, err := parseCount(d.Operand)
		if err != nil {
			return 0, err
		}
		if d.Name == "RESW" {
			return 3 * n, nil
		}
		return n, nil

	case "BYTE":
		code, err := DecodeConstant(d.Operand)
		if err != nil {
			return 0, err
		}
		return len(code), nil

	case "EQU":
		if d.Label() == "" {
			return 0, &DefinitionError{Msg: "EQU requires a label"}
		}
		v, abs, err := asm.evalEqu(d.Operand, *loc)
		if err != nil {
			return 0, err
		}
		if err := asm.symbols.Define(d.Label(), v); err != nil {
			return 0, err
		}
		if abs {
			asm.absolute[d.Label()] = true
		}
		glog.V(2).Infof("Defining %q as %06X", d.Label(), v)
		return 0, nil

	case "ORG":
		v, err := asm.evalOrg(d.Operand)
		if err != nil {
			return 0, err
		}
		glog.V(2).Infof("ORG moves location counter from %06X to %06X", *loc, v)
		*loc = v
		return 0, nil

	default:
		return 0, &FormatError{Token: d.Name, Msg: "unknown directive"}
	}
}

// directiveCode emits the bytes of a data directive and applies BASE/NOBASE.
func (asm *Assembler) directiveCode(d *Directive) ([]byte, error) {
	switch d.Name {
	case "BYTE":
		return DecodeConstant(d.Operand)

	case "WORD":
		return asm.wordCode(d)

	case "BASE":
		v, _, err := asm.target(d.Operand, d.Loc())
		if err != nil {
			return nil, err
		}
		asm.base = v
		asm.baseSet = true
		glog.V(2).Infof("Base register set to %06X", v)
		return nil, nil

	case "NOBASE":
		asm.baseSet = false
		return nil, nil
	}
	return nil, nil
}

// wordCode encodes a WORD as a 24-bit value. A relocatable symbol gets a
// six-nibble Modification record.
func (asm *Assembler) wordCode(d *Directive) ([]byte, error) {
	s := d.Operand
	if reSigned.MatchString(s) {
		v, err := strconv.Atoi(s)
		if err != nil || v < -(1<<23) || v >= 1<<24 {
			return nil, &ValueError{Token: s, Msg: "WORD value does not fit in 24 bits"}
		}
		return cpu.WordBytes(uint32(v)), nil
	}
	v, reloc, err := asm.target(s, d.Loc())
	if err != nil {
		return nil, err
	}
	if reloc {
		asm.object.AddModification(d.Loc(), 6)
	}
	return cpu.WordBytes(uint32(v)), nil
}
