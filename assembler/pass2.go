package assembler

import (
	"github.com/golang/glog"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/object"
)

// Pass2 generates the object program. Pass 1 must have completed, and
// pass 2 runs once.
func (asm *Assembler) Pass2() (*object.Program, error) {
	switch asm.state {
	case stateNew, statePass1Failed:
		return nil, &SequenceError{Msg: "pass 2 requires a completed pass 1"}
	case statePass2Done:
		return nil, &SequenceError{Msg: "pass 2 has already run"}
	}
	asm.state = statePass2Done
	glog.V(1).Infof("Beginning pass 2 over %d statements", len(asm.program))

	asm.object = object.New()
	asm.baseSet = false
	for _, st := range asm.program {
		var code []byte
		var err error

		switch s := st.(type) {
		case *Directive:
			switch s.Name {
			case "START":
				asm.object.AddHeader(asm.title, asm.start)
			case "END":
				entry, err := asm.entryPoint(s.Operand)
				if err != nil {
					return nil, lineError(st, err)
				}
				asm.object.AddEnd(entry, s.Loc())
				asm.listing = append(asm.listing, Listing{Loc: s.Loc(), Statement: s})
				glog.V(1).Infof("Pass 2 done: %d text records, %d modification records",
					len(asm.object.Texts), len(asm.object.Modifications))
				return asm.object, nil
			default:
				code, err = asm.directiveCode(s)
			}
		case *RegisterInstr:
			code, err = asm.registerCode(s)
		case *MemoryInstr:
			code, err = asm.memoryCode(s)
		case *LiteralDef:
			code = s.Bytes
		}
		if err != nil {
			return nil, lineError(st, err)
		}

		if len(code) > 0 {
			asm.object.AddText(st.Loc(), code)
			glog.V(2).Infof("emit %06X %X", st.Loc(), code)
		}
		asm.listing = append(asm.listing, Listing{Loc: st.Loc(), Statement: st, Code: code})
	}
	// Pass 1 guarantees an END; reaching here means the sequence was altered.
	return nil, &SequenceError{Msg: "statement sequence has no END"}
}

// entryPoint resolves the END operand to the first executable address.
func (asm *Assembler) entryPoint(operand string) (int, error) {
	if operand == "" {
		return asm.start, nil
	}
	// "END START" names the START directive itself when no such label exists.
	if _, ok := asm.symbols.Lookup(operand); !ok && operand == "START" {
		return asm.start, nil
	}
	v, _, err := asm.target(operand, asm.start)
	return v, err
}

func (asm *Assembler) registerCode(r *RegisterInstr) ([]byte, error) {
	r1, err := registerOperand(r.Mnemonic, r.R1, 1)
	if err != nil {
		return nil, err
	}
	r2, err := registerOperand(r.Mnemonic, r.R2, 2)
	if err != nil {
		return nil, err
	}
	return encodeFormat2(r.Op, r1, r2), nil
}

// memoryCode resolves the addressing mode of a format 3/4 instruction.
func (asm *Assembler) memoryCode(m *MemoryInstr) ([]byte, error) {
	op := parseOperand(m.Operand)

	ni := uint32(cpu.FlagSimple)
	switch {
	case op.Indirect:
		ni = cpu.FlagN
	case op.Immediate:
		ni = cpu.FlagI
	}
	var xbpe uint32
	if op.Indexed {
		xbpe |= cpu.FlagX
	}

	if op.Value == "" {
		return encodeMemory(m.Op, ni, xbpe, 0, m.Extended), nil
	}

	if op.Immediate && isDecimal(op.Value) {
		limit := cpu.BaseMax
		if m.Extended {
			limit = cpu.AddrMax
		}
		v, ok := atoiBelow(op.Value, limit)
		if !ok {
			return nil, &ResolutionError{Symbol: op.Raw, Msg: "immediate value does not fit the operand field"}
		}
		return encodeMemory(m.Op, ni, xbpe, v, m.Extended), nil
	}

	target, reloc, err := asm.target(op.Value, m.Loc())
	if err != nil {
		return nil, err
	}

	if m.Extended {
		if target < 0 || target >= cpu.AddrMax {
			return nil, &ResolutionError{Symbol: op.Raw, Msg: "address does not fit in 20 bits"}
		}
		if reloc {
			asm.object.AddModification(m.Loc()+1, 5)
		}
		return encodeMemory(m.Op, ni, xbpe, target, true), nil
	}

	disp := target - (m.Loc() + m.Length())
	if disp >= cpu.PCMin && disp < cpu.PCMax {
		return encodeMemory(m.Op, ni, xbpe|cpu.FlagP, disp, false), nil
	}
	if asm.baseSet {
		disp = target - asm.base
		if disp >= 0 && disp < cpu.BaseMax {
			return encodeMemory(m.Op, ni, xbpe|cpu.FlagB, disp, false), nil
		}
	}
	return nil, &ResolutionError{Symbol: op.Raw, Msg: "displacement out of PC-relative and base-relative range, use format 4"}
}
