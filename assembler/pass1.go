package assembler

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/Urethramancer/sicxe/cpu"
)

// Pass1 assigns a location to every statement, fills SYMTAB and LITTAB and
// builds the statement sequence pass 2 walks. It runs once per Assembler.
func (asm *Assembler) Pass1() error {
	if asm.state != stateNew {
		return &SequenceError{Msg: "pass 1 has already run"}
	}
	asm.state = statePass1Failed
	glog.V(1).Infof("Beginning pass 1 over %d statements", len(asm.source))

	if len(asm.source) == 0 || asm.source[0].Mnemonic != "START" {
		return &DefinitionError{Msg: "program must begin with START"}
	}
	first := asm.source[0]
	start, err := parseStart(first.Operand)
	if err != nil {
		return fmt.Errorf("line %d: %w", first.Line, err)
	}
	asm.start = start
	asm.title = first.Label
	loc := start

	var out []Statement
	ended := false
	for i, src := range asm.source {
		st, err := classify(src, asm.table)
		if err != nil {
			return fmt.Errorf("line %d: %w", src.Line, err)
		}

		dir, isDir := st.(*Directive)
		if label := st.Label(); label != "" && !(isDir && dir.Name == "EQU") {
			if err := asm.symbols.Define(label, loc); err != nil {
				return lineError(st, err)
			}
			glog.V(2).Infof("Defining %q at %06X", label, loc)
		}
		st.setLoc(loc)

		switch s := st.(type) {
		case *Directive:
			if s.Name == "START" && i > 0 {
				return lineError(st, &DefinitionError{Msg: "START may only appear once, first"})
			}
			if s.Name == "END" {
				// The pool goes in front of END so pass 2 still emits it.
				lits, err := asm.flushLiterals(&loc, s.Line())
				if err != nil {
					return lineError(st, err)
				}
				out = append(out, lits...)
				s.setLoc(loc)
				out = append(out, s)
				ended = true
				break
			}
			size, err := asm.directiveSize(s, &loc)
			if err != nil {
				return lineError(st, err)
			}
			out = append(out, s)
			loc += size
			if s.Name == "LTORG" {
				lits, err := asm.flushLiterals(&loc, s.Line())
				if err != nil {
					return lineError(st, err)
				}
				out = append(out, lits...)
			}

		case *RegisterInstr:
			out = append(out, s)
			loc += 2

		case *MemoryInstr:
			if op := parseOperand(s.Operand); op.IsLiteral() {
				if asm.literals.Pend(op.Value) {
					glog.V(2).Infof("Queued literal %s", op.Value)
				}
			}
			out = append(out, s)
			loc += s.Length()
		}

		if ended {
			break
		}
		if loc < 0 || loc > cpu.MaxMemory {
			return lineError(st, &ValueError{Token: fmt.Sprintf("%X", loc), Msg: "location counter outside the address space"})
		}
	}
	if !ended {
		return &DefinitionError{Msg: "program has no END"}
	}

	asm.program = out
	asm.state = statePass1Done
	glog.V(1).Infof("Pass 1 done: %d symbols, %d literals, length %06X",
		len(asm.symbols.order), len(asm.literals.order), loc-asm.start)
	return nil
}

// flushLiterals places every pending literal at the location counter, in
// first-seen order, and returns their definitions.
func (asm *Assembler) flushLiterals(loc *int, line int) ([]Statement, error) {
	var defs []Statement
	for _, lit := range asm.literals.Pending() {
		code, err := DecodeConstant(strings.TrimPrefix(lit, "="))
		if err != nil {
			return nil, err
		}
		def := &LiteralDef{node: node{line: line, label: "*"}, Literal: lit, Bytes: code}
		def.setLoc(*loc)
		asm.literals.Place(lit, *loc)
		glog.V(2).Infof("Placed literal %s at %06X", lit, *loc)
		defs = append(defs, def)
		*loc += len(code)
	}
	return defs, nil
}
