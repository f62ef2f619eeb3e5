package assembler

import (
	"strings"

	"github.com/Urethramancer/sicxe/optab"
	"github.com/Urethramancer/sicxe/parser"
)

// Statement is one located element of the program. The concrete types are
// *Directive, *RegisterInstr, *MemoryInstr and *LiteralDef.
type Statement interface {
	Line() int
	Label() string
	Loc() int
	setLoc(int)
}

type node struct {
	line  int
	label string
	loc   int
}

// Line is the source line the statement came from. Literal definitions
// carry the line of the directive that flushed them.
func (n *node) Line() int { return n.line }

// Label is the statement label, or "".
func (n *node) Label() string { return n.label }

// Loc is the address assigned in pass 1.
func (n *node) Loc() int { return n.loc }

func (n *node) setLoc(loc int) { n.loc = loc }

// Directive is an assembler directive such as START, BYTE or LTORG.
type Directive struct {
	node
	Name    string
	Operand string
}

// RegisterInstr is a format 2 instruction.
type RegisterInstr struct {
	node
	Mnemonic string
	Op       optab.Op
	R1, R2   string
}

// MemoryInstr is a format 3 instruction, or format 4 when Extended.
type MemoryInstr struct {
	node
	Mnemonic string
	Op       optab.Op
	Extended bool
	Operand  string
}

// Length is the encoded size in bytes.
func (m *MemoryInstr) Length() int {
	if m.Extended {
		return 4
	}
	return 3
}

// LiteralDef places a literal pool entry.
type LiteralDef struct {
	node
	Literal string
	Bytes   []byte
}

// classify turns a parsed statement into its typed form.
func classify(s parser.Statement, t *optab.Table) (Statement, error) {
	n := node{line: s.Line, label: s.Label}
	if parser.IsDirective(s.Mnemonic) {
		return &Directive{node: n, Name: strings.ToUpper(s.Mnemonic), Operand: s.Operand}, nil
	}

	name := strings.ToUpper(s.Mnemonic)
	extended := strings.HasPrefix(name, "+")
	name = strings.TrimPrefix(name, "+")
	op, ok := t.Lookup(name)
	if !ok {
		return nil, &FormatError{Token: s.Mnemonic, Msg: "unknown mnemonic"}
	}
	if extended && op.Format != 3 {
		return nil, &FormatError{Token: s.Mnemonic, Msg: "extended marker on a non format 3 mnemonic"}
	}

	switch op.Format {
	case 2:
		r := &RegisterInstr{node: n, Mnemonic: name, Op: op}
		r.R1, r.R2, _ = strings.Cut(s.Operand, ",")
		return r, nil
	case 3:
		return &MemoryInstr{node: n, Mnemonic: name, Op: op, Extended: extended, Operand: s.Operand}, nil
	default:
		return nil, &FormatError{Token: s.Mnemonic, Msg: "unsupported instruction format"}
	}
}
