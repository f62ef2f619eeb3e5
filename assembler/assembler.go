// Package assembler is a two-pass SIC/XE assembler. Pass 1 assigns addresses
// and builds the symbol and literal tables; pass 2 resolves addressing modes
// and emits the object program.
package assembler

import (
	"fmt"
	"io"

	"github.com/Urethramancer/sicxe/object"
	"github.com/Urethramancer/sicxe/optab"
	"github.com/Urethramancer/sicxe/parser"
)

type passState int

const (
	stateNew passState = iota
	statePass1Failed
	statePass1Done
	statePass2Done
)

// Listing is one statement as emitted by pass 2.
type Listing struct {
	Loc       int
	Statement Statement
	Code      []byte
}

// Assembler holds the state for the assembly process.
type Assembler struct {
	table    *optab.Table
	source   []parser.Statement
	program  []Statement
	symbols  *SymbolTable
	literals *LiteralTable
	absolute map[string]bool
	external []string

	title   string
	start   int
	base    int
	baseSet bool

	state   passState
	listing []Listing
	object  *object.Program
}

// New creates an assembler for one run over src. A nil table means the
// built-in operation table.
func New(t *optab.Table, src []parser.Statement) *Assembler {
	if t == nil {
		t = optab.Default()
	}
	return &Assembler{
		table:    t,
		source:   src,
		symbols:  NewSymbolTable(),
		literals: NewLiteralTable(),
		absolute: make(map[string]bool),
	}
}

// Assemble runs both passes over already parsed statements.
func Assemble(t *optab.Table, src []parser.Statement) (*object.Program, error) {
	asm := New(t, src)
	if err := asm.Pass1(); err != nil {
		return nil, err
	}
	return asm.Pass2()
}

// AssembleSource parses and assembles source text.
func AssembleSource(t *optab.Table, r io.Reader) (*Assembler, *object.Program, error) {
	if t == nil {
		t = optab.Default()
	}
	src, err := parser.Parse(r, t)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing error: %w", err)
	}
	asm := New(t, src)
	if err := asm.Pass1(); err != nil {
		return asm, nil, err
	}
	prog, err := asm.Pass2()
	return asm, prog, err
}

// Table returns the operation table used by this run.
func (asm *Assembler) Table() *optab.Table {
	return asm.table
}

// Symbols lists SYMTAB in definition order.
func (asm *Assembler) Symbols() []Symbol {
	return asm.symbols.Entries()
}

// Literals lists LITTAB in placement order.
func (asm *Assembler) Literals() []Symbol {
	return asm.literals.Entries()
}

// Externals lists names declared by EXTDEF and EXTREF.
func (asm *Assembler) Externals() []string {
	return asm.external
}

// Statements returns the located statement sequence built by pass 1,
// literal definitions included.
func (asm *Assembler) Statements() []Statement {
	return asm.program
}

// Listing returns what pass 2 emitted for each statement.
func (asm *Assembler) Listing() []Listing {
	return asm.listing
}

// Start is the program start address from START.
func (asm *Assembler) Start() int {
	return asm.start
}

func lineError(st Statement, err error) error {
	return fmt.Errorf("line %d: %w", st.Line(), err)
}
