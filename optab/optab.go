// Package optab holds the SIC/XE operation table: mnemonic to opcode and format.
package optab

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Op describes a single machine operation.
type Op struct {
	Opcode byte
	Format int
}

// Table maps mnemonics to operations. The zero value is an empty table.
type Table struct {
	ops map[string]Op
}

// builtin is copied into every table returned by Default.
var builtin = map[string]Op{
	"ADD":    {0x18, 3},
	"ADDF":   {0x58, 3},
	"ADDR":   {0x90, 2},
	"AND":    {0x40, 3},
	"CLEAR":  {0xB4, 2},
	"COMP":   {0x28, 3},
	"COMPF":  {0x88, 3},
	"COMPR":  {0xA0, 2},
	"DIV":    {0x24, 3},
	"DIVF":   {0x64, 3},
	"DIVR":   {0x9C, 2},
	"J":      {0x3C, 3},
	"JEQ":    {0x30, 3},
	"JGT":    {0x34, 3},
	"JLT":    {0x38, 3},
	"JSUB":   {0x48, 3},
	"LDA":    {0x00, 3},
	"LDB":    {0x68, 3},
	"LDCH":   {0x50, 3},
	"LDF":    {0x70, 3},
	"LDL":    {0x08, 3},
	"LDS":    {0x6C, 3},
	"LDT":    {0x74, 3},
	"LDX":    {0x04, 3},
	"LPS":    {0xD0, 3},
	"MUL":    {0x20, 3},
	"MULF":   {0x60, 3},
	"MULR":   {0x98, 2},
	"OR":     {0x44, 3},
	"RD":     {0xD8, 3},
	"RMO":    {0xAC, 2},
	"RSUB":   {0x4C, 3},
	"SHIFTL": {0xA4, 2},
	"SHIFTR": {0xA8, 2},
	"SSK":    {0xEC, 3},
	"STA":    {0x0C, 3},
	"STB":    {0x78, 3},
	"STCH":   {0x54, 3},
	"STF":    {0x80, 3},
	"STI":    {0xD4, 3},
	"STL":    {0x14, 3},
	"STS":    {0x7C, 3},
	"STSW":   {0xE8, 3},
	"STT":    {0x84, 3},
	"STX":    {0x10, 3},
	"SUB":    {0x1C, 3},
	"SUBF":   {0x5C, 3},
	"SUBR":   {0x94, 2},
	"SVC":    {0xB0, 2},
	"TD":     {0xE0, 3},
	"TIX":    {0x2C, 3},
	"TIXR":   {0xB8, 2},
	"WD":     {0xDC, 3},
}

// New returns an empty table.
func New() *Table {
	return &Table{ops: make(map[string]Op)}
}

// Default returns a fresh table holding the built-in SIC/XE operations.
func Default() *Table {
	t := New()
	for name, op := range builtin {
		t.ops[name] = op
	}
	return t
}

// Lookup finds the operation for a mnemonic. The extended marker is not stripped.
func (t *Table) Lookup(mnemonic string) (Op, bool) {
	if t == nil || t.ops == nil {
		return Op{}, false
	}
	op, ok := t.ops[strings.ToUpper(mnemonic)]
	return op, ok
}

// Define adds a mnemonic. It reports false, leaving the table untouched,
// when the mnemonic is already present.
func (t *Table) Define(mnemonic string, opcode byte, format int) bool {
	if t.ops == nil {
		t.ops = make(map[string]Op)
	}
	name := strings.ToUpper(strings.TrimSpace(mnemonic))
	if _, ok := t.ops[name]; ok {
		return false
	}
	t.ops[name] = Op{Opcode: opcode, Format: format}
	return true
}

// ByOpcode finds the mnemonic whose opcode matches op once the n/i bits are cleared.
func (t *Table) ByOpcode(op byte) (string, Op, bool) {
	for _, name := range t.Names() {
		o := t.ops[name]
		if o.Format == 2 && o.Opcode == op {
			return name, o, true
		}
		if o.Format == 3 && o.Opcode == op&0xFC {
			return name, o, true
		}
	}
	return "", Op{}, false
}

// Names returns every mnemonic in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.ops))
	for name := range t.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of mnemonics in the table.
func (t *Table) Len() int {
	return len(t.ops)
}

var reDescriptor = regexp.MustCompile(`^\s*(\w+)\s*,\s*(?:0[xX])?([0-9a-fA-F]{1,2})\s*,\s*(\d+)\s*$`)

// LoadDescriptor replaces the whole table with the records in text.
// Records are "name, opcode, format" separated by '|'; the opcode is hex and
// the format decimal. Malformed records are skipped. It returns the number of
// operations loaded.
func (t *Table) LoadDescriptor(text string) int {
	ops := make(map[string]Op)
	for _, rec := range strings.Split(text, "|") {
		m := reDescriptor.FindStringSubmatch(rec)
		if m == nil {
			continue
		}
		code, err := strconv.ParseUint(m[2], 16, 8)
		if err != nil {
			continue
		}
		format, err := strconv.Atoi(m[3])
		if err != nil || format < 2 || format > 3 {
			continue
		}
		ops[strings.ToUpper(m[1])] = Op{Opcode: byte(code), Format: format}
	}
	t.ops = ops
	return len(ops)
}

// Load reads a descriptor from r and replaces the table with it.
func (t *Table) Load(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	return t.LoadDescriptor(string(data)), nil
}

// Open returns the built-in table when path is empty, otherwise a table
// loaded from the descriptor file at path.
func Open(path string) (*Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := t.Load(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s holds no operation records", path)
	}
	return t, nil
}
