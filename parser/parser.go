// Package parser turns SIC/XE source lines into statements.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Urethramancer/sicxe/optab"
)

// Statement is one source line split into its columns.
type Statement struct {
	Line     int
	Label    string
	Mnemonic string
	Operand  string
}

func (s Statement) String() string {
	return strings.TrimSpace(fmt.Sprintf("%-8s %-8s %s", s.Label, s.Mnemonic, s.Operand))
}

// Directives recognised in the mnemonic column.
var Directives = []string{
	"START", "END", "BYTE", "WORD", "RESB", "RESW",
	"BASE", "NOBASE", "LTORG", "EQU", "ORG", "EXTDEF", "EXTREF",
}

// SyntaxError reports a line that could not be split into a statement.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// IsDirective reports whether name is an assembler directive.
func IsDirective(name string) bool {
	name = strings.ToUpper(name)
	for _, d := range Directives {
		if d == name {
			return true
		}
	}
	return false
}

func isMnemonic(tok string, t *optab.Table) bool {
	if IsDirective(tok) {
		return true
	}
	_, ok := t.Lookup(strings.TrimPrefix(tok, "+"))
	return ok
}

// Parse reads all source lines from r. Comment and blank lines are dropped.
func Parse(r io.Reader, t *optab.Table) ([]Statement, error) {
	var out []Statement
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		st, ok, err := ParseLine(sc.Text(), n, t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, st)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseLine splits a single line. It reports false for comment and blank lines.
func ParseLine(line string, n int, t *optab.Table) (Statement, bool, error) {
	line = strings.TrimRight(strings.ReplaceAll(line, "\r", ""), " \t")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		return Statement{}, false, nil
	}

	st := Statement{Line: n}
	first, rest := cut(trimmed)
	second, _ := cut(rest)
	// A mnemonic in the second column makes the first token a label, so
	// labels may share a name with an operation. An indented line that
	// starts with a mnemonic never carries a label.
	indented := line[0] == ' ' || line[0] == '\t'
	labelled := second != "" && isMnemonic(second, t) && !(indented && isMnemonic(first, t))
	if !labelled && isMnemonic(first, t) {
		st.Mnemonic = strings.ToUpper(first)
	} else {
		st.Label = strings.ToUpper(first)
		var mn string
		mn, rest = cut(rest)
		if mn == "" {
			return st, false, &SyntaxError{Line: n, Text: line, Msg: "missing mnemonic"}
		}
		if !isMnemonic(mn, t) {
			return st, false, &SyntaxError{Line: n, Text: line, Msg: "unknown mnemonic " + mn}
		}
		st.Mnemonic = strings.ToUpper(mn)
	}
	st.Operand = normalizeOperand(rest)
	return st, true, nil
}

// cut splits off the first whitespace-separated token.
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i == -1 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// normalizeOperand upper-cases the operand and drops blanks around commas.
// The body of a C'...' constant is kept verbatim.
func normalizeOperand(s string) string {
	var b strings.Builder
	inChars := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inChars:
			if c == '\'' {
				inChars = false
			}
			b.WriteByte(c)
		case c == '\'' && i > 0 && (s[i-1] == 'C' || s[i-1] == 'c'):
			inChars = true
			b.WriteByte(c)
		case c == ' ' || c == '\t':
			// blanks only survive inside character constants
		default:
			b.WriteString(strings.ToUpper(string(c)))
		}
	}
	return b.String()
}
