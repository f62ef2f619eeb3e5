package assembler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Urethramancer/sicxe/cpu"
)

var (
	reSymbol     = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)
	reDecimal    = regexp.MustCompile(`^\d+$`)
	reSigned     = regexp.MustCompile(`^-?\d+$`)
	reDifference = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)-([A-Z_][A-Z0-9_]*)$`)
	reOffset     = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\+(\d+)$`)
)

// Operand is a format 3/4 operand split into its addressing parts.
type Operand struct {
	Raw       string
	Value     string
	Indirect  bool
	Immediate bool
	Indexed   bool
}

// IsLiteral reports whether the operand names a literal pool entry.
func (o Operand) IsLiteral() bool {
	return strings.HasPrefix(o.Value, "=")
}

// parseOperand strips the @ / # prefix and the ,X suffix.
func parseOperand(s string) Operand {
	op := Operand{Raw: s}
	switch {
	case strings.HasPrefix(s, "@"):
		op.Indirect = true
		s = s[1:]
	case strings.HasPrefix(s, "#"):
		op.Immediate = true
		s = s[1:]
	}
	if strings.HasSuffix(s, ",X") {
		op.Indexed = true
		s = strings.TrimSuffix(s, ",X")
	}
	op.Value = s
	return op
}

func isSymbol(s string) bool {
	return reSymbol.MatchString(s)
}

func isDecimal(s string) bool {
	return reDecimal.MatchString(s)
}

// parseCount reads a non-negative decimal count for RESB/RESW.
func parseCount(s string) (int, error) {
	if !isDecimal(s) {
		return 0, &ValueError{Token: s, Msg: "expected a decimal count"}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > cpu.MaxMemory {
		return 0, &ValueError{Token: s, Msg: "count out of range"}
	}
	return n, nil
}

// parseStart reads the hex START operand.
func parseStart(s string) (int, error) {
	if s == "" {
		return 0, &DefinitionError{Msg: "START requires a hex address operand"}
	}
	v, err := strconv.ParseUint(s, 16, 20)
	if err != nil {
		return 0, &DefinitionError{Symbol: s, Msg: "START operand is not a hex address"}
	}
	return int(v), nil
}

// evalEqu resolves the right-hand side of an EQU. absolute is true when the
// value does not depend on where the program is loaded.
func (asm *Assembler) evalEqu(expr string, loc int) (value int, absolute bool, err error) {
	switch {
	case expr == "*":
		return loc, false, nil
	case isDecimal(expr):
		v, err := strconv.Atoi(expr)
		if err != nil {
			return 0, false, &DefinitionError{Symbol: expr, Msg: "EQU value out of range"}
		}
		return v, true, nil
	case isSymbol(expr):
		v, ok := asm.symbols.Lookup(expr)
		if !ok {
			return 0, false, &DefinitionError{Symbol: expr, Msg: "EQU references undefined symbol"}
		}
		return v, asm.absolute[expr], nil
	}
	if m := reDifference.FindStringSubmatch(expr); m != nil {
		a, ok := asm.symbols.Lookup(m[1])
		if !ok {
			return 0, false, &DefinitionError{Symbol: m[1], Msg: "EQU references undefined symbol"}
		}
		b, ok := asm.symbols.Lookup(m[2])
		if !ok {
			return 0, false, &DefinitionError{Symbol: m[2], Msg: "EQU references undefined symbol"}
		}
		if a-b < 0 {
			return 0, false, &DefinitionError{Symbol: expr, Msg: "EQU difference is negative"}
		}
		return a - b, true, nil
	}
	return 0, false, &DefinitionError{Symbol: expr, Msg: "unsupported EQU expression"}
}

// evalOrg resolves an ORG operand.
func (asm *Assembler) evalOrg(expr string) (int, error) {
	if isDecimal(expr) {
		v, err := strconv.Atoi(expr)
		if err != nil {
			return 0, &DefinitionError{Symbol: expr, Msg: "ORG value out of range"}
		}
		return v, nil
	}
	name, offset := expr, 0
	if m := reOffset.FindStringSubmatch(expr); m != nil {
		name = m[1]
		var err error
		if offset, err = strconv.Atoi(m[2]); err != nil {
			return 0, &DefinitionError{Symbol: expr, Msg: "ORG offset out of range"}
		}
	}
	if !isSymbol(name) {
		return 0, &DefinitionError{Symbol: expr, Msg: "unsupported ORG expression"}
	}
	v, ok := asm.symbols.Lookup(name)
	if !ok {
		return 0, &DefinitionError{Symbol: name, Msg: "ORG references undefined symbol"}
	}
	return v + offset, nil
}

// target resolves an operand value to an address. relocatable is false for
// plain numbers, whose value does not move with the load address.
func (asm *Assembler) target(value string, loc int) (addr int, relocatable bool, err error) {
	switch {
	case value == "*":
		return loc, true, nil
	case strings.HasPrefix(value, "="):
		a, ok := asm.literals.Lookup(value)
		if !ok {
			return 0, false, &ResolutionError{Symbol: value, Msg: "literal was never placed"}
		}
		return a, true, nil
	case isDecimal(value):
		v, err := strconv.Atoi(value)
		if err != nil {
			return 0, false, &ResolutionError{Symbol: value, Msg: "address out of range"}
		}
		return v, false, nil
	}
	a, ok := asm.symbols.Lookup(value)
	if !ok {
		return 0, false, &ResolutionError{Symbol: value, Msg: "undefined symbol"}
	}
	return a, !asm.absolute[value], nil
}

// atoiBelow parses a decimal and checks it is under limit.
func atoiBelow(s string, limit int) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v >= limit {
		return 0, false
	}
	return v, true
}
