package assembler

import "fmt"

// SequenceError is returned when a pass runs out of order or twice.
type SequenceError struct {
	Msg string
}

func (e *SequenceError) Error() string {
	return "sequencing error: " + e.Msg
}

// DefinitionError covers duplicate symbols, bad EQU/ORG expressions and a
// missing or malformed START.
type DefinitionError struct {
	Symbol string
	Msg    string
}

func (e *DefinitionError) Error() string {
	if e.Symbol == "" {
		return "definition error: " + e.Msg
	}
	return fmt.Sprintf("definition error: %s '%s'", e.Msg, e.Symbol)
}

// FormatError reports a malformed constant or a misused extended marker.
type FormatError struct {
	Token string
	Msg   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s: %s", e.Msg, e.Token)
}

// ValueError reports a well-formed operand holding an unusable value.
type ValueError struct {
	Token string
	Msg   string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value error: %s: %s", e.Msg, e.Token)
}

// ResolutionError reports an operand that could not be turned into an address.
type ResolutionError struct {
	Symbol string
	Msg    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution error: %s: %s", e.Msg, e.Symbol)
}

// RegisterError reports an unknown register in a format 2 operand.
type RegisterError struct {
	Register string
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("register error: unknown register '%s'", e.Register)
}
