package cpu

import "strings"

// Register codes as encoded in format 2 instructions.
const (
	RegA  = 0
	RegX  = 1
	RegL  = 2
	RegB  = 3
	RegS  = 4
	RegT  = 5
	RegF  = 6
	RegPC = 8
	RegSW = 9
)

var registerCodes = map[string]uint8{
	"A":  RegA,
	"X":  RegX,
	"L":  RegL,
	"B":  RegB,
	"S":  RegS,
	"T":  RegT,
	"F":  RegF,
	"PC": RegPC,
	"SW": RegSW,
}

// RegisterCode returns the 4-bit code for a register name.
func RegisterCode(name string) (uint8, bool) {
	code, ok := registerCodes[strings.ToUpper(strings.TrimSpace(name))]
	return code, ok
}

// RegisterName is the inverse of RegisterCode.
func RegisterName(code uint8) (string, bool) {
	for name, c := range registerCodes {
		if c == code {
			return name, true
		}
	}
	return "", false
}
