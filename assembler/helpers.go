package assembler

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/Urethramancer/sicxe/cpu"
	"github.com/Urethramancer/sicxe/optab"
)

// encodeFormat3 packs opcode+ni, the xbpe nibble and a 12-bit field.
func encodeFormat3(op optab.Op, ni, xbpe uint32, field int) []byte {
	word := (uint32(op.Opcode)|ni)<<16 | xbpe<<12 | uint32(field)&0xFFF
	return cpu.WordBytes(word)
}

// encodeFormat4 packs opcode+ni, the xbpe nibble and a 20-bit field.
func encodeFormat4(op optab.Op, ni, xbpe uint32, field int) []byte {
	word := (uint32(op.Opcode)|ni)<<24 | xbpe<<20 | uint32(field)&0xFFFFF
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, word)
	return out
}

func encodeMemory(op optab.Op, ni, xbpe uint32, field int, extended bool) []byte {
	if extended {
		return encodeFormat4(op, ni, xbpe|cpu.FlagE, field)
	}
	return encodeFormat3(op, ni, xbpe, field)
}

// encodeFormat2 packs the opcode and two register nibbles.
func encodeFormat2(op optab.Op, r1, r2 uint8) []byte {
	return []byte{op.Opcode, r1<<4 | r2&0x0F}
}

// registerOperand resolves one format 2 operand. SVC takes a number in the
// first slot and the shifts take a count of 1..16 in the second.
func registerOperand(mnemonic, s string, slot int) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" && slot == 2 {
		return 0, nil
	}
	if code, ok := cpu.RegisterCode(s); ok {
		return code, nil
	}
	if isDecimal(s) {
		n, _ := strconv.Atoi(s)
		switch {
		case mnemonic == "SVC" && slot == 1 && n < 16:
			return uint8(n), nil
		case (mnemonic == "SHIFTL" || mnemonic == "SHIFTR") && slot == 2 && n >= 1 && n <= 16:
			return uint8(n - 1), nil
		}
	}
	return 0, &RegisterError{Register: s}
}
