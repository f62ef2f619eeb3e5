package assembler

import (
	"encoding/hex"
	"regexp"
	"strings"
)

var reConstant = regexp.MustCompile(`^([CcXx])'(.+)'$`)

// DecodeConstant converts C'...' or X'...' into bytes.
func DecodeConstant(operand string) ([]byte, error) {
	m := reConstant.FindStringSubmatch(strings.TrimSpace(operand))
	if m == nil {
		return nil, &FormatError{Token: operand, Msg: "expected C'<chars>' or X'<hex>'"}
	}
	body := m[2]
	if strings.EqualFold(m[1], "C") {
		return []byte(body), nil
	}
	if len(body)%2 != 0 {
		return nil, &ValueError{Token: operand, Msg: "odd number of hex digits"}
	}
	b, err := hex.DecodeString(strings.ToUpper(body))
	if err != nil {
		return nil, &ValueError{Token: operand, Msg: "invalid hex digits"}
	}
	return b, nil
}
