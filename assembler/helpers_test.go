package assembler_test

import (
	"strings"

	"github.com/Urethramancer/sicxe/optab"
	"github.com/Urethramancer/sicxe/parser"
)

func parseSource(src string) ([]parser.Statement, error) {
	return parser.Parse(strings.NewReader(src), optab.Default())
}
