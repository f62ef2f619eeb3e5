package assembler_test

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Urethramancer/sicxe/assembler"
	"github.com/Urethramancer/sicxe/object"
	"github.com/Urethramancer/sicxe/optab"
)

func assemble(t *testing.T, src string) (*assembler.Assembler, *object.Program, error) {
	t.Helper()
	return assembler.AssembleSource(optab.Default(), strings.NewReader(src))
}

func mustAssemble(t *testing.T, src string) (*assembler.Assembler, *object.Program) {
	t.Helper()
	asm, prog, err := assemble(t, src)
	if err != nil {
		t.Fatalf("failed to assemble:\n%s\nerror: %v", src, err)
	}
	return asm, prog
}

// codeAt returns the bytes emitted for the statement at loc.
func codeAt(asm *assembler.Assembler, loc int) string {
	for _, l := range asm.Listing() {
		if l.Loc == loc && len(l.Code) > 0 {
			return strings.ToUpper(hex.EncodeToString(l.Code))
		}
	}
	return ""
}

func TestCopyPrograms(t *testing.T) {
	want, err := os.ReadFile("testdata/copy.obj")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"copy.asm", "copy_literals.asm"} {
		f, err := os.Open("testdata/" + name)
		if err != nil {
			t.Fatal(err)
		}
		_, prog, err := assembler.AssembleSource(optab.Default(), f)
		f.Close()
		if err != nil {
			t.Fatalf("[%s] %v", name, err)
		}
		if got := prog.String(); got != string(want) {
			t.Errorf("[%s] object program mismatch\nwant:\n%s\ngot:\n%s", name, want, got)
		}
	}
}

func TestScenarioA(t *testing.T) {
	asm, prog := mustAssemble(t, "  START 1000\n  LDA FIVE\nFIVE WORD 5\n  END START\n")
	syms := map[string]int{}
	for _, s := range asm.Symbols() {
		syms[s.Name] = s.Address
	}
	// START reserves nothing, so FIVE follows the 3-byte LDA.
	if syms["FIVE"] != 0x1003 {
		t.Errorf("FIVE at %04X, want 1003", syms["FIVE"])
	}
	if got := codeAt(asm, 0x1000); got != "032000" {
		t.Errorf("LDA FIVE encoded as %s, want 032000 (p=1, disp 0)", got)
	}
	want := "HNONAME001000000006\nT00100006032000000005\nE001000\n"
	if prog.String() != want {
		t.Errorf("object program:\n%s\nwant:\n%s", prog, want)
	}
}

func TestDecodeConstant(t *testing.T) {
	tests := []struct {
		in, hex string
	}{
		{"C'EOF'", "454F46"},
		{"c'eof'", "656F66"},
		{"X'F1'", "F1"},
		{"x'0a1B'", "0A1B"},
		{"C'A B'", "412042"},
	}
	for _, tc := range tests {
		b, err := assembler.DecodeConstant(tc.in)
		if err != nil {
			t.Errorf("%s: %v", tc.in, err)
			continue
		}
		if got := strings.ToUpper(hex.EncodeToString(b)); got != tc.hex {
			t.Errorf("%s: got %s, want %s", tc.in, got, tc.hex)
		}
	}
}

func TestDecodeConstantErrors(t *testing.T) {
	var fe *assembler.FormatError
	var ve *assembler.ValueError
	for _, in := range []string{"'EOF'", "C'EOF", "EOF", "Z'00'", "C''"} {
		if _, err := assembler.DecodeConstant(in); !errors.As(err, &fe) {
			t.Errorf("%q: expected FormatError, got %v", in, err)
		}
	}
	for _, in := range []string{"X'1'", "X'ABC'", "X'GG'"} {
		if _, err := assembler.DecodeConstant(in); !errors.As(err, &ve) {
			t.Errorf("%q: expected ValueError, got %v", in, err)
		}
	}
}

func TestByteOperandOddHex(t *testing.T) {
	_, _, err := assemble(t, "P START 0\nB BYTE X'1'\n END P\n")
	var ve *assembler.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestDuplicateSymbol(t *testing.T) {
	_, _, err := assemble(t, "P START 0\nALPHA WORD 1\nALPHA WORD 2\n END P\n")
	var de *assembler.DefinitionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DefinitionError, got %v", err)
	}
	if de.Symbol != "ALPHA" {
		t.Errorf("error names %q, want ALPHA", de.Symbol)
	}
	if !strings.HasPrefix(err.Error(), "line 3:") {
		t.Errorf("error should point at line 3: %v", err)
	}
}

const farProgram = `P START 0
%s
 LDA FAR
 RESB 5000
FAR WORD 1
 END P
`

func TestDisplacementOverflow(t *testing.T) {
	_, _, err := assemble(t, fmt.Sprintf(farProgram, ""))
	var re *assembler.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "format 4") {
		t.Errorf("error should ask for format 4: %v", err)
	}
}

func TestBaseRelativeFallback(t *testing.T) {
	asm, _ := mustAssemble(t, fmt.Sprintf(farProgram, " BASE FAR"))
	if got := codeAt(asm, 0); got != "034000" {
		t.Errorf("LDA FAR encoded as %s, want 034000", got)
	}
}

func TestBaseOutOfRange(t *testing.T) {
	// FAR is below the base, so base-relative cannot reach it either.
	src := `P START 0
 BASE LAST
 LDA FAR
 RESB 5000
FAR WORD 1
 RESB 5000
LAST WORD 2
 END P
`
	_, _, err := assemble(t, src)
	var re *assembler.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestExtendedFormat(t *testing.T) {
	src := strings.Replace(fmt.Sprintf(farProgram, ""), " LDA FAR", " +LDA FAR", 1)
	asm, prog := mustAssemble(t, src)
	if got := codeAt(asm, 0); got != "0310138C" {
		t.Errorf("+LDA FAR encoded as %s, want 0310138C", got)
	}
	if len(prog.Modifications) != 1 {
		t.Fatalf("got %d modification records, want 1", len(prog.Modifications))
	}
	if m := prog.Modifications[0].String(); m != "M00000105" {
		t.Errorf("modification record %s, want M00000105", m)
	}
}

func TestAddressingModes(t *testing.T) {
	tests := []struct {
		name, instr, hex string
	}{
		{"Simple_PC", " LDA ALPHA", "032000"},
		{"Immediate_Number", " LDA #5", "010005"},
		{"Immediate_Symbol", " LDB #ALPHA", "692000"},
		{"Indirect", " LDA @ALPHA", "022000"},
		{"Indexed", " LDA ALPHA,X", "03A000"},
		{"Numeric_Address", " LDA 3", "032000"},
		{"Current_Location", " J *", "3F2FFD"},
		{"No_Operand", " RSUB", "4F0000"},
		{"Extended", " +LDA ALPHA", "03100004"},
		{"Extended_Immediate", " +LDA #4096", "01101000"},
		{"Extended_Indexed", " +STCH ALPHA,X", "57900004"},
		{"Format2_One", " CLEAR X", "B410"},
		{"Format2_Two", " COMPR A,S", "A004"},
		{"Format2_Shift", " SHIFTL T,4", "A453"},
		{"Format2_SVC", " SVC 2", "B020"},
	}
	for _, tc := range tests {
		src := fmt.Sprintf("P START 0\n%s\nALPHA WORD 7\n END P\n", tc.instr)
		asm, _, err := assemble(t, src)
		if err != nil {
			t.Errorf("[%s] %v", tc.name, err)
			continue
		}
		if got := codeAt(asm, 0); got != tc.hex {
			t.Errorf("[%s] got %s, want %s", tc.name, got, tc.hex)
		}
	}
}

func TestImmediateOutOfRange(t *testing.T) {
	_, _, err := assemble(t, "P START 0\n LDA #4096\n END P\n")
	var re *assembler.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestUndefinedSymbol(t *testing.T) {
	_, _, err := assemble(t, "P START 0\n LDA NOWHERE\n END P\n")
	var re *assembler.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if re.Symbol != "NOWHERE" {
		t.Errorf("error names %q", re.Symbol)
	}
}

func TestLabelNamedLikeMnemonic(t *testing.T) {
	asm, _ := mustAssemble(t, "P START 0\n J ADD\nADD RSUB\nSUB WORD 5\n END P\n")
	if got := codeAt(asm, 0); got != "3F2000" {
		t.Errorf("J ADD encoded as %s, want 3F2000", got)
	}
	if got := codeAt(asm, 3); got != "4F0000" {
		t.Errorf("RSUB encoded as %s, want 4F0000", got)
	}
	want := map[string]int{"P": 0, "ADD": 3, "SUB": 6}
	for _, s := range asm.Symbols() {
		if addr, ok := want[s.Name]; ok && addr != s.Address {
			t.Errorf("%s at %d, want %d", s.Name, s.Address, addr)
		}
		delete(want, s.Name)
	}
	if len(want) != 0 {
		t.Errorf("symbols never defined: %v", want)
	}
}

func TestUnknownRegister(t *testing.T) {
	_, _, err := assemble(t, "P START 0\n CLEAR Q\n END P\n")
	var re *assembler.RegisterError
	if !errors.As(err, &re) {
		t.Fatalf("expected RegisterError, got %v", err)
	}
}

func TestExtendedMarkerOnFormat2(t *testing.T) {
	_, _, err := assemble(t, "P START 0\n +CLEAR X\n END P\n")
	var fe *assembler.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestStartErrors(t *testing.T) {
	for _, src := range []string{
		" LDA #1\n END\n",
		"P START\n END P\n",
		"P START ZZ\n END P\n",
		"P START 0\n START 10\n END P\n",
		"P START 0\n RSUB\n",
	} {
		_, _, err := assemble(t, src)
		var de *assembler.DefinitionError
		if !errors.As(err, &de) {
			t.Errorf("%q: expected DefinitionError, got %v", src, err)
		}
	}
}

func TestSequencing(t *testing.T) {
	src, err := parseSource("P START 0\n RSUB\n END P\n")
	if err != nil {
		t.Fatal(err)
	}
	var se *assembler.SequenceError

	asm := assembler.New(nil, src)
	if _, err := asm.Pass2(); !errors.As(err, &se) {
		t.Errorf("pass 2 before pass 1: got %v", err)
	}
	if err := asm.Pass1(); err != nil {
		t.Fatal(err)
	}
	if err := asm.Pass1(); !errors.As(err, &se) {
		t.Errorf("pass 1 twice: got %v", err)
	}
	if _, err := asm.Pass2(); err != nil {
		t.Fatal(err)
	}
	if _, err := asm.Pass2(); !errors.As(err, &se) {
		t.Errorf("pass 2 twice: got %v", err)
	}

	bad, err := parseSource("P START 0\nA RSUB\nA RSUB\n END P\n")
	if err != nil {
		t.Fatal(err)
	}
	asm = assembler.New(nil, bad)
	if err := asm.Pass1(); err == nil {
		t.Fatal("expected duplicate symbol")
	}
	if _, err := asm.Pass2(); !errors.As(err, &se) {
		t.Errorf("pass 2 after failed pass 1: got %v", err)
	}
}

func TestEndStopsGeneration(t *testing.T) {
	asm, prog := mustAssemble(t, "P START 0\n RSUB\n END P\n LDA #1\n")
	if len(prog.Texts) != 1 || len(prog.Texts[0].Code) != 3 {
		t.Errorf("statements after END were assembled: %s", prog)
	}
	if len(asm.Statements()) != 3 {
		t.Errorf("got %d statements, want 3", len(asm.Statements()))
	}
}
