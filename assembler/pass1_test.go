package assembler_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Urethramancer/sicxe/assembler"
)

func symbolMap(asm *assembler.Assembler) map[string]int {
	m := map[string]int{}
	for _, s := range asm.Symbols() {
		m[s.Name] = s.Address
	}
	return m
}

func TestEqu(t *testing.T) {
	src := `P START 100
A RESB 10
B RESB 6
C EQU *
D EQU 42
E EQU B-A
F EQU C
 END P
`
	asm, _ := mustAssemble(t, src)
	want := map[string]int{"P": 0x100, "A": 0x100, "B": 0x10A, "C": 0x110, "D": 42, "E": 10, "F": 0x110}
	if got := symbolMap(asm); !reflect.DeepEqual(got, want) {
		t.Errorf("symbols: got %v, want %v", got, want)
	}
}

func TestEquErrors(t *testing.T) {
	tests := []struct {
		name, line string
	}{
		{"Negative", "X EQU A-B"},
		{"Unsupported", "X EQU A+B"},
		{"Undefined", "X EQU Q"},
		{"Forward", "X EQU LATER"},
		{"NoLabel", " EQU 5"},
	}
	for _, tc := range tests {
		src := "P START 0\nA RESB 1\nB RESB 1\n" + tc.line + "\nLATER RESB 1\n END P\n"
		_, _, err := assemble(t, src)
		var de *assembler.DefinitionError
		if !errors.As(err, &de) {
			t.Errorf("[%s] expected DefinitionError, got %v", tc.name, err)
		}
	}
}

func TestEquLeavesSymbolUndefined(t *testing.T) {
	src, err := parseSource("P START 0\nA RESB 1\nX EQU A+A\n END P\n")
	if err != nil {
		t.Fatal(err)
	}
	asm := assembler.New(nil, src)
	if err := asm.Pass1(); err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := symbolMap(asm)["X"]; ok {
		t.Errorf("X should not be defined")
	}
}

func TestOrg(t *testing.T) {
	src := `P START 0
 RESB 10
 ORG 100
X WORD 1
 ORG X+6
Y WORD 2
 END P
`
	asm, prog := mustAssemble(t, src)
	syms := symbolMap(asm)
	if syms["X"] != 100 || syms["Y"] != 106 {
		t.Errorf("X=%d Y=%d, want 100 and 106", syms["X"], syms["Y"])
	}
	if len(prog.Texts) != 2 {
		t.Fatalf("got %d text records, want 2:\n%s", len(prog.Texts), prog)
	}
	if prog.Texts[0].String() != "T00006403000001" || prog.Texts[1].String() != "T00006A03000002" {
		t.Errorf("text records:\n%s", prog)
	}
}

func TestOrgErrors(t *testing.T) {
	for _, line := range []string{" ORG Q", " ORG A-1", " ORG A+Q", " ORG A+99999999999999999999"} {
		_, _, err := assemble(t, "P START 0\nA RESB 1\n"+line+"\n END P\n")
		var de *assembler.DefinitionError
		if !errors.As(err, &de) {
			t.Errorf("%q: expected DefinitionError, got %v", line, err)
		}
	}
}

func TestReserveAndData(t *testing.T) {
	src := `P START 0
A RESW 2
B RESB 5
C BYTE C'HELLO'
D WORD -1
E BYTE X'00FF'
F RESB 0
 END P
`
	asm, prog := mustAssemble(t, src)
	want := map[string]int{"P": 0, "A": 0, "B": 6, "C": 11, "D": 16, "E": 19, "F": 21}
	if got := symbolMap(asm); !reflect.DeepEqual(got, want) {
		t.Errorf("symbols: got %v, want %v", got, want)
	}
	if prog.Header.Length != 21 {
		t.Errorf("length %d, want 21", prog.Header.Length)
	}
	if got := prog.Texts[0].String(); got != "T00000B0A48454C4C4FFFFFFF00FF" {
		t.Errorf("text record %s", got)
	}
}

func TestReserveBadCount(t *testing.T) {
	for _, line := range []string{
		"A RESW X",
		"A RESW 6148914691236517206",
		"A RESB 2000000",
		"A RESW 400000",
	} {
		_, _, err := assemble(t, "P START 0\n"+line+"\nB RESB 1\n END P\n")
		var ve *assembler.ValueError
		if !errors.As(err, &ve) {
			t.Errorf("%q: expected ValueError, got %v", line, err)
		}
	}
}

func TestProgramEndsAtTopOfMemory(t *testing.T) {
	_, prog := mustAssemble(t, "P START FFFFD\n LDA #0\n END P\n")
	if got := prog.Header.String(); got != "HP     0FFFFD000003" {
		t.Errorf("header %s", got)
	}

	_, _, err := assemble(t, "P START FFFFE\n LDA #0\n END P\n")
	var ve *assembler.ValueError
	if !errors.As(err, &ve) {
		t.Errorf("program past the address space: expected ValueError, got %v", err)
	}
}

func TestLiteralPools(t *testing.T) {
	src := `P START 0
 LDA =C'AB'
 STA =X'0F'
 LDA =C'AB'
 LTORG
 LDA =X'0F'
 LDA =X'10'
 END P
`
	asm, prog := mustAssemble(t, src)
	lits := asm.Literals()
	want := []assembler.Symbol{{Name: "=C'AB'", Address: 9}, {Name: "=X'0F'", Address: 0xB}, {Name: "=X'10'", Address: 0x12}}
	if !reflect.DeepEqual(lits, want) {
		t.Errorf("literals: got %v, want %v", lits, want)
	}
	wantObj := "HP     000000000013\nT000000130320060F200503200041420F032FFC03200010\nE000000\n"
	if prog.String() != wantObj {
		t.Errorf("object program:\n%s\nwant:\n%s", prog, wantObj)
	}

	var defs int
	for _, st := range asm.Statements() {
		if _, ok := st.(*assembler.LiteralDef); ok {
			defs++
		}
	}
	if defs != 3 {
		t.Errorf("got %d literal definitions, want 3", defs)
	}
	last := asm.Statements()[len(asm.Statements())-1]
	if d, ok := last.(*assembler.Directive); !ok || d.Name != "END" || d.Loc() != 0x13 {
		t.Errorf("END should follow the final pool at 0013, got %#v", last)
	}
}

func TestMalformedLiteral(t *testing.T) {
	_, _, err := assemble(t, "P START 0\n LDA =Q'1'\n END P\n")
	var fe *assembler.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestPass1Deterministic(t *testing.T) {
	src, err := parseSource("P START 0\nA RESB 1\nB EQU A\n LDA =C'Z'\nC WORD 3\n END P\n")
	if err != nil {
		t.Fatal(err)
	}
	first := assembler.New(nil, src)
	second := assembler.New(nil, src)
	if err := first.Pass1(); err != nil {
		t.Fatal(err)
	}
	if err := second.Pass1(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Symbols(), second.Symbols()) {
		t.Errorf("symbols differ: %v vs %v", first.Symbols(), second.Symbols())
	}
	if !reflect.DeepEqual(first.Literals(), second.Literals()) {
		t.Errorf("literals differ: %v vs %v", first.Literals(), second.Literals())
	}
}

func TestExternalsRecorded(t *testing.T) {
	asm, _ := mustAssemble(t, "P START 0\n EXTDEF BUF,LEN\n EXTREF RDREC\n RSUB\n END P\n")
	if got := asm.Externals(); !reflect.DeepEqual(got, []string{"BUF", "LEN", "RDREC"}) {
		t.Errorf("externals: %v", got)
	}
}
