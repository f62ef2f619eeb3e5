// Package object builds and reads SIC/XE object programs made of
// Header, Text, Modification and End records.
package object

import (
	"fmt"
	"strings"
)

const (
	// MaxTextBytes is the payload capacity of one Text record.
	MaxTextBytes = 30
	// DefaultTitle names a program whose START carries no label.
	DefaultTitle = "NONAME"
)

// Header is the H record.
type Header struct {
	Title  string
	Start  int
	Length int
}

// Text is a T record holding contiguous object bytes.
type Text struct {
	Start int
	Code  []byte
}

// End returns the address following the record.
func (t *Text) End() int {
	return t.Start + len(t.Code)
}

// Modification is an M record: a field needing relocation.
type Modification struct {
	Address int
	Nibbles int
}

// Program accumulates records in emission order.
type Program struct {
	Header        Header
	Texts         []*Text
	Modifications []Modification
	Entry         int
	closed        bool
}

// New creates an empty program.
func New() *Program {
	return &Program{}
}

// AddHeader opens the program.
func (p *Program) AddHeader(title string, start int) {
	if title == "" {
		title = DefaultTitle
	}
	p.Header = Header{Title: title, Start: start}
}

// AddText appends code emitted at loc. Bytes join the current record when they
// continue it and fit; otherwise a new record starts at loc.
func (p *Program) AddText(loc int, code []byte) {
	for len(code) > 0 {
		cur := p.current()
		if cur == nil || cur.End() != loc || len(cur.Code) == MaxTextBytes {
			cur = &Text{Start: loc}
			p.Texts = append(p.Texts, cur)
		}
		// Instructions are never split unless they cannot fit in an empty record.
		room := MaxTextBytes - len(cur.Code)
		if len(code) > room && len(cur.Code) > 0 && len(code) <= MaxTextBytes {
			cur = &Text{Start: loc}
			p.Texts = append(p.Texts, cur)
			room = MaxTextBytes
		}
		n := min(room, len(code))
		cur.Code = append(cur.Code, code[:n]...)
		code = code[n:]
		loc += n
	}
}

func (p *Program) current() *Text {
	if len(p.Texts) == 0 {
		return nil
	}
	return p.Texts[len(p.Texts)-1]
}

// AddModification records a field of the given width in nibbles at loc.
func (p *Program) AddModification(loc, nibbles int) {
	p.Modifications = append(p.Modifications, Modification{Address: loc, Nibbles: nibbles})
}

// AddEnd closes the program. entry is the first executable address; endLoc
// is the location counter at END and fixes the program length.
func (p *Program) AddEnd(entry, endLoc int) {
	p.Entry = entry
	p.Header.Length = endLoc - p.Header.Start
	p.closed = true
}

// Closed reports whether AddEnd has been called.
func (p *Program) Closed() bool {
	return p.closed
}

// Bytes returns the payload of all Text records keyed by address.
func (p *Program) Bytes() map[int]byte {
	out := make(map[int]byte)
	for _, t := range p.Texts {
		for i, b := range t.Code {
			out[t.Start+i] = b
		}
	}
	return out
}

func (h Header) String() string {
	title := h.Title
	if len(title) > 6 {
		title = title[:6]
	}
	return fmt.Sprintf("H%-6s%06X%06X", title, h.Start&0xFFFFFF, h.Length&0xFFFFFF)
}

func (t *Text) String() string {
	return fmt.Sprintf("T%06X%02X%X", t.Start&0xFFFFFF, len(t.Code), t.Code)
}

func (m Modification) String() string {
	return fmt.Sprintf("M%06X%02d", m.Address&0xFFFFFF, m.Nibbles)
}

// String serializes the program, one record per line.
func (p *Program) String() string {
	var b strings.Builder
	b.WriteString(p.Header.String())
	b.WriteByte('\n')
	for _, t := range p.Texts {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	for _, m := range p.Modifications {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "E%06X\n", p.Entry&0xFFFFFF)
	return b.String()
}
