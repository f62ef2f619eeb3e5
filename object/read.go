package object

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads an object program in record form.
func Parse(r io.Reader) (*Program, error) {
	p := New()
	sc := bufio.NewScanner(r)
	n := 0
	seenHeader := false
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), " \r")
		if line == "" {
			continue
		}
		var err error
		switch line[0] {
		case 'H':
			err = p.parseHeader(line)
			seenHeader = true
		case 'T':
			err = p.parseText(line)
		case 'M':
			err = p.parseModification(line)
		case 'E':
			err = p.parseEnd(line)
		default:
			err = fmt.Errorf("unknown record type %q", line[0])
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		if p.closed {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !seenHeader {
		return nil, fmt.Errorf("missing header record")
	}
	if !p.closed {
		return nil, fmt.Errorf("missing end record")
	}
	return p, nil
}

func parseField(s string, base int) (int, error) {
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid field %q", s)
	}
	return int(v), nil
}

func (p *Program) parseHeader(line string) error {
	if len(line) != 19 {
		return fmt.Errorf("header record has length %d, want 19", len(line))
	}
	start, err := parseField(line[7:13], 16)
	if err != nil {
		return err
	}
	length, err := parseField(line[13:19], 16)
	if err != nil {
		return err
	}
	p.Header = Header{Title: strings.TrimRight(line[1:7], " "), Start: start, Length: length}
	return nil
}

func (p *Program) parseText(line string) error {
	if len(line) < 9 {
		return fmt.Errorf("text record too short")
	}
	start, err := parseField(line[1:7], 16)
	if err != nil {
		return err
	}
	size, err := parseField(line[7:9], 16)
	if err != nil {
		return err
	}
	if size > MaxTextBytes {
		return fmt.Errorf("text record holds %d bytes, limit is %d", size, MaxTextBytes)
	}
	code, err := hex.DecodeString(line[9:])
	if err != nil {
		return fmt.Errorf("text record payload: %w", err)
	}
	if len(code) != size {
		return fmt.Errorf("text record length field is %d, payload has %d bytes", size, len(code))
	}
	p.Texts = append(p.Texts, &Text{Start: start, Code: code})
	return nil
}

func (p *Program) parseModification(line string) error {
	if len(line) != 9 {
		return fmt.Errorf("modification record has length %d, want 9", len(line))
	}
	addr, err := parseField(line[1:7], 16)
	if err != nil {
		return err
	}
	nibbles, err := parseField(line[7:9], 10)
	if err != nil {
		return err
	}
	p.AddModification(addr, nibbles)
	return nil
}

func (p *Program) parseEnd(line string) error {
	if len(line) != 7 {
		return fmt.Errorf("end record has length %d, want 7", len(line))
	}
	entry, err := parseField(line[1:7], 16)
	if err != nil {
		return err
	}
	p.Entry = entry
	p.closed = true
	return nil
}
