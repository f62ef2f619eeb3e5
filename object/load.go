package object

import (
	"fmt"

	"github.com/Urethramancer/sicxe/cpu"
)

// Load copies the program into memory at address at and relocates every
// field named by a Modification record by at - Header.Start. The program
// counter is set to the relocated entry point.
func (p *Program) Load(c *cpu.CPU, at int) error {
	delta := at - p.Header.Start
	for _, t := range p.Texts {
		addr := t.Start + delta
		if addr < 0 {
			return fmt.Errorf("text record at %06X relocates below zero", t.Start)
		}
		if err := c.LoadCode(uint32(addr), t.Code); err != nil {
			return err
		}
	}
	for _, m := range p.Modifications {
		addr := m.Address + delta
		if addr < 0 || addr+3 > len(c.Mem) {
			return fmt.Errorf("modification at %06X is outside memory", m.Address)
		}
		// The field occupies the low m.Nibbles nibbles of the 3-byte word at addr.
		mask := uint32(1)<<(4*m.Nibbles) - 1
		word := c.ReadU24(uint32(addr))
		field := (word&mask + uint32(delta)) & mask
		c.WriteU24(uint32(addr), word&^mask|field)
	}
	c.SetEntry(uint32(p.Entry + delta))
	return nil
}
