package cpu

import "fmt"

// CPU memory and registers.
type CPU struct {
	// Reg holds the registers, indexed by register code.
	Reg [10]uint32
	// Mem is byte-addressed main memory.
	Mem []byte
}

// MaxMemory is the SIC/XE address space, 2^20 bytes.
const MaxMemory = 1 << 20

// New creates a new CPU instance with given memory size.
func New(memsize int) *CPU {
	if memsize > MaxMemory {
		memsize = MaxMemory
	}
	return &CPU{
		Mem: make([]byte, memsize),
	}
}

// PC returns the program counter.
func (c *CPU) PC() uint32 {
	return c.Reg[RegPC]
}

// LoadCode to specified address.
func (c *CPU) LoadCode(addr uint32, code []byte) error {
	if int(addr)+len(code) > len(c.Mem) {
		return fmt.Errorf("load of %d bytes at %06X exceeds memory size %06X", len(code), addr, len(c.Mem))
	}
	copy(c.Mem[addr:], code)
	return nil
}

// SetEntry sets the program counter to the first instruction to execute.
func (c *CPU) SetEntry(addr uint32) {
	c.Reg[RegPC] = addr & 0xFFFFF
}
