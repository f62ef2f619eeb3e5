package cpu

// ReadU24 reads a big-endian 24-bit word from memory at the given address.
func (c *CPU) ReadU24(addr uint32) uint32 {
	return U24(c.Mem[addr:])
}

// WriteU24 writes a 24-bit word to memory at the given address in big-endian format.
func (c *CPU) WriteU24(addr uint32, val uint32) {
	PutU24(c.Mem[addr:], val)
}

// ReadBytes returns a copy of n bytes of memory starting at addr.
func (c *CPU) ReadBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	copy(out, c.Mem[addr:])
	return out
}
