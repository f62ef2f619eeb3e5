package cpu

// PutU24 writes the low 24 bits of v big-endian into b.
func PutU24(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// U24 reads a big-endian 24-bit value.
func U24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// WordBytes converts a word to its big-endian byte form.
func WordBytes(v uint32) []byte {
	out := make([]byte, 3)
	PutU24(out, v)
	return out
}
