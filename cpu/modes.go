package cpu

// Instruction formats. Format 4 is a format 3 mnemonic with the extended marker.
const (
	Format2 = 2
	Format3 = 3
	Format4 = 4
)

// n/i pair, added to the opcode byte.
const (
	// FlagN marks indirect addressing when set alone.
	FlagN = 1 << 1
	// FlagI marks immediate addressing when set alone.
	FlagI = 1 << 0
	// Simple (direct) addressing sets both.
	FlagSimple = FlagN | FlagI
)

// x/b/p/e nibble, placed above the displacement field.
const (
	FlagX = 1 << 3
	FlagB = 1 << 2
	FlagP = 1 << 1
	FlagE = 1 << 0
)

// Displacement limits.
const (
	// PCMin and PCMax bound a signed 12-bit PC-relative displacement (PCMax exclusive).
	PCMin = -2048
	PCMax = 2048
	// BaseMax bounds an unsigned 12-bit base-relative displacement (exclusive).
	BaseMax = 4096
	// AddrMax bounds a 20-bit format 4 address (exclusive).
	AddrMax = 1 << 20
)
