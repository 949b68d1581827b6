// Package emu provides functional RV32I emulation and the architectural
// state shared with the timing model.
package emu

// DefaultMemorySize is the size of the flat address space in bytes.
const DefaultMemorySize = 20 << 20

// Memory is a flat, byte-addressable, little-endian store.
// Addresses outside the backing array read as zero and ignore writes.
type Memory struct {
	data []byte
}

// NewMemory creates a zero-initialized memory of DefaultMemorySize bytes.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultMemorySize)
}

// NewMemoryWithSize creates a zero-initialized memory of the given size.
func NewMemoryWithSize(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint32) uint8 {
	if uint64(addr) >= uint64(len(m.data)) {
		return 0
	}
	return m.data[addr]
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	if uint64(addr) >= uint64(len(m.data)) {
		return
	}
	m.data[addr] = value
}

// Load reads a little-endian quantity of width 1, 2 or 4 bytes.
// The result is zero-extended; sign extension is the caller's job.
func (m *Memory) Load(addr uint32, width int) uint32 {
	var value uint32
	for i := 0; i < width; i++ {
		value |= uint32(m.Read8(addr+uint32(i))) << (8 * i)
	}
	return value
}

// Store writes the low width bytes of value in little-endian order.
func (m *Memory) Store(addr uint32, value uint32, width int) {
	for i := 0; i < width; i++ {
		m.Write8(addr+uint32(i), uint8(value>>(8*i)))
	}
}

// Read16 reads a halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Load(addr, 2))
}

// Write16 writes a halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Store(addr, uint32(value), 2)
}

// Read32 reads a word.
func (m *Memory) Read32(addr uint32) uint32 {
	return m.Load(addr, 4)
}

// Write32 writes a word.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Store(addr, value, 4)
}

// LoadProgram copies raw bytes into memory starting at addr.
func (m *Memory) LoadProgram(addr uint32, program []byte) {
	for i, b := range program {
		m.Write8(addr+uint32(i), b)
	}
}

// Clone returns a deep copy of the memory.
func (m *Memory) Clone() *Memory {
	data := make([]byte, len(m.data))
	copy(data, m.data)
	return &Memory{data: data}
}
