// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rvsim/insts"

// LoadStoreUnit performs RV32I memory accesses against a Memory.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// EffectiveAddress returns base + sign-extended displacement.
func EffectiveAddress(base uint32, imm int32) uint32 {
	return base + uint32(imm)
}

// Load reads memory for a load operation and applies sign or zero
// extension according to op.
func (lsu *LoadStoreUnit) Load(op insts.Op, addr uint32) uint32 {
	raw := lsu.memory.Load(addr, op.MemWidth())
	return ExtendLoad(op, raw)
}

// Store writes the low bytes of value for a store operation.
func (lsu *LoadStoreUnit) Store(op insts.Op, addr, value uint32) {
	lsu.memory.Store(addr, value, op.MemWidth())
}

// ExtendLoad widens a raw little-endian load result to 32 bits.
func ExtendLoad(op insts.Op, raw uint32) uint32 {
	switch op {
	case insts.OpLB:
		return uint32(int32(int8(raw)))
	case insts.OpLH:
		return uint32(int32(int16(raw)))
	case insts.OpLBU:
		return raw & 0xFF
	case insts.OpLHU:
		return raw & 0xFFFF
	default:
		return raw
	}
}

// Overlaps reports whether two byte ranges [a, a+aw) and [b, b+bw) share
// at least one byte. Ranges wrap at 2^32 like the address space.
func Overlaps(a uint32, aw int, b uint32, bw int) bool {
	return b-a < uint32(aw) || a-b < uint32(bw)
}
