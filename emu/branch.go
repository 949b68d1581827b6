// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rvsim/insts"

// BranchTaken evaluates a conditional branch comparison.
func BranchTaken(op insts.Op, rs1, rs2 uint32) bool {
	switch op {
	case insts.OpBEQ:
		return rs1 == rs2
	case insts.OpBNE:
		return rs1 != rs2
	case insts.OpBLT:
		return int32(rs1) < int32(rs2)
	case insts.OpBGE:
		return int32(rs1) >= int32(rs2)
	case insts.OpBLTU:
		return rs1 < rs2
	case insts.OpBGEU:
		return rs1 >= rs2
	default:
		return false
	}
}

// BranchTarget returns the PC-relative target of a branch or JAL.
func BranchTarget(pc uint32, offset int32) uint32 {
	return pc + uint32(offset)
}

// JumpRegTarget returns the JALR target: (rs1 + imm) with bit 0 cleared.
func JumpRegTarget(rs1 uint32, imm int32) uint32 {
	return (rs1 + uint32(imm)) &^ 1
}
