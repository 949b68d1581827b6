// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// ErrUnsupportedOp is returned when an operation has no functional unit
// implementation.
var ErrUnsupportedOp = errors.New("unsupported operation")

// ALU implements RV32I integer arithmetic. It is purely combinational:
// results depend only on the operation and its resolved operands.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Compute evaluates op on resolved operands.
//
//   - U-type returns the upper immediate (LUI) or PC + immediate (AUIPC).
//   - JAL/JALR return the link value PC+4.
//   - Loads and stores return the effective address rs1 + imm.
//   - Branches return 1 when the branch is taken and 0 otherwise.
//   - Immediate and register ALU ops return their arithmetic result.
func (a *ALU) Compute(op insts.Op, rs1, rs2 uint32, imm int32, pc uint32) (uint32, error) {
	uimm := uint32(imm)

	switch op {
	case insts.OpLUI:
		return uimm, nil
	case insts.OpAUIPC:
		return pc + uimm, nil
	case insts.OpJAL, insts.OpJALR:
		return pc + 4, nil

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		if BranchTaken(op, rs1, rs2) {
			return 1, nil
		}
		return 0, nil

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU,
		insts.OpSB, insts.OpSH, insts.OpSW:
		return EffectiveAddress(rs1, imm), nil

	case insts.OpADDI:
		return rs1 + uimm, nil
	case insts.OpSLTI:
		return boolToWord(int32(rs1) < imm), nil
	case insts.OpSLTIU:
		return boolToWord(rs1 < uimm), nil
	case insts.OpXORI:
		return rs1 ^ uimm, nil
	case insts.OpORI:
		return rs1 | uimm, nil
	case insts.OpANDI:
		return rs1 & uimm, nil
	case insts.OpSLLI:
		return rs1 << (uimm & 0x1F), nil
	case insts.OpSRLI:
		return rs1 >> (uimm & 0x1F), nil
	case insts.OpSRAI:
		return uint32(int32(rs1) >> (uimm & 0x1F)), nil

	case insts.OpADD:
		return rs1 + rs2, nil
	case insts.OpSUB:
		return rs1 - rs2, nil
	case insts.OpSLL:
		return rs1 << (rs2 & 0x1F), nil
	case insts.OpSLT:
		return boolToWord(int32(rs1) < int32(rs2)), nil
	case insts.OpSLTU:
		return boolToWord(rs1 < rs2), nil
	case insts.OpXOR:
		return rs1 ^ rs2, nil
	case insts.OpSRL:
		return rs1 >> (rs2 & 0x1F), nil
	case insts.OpSRA:
		return uint32(int32(rs1) >> (rs2 & 0x1F)), nil
	case insts.OpOR:
		return rs1 | rs2, nil
	case insts.OpAND:
		return rs1 & rs2, nil
	}

	return 0, fmt.Errorf("%w: %v", ErrUnsupportedOp, op)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
