// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into structured
// instruction records. It supports the 37 base integer operations:
//   - U-type: LUI, AUIPC
//   - J-type: JAL
//   - I-type: JALR, loads (LB, LH, LW, LBU, LHU), immediate ALU ops
//   - S-type: SB, SH, SW
//   - B-type: BEQ, BNE, BLT, BGE, BLTU, BGEU
//   - R-type: register-register ALU ops
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500513) // ADDI a0, zero, 5
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

// HaltWord is the instruction word `addi a0, zero, 255`. The simulator
// treats it as the end-of-program marker instead of executing it.
const HaltWord uint32 = 0x0FF00513

// ReturnValueReg is the register (a0) holding the program's result.
const ReturnValueReg uint8 = 10

// IsHalt reports whether word is the halt marker.
func IsHalt(word uint32) bool {
	return word == HaltWord
}
