package insts

import "encoding/binary"

// Encoders for building test programs and benchmarks. They do not validate
// operand ranges; out-of-range immediates are truncated to the field width.

var branchFunct3 = map[Op]uint32{
	OpBEQ: 0b000, OpBNE: 0b001, OpBLT: 0b100,
	OpBGE: 0b101, OpBLTU: 0b110, OpBGEU: 0b111,
}

var loadFunct3 = map[Op]uint32{
	OpLB: 0b000, OpLH: 0b001, OpLW: 0b010, OpLBU: 0b100, OpLHU: 0b101,
}

var storeFunct3 = map[Op]uint32{
	OpSB: 0b000, OpSH: 0b001, OpSW: 0b010,
}

var opImmFunct3 = map[Op]uint32{
	OpADDI: 0b000, OpSLTI: 0b010, OpSLTIU: 0b011, OpXORI: 0b100,
	OpORI: 0b110, OpANDI: 0b111, OpSLLI: 0b001, OpSRLI: 0b101, OpSRAI: 0b101,
}

var opFunct3 = map[Op]uint32{
	OpADD: 0b000, OpSUB: 0b000, OpSLL: 0b001, OpSLT: 0b010, OpSLTU: 0b011,
	OpXOR: 0b100, OpSRL: 0b101, OpSRA: 0b101, OpOR: 0b110, OpAND: 0b111,
}

func reg(r uint8, pos uint) uint32 {
	return uint32(r&0x1F) << pos
}

// EncodeLUI encodes LUI rd, imm20.
func EncodeLUI(rd uint8, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | reg(rd, 7) | opcodeLUI
}

// EncodeAUIPC encodes AUIPC rd, imm20.
func EncodeAUIPC(rd uint8, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | reg(rd, 7) | opcodeAUIPC
}

// EncodeJAL encodes JAL rd, offset (byte offset, must be even).
func EncodeJAL(rd uint8, offset int32) uint32 {
	imm := uint32(offset)
	word := ((imm >> 20) & 0x1) << 31
	word |= ((imm >> 1) & 0x3FF) << 21
	word |= ((imm >> 11) & 0x1) << 20
	word |= ((imm >> 12) & 0xFF) << 12
	return word | reg(rd, 7) | opcodeJAL
}

// EncodeJALR encodes JALR rd, imm(rs1).
func EncodeJALR(rd, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | reg(rs1, 15) | reg(rd, 7) | opcodeJALR
}

// EncodeBranch encodes a conditional branch to PC+offset.
func EncodeBranch(op Op, rs1, rs2 uint8, offset int32) uint32 {
	imm := uint32(offset)
	word := ((imm >> 12) & 0x1) << 31
	word |= ((imm >> 5) & 0x3F) << 25
	word |= ((imm >> 1) & 0xF) << 8
	word |= ((imm >> 11) & 0x1) << 7
	return word | reg(rs2, 20) | reg(rs1, 15) | branchFunct3[op]<<12 | opcodeBranch
}

// EncodeLoad encodes a load: op rd, imm(rs1).
func EncodeLoad(op Op, rd, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | reg(rs1, 15) | loadFunct3[op]<<12 | reg(rd, 7) | opcodeLoad
}

// EncodeStore encodes a store: op rs2, imm(rs1).
func EncodeStore(op Op, rs2, rs1 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7F)<<25 | reg(rs2, 20) | reg(rs1, 15) | storeFunct3[op]<<12 |
		(u&0x1F)<<7 | opcodeStore
}

// EncodeOpImm encodes an immediate ALU operation. For shifts imm is the
// shift amount.
func EncodeOpImm(op Op, rd, rs1 uint8, imm int32) uint32 {
	field := uint32(imm) & 0xFFF
	switch op {
	case OpSLLI, OpSRLI:
		field &= 0x1F
	case OpSRAI:
		field = (field & 0x1F) | 0x400
	}
	return field<<20 | reg(rs1, 15) | opImmFunct3[op]<<12 | reg(rd, 7) | opcodeOpImm
}

// EncodeOp encodes a register-register ALU operation.
func EncodeOp(op Op, rd, rs1, rs2 uint8) uint32 {
	var funct7 uint32
	if op == OpSUB || op == OpSRA {
		funct7 = 0x20
	}
	return funct7<<25 | reg(rs2, 20) | reg(rs1, 15) | opFunct3[op]<<12 | reg(rd, 7) | opcodeOp
}

// EncodeADDI encodes ADDI rd, rs1, imm.
func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeOpImm(OpADDI, rd, rs1, imm)
}

// EncodeLI loads a full 32-bit constant into rd using LUI+ADDI.
func EncodeLI(rd uint8, value uint32) []uint32 {
	lo := signExtend(value&0xFFF, 12)
	hi := (value - uint32(lo)) >> 12
	if hi == 0 {
		return []uint32{EncodeADDI(rd, 0, lo)}
	}
	return []uint32{EncodeLUI(rd, hi), EncodeADDI(rd, rd, lo)}
}

// BuildProgram lays out instruction words as little-endian bytes.
func BuildProgram(words ...uint32) []byte {
	program := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(program[4*i:], w)
	}
	return program
}
