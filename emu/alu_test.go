package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("ALU", func() {
	var alu *emu.ALU

	BeforeEach(func() {
		alu = emu.NewALU()
	})

	DescribeTable("Compute",
		func(op insts.Op, rs1, rs2 uint32, imm int32, pc, expected uint32) {
			result, err := alu.Compute(op, rs1, rs2, imm, pc)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(expected))
		},
		Entry("LUI", insts.OpLUI, uint32(0), uint32(0), int32(0x12345000), uint32(0), uint32(0x12345000)),
		Entry("AUIPC", insts.OpAUIPC, uint32(0), uint32(0), int32(0x1000), uint32(0x200), uint32(0x1200)),
		Entry("JAL link", insts.OpJAL, uint32(0), uint32(0), int32(64), uint32(0x100), uint32(0x104)),
		Entry("JALR link", insts.OpJALR, uint32(0x500), uint32(0), int32(0), uint32(0x100), uint32(0x104)),
		Entry("load address", insts.OpLW, uint32(0x1000), uint32(0), int32(-4), uint32(0), uint32(0xFFC)),
		Entry("store address", insts.OpSB, uint32(0x1000), uint32(99), int32(3), uint32(0), uint32(0x1003)),
		Entry("ADDI", insts.OpADDI, uint32(5), uint32(0), int32(3), uint32(0), uint32(8)),
		Entry("ADDI negative", insts.OpADDI, uint32(5), uint32(0), int32(-6), uint32(0), uint32(0xFFFFFFFF)),
		Entry("SLTI true", insts.OpSLTI, uint32(0xFFFFFFFF), uint32(0), int32(0), uint32(0), uint32(1)),
		Entry("SLTIU compares unsigned", insts.OpSLTIU, uint32(5), uint32(0), int32(-1), uint32(0), uint32(1)),
		Entry("XORI", insts.OpXORI, uint32(0xF0), uint32(0), int32(0xFF), uint32(0), uint32(0x0F)),
		Entry("ORI", insts.OpORI, uint32(0xF0), uint32(0), int32(0x0F), uint32(0), uint32(0xFF)),
		Entry("ANDI sign-extends", insts.OpANDI, uint32(0x12345678), uint32(0), int32(-256), uint32(0), uint32(0x12345600)),
		Entry("SLLI", insts.OpSLLI, uint32(1), uint32(0), int32(31), uint32(0), uint32(0x80000000)),
		Entry("SRLI", insts.OpSRLI, uint32(0x80000000), uint32(0), int32(31), uint32(0), uint32(1)),
		Entry("SRAI keeps sign", insts.OpSRAI, uint32(0x80000000), uint32(0), int32(4), uint32(0), uint32(0xF8000000)),
		Entry("SRAI by zero", insts.OpSRAI, uint32(0x80000001), uint32(0), int32(0), uint32(0), uint32(0x80000001)),
		Entry("ADD wraps", insts.OpADD, uint32(0xFFFFFFFF), uint32(2), int32(0), uint32(0), uint32(1)),
		Entry("SUB", insts.OpSUB, uint32(3), uint32(5), int32(0), uint32(0), uint32(0xFFFFFFFE)),
		Entry("SLL masks shift", insts.OpSLL, uint32(1), uint32(33), int32(0), uint32(0), uint32(2)),
		Entry("SLT", insts.OpSLT, uint32(0x80000000), uint32(1), int32(0), uint32(0), uint32(1)),
		Entry("SLTU", insts.OpSLTU, uint32(0x80000000), uint32(1), int32(0), uint32(0), uint32(0)),
		Entry("XOR", insts.OpXOR, uint32(0xFF00), uint32(0x0FF0), int32(0), uint32(0), uint32(0xF0F0)),
		Entry("SRL", insts.OpSRL, uint32(0xF0000000), uint32(4), int32(0), uint32(0), uint32(0x0F000000)),
		Entry("SRA", insts.OpSRA, uint32(0xF0000000), uint32(36), int32(0), uint32(0), uint32(0xFF000000)),
		Entry("OR", insts.OpOR, uint32(0x1), uint32(0x2), int32(0), uint32(0), uint32(0x3)),
		Entry("AND", insts.OpAND, uint32(0x6), uint32(0x3), int32(0), uint32(0), uint32(0x2)),
		Entry("BEQ taken", insts.OpBEQ, uint32(4), uint32(4), int32(8), uint32(0), uint32(1)),
		Entry("BNE not taken", insts.OpBNE, uint32(4), uint32(4), int32(8), uint32(0), uint32(0)),
		Entry("BLT signed", insts.OpBLT, uint32(0xFFFFFFFF), uint32(0), int32(8), uint32(0), uint32(1)),
		Entry("BGE signed", insts.OpBGE, uint32(0xFFFFFFFF), uint32(0), int32(8), uint32(0), uint32(0)),
		Entry("BLTU unsigned", insts.OpBLTU, uint32(0xFFFFFFFF), uint32(0), int32(8), uint32(0), uint32(0)),
		Entry("BGEU unsigned", insts.OpBGEU, uint32(0xFFFFFFFF), uint32(0), int32(8), uint32(0), uint32(1)),
	)

	It("should reject an unknown operation", func() {
		_, err := alu.Compute(insts.OpUnknown, 0, 0, 0, 0x40)
		Expect(err).To(MatchError(emu.ErrUnsupportedOp))
	})

	It("should clear bit 0 of a register jump target", func() {
		Expect(emu.JumpRegTarget(0x1001, 2)).To(Equal(uint32(0x1002)))
		Expect(emu.JumpRegTarget(0x1000, -1)).To(Equal(uint32(0x0FFE)))
	})
})
