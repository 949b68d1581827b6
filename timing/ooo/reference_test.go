package ooo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/latency"
	"github.com/sarchlab/rvsim/timing/ooo"
)

var fibonacci = []uint32{
	insts.EncodeADDI(5, 0, 0),
	insts.EncodeADDI(6, 0, 1),
	insts.EncodeADDI(7, 0, 10),
	insts.EncodeOp(insts.OpADD, 8, 5, 6),
	insts.EncodeADDI(5, 6, 0),
	insts.EncodeADDI(6, 8, 0),
	insts.EncodeADDI(7, 7, -1),
	insts.EncodeBranch(insts.OpBNE, 7, 0, -16),
	insts.EncodeADDI(10, 5, 0),
	insts.HaltWord,
}

var storeThenSum = []uint32{
	insts.EncodeLUI(5, 1),
	insts.EncodeADDI(6, 0, 4),
	insts.EncodeADDI(7, 0, 10),
	insts.EncodeStore(insts.OpSW, 7, 5, 0),
	insts.EncodeADDI(7, 7, 10),
	insts.EncodeADDI(5, 5, 4),
	insts.EncodeADDI(6, 6, -1),
	insts.EncodeBranch(insts.OpBNE, 6, 0, -16),
	insts.EncodeLUI(5, 1),
	insts.EncodeADDI(6, 0, 4),
	insts.EncodeADDI(10, 0, 0),
	insts.EncodeLoad(insts.OpLW, 8, 5, 0),
	insts.EncodeOp(insts.OpADD, 10, 10, 8),
	insts.EncodeADDI(5, 5, 4),
	insts.EncodeADDI(6, 6, -1),
	insts.EncodeBranch(insts.OpBNE, 6, 0, -16),
	insts.HaltWord,
}

var signedCountUp = []uint32{
	insts.EncodeADDI(5, 0, -5),
	insts.EncodeADDI(10, 0, 0),
	insts.EncodeADDI(10, 10, 2),
	insts.EncodeADDI(5, 5, 1),
	insts.EncodeBranch(insts.OpBLT, 5, 0, -8),
	insts.HaltWord,
}

var halfwordsAndShifts = []uint32{
	insts.EncodeLUI(5, 2),
	insts.EncodeADDI(6, 0, -128),
	insts.EncodeStore(insts.OpSH, 6, 5, 0),
	insts.EncodeLoad(insts.OpLH, 7, 5, 0),
	insts.EncodeLoad(insts.OpLHU, 8, 5, 0),
	insts.EncodeOpImm(insts.OpSRAI, 9, 7, 4),
	insts.EncodeOpImm(insts.OpSRLI, 11, 8, 4),
	insts.EncodeOp(insts.OpXOR, 10, 9, 11),
	insts.EncodeOp(insts.OpSLTU, 12, 11, 9),
	insts.EncodeOp(insts.OpADD, 10, 10, 12),
	insts.EncodeAUIPC(13, 3),
	insts.EncodeOp(insts.OpSLT, 14, 7, 0),
	insts.EncodeOpImm(insts.OpSLTIU, 15, 8, -1),
	insts.EncodeOpImm(insts.OpANDI, 16, 6, 0x0F0),
	insts.EncodeOpImm(insts.OpORI, 17, 16, 0x00F),
	insts.EncodeOp(insts.OpSRA, 18, 7, 12),
	insts.EncodeOp(insts.OpSLL, 19, 12, 15),
	insts.EncodeADDI(10, 10, 41),
	insts.HaltWord,
}

// outer calls a doubling leaf twice and spills ra to the stack.
var nestedCalls = []uint32{
	insts.EncodeLUI(2, 4),
	insts.EncodeADDI(10, 0, 3),
	insts.EncodeJAL(1, 12),
	insts.EncodeADDI(10, 10, 1),
	insts.HaltWord,
	// outer: save ra, call inner twice, restore ra
	insts.EncodeADDI(2, 2, -4),
	insts.EncodeStore(insts.OpSW, 1, 2, 0),
	insts.EncodeJAL(1, 20),
	insts.EncodeJAL(1, 16),
	insts.EncodeLoad(insts.OpLW, 1, 2, 0),
	insts.EncodeADDI(2, 2, 4),
	insts.EncodeJALR(0, 1, 0),
	// inner
	insts.EncodeOp(insts.OpADD, 10, 10, 10),
	insts.EncodeJALR(0, 1, 0),
}

func runReference(words []uint32) *emu.Emulator {
	e := emu.NewEmulator(emu.WithMaxInstructions(100000))
	e.LoadProgram(0, insts.BuildProgram(words...))
	_, err := e.Run()
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("Engine against the reference emulator", func() {
	tables := map[string]*latency.Table{
		"default": latency.NewTable(),
		"slow memory": slowTable(func(c *latency.TimingConfig) {
			c.LoadLatency = 9
			c.StoreLatency = 7
		}),
		"slow alu": slowTable(func(c *latency.TimingConfig) {
			c.ALULatency = 4
			c.BranchLatency = 3
			c.JumpLatency = 2
		}),
	}

	DescribeTable("architectural state after halt",
		func(words []uint32, expected uint32) {
			ref := runReference(words)
			Expect(ref.ExitValue()).To(Equal(expected))

			for name, table := range tables {
				memory := program(words...)
				e := ooo.NewEngine(memory, ooo.WithLatencyTable(table), ooo.WithMaxCycles(100000))

				result, err := e.Run()

				Expect(err).NotTo(HaveOccurred(), name)
				Expect(result).To(Equal(expected), name)
				Expect(e.Registers()).To(Equal(ref.RegFile().X), name)
				Expect(e.Stats().Instructions).To(Equal(ref.InstructionCount()), name)
				Expect(memory.Read32(0x1000)).To(Equal(ref.Memory().Read32(0x1000)), name)
			}
		},
		Entry("fibonacci", fibonacci, uint32(55)),
		Entry("store then sum", storeThenSum, uint32(100)),
		Entry("signed count up", signedCountUp, uint32(10)),
		Entry("halfwords and shifts", halfwordsAndShifts, uint32(42)),
		Entry("nested calls", nestedCalls, uint32(13)),
	)
})
