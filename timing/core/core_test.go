package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/ooo"
)

type commitRecorder struct {
	records []ooo.CommitRecord
}

func (r *commitRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosCommit {
		return
	}
	r.records = append(r.records, ctx.Item.(ooo.CommitRecord))
}

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		memory *emu.Memory
		c      *core.Core
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		memory = emu.NewMemory()
		c = core.NewCore("Core", engine, 1*sim.GHz, memory)
	})

	It("should create a core with an engine", func() {
		Expect(c).NotTo(BeNil())
		Expect(c.OOO).NotTo(BeNil())
		Expect(c.Name()).To(Equal("Core"))
		Expect(c.Memory()).To(BeIdenticalTo(memory))
	})

	It("should set and get PC", func() {
		c.SetPC(0x1000)
		Expect(c.OOO.PC()).To(Equal(uint32(0x1000)))
	})

	It("should not be halted initially", func() {
		Expect(c.Halted()).To(BeFalse())
	})

	It("should execute instructions through tick", func() {
		memory.LoadProgram(0x1000, insts.BuildProgram(
			insts.EncodeADDI(1, 0, 42),
			insts.HaltWord,
		))
		c.SetPC(0x1000)

		for i := 0; i < 10; i++ {
			c.Tick()
		}

		Expect(c.OOO.Reg(1)).To(Equal(uint32(42)))
		Expect(c.Halted()).To(BeTrue())
	})

	It("should run on the akita engine until halt", func() {
		memory.LoadProgram(0, insts.BuildProgram(
			insts.EncodeADDI(10, 0, 5),
			insts.EncodeADDI(10, 10, 3),
			insts.HaltWord,
		))

		result, err := c.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(uint32(8)))
		Expect(c.Halted()).To(BeTrue())
		Expect(engine.CurrentTime()).To(BeNumerically(">", 0))
	})

	It("should publish commits through the commit hook", func() {
		recorder := &commitRecorder{}
		c.AcceptHook(recorder)
		memory.LoadProgram(0, insts.BuildProgram(
			insts.EncodeADDI(5, 0, 1),
			insts.EncodeADDI(6, 5, 1),
			insts.EncodeOp(insts.OpADD, 10, 5, 6),
			insts.HaltWord,
		))

		result, err := c.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(uint32(3)))
		Expect(recorder.records).To(HaveLen(3))
		Expect(recorder.records[0].PC).To(Equal(uint32(0)))
		Expect(recorder.records[2].Op).To(Equal(insts.OpADD))
		Expect(recorder.records[2].Value).To(Equal(uint32(3)))
	})

	It("should report an execution error from Run", func() {
		memory.LoadProgram(0, insts.BuildProgram(0x00000073, insts.HaltWord))

		_, err := c.Run()

		Expect(err).To(MatchError(ooo.ErrUnknownOpcode))
	})

	It("should run for specified cycles and return running status", func() {
		memory.LoadProgram(0x1000, insts.BuildProgram(
			insts.EncodeJAL(0, 0),
		))
		c.SetPC(0x1000)

		running := c.RunCycles(5)

		Expect(running).To(BeTrue())
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Stats().Cycles).To(Equal(uint64(5)))
	})

	It("should stop running cycles when halted", func() {
		memory.LoadProgram(0x1000, insts.BuildProgram(insts.HaltWord))
		c.SetPC(0x1000)

		running := c.RunCycles(100)

		Expect(running).To(BeFalse())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.ExitValue()).To(BeZero())
	})

	It("should reset core state", func() {
		memory.LoadProgram(0x1000, insts.BuildProgram(
			insts.EncodeADDI(1, 0, 1),
			insts.HaltWord,
		))
		c.SetPC(0x1000)
		for i := 0; i < 10; i++ {
			c.Tick()
		}

		Expect(c.Stats().Cycles).To(BeNumerically(">", 0))

		c.Reset()

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(0)))
		Expect(stats.Instructions).To(Equal(uint64(0)))
		Expect(c.Halted()).To(BeFalse())
	})
})
