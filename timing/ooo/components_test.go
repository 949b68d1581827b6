package ooo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/ooo"
)

var _ = Describe("RegisterFile", func() {
	var regs *ooo.RegisterFile

	BeforeEach(func() {
		regs = ooo.NewRegisterFile()
	})

	It("should not expose a write until the clock edge", func() {
		regs.Write(5, 42)
		Expect(regs.Read(5)).To(BeZero())

		regs.Advance()
		Expect(regs.Read(5)).To(Equal(uint32(42)))
	})

	It("should carry unwritten registers forward", func() {
		regs.Write(1, 7)
		regs.Advance()
		regs.Write(2, 8)
		regs.Advance()

		Expect(regs.Read(1)).To(Equal(uint32(7)))
		Expect(regs.Read(2)).To(Equal(uint32(8)))
	})

	It("should keep x0 at zero", func() {
		regs.Write(0, 99)
		regs.Preset(0, 99)
		regs.Advance()
		Expect(regs.Read(0)).To(BeZero())
	})

	It("should preset the PC in both snapshots", func() {
		regs.PresetPC(0x100)
		Expect(regs.PC()).To(Equal(uint32(0x100)))
		regs.Advance()
		Expect(regs.PC()).To(Equal(uint32(0x100)))
	})
})

var _ = Describe("AliasTable", func() {
	var table *ooo.AliasTable

	BeforeEach(func() {
		table = ooo.NewAliasTable()
	})

	It("should start with every register resolved", func() {
		_, pending := table.Lookup(3)
		Expect(pending).To(BeFalse())
	})

	It("should expose a claim after the clock edge", func() {
		table.Claim(3, 7)
		_, pending := table.Lookup(3)
		Expect(pending).To(BeFalse())

		table.Advance()
		id, pending := table.Lookup(3)
		Expect(pending).To(BeTrue())
		Expect(id).To(Equal(ooo.RobID(7)))
	})

	It("should not release a register claimed by a younger producer", func() {
		table.Claim(3, 7)
		table.Advance()
		table.Claim(3, 9)
		table.Release(3, 7)
		table.Advance()

		id, pending := table.Lookup(3)
		Expect(pending).To(BeTrue())
		Expect(id).To(Equal(ooo.RobID(9)))
	})

	It("should release a register still owned by the producer", func() {
		table.Claim(3, 7)
		table.Advance()
		table.Release(3, 7)
		table.Advance()

		_, pending := table.Lookup(3)
		Expect(pending).To(BeFalse())
	})

	It("should never alias x0", func() {
		table.Claim(0, 1)
		table.Advance()
		_, pending := table.Lookup(0)
		Expect(pending).To(BeFalse())
	})

	It("should drop every claim on clear", func() {
		table.Claim(3, 7)
		table.Claim(4, 8)
		table.Advance()
		table.Clear()
		table.Advance()

		_, pending3 := table.Lookup(3)
		_, pending4 := table.Lookup(4)
		Expect(pending3).To(BeFalse())
		Expect(pending4).To(BeFalse())
	})
})

var _ = Describe("ReorderBuffer", func() {
	var rob *ooo.ReorderBuffer

	BeforeEach(func() {
		rob = ooo.NewReorderBuffer()
	})

	It("should allocate at the tail in issue order", func() {
		a := rob.Allocate(ooo.ROBEntry{Busy: true, PC: 0})
		rob.Advance()
		b := rob.Allocate(ooo.ROBEntry{Busy: true, PC: 4})
		rob.Advance()

		Expect(a).To(Equal(ooo.RobID(0)))
		Expect(b).To(Equal(ooo.RobID(1)))
		Expect(rob.Entry(a).Seq).To(BeNumerically("<", rob.Entry(b).Seq))
		Expect(rob.Size()).To(Equal(2))
	})

	It("should not retire a busy head", func() {
		rob.Allocate(ooo.ROBEntry{Busy: true})
		rob.Advance()

		_, _, ok := rob.Head()
		Expect(ok).To(BeFalse())
	})

	It("should retire a completed head", func() {
		id := rob.Allocate(ooo.ROBEntry{Busy: true, Op: insts.OpADDI})
		rob.Advance()
		rob.Complete(id, 5, 0)
		rob.Advance()

		headID, head, ok := rob.Head()
		Expect(ok).To(BeTrue())
		Expect(headID).To(Equal(id))
		Expect(head.Value).To(Equal(uint32(5)))

		rob.Retire()
		rob.Advance()
		Expect(rob.Size()).To(BeZero())
	})

	It("should become full at capacity and wrap around", func() {
		for i := 0; i < ooo.ROBCapacity; i++ {
			Expect(rob.Full()).To(BeFalse())
			rob.Allocate(ooo.ROBEntry{})
			rob.Advance()
		}
		Expect(rob.Full()).To(BeTrue())

		rob.Retire()
		rob.Advance()
		Expect(rob.Full()).To(BeFalse())

		id := rob.Allocate(ooo.ROBEntry{})
		rob.Advance()
		Expect(id).To(Equal(ooo.RobID(0)))
		Expect(rob.Entry(id).Seq).To(Equal(uint64(ooo.ROBCapacity)))
	})

	It("should visit older entries oldest first", func() {
		var ids []ooo.RobID
		for i := 0; i < 4; i++ {
			ids = append(ids, rob.Allocate(ooo.ROBEntry{PC: uint32(4 * i)}))
			rob.Advance()
		}

		var pcs []uint32
		rob.Older(ids[3], func(e ooo.ROBEntry) bool {
			pcs = append(pcs, e.PC)
			return true
		})
		Expect(pcs).To(Equal([]uint32{0, 4, 8}))

		pcs = nil
		rob.Older(ids[3], func(e ooo.ROBEntry) bool {
			pcs = append(pcs, e.PC)
			return false
		})
		Expect(pcs).To(Equal([]uint32{0}))
	})

	It("should keep numbering sequences across a clear", func() {
		rob.Allocate(ooo.ROBEntry{})
		rob.SetBlocked(true)
		rob.Advance()
		rob.Clear()
		rob.Advance()

		Expect(rob.Size()).To(BeZero())
		Expect(rob.Blocked()).To(BeFalse())

		id := rob.Allocate(ooo.ROBEntry{})
		rob.Advance()
		Expect(rob.Entry(id).Seq).To(Equal(uint64(1)))
	})
})

var _ = Describe("Station", func() {
	var station *ooo.Station

	BeforeEach(func() {
		station = ooo.NewStation("rs")
	})

	It("should hold at most StationCapacity entries", func() {
		for i := 0; i < ooo.StationCapacity; i++ {
			Expect(station.Insert(ooo.StationEntry{})).To(Equal(i))
		}
		Expect(station.Insert(ooo.StationEntry{})).To(Equal(-1))

		station.Advance()
		Expect(station.Size()).To(Equal(ooo.StationCapacity))
		Expect(station.Full()).To(BeTrue())
	})

	It("should resolve waiting operands on wakeup at the next edge", func() {
		i := station.Insert(ooo.StationEntry{
			Src1: ooo.Operand{Tag: 4},
			Src2: ooo.Operand{Ready: true, Value: 1},
		})
		station.Advance()
		Expect(station.Entry(i).Ready()).To(BeFalse())

		station.Wakeup(3, 100)
		station.Advance()
		Expect(station.Entry(i).Ready()).To(BeFalse())

		station.Wakeup(4, 200)
		Expect(station.Entry(i).Ready()).To(BeFalse())
		station.Advance()

		entry := station.Entry(i)
		Expect(entry.Ready()).To(BeTrue())
		Expect(entry.Src1.Value).To(Equal(uint32(200)))
		Expect(entry.Src2.Value).To(Equal(uint32(1)))
	})

	It("should ignore wakeups for entries issued this cycle", func() {
		i := station.Insert(ooo.StationEntry{Src1: ooo.Operand{Tag: 4}, Src2: ooo.Operand{Ready: true}})
		station.Wakeup(4, 200)
		station.Advance()

		Expect(station.Entry(i).Ready()).To(BeFalse())
	})

	It("should count elapsed cycles and free released slots", func() {
		i := station.Insert(ooo.StationEntry{Src1: ooo.Operand{Ready: true}, Src2: ooo.Operand{Ready: true}})
		station.Advance()

		Expect(station.Elapse(i)).To(Equal(uint64(1)))
		station.Advance()
		Expect(station.Elapse(i)).To(Equal(uint64(2)))

		station.Release(i)
		station.Advance()
		Expect(station.Size()).To(BeZero())
		Expect(station.Entry(i).Busy).To(BeFalse())
	})

	It("should drop everything on clear", func() {
		station.Insert(ooo.StationEntry{})
		station.Insert(ooo.StationEntry{})
		station.Advance()
		station.Clear()
		station.Advance()

		Expect(station.Size()).To(BeZero())
	})
})

type broadcast struct {
	id    ooo.RobID
	value uint32
}

type recordingListener struct {
	got []broadcast
}

func (l *recordingListener) Wakeup(id ooo.RobID, value uint32) {
	l.got = append(l.got, broadcast{id: id, value: value})
}

var _ = Describe("CDB", func() {
	It("should deliver every broadcast to every listener in order", func() {
		a, b := &recordingListener{}, &recordingListener{}
		bus := ooo.NewCDB(a, b)

		bus.Broadcast(2, 20)
		bus.Broadcast(3, 30)

		Expect(a.got).To(Equal([]broadcast{{id: 2, value: 20}, {id: 3, value: 30}}))
		Expect(b.got).To(Equal(a.got))
	})

	It("should wake a waiting station operand", func() {
		rs := ooo.NewStation("rs")
		bus := ooo.NewCDB(rs)

		i := rs.Insert(ooo.StationEntry{
			Src1: ooo.Operand{Tag: 7},
			Src2: ooo.Operand{Ready: true},
		})
		rs.Advance()

		bus.Broadcast(7, 42)
		rs.Advance()

		Expect(rs.Entry(i).Ready()).To(BeTrue())
		Expect(rs.Entry(i).Src1.Value).To(Equal(uint32(42)))
	})
})

var _ = Describe("BranchPredictor", func() {
	var bp *ooo.BranchPredictor

	BeforeEach(func() {
		bp = ooo.NewBranchPredictor()
	})

	It("should start predicting not taken", func() {
		Expect(bp.Predict()).To(BeFalse())
		Expect(bp.Counter()).To(BeZero())
	})

	It("should saturate at both ends", func() {
		for i := 0; i < 5; i++ {
			bp.Taken()
			bp.Advance()
		}
		Expect(bp.Counter()).To(Equal(uint8(3)))
		Expect(bp.Predict()).To(BeTrue())

		for i := 0; i < 5; i++ {
			bp.Untaken()
			bp.Advance()
		}
		Expect(bp.Counter()).To(BeZero())
	})

	It("should predict from the top bit", func() {
		bp.Taken()
		bp.Advance()
		Expect(bp.Predict()).To(BeFalse())

		bp.Taken()
		bp.Advance()
		Expect(bp.Predict()).To(BeTrue())
	})

	It("should not change the prediction before the clock edge", func() {
		bp.Taken()
		bp.Taken()
		Expect(bp.Predict()).To(BeFalse())
	})

	It("should move toward not taken on a misprediction", func() {
		bp.Taken()
		bp.Taken()
		bp.Advance()

		Expect(bp.Update(true, false)).To(BeTrue())
		bp.Advance()
		Expect(bp.Counter()).To(Equal(uint8(1)))

		Expect(bp.Update(false, true)).To(BeTrue())
		bp.Advance()
		Expect(bp.Counter()).To(BeZero())

		Expect(bp.Update(false, true)).To(BeTrue())
		bp.Advance()
		Expect(bp.Counter()).To(BeZero())
	})

	It("should move toward taken on a correct not-taken prediction", func() {
		Expect(bp.Update(false, false)).To(BeFalse())
		bp.Advance()
		Expect(bp.Counter()).To(Equal(uint8(1)))
		Expect(bp.Predict()).To(BeFalse())

		Expect(bp.Update(false, false)).To(BeFalse())
		bp.Advance()
		Expect(bp.Predict()).To(BeTrue())
	})

	It("should count correct predictions and mispredictions", func() {
		Expect(bp.Update(false, true)).To(BeTrue())
		bp.Advance()
		Expect(bp.Update(false, false)).To(BeFalse())
		bp.Advance()

		Expect(bp.Counter()).To(Equal(uint8(1)))
		stats := bp.Stats()
		Expect(stats.Predictions).To(Equal(uint64(2)))
		Expect(stats.Correct).To(Equal(uint64(1)))
		Expect(stats.Mispredictions).To(Equal(uint64(1)))
		Expect(stats.Accuracy()).To(BeNumerically("~", 50.0))
		Expect(stats.MispredictionRate()).To(BeNumerically("~", 50.0))
	})
})

var _ = Describe("FrontEnd", func() {
	It("should latch a word for the next cycle", func() {
		front := ooo.NewFrontEnd()
		front.SetLatch(ooo.Latch{Valid: true, Word: 0x13, PC: 8})
		Expect(front.Latch().Valid).To(BeFalse())

		front.Advance()
		Expect(front.Latch()).To(Equal(ooo.Latch{Valid: true, Word: 0x13, PC: 8}))
	})

	It("should drop the latch and the halt flag on clear", func() {
		front := ooo.NewFrontEnd()
		front.SetLatch(ooo.Latch{Valid: true})
		front.SetHalting()
		front.Advance()
		Expect(front.Halting()).To(BeTrue())

		front.Clear()
		front.SetFlushing(true)
		front.Advance()

		Expect(front.Latch().Valid).To(BeFalse())
		Expect(front.Halting()).To(BeFalse())
		Expect(front.Flushing()).To(BeTrue())
	})
})
