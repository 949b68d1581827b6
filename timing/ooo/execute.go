package ooo

import (
	"log/slog"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// execute advances every ready entry of the reservation station and the
// load-store buffer, firing those that have completed their latency.
func (e *Engine) execute() {
	e.executeStation(e.rs, false)
	e.executeStation(e.lsb, true)
}

func (e *Engine) executeStation(s *Station, memory bool) {
	for i := 0; i < StationCapacity; i++ {
		entry := s.Entry(i)
		if !entry.Ready() {
			continue
		}

		if memory && !e.memoryOrdered(entry) {
			continue
		}

		if s.Elapse(i) < e.latency.GetLatency(entry.Op) {
			continue
		}

		s.Release(i)
		e.fire(entry)
	}
}

// fire computes the result of entry, writes it to the reorder buffer and
// broadcasts it.
func (e *Engine) fire(entry StationEntry) {
	rs1, rs2 := entry.Src1.Value, entry.Src2.Value

	result, err := e.alu.Compute(entry.Op, rs1, rs2, entry.Imm, entry.PC)
	if err != nil {
		word := e.rob.Entry(entry.Dest).Word
		e.rob.Fail(entry.Dest, &ExecError{Op: entry.Op, Word: word, PC: entry.PC})
		e.logger.Debug("fault", slog.Uint64("cycle", e.cycle),
			slog.String("pc", hex(entry.PC)), slog.Int("rob", int(entry.Dest)))
		return
	}

	switch {
	case e.latency.IsLoadOp(entry.Op):
		value := e.lsu.Load(entry.Op, result)
		e.rob.Complete(entry.Dest, value, result)
		e.cdb.Broadcast(entry.Dest, value)
	case e.latency.IsStoreOp(entry.Op):
		e.rob.Complete(entry.Dest, rs2, result)
	case e.latency.IsBranchOp(entry.Op):
		e.rob.Complete(entry.Dest, result, 0)
	case entry.Op == insts.OpJALR:
		e.rob.Complete(entry.Dest, result, emu.JumpRegTarget(rs1, entry.Imm))
		e.cdb.Broadcast(entry.Dest, result)
	default:
		e.rob.Complete(entry.Dest, result, 0)
		e.cdb.Broadcast(entry.Dest, result)
	}

	e.logger.Debug("execute",
		slog.Uint64("cycle", e.cycle),
		slog.String("pc", hex(entry.PC)),
		slog.String("op", entry.Op.String()),
		slog.Int("rob", int(entry.Dest)),
		slog.String("result", hex(result)),
	)
}

// memoryOrdered reports whether a ready load or store may execute. A load
// waits for every older store to resolve its address and for older
// overlapping stores to commit, since memory is written only at commit. A
// store waits for every older memory operation to resolve.
func (e *Engine) memoryOrdered(entry StationEntry) bool {
	load := e.latency.IsLoadOp(entry.Op)
	addr := emu.EffectiveAddress(entry.Src1.Value, entry.Imm)
	width := entry.Op.MemWidth()

	ordered := true
	e.rob.Older(entry.Dest, func(older ROBEntry) bool {
		switch {
		case e.latency.IsStoreOp(older.Op):
			if older.Busy {
				ordered = false
			} else if load && emu.Overlaps(addr, width, older.Addr, older.Op.MemWidth()) {
				ordered = false
			}
		case e.latency.IsLoadOp(older.Op):
			if !load && older.Busy {
				ordered = false
			}
		}
		return ordered
	})

	return ordered
}
