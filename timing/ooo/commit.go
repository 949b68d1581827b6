package ooo

import (
	"log/slog"

	"github.com/sarchlab/rvsim/insts"
)

// CommitRecord describes a retired instruction.
type CommitRecord struct {
	Cycle uint64
	Seq   uint64
	ID    RobID
	PC    uint32
	Op    insts.Op
	Rd    uint8
	Value uint32
	Addr  uint32

	// Mispredicted is set on a branch whose predicted direction was wrong.
	Mispredicted bool
}

// commit retires the head of the reorder buffer if it has completed. It
// runs last in a cycle so that a flush overrides every other write to the
// next snapshot.
func (e *Engine) commit() error {
	id, head, ok := e.rob.Head()
	if !ok {
		return nil
	}

	if head.Fault != nil {
		return head.Fault
	}

	e.rob.Retire()

	if head.Halt {
		e.haltCommitted = true
		e.logger.Debug("commit halt", slog.Uint64("cycle", e.cycle),
			slog.Uint64("seq", head.Seq))
		return nil
	}

	e.stats.Instructions++
	record := CommitRecord{
		Cycle: e.cycle,
		Seq:   head.Seq,
		ID:    id,
		PC:    head.PC,
		Op:    head.Op,
		Rd:    head.Rd,
		Value: head.Value,
		Addr:  head.Addr,
	}

	switch {
	case e.latency.IsBranchOp(head.Op):
		taken := head.Value != 0
		if e.predictor.Update(head.PredTaken, taken) {
			record.Mispredicted = true
			target := head.Fallthrough
			if taken {
				target = head.Target
			}
			e.flush(target)
		}
	case e.latency.IsStoreOp(head.Op):
		e.lsu.Store(head.Op, head.Addr, head.Value)
	default:
		e.writeBack(id, head)
		if head.Op == insts.OpJALR {
			e.regs.SetPC(head.Addr)
			e.rob.SetBlocked(false)
		}
	}

	e.logger.Debug("commit",
		slog.Uint64("cycle", e.cycle),
		slog.Uint64("seq", head.Seq),
		slog.String("pc", hex(head.PC)),
		slog.String("op", head.Op.String()),
		slog.String("value", hex(head.Value)),
	)

	if e.commitHook != nil {
		e.commitHook(record)
	}

	return nil
}

// writeBack updates the architectural register and wakes any consumer
// that missed the execute broadcast.
func (e *Engine) writeBack(id RobID, head ROBEntry) {
	e.regs.Write(head.Rd, head.Value)
	e.alias.Release(head.Rd, id)
	e.cdb.Broadcast(id, head.Value)
}

// flush discards every in-flight instruction and restarts fetch at target.
func (e *Engine) flush(target uint32) {
	for _, c := range e.flushables() {
		c.Clear()
	}

	e.regs.SetPC(target)
	e.front.SetFlushing(true)
	e.stats.Flushes++

	e.logger.Debug("flush", slog.Uint64("cycle", e.cycle),
		slog.String("target", hex(target)))
}
