package ooo

import (
	"log/slog"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// issue decodes the latched word and allocates a reorder buffer entry and
// a station slot for it. The returned action tells fetch what to do this
// cycle.
func (e *Engine) issue() (fetchAction, uint32) {
	latch := e.front.Latch()
	if !latch.Valid {
		return fetchNext, 0
	}

	if e.rob.Full() {
		return e.stall(latch, "rob full")
	}

	if insts.IsHalt(latch.Word) {
		e.rob.Allocate(ROBEntry{Halt: true, Word: latch.Word, PC: latch.PC})
		e.front.SetHalting()
		e.logger.Debug("issue halt", slog.Uint64("cycle", e.cycle),
			slog.String("pc", hex(latch.PC)))
		return fetchStop, 0
	}

	inst := e.decoder.Decode(latch.Word)
	if inst.Op == insts.OpJAL {
		return e.issueJAL(inst, latch)
	}

	station := e.rs
	if inst.IsMemory() {
		station = e.lsb
	}
	if station.Full() {
		return e.stall(latch, station.Name()+" full")
	}

	entry := ROBEntry{
		Busy: true,
		Op:   inst.Op,
		Word: latch.Word,
		PC:   latch.PC,
		Rd:   inst.Rd,
	}

	if inst.IsBranch() {
		entry.PredTaken = e.predictor.Predict()
		entry.Target = emu.BranchTarget(latch.PC, inst.Imm)
		entry.Fallthrough = latch.PC + 4
	}

	src1 := Operand{Ready: true}
	if inst.UsesRs1() {
		src1 = e.resolve(inst.Rs1)
	}
	src2 := Operand{Ready: true}
	if inst.UsesRs2() {
		src2 = e.resolve(inst.Rs2)
	}

	id := e.rob.Allocate(entry)
	station.Insert(StationEntry{
		Op:   inst.Op,
		Src1: src1,
		Src2: src2,
		Imm:  inst.Imm,
		PC:   latch.PC,
		Dest: id,
	})

	if inst.WritesRd() {
		e.alias.Claim(inst.Rd, id)
	}

	e.logger.Debug("issue",
		slog.Uint64("cycle", e.cycle),
		slog.String("pc", hex(latch.PC)),
		slog.String("op", inst.Op.String()),
		slog.Int("rob", int(id)),
		slog.String("station", station.Name()),
	)

	switch {
	case inst.IsBranch() && entry.PredTaken:
		return fetchRedirect, entry.Target
	case inst.Op == insts.OpJALR:
		e.rob.SetBlocked(true)
		return fetchStop, 0
	}

	return fetchNext, 0
}

// issueJAL issues a JAL. Its link value is known at issue, so it takes no
// station slot and is ready to retire immediately.
func (e *Engine) issueJAL(inst *insts.Instruction, latch Latch) (fetchAction, uint32) {
	id := e.rob.Allocate(ROBEntry{
		Op:    inst.Op,
		Word:  latch.Word,
		PC:    latch.PC,
		Rd:    inst.Rd,
		Value: latch.PC + 4,
	})
	e.alias.Claim(inst.Rd, id)

	target := emu.BranchTarget(latch.PC, inst.Imm)
	e.logger.Debug("issue",
		slog.Uint64("cycle", e.cycle),
		slog.String("pc", hex(latch.PC)),
		slog.String("op", inst.Op.String()),
		slog.Int("rob", int(id)),
		slog.String("target", hex(target)),
	)

	return fetchRedirect, target
}

func (e *Engine) stall(latch Latch, reason string) (fetchAction, uint32) {
	e.stats.Stalls++
	e.logger.Debug("stall", slog.Uint64("cycle", e.cycle),
		slog.String("pc", hex(latch.PC)), slog.String("reason", reason))
	return fetchHold, 0
}

// resolve reads a source register through the alias table.
func (e *Engine) resolve(r uint8) Operand {
	if r == 0 {
		return Operand{Ready: true}
	}

	id, pending := e.alias.Lookup(r)
	if !pending {
		return Operand{Ready: true, Value: e.regs.Read(r)}
	}

	if producer := e.rob.Entry(id); !producer.Busy {
		return Operand{Ready: true, Value: producer.Value}
	}

	return Operand{Tag: id}
}
