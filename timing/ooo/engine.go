package ooo

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/latency"
)

// Stats holds performance statistics for the engine.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired, not counting the
	// halt sentinel.
	Instructions uint64
	// Stalls is the number of cycles issue was blocked by a full structure.
	Stalls uint64
	// Flushes is the number of misprediction flushes.
	Flushes uint64

	// BranchPredictions is the number of committed branches.
	BranchPredictions uint64
	// BranchCorrect is the number of correctly predicted branches.
	BranchCorrect uint64
	// BranchMispredictions is the number of mispredicted branches.
	BranchMispredictions uint64
}

// CPI returns cycles per retired instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// BranchAccuracy returns the prediction accuracy as a percentage.
func (s Stats) BranchAccuracy() float64 {
	if s.BranchPredictions == 0 {
		return 0
	}
	return float64(s.BranchCorrect) / float64(s.BranchPredictions) * 100
}

// Engine is a Tomasulo out-of-order RV32I core.
type Engine struct {
	memory  *emu.Memory
	decoder *insts.Decoder
	alu     *emu.ALU
	lsu     *emu.LoadStoreUnit
	latency *latency.Table

	regs      *RegisterFile
	alias     *AliasTable
	rob       *ReorderBuffer
	rs        *Station
	lsb       *Station
	cdb       *CDB
	predictor *BranchPredictor
	front     *FrontEnd

	logger     *slog.Logger
	commitHook func(CommitRecord)
	maxCycles  uint64 // 0 means no limit

	cycle         uint64
	stats         Stats
	haltCommitted bool
	halted        bool
	err           error
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLatencyTable sets the execute latencies.
func WithLatencyTable(table *latency.Table) Option {
	return func(e *Engine) {
		e.latency = table
	}
}

// WithLogger sets the logger that receives per-cycle debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCommitHook registers a function called for every retired
// instruction.
func WithCommitHook(hook func(CommitRecord)) Option {
	return func(e *Engine) {
		e.commitHook = hook
	}
}

// WithMaxCycles stops the engine with ErrMaxCycles after the given number
// of cycles. A value of 0 means no limit.
func WithMaxCycles(max uint64) Option {
	return func(e *Engine) {
		e.maxCycles = max
	}
}

// NewEngine creates an engine that executes the program in memory.
func NewEngine(memory *emu.Memory, opts ...Option) *Engine {
	e := &Engine{
		memory:  memory,
		decoder: insts.NewDecoder(),
		alu:     emu.NewALU(),
		lsu:     emu.NewLoadStoreUnit(memory),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.latency == nil {
		e.latency = latency.NewTable()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	e.Reset()

	return e
}

// Reset discards all core state and statistics. Memory is left untouched
// and the PC returns to 0.
func (e *Engine) Reset() {
	e.regs = NewRegisterFile()
	e.alias = NewAliasTable()
	e.rob = NewReorderBuffer()
	e.rs = NewStation("rs")
	e.lsb = NewStation("lsb")
	e.cdb = NewCDB(e.rs, e.lsb)
	e.predictor = NewBranchPredictor()
	e.front = NewFrontEnd()

	e.cycle = 0
	e.stats = Stats{}
	e.haltCommitted = false
	e.halted = false
	e.err = nil
}

func (e *Engine) sequentials() []Sequential {
	return []Sequential{
		e.regs, e.alias, e.rob, e.rs, e.lsb, e.predictor, e.front,
	}
}

func (e *Engine) flushables() []Flushable {
	return []Flushable{e.rob, e.rs, e.lsb, e.alias, e.front}
}

// SetPC sets the address of the first instruction.
func (e *Engine) SetPC(pc uint32) {
	e.regs.PresetPC(pc)
}

// SetReg sets the initial value of register r.
func (e *Engine) SetReg(r uint8, value uint32) {
	e.regs.Preset(r, value)
}

// Tick simulates one clock cycle. It returns false once the engine has
// halted.
func (e *Engine) Tick() bool {
	if e.halted {
		return false
	}

	e.front.SetFlushing(false)

	// Commit goes last; a flush must override the other stages' writes.
	action, target := e.issue()
	e.fetch(action, target)
	e.execute()
	err := e.commit()

	for _, s := range e.sequentials() {
		s.Advance()
	}

	e.cycle++
	e.stats.Cycles++

	switch {
	case err != nil:
		e.stop(err)
	case e.haltCommitted:
		e.halted = true
		e.logger.Debug("halt", slog.Uint64("cycle", e.cycle),
			slog.Uint64("exit", uint64(e.ExitValue())))
	case e.maxCycles > 0 && e.cycle >= e.maxCycles:
		e.stop(fmt.Errorf("%w: %d", ErrMaxCycles, e.maxCycles))
	}

	return true
}

func (e *Engine) stop(err error) {
	e.err = err
	e.halted = true
	e.logger.Error("engine stopped", slog.Uint64("cycle", e.cycle),
		slog.Any("err", err))
}

// RunCycles simulates up to the given number of cycles. It returns true if
// the engine is still running.
func (e *Engine) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !e.halted; i++ {
		e.Tick()
	}
	return !e.halted
}

// Run simulates until the halt sentinel commits and returns the exit
// value.
func (e *Engine) Run() (uint32, error) {
	for e.Tick() {
	}

	if e.err != nil {
		return 0, e.err
	}

	return e.ExitValue(), nil
}

// Halted returns true once the engine has stopped.
func (e *Engine) Halted() bool {
	return e.halted
}

// Err returns the error that stopped the engine, if any.
func (e *Engine) Err() error {
	return e.err
}

// ExitValue returns the program result: the low 8 bits of a0.
func (e *Engine) ExitValue() uint32 {
	return e.regs.Read(insts.ReturnValueReg) & 0xFF
}

// Cycle returns the number of cycles simulated.
func (e *Engine) Cycle() uint64 {
	return e.cycle
}

// PC returns the current fetch address.
func (e *Engine) PC() uint32 {
	return e.regs.PC()
}

// Reg returns architectural register r.
func (e *Engine) Reg(r uint8) uint32 {
	return e.regs.Read(r)
}

// Registers returns all architectural registers.
func (e *Engine) Registers() [32]uint32 {
	return e.regs.Snapshot()
}

// Memory returns the memory the engine executes from.
func (e *Engine) Memory() *emu.Memory {
	return e.memory
}

// ROBSize returns the number of live reorder buffer entries.
func (e *Engine) ROBSize() int {
	return e.rob.Size()
}

// RSSize returns the number of live reservation station entries.
func (e *Engine) RSSize() int {
	return e.rs.Size()
}

// LSBSize returns the number of live load-store buffer entries.
func (e *Engine) LSBSize() int {
	return e.lsb.Size()
}

// Flushing returns true in the cycle after a misprediction flush.
func (e *Engine) Flushing() bool {
	return e.front.Flushing()
}

// PredictorCounter returns the global branch predictor counter.
func (e *Engine) PredictorCounter() uint8 {
	return e.predictor.Counter()
}

// Stats returns performance statistics.
func (e *Engine) Stats() Stats {
	s := e.stats
	bp := e.predictor.Stats()
	s.BranchPredictions = bp.Predictions
	s.BranchCorrect = bp.Correct
	s.BranchMispredictions = bp.Mispredictions
	return s
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}
