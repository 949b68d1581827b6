// Package core provides the cycle-accurate CPU core model as an akita
// component. It wraps the out-of-order engine so that it can be driven by
// an akita simulation engine and observed through akita hooks.
package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/ooo"
)

// HookPosCommit marks a retired instruction. The hook item is an
// ooo.CommitRecord.
var HookPosCommit = &sim.HookPos{Name: "Commit"}

// Stats holds performance statistics for the core.
type Stats = ooo.Stats

// Core represents a cycle-accurate CPU core model.
type Core struct {
	*sim.TickingComponent

	// OOO is the underlying out-of-order engine.
	OOO *ooo.Engine

	simEngine sim.Engine
	memory    *emu.Memory
}

// NewCore creates a core named name that ticks at freq on engine and
// executes from memory.
func NewCore(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	memory *emu.Memory,
	opts ...ooo.Option,
) *Core {
	c := &Core{simEngine: engine, memory: memory}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	opts = append(opts, ooo.WithCommitHook(c.publishCommit))
	c.OOO = ooo.NewEngine(memory, opts...)

	return c
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint32) {
	c.OOO.SetPC(pc)
}

// Tick executes one cycle. It returns false once the core has halted,
// which stops akita from scheduling further ticks.
func (c *Core) Tick() bool {
	return c.OOO.Tick()
}

// Start schedules the first tick.
func (c *Core) Start() {
	c.TickLater()
}

// Run ticks the core on the akita engine until it halts and returns the
// exit value.
func (c *Core) Run() (uint32, error) {
	c.Start()

	if err := c.simEngine.Run(); err != nil {
		return 0, fmt.Errorf("failed to run simulation: %w", err)
	}

	if err := c.Err(); err != nil {
		return 0, err
	}

	return c.ExitValue(), nil
}

// Halted returns true once the halt sentinel has committed or the engine
// has stopped on an error.
func (c *Core) Halted() bool {
	return c.OOO.Halted()
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.OOO.Err()
}

// ExitValue returns the low 8 bits of a0.
func (c *Core) ExitValue() uint32 {
	return c.OOO.ExitValue()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.OOO.Stats()
}

// RunCycles executes the core for the specified number of cycles without
// the akita engine. Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.OOO.RunCycles(cycles)
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.OOO.Reset()
}

func (c *Core) publishCommit(record ooo.CommitRecord) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCommit,
		Item:   record,
	})
}

// Memory returns the memory the core executes from.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}
