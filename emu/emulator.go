// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

// ErrMaxInstructions is returned when the instruction limit is reached
// before the program halts.
var ErrMaxInstructions = errors.New("max instructions reached")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the halt marker was reached.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes RV32I instructions functionally, one at a time and in
// program order. It serves as the architectural reference for the
// out-of-order timing model.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	alu *ALU
	lsu *LoadStoreUnit

	halted           bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithMemory makes the emulator operate on an existing memory image.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// NewEmulator creates a new RV32I emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemory()
	}
	e.lsu = NewLoadStoreUnit(e.memory)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed, not
// counting the halt marker.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted returns true once the halt marker has been reached.
func (e *Emulator) Halted() bool {
	return e.halted
}

// LoadProgram copies program bytes to entry and points the PC at it.
func (e *Emulator) LoadProgram(entry uint32, program []byte) {
	e.memory.LoadProgram(entry, program)
	e.regFile.PC = entry
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint32) {
	e.regFile.PC = pc
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	pc := e.regFile.PC
	word := e.memory.Read32(pc)
	if insts.IsHalt(word) {
		e.halted = true
		return StepResult{Halted: true}
	}

	inst := e.decoder.Decode(word)
	if err := e.execute(inst, pc); err != nil {
		return StepResult{Err: fmt.Errorf("pc 0x%08X: %w", pc, err)}
	}

	e.instructionCount++
	return StepResult{}
}

// Run executes until the halt marker and returns the low byte of a0.
func (e *Emulator) Run() (uint32, error) {
	for {
		result := e.Step()
		if result.Err != nil {
			return 0, result.Err
		}
		if result.Halted {
			return e.ExitValue(), nil
		}
	}
}

// ExitValue returns the program result: the low 8 bits of a0.
func (e *Emulator) ExitValue() uint32 {
	return e.regFile.ReadReg(insts.ReturnValueReg) & 0xFF
}

func (e *Emulator) execute(inst *insts.Instruction, pc uint32) error {
	rs1 := e.regFile.ReadReg(inst.Rs1)
	rs2 := e.regFile.ReadReg(inst.Rs2)

	result, err := e.alu.Compute(inst.Op, rs1, rs2, inst.Imm, pc)
	if err != nil {
		return err
	}

	nextPC := pc + 4

	switch {
	case inst.IsLoad():
		e.regFile.WriteReg(inst.Rd, e.lsu.Load(inst.Op, result))
	case inst.IsStore():
		e.lsu.Store(inst.Op, result, rs2)
	case inst.IsBranch():
		if result != 0 {
			nextPC = BranchTarget(pc, inst.Imm)
		}
	case inst.Op == insts.OpJAL:
		e.regFile.WriteReg(inst.Rd, result)
		nextPC = BranchTarget(pc, inst.Imm)
	case inst.Op == insts.OpJALR:
		nextPC = JumpRegTarget(rs1, inst.Imm)
		e.regFile.WriteReg(inst.Rd, result)
	default:
		e.regFile.WriteReg(inst.Rd, result)
	}

	e.regFile.PC = nextPC
	return nil
}
