package ooo

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

var (
	// ErrUnknownOpcode is wrapped by ExecError when a word that does not
	// decode to an RV32I operation reaches commit.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrMaxCycles is returned by Run when the cycle limit is reached
	// before the program halts.
	ErrMaxCycles = errors.New("max cycles reached")
)

// ExecError is the fatal error raised for an instruction the core cannot
// execute.
type ExecError struct {
	Op   insts.Op
	Word uint32
	PC   uint32
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("cannot execute %v (word 0x%08X) at pc 0x%08X",
		e.Op, e.Word, e.PC)
}

// Unwrap returns ErrUnknownOpcode.
func (e *ExecError) Unwrap() error {
	return ErrUnknownOpcode
}
