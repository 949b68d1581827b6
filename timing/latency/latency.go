// Package latency provides per-instruction execute latencies for the
// out-of-order timing model.
//
// The default values reproduce a simple core with single-cycle ALU and
// control-flow operations and three-cycle memory operations. They can be
// overridden via TimingConfig.
package latency

import (
	"github.com/sarchlab/rvsim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execute latency in cycles for the given operation.
// Unknown operations take a single cycle so that the fault they carry
// reaches the reorder buffer promptly.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch {
	case t.IsLoadOp(op):
		return t.config.LoadLatency
	case t.IsStoreOp(op):
		return t.config.StoreLatency
	case t.IsBranchOp(op):
		return t.config.BranchLatency
	case t.IsJumpOp(op):
		return t.config.JumpLatency
	case op == insts.OpUnknown:
		return 1
	default:
		return t.config.ALULatency
	}
}

// IsMemoryOp returns true if the operation accesses memory.
func (t *Table) IsMemoryOp(op insts.Op) bool {
	return t.IsLoadOp(op) || t.IsStoreOp(op)
}

// IsLoadOp returns true if the operation is a load.
func (t *Table) IsLoadOp(op insts.Op) bool {
	return op >= insts.OpLB && op <= insts.OpLHU
}

// IsStoreOp returns true if the operation is a store.
func (t *Table) IsStoreOp(op insts.Op) bool {
	return op >= insts.OpSB && op <= insts.OpSW
}

// IsBranchOp returns true if the operation is a conditional branch.
func (t *Table) IsBranchOp(op insts.Op) bool {
	return op >= insts.OpBEQ && op <= insts.OpBGEU
}

// IsJumpOp returns true for JAL and JALR.
func (t *Table) IsJumpOp(op insts.Op) bool {
	return op == insts.OpJAL || op == insts.OpJALR
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
