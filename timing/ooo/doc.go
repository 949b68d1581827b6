// Package ooo implements a cycle-level Tomasulo out-of-order core for RV32I.
//
// The engine issues one instruction per cycle into a reorder buffer plus a
// reservation station (ALU, branch and jump operations) or a load-store
// buffer (memory operations). Entries execute once their operands arrive on
// the common data bus, and the reorder buffer retires them in program
// order. Branches are predicted with a single global 2-bit counter; a
// misprediction discovered at commit discards every younger instruction.
//
// Every stateful component keeps a cur and a next snapshot. Stages read
// cur and write next, and Advance moves next into cur at the clock edge,
// so a stage never observes a value produced later in the same cycle.
package ooo

// Sequential is implemented by every double-buffered component.
type Sequential interface {
	// Advance commits the next snapshot at the clock edge.
	Advance()
}

// Flushable is implemented by components that lose their in-flight state
// on a branch misprediction.
type Flushable interface {
	// Clear discards in-flight state in the next snapshot.
	Clear()
}
