package ooo

import "github.com/sarchlab/rvsim/insts"

// ROBCapacity is the number of reorder buffer entries.
const ROBCapacity = 32

// RobID indexes a reorder buffer slot. It is also the tag that operands
// wait on and that the common data bus broadcasts.
type RobID uint8

func (id RobID) add(n int) RobID {
	return RobID((int(id) + n) % ROBCapacity)
}

// ROBEntry is an in-flight instruction.
type ROBEntry struct {
	// Seq is the issue sequence number. It increases monotonically across
	// flushes.
	Seq uint64

	// Busy is true until the instruction's result has been computed.
	Busy bool

	Op   insts.Op
	Word uint32
	PC   uint32

	// Rd is the destination register of register-writing operations.
	Rd uint8

	// Value is the register result, the store data, or 1/0 for a taken or
	// not-taken branch.
	Value uint32

	// Addr is the effective address of a memory operation or the target
	// of a JALR.
	Addr uint32

	// Branch prediction recorded at issue.
	PredTaken   bool
	Target      uint32
	Fallthrough uint32

	// Halt marks the halt sentinel.
	Halt bool

	// Fault is set when the instruction cannot be executed. It is raised
	// only if the entry reaches commit.
	Fault error
}

type robState struct {
	entries [ROBCapacity]ROBEntry
	head    RobID
	size    int
	nextSeq uint64

	// block is set while a JALR target is unresolved.
	block bool
}

// ReorderBuffer is a circular FIFO of in-flight instructions in issue
// order.
type ReorderBuffer struct {
	cur, next robState
}

// NewReorderBuffer creates an empty reorder buffer.
func NewReorderBuffer() *ReorderBuffer {
	return &ReorderBuffer{}
}

// Size returns the number of live entries.
func (b *ReorderBuffer) Size() int {
	return b.cur.size
}

// Full returns true if no entry can be allocated this cycle.
func (b *ReorderBuffer) Full() bool {
	return b.cur.size >= ROBCapacity
}

// Entry returns the current contents of slot id.
func (b *ReorderBuffer) Entry(id RobID) ROBEntry {
	return b.cur.entries[id]
}

// Head returns the oldest entry if it is ready to retire.
func (b *ReorderBuffer) Head() (RobID, ROBEntry, bool) {
	if b.cur.size == 0 {
		return 0, ROBEntry{}, false
	}

	id := b.cur.head
	entry := b.cur.entries[id]
	if entry.Busy {
		return id, entry, false
	}

	return id, entry, true
}

// Allocate appends entry at the tail and assigns its sequence number.
// The caller must check Full first.
func (b *ReorderBuffer) Allocate(entry ROBEntry) RobID {
	id := b.cur.head.add(b.cur.size)

	entry.Seq = b.next.nextSeq
	b.next.nextSeq++
	b.next.entries[id] = entry
	b.next.size++

	return id
}

// Complete records the result of entry id.
func (b *ReorderBuffer) Complete(id RobID, value, addr uint32) {
	e := &b.next.entries[id]
	e.Value = value
	e.Addr = addr
	e.Busy = false
}

// Fail marks entry id as faulted.
func (b *ReorderBuffer) Fail(id RobID, err error) {
	e := &b.next.entries[id]
	e.Fault = err
	e.Busy = false
}

// Retire removes the head entry.
func (b *ReorderBuffer) Retire() {
	b.next.head = b.next.head.add(1)
	b.next.size--
}

// Older calls fn for each entry older than id, oldest first, until fn
// returns false.
func (b *ReorderBuffer) Older(id RobID, fn func(ROBEntry) bool) {
	for i, at := 0, b.cur.head; i < b.cur.size && at != id; i, at = i+1, at.add(1) {
		if !fn(b.cur.entries[at]) {
			return
		}
	}
}

// Blocked returns true while a JALR target is unresolved.
func (b *ReorderBuffer) Blocked() bool {
	return b.cur.block
}

// SetBlocked sets the JALR block flag for the next cycle.
func (b *ReorderBuffer) SetBlocked(blocked bool) {
	b.next.block = blocked
}

// Clear implements Flushable. Sequence numbering continues.
func (b *ReorderBuffer) Clear() {
	b.next.head = 0
	b.next.size = 0
	b.next.block = false
}

// Advance implements Sequential.
func (b *ReorderBuffer) Advance() {
	b.cur = b.next
}
