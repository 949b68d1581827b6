package ooo

import "github.com/sarchlab/rvsim/insts"

// StationCapacity is the number of slots in the reservation station and in
// the load-store buffer.
const StationCapacity = 32

// Operand is a source operand that is either resolved or waiting on the
// reorder buffer entry Tag.
type Operand struct {
	Ready bool
	Value uint32
	Tag   RobID
}

// StationEntry is an instruction waiting for operands or executing.
type StationEntry struct {
	Busy bool
	Op   insts.Op
	Src1 Operand
	Src2 Operand
	Imm  int32
	PC   uint32

	// Dest is the reorder buffer entry receiving the result.
	Dest RobID

	// Elapsed counts the cycles spent executing.
	Elapsed uint64
}

// Ready returns true once both operands are resolved.
func (e StationEntry) Ready() bool {
	return e.Busy && e.Src1.Ready && e.Src2.Ready
}

type stationState struct {
	entries [StationCapacity]StationEntry
	size    int
}

// Station is a pool of waiting instructions. The core uses one as the
// reservation station and another as the load-store buffer.
type Station struct {
	name      string
	cur, next stationState
}

// NewStation creates an empty station.
func NewStation(name string) *Station {
	return &Station{name: name}
}

// Name returns the station name.
func (s *Station) Name() string {
	return s.name
}

// Size returns the number of live entries.
func (s *Station) Size() int {
	return s.cur.size
}

// Full returns true if no slot can be allocated this cycle.
func (s *Station) Full() bool {
	return s.cur.size >= StationCapacity
}

// Entry returns the current contents of slot i.
func (s *Station) Entry(i int) StationEntry {
	return s.cur.entries[i]
}

// Insert places entry in a free slot and returns the slot index, or -1 if
// the station is full.
func (s *Station) Insert(entry StationEntry) int {
	for i := range s.cur.entries {
		if s.cur.entries[i].Busy || s.next.entries[i].Busy {
			continue
		}

		entry.Busy = true
		entry.Elapsed = 0
		s.next.entries[i] = entry
		s.next.size++
		return i
	}

	return -1
}

// Elapse counts one more execution cycle for slot i and returns the total.
func (s *Station) Elapse(i int) uint64 {
	s.next.entries[i].Elapsed = s.cur.entries[i].Elapsed + 1
	return s.next.entries[i].Elapsed
}

// Release frees slot i.
func (s *Station) Release(i int) {
	s.next.entries[i] = StationEntry{}
	s.next.size--
}

// Wakeup resolves every operand waiting on id.
func (s *Station) Wakeup(id RobID, value uint32) {
	for i := range s.cur.entries {
		cur := &s.cur.entries[i]
		if !cur.Busy {
			continue
		}

		next := &s.next.entries[i]
		if !cur.Src1.Ready && cur.Src1.Tag == id {
			next.Src1 = Operand{Ready: true, Value: value}
		}
		if !cur.Src2.Ready && cur.Src2.Tag == id {
			next.Src2 = Operand{Ready: true, Value: value}
		}
	}
}

// Clear implements Flushable.
func (s *Station) Clear() {
	s.next = stationState{}
}

// Advance implements Sequential.
func (s *Station) Advance() {
	s.cur = s.next
}
