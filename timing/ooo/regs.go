package ooo

type regState struct {
	x  [32]uint32
	pc uint32
}

// RegisterFile holds the architectural registers and the fetch PC.
// Registers are written only at commit; the PC is written by fetch and by
// commit when it redirects control flow.
type RegisterFile struct {
	cur, next regState
}

// NewRegisterFile creates a zeroed register file.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Read returns register r as of the current cycle. x0 reads as zero.
func (f *RegisterFile) Read(r uint8) uint32 {
	if r == 0 || r >= 32 {
		return 0
	}
	return f.cur.x[r]
}

// Write schedules a register write for the next cycle. Writes to x0 are
// dropped.
func (f *RegisterFile) Write(r uint8, value uint32) {
	if r == 0 || r >= 32 {
		return
	}
	f.next.x[r] = value
}

// PC returns the current fetch address.
func (f *RegisterFile) PC() uint32 {
	return f.cur.pc
}

// SetPC schedules the fetch address for the next cycle.
func (f *RegisterFile) SetPC(pc uint32) {
	f.next.pc = pc
}

// Preset sets register r in both snapshots. It is meant for initial state
// before the first cycle.
func (f *RegisterFile) Preset(r uint8, value uint32) {
	if r == 0 || r >= 32 {
		return
	}
	f.cur.x[r] = value
	f.next.x[r] = value
}

// PresetPC sets the PC in both snapshots.
func (f *RegisterFile) PresetPC(pc uint32) {
	f.cur.pc = pc
	f.next.pc = pc
}

// Snapshot returns the current architectural registers.
func (f *RegisterFile) Snapshot() [32]uint32 {
	return f.cur.x
}

// Advance implements Sequential.
func (f *RegisterFile) Advance() {
	f.cur = f.next
}

type aliasSlot struct {
	pending bool
	id      RobID
}

// AliasTable maps each register to the reorder buffer entry that will
// produce its next value.
type AliasTable struct {
	cur, next [32]aliasSlot
}

// NewAliasTable creates an alias table with every register resolved.
func NewAliasTable() *AliasTable {
	return &AliasTable{}
}

// Lookup returns the producer of register r, if one is in flight.
func (t *AliasTable) Lookup(r uint8) (RobID, bool) {
	if r == 0 || r >= 32 {
		return 0, false
	}
	slot := t.cur[r]
	return slot.id, slot.pending
}

// Claim makes id the producer of register r.
func (t *AliasTable) Claim(r uint8, id RobID) {
	if r == 0 || r >= 32 {
		return
	}
	t.next[r] = aliasSlot{pending: true, id: id}
}

// Release resolves register r, unless a younger producer has claimed it
// since id was issued.
func (t *AliasTable) Release(r uint8, id RobID) {
	if r == 0 || r >= 32 {
		return
	}
	if t.next[r].pending && t.next[r].id == id {
		t.next[r] = aliasSlot{}
	}
}

// Clear implements Flushable.
func (t *AliasTable) Clear() {
	t.next = [32]aliasSlot{}
}

// Advance implements Sequential.
func (t *AliasTable) Advance() {
	t.cur = t.next
}
