package ooo

// Latch is the fetch-to-decode pipeline register.
type Latch struct {
	Valid bool
	Word  uint32
	PC    uint32
}

type frontState struct {
	latch Latch

	// halting is set once the halt sentinel has been issued.
	halting bool

	// flushing is raised for the cycle after a misprediction flush.
	flushing bool
}

// FrontEnd holds the fetch latch and front-end control flags.
type FrontEnd struct {
	cur, next frontState
}

// NewFrontEnd creates an empty front end.
func NewFrontEnd() *FrontEnd {
	return &FrontEnd{}
}

// Latch returns the word waiting for decode.
func (f *FrontEnd) Latch() Latch {
	return f.cur.latch
}

// SetLatch sets the word decode sees next cycle.
func (f *FrontEnd) SetLatch(l Latch) {
	f.next.latch = l
}

// Halting returns true once the halt sentinel has been issued.
func (f *FrontEnd) Halting() bool {
	return f.cur.halting
}

// SetHalting stops fetch from the next cycle on.
func (f *FrontEnd) SetHalting() {
	f.next.halting = true
}

// Flushing returns true in the cycle after a misprediction flush.
func (f *FrontEnd) Flushing() bool {
	return f.cur.flushing
}

// SetFlushing sets the flush flag for the next cycle.
func (f *FrontEnd) SetFlushing(flushing bool) {
	f.next.flushing = flushing
}

// Clear implements Flushable.
func (f *FrontEnd) Clear() {
	f.next.latch = Latch{}
	f.next.halting = false
}

// Advance implements Sequential.
func (f *FrontEnd) Advance() {
	f.cur = f.next
}

// fetchAction is decode's instruction to fetch for the current cycle.
type fetchAction int

const (
	// fetchNext fetches the word at PC.
	fetchNext fetchAction = iota
	// fetchHold keeps a stalled word in the latch.
	fetchHold
	// fetchRedirect drops the sequential path and continues at a target.
	fetchRedirect
	// fetchStop empties the latch and fetches nothing.
	fetchStop
)

// fetch reads one word at PC unless decode held, redirected or stopped
// the front end.
func (e *Engine) fetch(action fetchAction, target uint32) {
	switch action {
	case fetchHold:
		return
	case fetchRedirect:
		e.front.SetLatch(Latch{})
		e.regs.SetPC(target)
		return
	case fetchStop:
		e.front.SetLatch(Latch{})
		return
	}

	if e.rob.Blocked() || e.front.Halting() {
		e.front.SetLatch(Latch{})
		return
	}

	pc := e.regs.PC()
	e.front.SetLatch(Latch{Valid: true, Word: e.memory.Read32(pc), PC: pc})
	e.regs.SetPC(pc + 4)
}
