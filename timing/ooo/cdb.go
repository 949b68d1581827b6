package ooo

// Listener receives common data bus broadcasts.
type Listener interface {
	Wakeup(id RobID, value uint32)
}

// CDB is the common data bus. It holds no state: listeners see a broadcast
// in the cycle it is made.
type CDB struct {
	listeners []Listener
}

// NewCDB creates a bus that delivers to the given listeners.
func NewCDB(listeners ...Listener) *CDB {
	return &CDB{listeners: listeners}
}

// Broadcast delivers value to every operand waiting on id.
func (b *CDB) Broadcast(id RobID, value uint32) {
	for _, l := range b.listeners {
		l.Wakeup(id, value)
	}
}
