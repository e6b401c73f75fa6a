package core

// Frame is a raw encoded event.
type Frame []byte

// ConnID identifies one live transport session.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() ConnID
	// TrySend never blocks: a full buffer yields ErrBackpressure.
	TrySend(Frame) error
	Close()
}
