package app

import "github.com/dkeye/Tandem/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send buffer is full.
// event is the outbound event type that could not be queued.
type Policy interface {
	OnBackPressure(conn core.SignalConnection, event string) BackpressureAction
}

// SimplePolicy drops ephemeral events and kicks connections that cannot keep
// up with messages or call signaling.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ core.SignalConnection, event string) BackpressureAction {
	switch event {
	case "userTyping", "updateOnlineUsers", "pong":
		return DropFrame
	default:
		return KickMember
	}
}
