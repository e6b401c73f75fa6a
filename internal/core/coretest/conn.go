// Package coretest provides an in-memory SignalConnection for tests.
package coretest

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Tandem/internal/core"
)

// Conn records every frame it is asked to send.
type Conn struct {
	id core.ConnID

	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

var _ core.SignalConnection = (*Conn)(nil)

func NewConn(id string) *Conn {
	return &Conn{id: core.ConnID(id)}
}

func (c *Conn) ID() core.ConnID { return c.id }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// SetFull makes every following TrySend report backpressure.
func (c *Conn) SetFull(full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.full = full
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Event is a decoded outbound frame.
type Event map[string]any

func (e Event) Type() string {
	t, _ := e["type"].(string)
	return t
}

// Events decodes all recorded frames.
func (c *Conn) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var e Event
		if err := json.Unmarshal(f, &e); err != nil {
			e = Event{"type": "<undecodable>"}
		}
		out = append(out, e)
	}
	return out
}

// EventsOf filters recorded events by type.
func (c *Conn) EventsOf(typ string) []Event {
	var out []Event
	for _, e := range c.Events() {
		if e.Type() == typ {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops recorded frames.
func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}
