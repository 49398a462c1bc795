// Package notify delivers scheduler events to the operator.
//
// The engine publishes events without knowing who listens; channels here
// render them for a destination. A Multi fans one event out to several
// channels so console and log delivery stay independent.
package notify

import (
	"sync"

	"ibkr-trader/internal/engine"
)

// Channel delivers one rendered event to a destination.
type Channel interface {
	Name() string
	Notify(ev engine.Event)
}

// Multi fans events out to every registered channel.
type Multi struct {
	mu       sync.RWMutex
	channels []Channel
}

// NewMulti creates a notifier with the given channels.
func NewMulti(channels ...Channel) *Multi {
	return &Multi{channels: channels}
}

// Add registers an additional channel.
func (m *Multi) Add(ch Channel) {
	m.mu.Lock()
	m.channels = append(m.channels, ch)
	m.mu.Unlock()
}

// Notify delivers the event to every channel.
func (m *Multi) Notify(ev engine.Event) {
	m.mu.RLock()
	channels := m.channels
	m.mu.RUnlock()
	for _, ch := range channels {
		ch.Notify(ev)
	}
}

// Drain consumes an event stream until it closes, delivering every event.
func (m *Multi) Drain(events <-chan engine.Event) {
	for ev := range events {
		m.Notify(ev)
	}
}
