package engine

import (
	"sync"
	"time"

	"ibkr-trader/internal/models"
)

// ActiveStrategyState is the mutable run-time record of the engaged strategy.
// At most one instance exists at a time; it is created when an opening order
// is accepted and cleared when the position closes.
type ActiveStrategyState struct {
	Strategy     models.StrategyDefinition
	NearConID    int64
	FarConID     int64
	EntryPrice   float64
	OrderID      string
	TPOrderID    string
	PositionOpen bool
	OpenedAt     time.Time
}

// mailbox is a mutex-guarded single-value cell. Writers overwrite the slot;
// the scheduler loop reads and clears it atomically, so a pending value is
// consumed exactly once.
type mailbox struct {
	mu    sync.Mutex
	value string
	set   bool
}

func (m *mailbox) put(v string) {
	m.mu.Lock()
	m.value = v
	m.set = true
	m.mu.Unlock()
}

func (m *mailbox) take() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", false
	}
	v := m.value
	m.value = ""
	m.set = false
	return v, true
}

// signal is a mailbox without a payload.
type signal struct {
	mu  sync.Mutex
	set bool
}

func (s *signal) raise() {
	s.mu.Lock()
	s.set = true
	s.mu.Unlock()
}

func (s *signal) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.set
	s.set = false
	return was
}
