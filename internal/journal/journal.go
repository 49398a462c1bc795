// Package journal provides an append-only execution journal.
//
// The journal is an audit log of what the scheduler did: triggers, orders,
// aborts, closes. It is never read back to restore position state.
package journal

import (
	"context"
	"time"
)

// Entry represents one journaled scheduler event.
type Entry struct {
	ID           int64
	Time         time.Time
	StrategyID   string
	StrategyName string
	Kind         string // trigger, open, take_profit, close, abort, reject
	OrderID      string
	Message      string
}

// Entry kinds.
const (
	KindTrigger    = "trigger"
	KindOpen       = "open"
	KindTakeProfit = "take_profit"
	KindClose      = "close"
	KindAbort      = "abort"
	KindReject     = "reject"
)

// Journal defines the interface for execution journaling.
type Journal interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
