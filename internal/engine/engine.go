// Package engine implements the strategy scheduler: the tick loop, trigger
// evaluation, and the order-placement/position-lifecycle state machine.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/gateway"
	"ibkr-trader/internal/journal"
	"ibkr-trader/internal/metrics"
	"ibkr-trader/internal/models"
)

// Config holds scheduler configuration.
type Config struct {
	// Symbol is the underlying for every chain fetch.
	Symbol string
	// TickInterval is the idle scan interval.
	TickInterval time.Duration
	// PostTriggerSleep is slept after processing any trigger so the same
	// minute never re-fires.
	PostTriggerSleep time.Duration
	// Location is the timezone used for day/time trigger matching.
	Location *time.Location
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Symbol:           "SPX",
		TickInterval:     time.Second,
		PostTriggerSleep: time.Minute,
		Location:         time.Local,
	}
}

// Event is a user-observable scheduler event, consumed by the operator
// surface. The engine never formats for a specific display.
type Event struct {
	Time         time.Time
	Level        string // info, warn, error
	StrategyID   string
	StrategyName string
	Message      string
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Running      bool      `json:"running"`
	PositionOpen bool      `json:"position_open"`
	StrategyID   string    `json:"strategy_id,omitempty"`
	StrategyName string    `json:"strategy_name,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	TPOrderID    string    `json:"tp_order_id,omitempty"`
	OpenedAt     time.Time `json:"opened_at,omitempty"`
}

// Engine owns the scheduler loop. All broker calls happen sequentially
// inside the loop goroutine; operator actions arrive through mutex-guarded
// mailboxes, which is the only cross-goroutine handoff.
type Engine struct {
	gw         gateway.Client
	strategies []models.StrategyDefinition
	cfg        Config
	log        zerolog.Logger
	journal    journal.Journal
	metrics    *metrics.Metrics

	manual   mailbox
	closeReq signal

	mu      sync.Mutex
	active  *ActiveStrategyState
	running bool
	stop    chan struct{}
	done    chan struct{}

	events chan Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal attaches an execution journal.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates a new scheduler engine.
func New(gw gateway.Client, strategies []models.StrategyDefinition, cfg Config, log zerolog.Logger, opts ...Option) *Engine {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.PostTriggerSleep == 0 {
		cfg.PostTriggerSleep = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Symbol == "" {
		cfg.Symbol = "SPX"
	}
	e := &Engine{
		gw:         gw,
		strategies: strategies,
		cfg:        cfg,
		log:        log,
		events:     make(chan Event, 128),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start authenticates and launches the scheduler loop. It fails without
// starting the loop when authentication fails.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if !e.gw.IsAuthenticated() {
		if err := e.gw.Authenticate(ctx); err != nil {
			e.emit("error", "", "", "Authentication failed, not starting")
			return apperrors.Wrap(err, "authentication failed")
		}
	}

	e.mu.Lock()
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.run(ctx)
	e.emit("info", "", "", "Bot started")
	return nil
}

// Stop signals the loop to exit and waits for it.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stop := e.stop
	done := e.done
	e.mu.Unlock()

	close(stop)
	<-done
	e.emit("info", "", "", "Bot stopped")
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Events returns the scheduler's event stream. Events are dropped rather
// than blocking the loop when no consumer keeps up.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Trigger requests manual execution of a strategy on the next tick. The
// request overwrites any pending one and takes priority over scheduled
// triggers within the same tick.
func (e *Engine) Trigger(id string) error {
	s, ok := e.strategyByID(id)
	if !ok {
		e.log.Warn().Str("strategy_id", id).Msg("Strategy not found")
		return apperrors.ErrStrategyNotFound
	}
	e.manual.put(id)
	e.emit("info", s.ID, s.Name, "Manually triggered")
	return nil
}

// RequestClose asks the loop to close the open position on the next tick.
// A request with no open position is a logged no-op.
func (e *Engine) RequestClose() {
	e.closeReq.raise()
}

// Status returns a snapshot of the scheduler state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{Running: e.running}
	if e.active != nil {
		st.PositionOpen = e.active.PositionOpen
		st.StrategyID = e.active.Strategy.ID
		st.StrategyName = e.active.Strategy.Name
		st.OrderID = e.active.OrderID
		st.TPOrderID = e.active.TPOrderID
		st.OpenedAt = e.active.OpenedAt
	}
	return st
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		default:
		}

		sleep := e.tick(ctx, e.now())

		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-time.After(sleep):
		}
	}
}

// tick runs one scheduler iteration and returns how long to sleep before
// the next. Any failure inside an iteration is absorbed; the loop ticks on.
func (e *Engine) tick(ctx context.Context, now time.Time) time.Duration {
	e.metrics.Tick()

	day := now.Weekday().String()
	clock := now.Format("15:04")

	// Manual trigger takes priority and is consumed exactly once.
	if id, ok := e.manual.take(); ok {
		if s, found := e.strategyByID(id); found {
			e.execute(ctx, *s, "manual")
		}
		return e.cfg.PostTriggerSleep
	}

	triggered := false
	for _, s := range e.strategies {
		if day == s.DayOfWeek && clock == s.EntryTime {
			e.execute(ctx, s, "scheduled")
			triggered = true
			break
		}
	}

	if st := e.activeState(); st != nil && st.PositionOpen && clock == st.Strategy.ExitTime {
		e.closePosition(ctx, "exit time reached")
	}
	if e.closeReq.take() {
		e.closePosition(ctx, "operator request")
	}

	if triggered {
		return e.cfg.PostTriggerSleep
	}
	return e.cfg.TickInterval
}

func (e *Engine) now() time.Time {
	if e.cfg.Clock != nil {
		return e.cfg.Clock().In(e.cfg.Location)
	}
	return time.Now().In(e.cfg.Location)
}

func (e *Engine) strategyByID(id string) (*models.StrategyDefinition, bool) {
	for i := range e.strategies {
		if e.strategies[i].ID == id {
			return &e.strategies[i], true
		}
	}
	return nil, false
}

func (e *Engine) activeState() *ActiveStrategyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) setActive(st *ActiveStrategyState) {
	e.mu.Lock()
	e.active = st
	e.mu.Unlock()
	e.metrics.SetPositionOpen(st != nil && st.PositionOpen)
}

func (e *Engine) emit(level, sid, sname, msg string) {
	ev := Event{
		Time:         e.now(),
		Level:        level,
		StrategyID:   sid,
		StrategyName: sname,
		Message:      msg,
	}
	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) record(ctx context.Context, kind, sid, sname, orderID, message string) {
	if e.journal == nil {
		return
	}
	entry := journal.Entry{
		Time:         e.now(),
		StrategyID:   sid,
		StrategyName: sname,
		Kind:         kind,
		OrderID:      orderID,
		Message:      message,
	}
	if err := e.journal.Record(ctx, entry); err != nil {
		e.log.Warn().Err(err).Msg("Failed to record journal entry")
	}
}
