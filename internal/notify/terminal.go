package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"ibkr-trader/internal/engine"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Terminal renders events as colored one-line messages for a console.
type Terminal struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
}

// NewTerminal creates a console channel.
func NewTerminal(w io.Writer, color bool) *Terminal {
	return &Terminal{writer: w, color: color}
}

// Name implements Channel.
func (t *Terminal) Name() string { return "terminal" }

// Notify implements Channel.
func (t *Terminal) Notify(ev engine.Event) {
	prefix := ""
	if ev.StrategyName != "" {
		prefix = fmt.Sprintf("[%s] ", ev.StrategyName)
	}
	line := fmt.Sprintf("%s %s%s", ev.Time.Format("15:04:05"), prefix, ev.Message)
	if t.color {
		switch ev.Level {
		case "error":
			line = colorRed + line + colorReset
		case "warn":
			line = colorYellow + line + colorReset
		default:
			line = colorCyan + line + colorReset
		}
	}
	t.mu.Lock()
	fmt.Fprintln(t.writer, line)
	t.mu.Unlock()
}

// Log forwards events into the structured log.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a logging channel.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Name implements Channel.
func (l *Log) Name() string { return "log" }

// Notify implements Channel.
func (l *Log) Notify(ev engine.Event) {
	var event *zerolog.Event
	switch ev.Level {
	case "error":
		event = l.logger.Error()
	case "warn":
		event = l.logger.Warn()
	default:
		event = l.logger.Info()
	}
	event.Str("strategy_id", ev.StrategyID).Msg(ev.Message)
}
