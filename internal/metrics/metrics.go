// Package metrics exposes Prometheus instrumentation for the scheduler.
//
//   - trader_triggers_total{source}    – triggers processed (manual|scheduled)
//   - trader_orders_total{kind}        – orders placed (open|take_profit|close)
//   - trader_aborts_total{reason}      – aborted execution attempts
//   - trader_position_open             – 1 while a position is open
//   - trader_ticks_total               – scheduler loop iterations
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scheduler's Prometheus collectors. A nil *Metrics is a
// valid no-op sink.
type Metrics struct {
	triggers     *prometheus.CounterVec
	orders       *prometheus.CounterVec
	aborts       *prometheus.CounterVec
	positionOpen prometheus.Gauge
	ticks        prometheus.Counter
}

// New creates and registers the scheduler metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_triggers_total",
				Help: "Strategy triggers processed",
			},
			[]string{"source"},
		),
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_orders_total",
				Help: "Orders placed",
			},
			[]string{"kind"},
		),
		aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_aborts_total",
				Help: "Aborted execution attempts",
			},
			[]string{"reason"},
		),
		positionOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trader_position_open",
				Help: "Whether a spread position is currently open",
			},
		),
		ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trader_ticks_total",
				Help: "Scheduler loop iterations",
			},
		),
	}
	reg.MustRegister(m.triggers, m.orders, m.aborts, m.positionOpen, m.ticks)
	return m
}

// Trigger counts a processed trigger by source.
func (m *Metrics) Trigger(source string) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(source).Inc()
}

// Order counts a placed order by kind.
func (m *Metrics) Order(kind string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(kind).Inc()
}

// Abort counts an aborted execution attempt by reason.
func (m *Metrics) Abort(reason string) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(reason).Inc()
}

// SetPositionOpen flips the open-position gauge.
func (m *Metrics) SetPositionOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.positionOpen.Set(1)
	} else {
		m.positionOpen.Set(0)
	}
}

// Tick counts one scheduler loop iteration.
func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}
