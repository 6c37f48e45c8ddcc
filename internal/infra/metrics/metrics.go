// Package metrics provides Prometheus metrics for the Inertia engine:
// counters and histograms for check-ins, backfills, rewards, and writes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Check-ins ──────────────────────────────────────────────────────────────

// CheckIns tracks persisted daily records by check-in type.
var CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inertia",
	Name:      "checkins_total",
	Help:      "Total persisted daily records by type.",
}, []string{"type"})

// GapFills tracks synthesized placeholder records for missed days.
var GapFills = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "inertia",
	Name:      "gap_fills_total",
	Help:      "Total gap_fill placeholder records written.",
})

// ─── Rewards ────────────────────────────────────────────────────────────────

// Rewards tracks resolved reward events by name.
var Rewards = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inertia",
	Name:      "rewards_total",
	Help:      "Total resolved reward events by event name.",
}, []string{"event"})

// ─── Writes ─────────────────────────────────────────────────────────────────

// WriteConflicts tracks lost optimistic-concurrency races on records.
var WriteConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "inertia",
	Name:      "write_conflicts_total",
	Help:      "Total record writes that lost a version race.",
})

// WriteLatency tracks full check-in orchestration duration in seconds.
var WriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "inertia",
	Name:      "write_latency_seconds",
	Help:      "Daily record write orchestration duration.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// WriteFailures tracks aborted check-in orchestrations by stage.
var WriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inertia",
	Name:      "write_failures_total",
	Help:      "Total aborted check-in writes by failure stage.",
}, []string{"stage"})
