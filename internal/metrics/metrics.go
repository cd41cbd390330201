// Package metrics exposes Prometheus counters for economy operations.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operations counts engine operations by name and outcome.
var Operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mok",
	Subsystem: "economy",
	Name:      "operations_total",
	Help:      "Economy operations by operation and outcome (ok, rejected, persistence_failure).",
}, []string{"op", "outcome"})

// TokensAwarded counts MokTokens granted by rewards.
var TokensAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mok",
	Subsystem: "rewards",
	Name:      "tokens_awarded_total",
	Help:      "MokTokens granted, by trigger.",
}, []string{"trigger"})

// TokensPenalized counts MokTokens removed by investment withdrawals.
var TokensPenalized = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "mok",
	Subsystem: "rewards",
	Name:      "tokens_penalized_total",
	Help:      "MokTokens removed by investment withdrawal penalties, after clamping.",
})

// XPAwarded counts XP granted by rewards.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mok",
	Subsystem: "rewards",
	Name:      "xp_awarded_total",
	Help:      "XP granted, by trigger.",
}, []string{"trigger"})

// TokensConverted counts MokTokens spent on conversions.
var TokensConverted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mok",
	Subsystem: "conversion",
	Name:      "tokens_total",
	Help:      "MokTokens converted, by target asset.",
}, []string{"asset"})

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "persistence_failure"
)

// RecordReward adds a token/XP change to the reward counters.
func RecordReward(trigger string, tokens, xp int64) {
	if tokens > 0 {
		TokensAwarded.WithLabelValues(trigger).Add(float64(tokens))
	} else if tokens < 0 {
		TokensPenalized.Add(float64(-tokens))
	}
	if xp > 0 {
		XPAwarded.WithLabelValues(trigger).Add(float64(xp))
	}
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
