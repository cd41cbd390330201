package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Priority ranks a savings goal.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Goal is a user-defined savings target.
type Goal struct {
	ID            string
	Title         string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Category      string
	DueDate       time.Time
	Priority      Priority
	CreatedAt     time.Time
}

// Remaining returns how much can still be contributed.
func (g Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Progress returns current/target.
func (g Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount)
}

// Complete reports whether the target has been reached.
func (g Goal) Complete() bool {
	return g.TargetAmount.IsPositive() && g.Progress().GreaterThanOrEqual(decimal.NewFromInt(1))
}
