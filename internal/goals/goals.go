// Package goals tracks savings goals funded from the savings balance.
package goals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

// NewParams holds the fields of a new goal.
type NewParams struct {
	Title    string
	Target   decimal.Decimal
	Category string
	DueDate  time.Time
	Priority model.Priority
}

// Edits are optional field replacements applied alongside a contribution.
type Edits struct {
	DueDate  *time.Time
	Priority *model.Priority
}

// Result is the outcome of a contribution.
type Result struct {
	Goal        model.Goal
	Account     model.Account
	Transaction model.Transaction
}

// Tracker applies goal operations.
type Tracker struct {
	ledger ledger.Ledger
}

// NewTracker creates a Tracker.
func NewTracker(t rates.Table) *Tracker {
	return &Tracker{ledger: ledger.New(t)}
}

// New creates a goal with nothing saved yet.
func New(p NewParams, now time.Time) (model.Goal, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return model.Goal{}, fmt.Errorf("goal title is required")
	}
	if !p.Target.IsPositive() {
		return model.Goal{}, fmt.Errorf("%w: target %s", model.ErrInvalidAmount, p.Target)
	}
	priority := p.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if _, err := model.ParsePriority(string(priority)); err != nil {
		return model.Goal{}, err
	}
	return model.Goal{
		ID:            uuid.NewString(),
		Title:         title,
		TargetAmount:  p.Target,
		CurrentAmount: decimal.Zero,
		Category:      p.Category,
		DueDate:       p.DueDate,
		Priority:      priority,
		CreatedAt:     now,
	}, nil
}

// Contribute moves amount from savings into the goal. Contributions never
// overshoot the target and earn no tokens or XP.
func (t *Tracker) Contribute(goal model.Goal, acct model.Account, amount decimal.Decimal, edits *Edits, now time.Time) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, fmt.Errorf("%w: contribution %s", model.ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(acct.Savings) {
		return Result{}, &model.BalanceError{
			Field: string(model.FieldSavings),
			Have:  acct.Savings.String(),
			Need:  amount.String(),
			Err:   model.ErrInsufficientFunds,
		}
	}
	if remaining := goal.Remaining(); amount.GreaterThan(remaining) {
		return Result{}, fmt.Errorf("%w: %s > remaining %s", model.ErrOverContribution, amount, remaining)
	}

	next, err := t.ledger.Apply(acct, ledger.Delta{
		Monetary: []ledger.MonetaryDelta{{Field: model.FieldSavings, Amount: amount.Neg()}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("applying contribution: %w", err)
	}

	g, err := Edit(goal, edits)
	if err != nil {
		return Result{}, err
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)

	return Result{
		Goal:    g,
		Account: next,
		Transaction: model.Transaction{
			Type:        model.TxSaving,
			Amount:      amount,
			Category:    model.CategoryGoal,
			Description: fmt.Sprintf("Saved %s toward %q", amount.StringFixed(2), goal.Title),
			Date:        now,
		},
	}, nil
}

// Edit replaces the due date and/or priority. A nil edits is a no-op.
func Edit(goal model.Goal, edits *Edits) (model.Goal, error) {
	if edits == nil {
		return goal, nil
	}
	if edits.Priority != nil {
		p, err := model.ParsePriority(string(*edits.Priority))
		if err != nil {
			return model.Goal{}, err
		}
		goal.Priority = p
	}
	if edits.DueDate != nil {
		goal.DueDate = *edits.DueDate
	}
	return goal, nil
}
