// Package transfer moves money between a user's own sub-accounts.
package transfer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
	"github.com/mokbank/mokbank/internal/rewards"
)

// Result is the outcome of a successful transfer.
type Result struct {
	Account model.Account
	// Reward is what was actually applied, after clamping.
	Reward       rewards.Reward
	Transactions [2]model.Transaction
}

// Service performs transfers.
type Service struct {
	ledger  ledger.Ledger
	rewards *rewards.Engine
}

// NewService creates a transfer Service.
func NewService(t rates.Table) *Service {
	return &Service{ledger: ledger.New(t), rewards: rewards.NewEngine(t)}
}

// Transfer moves amount from one sub-account to another. Moves into
// investment earn tokens and XP; moves out of it cost them, floored at zero.
func (s *Service) Transfer(acct model.Account, amount decimal.Decimal, from, to model.AccountField, now time.Time) (Result, error) {
	if !amount.IsPositive() {
		return Result{}, fmt.Errorf("%w: transfer %s", model.ErrInvalidAmount, amount)
	}
	if _, err := acct.Balance(from); err != nil {
		return Result{}, err
	}
	if _, err := acct.Balance(to); err != nil {
		return Result{}, err
	}
	if from == to {
		return Result{}, fmt.Errorf("%w: %s", model.ErrSameAccount, from)
	}

	// Penalties never abort a transfer: they are capped at what the user has.
	reward := s.rewards.Investment(amount, from, to)
	progress := ledger.ClampPenalty(acct, reward.Delta())

	next, err := s.ledger.Apply(acct, ledger.Delta{
		Monetary: []ledger.MonetaryDelta{
			{Field: from, Amount: amount.Neg()},
			{Field: to, Amount: amount},
		},
		Progress: progress,
	})
	if err != nil {
		return Result{}, fmt.Errorf("applying transfer: %w", err)
	}

	desc := fmt.Sprintf("Transfer %s from %s to %s", amount.StringFixed(2), from, to)
	return Result{
		Account: next,
		Reward:  rewards.Reward{Tokens: progress.Tokens, XP: progress.XP},
		Transactions: [2]model.Transaction{
			{
				Type:        model.TxExpense,
				Amount:      amount,
				Category:    string(from),
				Description: desc,
				Date:        now,
			},
			{
				Type:        model.TxSaving,
				Amount:      amount,
				Category:    string(to),
				Description: desc,
				Date:        now,
			},
		},
	}, nil
}
