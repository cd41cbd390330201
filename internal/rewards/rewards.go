// Package rewards computes token and XP deltas for the reward triggers.
package rewards

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

// Reward is a token/XP pair. Negative values are penalties.
type Reward struct {
	Tokens int64
	XP     int64
}

// Delta converts the reward into a ledger progress delta.
func (r Reward) Delta() ledger.ProgressDelta {
	return ledger.ProgressDelta{Tokens: r.Tokens, XP: r.XP}
}

// IsZero reports whether the reward changes nothing.
func (r Reward) IsZero() bool {
	return r.Tokens == 0 && r.XP == 0
}

// Engine evaluates reward formulas against a rate table.
type Engine struct {
	table rates.Table
}

// NewEngine creates an Engine.
func NewEngine(t rates.Table) *Engine {
	return &Engine{table: t}
}

// Learning rewards a module completion in proportion to the score.
func (e *Engine) Learning(score, totalPoints, xpReward int64) (Reward, error) {
	if totalPoints <= 0 {
		return Reward{}, fmt.Errorf("%w: total points %d", model.ErrInvalidAmount, totalPoints)
	}
	if score < 0 || score > totalPoints {
		return Reward{}, fmt.Errorf("%w: score %d out of 0..%d", model.ErrInvalidAmount, score, totalPoints)
	}
	if xpReward < 0 {
		return Reward{}, fmt.Errorf("%w: xp reward %d", model.ErrInvalidAmount, xpReward)
	}

	// xpReward * score / total, floored. The product can exceed int64 for
	// large catalog values; the quotient never exceeds xpReward.
	q, _ := decimal.NewFromInt(xpReward).Mul(decimal.NewFromInt(score)).QuoRem(decimal.NewFromInt(totalPoints), 0)
	xp := q.IntPart()
	return Reward{
		Tokens: xp / e.table.LearningTokenDivisor,
		XP:     xp,
	}, nil
}

// Mission rewards a completed mission.
func (e *Engine) Mission(reward int64) (Reward, error) {
	if reward <= 0 {
		return Reward{}, fmt.Errorf("%w: mission reward %d", model.ErrInvalidAmount, reward)
	}
	xp := decimal.NewFromInt(reward).Mul(e.table.MissionXPMultiplier).Floor()
	return Reward{Tokens: reward, XP: xp.IntPart()}, nil
}

// Investment rewards money moved into the investment account and penalizes
// money moved out of it. Moves that do not touch investment are neutral.
func (e *Engine) Investment(amount decimal.Decimal, from, to model.AccountField) Reward {
	switch {
	case to == model.FieldInvestment && from != model.FieldInvestment:
		return Reward{
			Tokens: amount.Mul(e.table.InvestTokenReward).Floor().IntPart(),
			XP:     amount.Mul(e.table.InvestXPReward).Floor().IntPart(),
		}
	case from == model.FieldInvestment && to != model.FieldInvestment:
		return Reward{
			Tokens: -amount.Mul(e.table.WithdrawTokenPenalty).Floor().IntPart(),
			XP:     -amount.Mul(e.table.WithdrawXPPenalty).Floor().IntPart(),
		}
	}
	return Reward{}
}

// CryptoDeposit returns the notification record for new crypto money. The
// balance itself is credited by the parent-approval flow, never here.
func (e *Engine) CryptoDeposit(amount decimal.Decimal, source string, now time.Time) (model.Transaction, error) {
	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: deposit %s", model.ErrInvalidAmount, amount)
	}
	return model.Transaction{
		Type:        model.TxIncome,
		Amount:      amount,
		Category:    model.CategoryCrypto,
		Description: fmt.Sprintf("Crypto deposit of %s from %s (pending parent approval)", amount.String(), source),
		Date:        now,
	}, nil
}
