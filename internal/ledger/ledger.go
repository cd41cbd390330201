// Package ledger applies validated deltas to account snapshots.
//
// Every mutation goes through Apply: each decreasing field is checked against
// the current snapshot first, and the delta is rejected as a whole if any
// field would go negative. Accounts are values, so a rejected delta leaves the
// caller's snapshot untouched.
package ledger

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

// MonetaryDelta changes one monetary sub-account.
type MonetaryDelta struct {
	Field  model.AccountField
	Amount decimal.Decimal // negative = debit
}

// ProgressDelta changes the token balance and XP.
type ProgressDelta struct {
	Tokens int64
	XP     int64
}

// IsZero reports whether the delta changes nothing.
func (p ProgressDelta) IsZero() bool {
	return p.Tokens == 0 && p.XP == 0
}

// ProfileDelta replaces profile fields.
type ProfileDelta struct {
	DisplayName string
}

// Delta groups every change applied to an account in one operation.
type Delta struct {
	Monetary []MonetaryDelta
	Progress ProgressDelta
	Profile  *ProfileDelta
}

// Ledger applies deltas using a fixed level step.
type Ledger struct {
	levelStep int64
}

// New creates a Ledger from a rate table.
func New(t rates.Table) Ledger {
	return Ledger{levelStep: t.LevelStep}
}

// Apply validates d against acct and returns the updated snapshot.
func (l Ledger) Apply(acct model.Account, d Delta) (model.Account, error) {
	// Sum per field so two legs on the same field are checked together.
	sums := make(map[model.AccountField]decimal.Decimal)
	var order []model.AccountField
	for _, md := range d.Monetary {
		if _, seen := sums[md.Field]; !seen {
			order = append(order, md.Field)
			sums[md.Field] = decimal.Zero
		}
		sums[md.Field] = sums[md.Field].Add(md.Amount)
	}

	next := acct
	for _, f := range order {
		cur, err := acct.Balance(f)
		if err != nil {
			return acct, err
		}
		v := cur.Add(sums[f])
		if v.IsNegative() {
			return acct, &model.BalanceError{
				Field: string(f),
				Have:  cur.String(),
				Need:  sums[f].Neg().String(),
				Err:   model.ErrInsufficientFunds,
			}
		}
		if next, err = next.WithBalance(f, v); err != nil {
			return acct, err
		}
	}

	if tokens := acct.MokTokens + d.Progress.Tokens; tokens < 0 {
		return acct, &model.BalanceError{
			Field: "mok_tokens",
			Have:  strconv.FormatInt(acct.MokTokens, 10),
			Need:  strconv.FormatInt(-d.Progress.Tokens, 10),
			Err:   model.ErrInsufficientTokens,
		}
	}
	if xp := acct.XP + d.Progress.XP; xp < 0 {
		return acct, &model.BalanceError{
			Field: "xp",
			Have:  strconv.FormatInt(acct.XP, 10),
			Need:  strconv.FormatInt(-d.Progress.XP, 10),
			Err:   model.ErrInsufficientFunds,
		}
	}

	next.MokTokens = acct.MokTokens + d.Progress.Tokens
	next.XP = acct.XP + d.Progress.XP
	next.Level = RecomputeLevel(acct.Level, next.XP, l.levelStep)
	if d.Profile != nil {
		next.DisplayName = d.Profile.DisplayName
	}
	return next, nil
}

// RecomputeLevel returns the level for xp. The result is never below current:
// levels are earned once and kept.
func RecomputeLevel(current, xp, step int64) int64 {
	if step <= 0 || xp < 0 {
		return current
	}
	level := xp / step
	if level < current {
		return current
	}
	return level
}

// LevelProgress reports XP earned inside the current level and XP still
// needed to reach the next one.
func LevelProgress(acct model.Account, step int64) (into, toNext int64) {
	if step <= 0 {
		return 0, 0
	}
	floor := acct.Level * step
	next := (acct.Level + 1) * step
	into = acct.XP - floor
	if into < 0 {
		into = 0
	}
	toNext = next - acct.XP
	if toNext < 0 {
		toNext = 0
	}
	return into, toNext
}

// ClampPenalty caps negative token and XP changes at the current balances so
// a penalty floors them at zero instead of failing the operation. Positive
// changes pass through unchanged.
func ClampPenalty(acct model.Account, p ProgressDelta) ProgressDelta {
	if p.Tokens < 0 && -p.Tokens > acct.MokTokens {
		p.Tokens = -acct.MokTokens
	}
	if p.XP < 0 && -p.XP > acct.XP {
		p.XP = -acct.XP
	}
	return p
}

// Describe renders a delta for log output.
func (d Delta) Describe() string {
	s := fmt.Sprintf("tokens=%+d xp=%+d", d.Progress.Tokens, d.Progress.XP)
	for _, md := range d.Monetary {
		s += fmt.Sprintf(" %s=%s", md.Field, md.Amount.StringFixed(2))
	}
	return s
}
