package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountField(t *testing.T) {
	for _, f := range MonetaryFields {
		got, err := ParseAccountField(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseAccountField("piggy_bank")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestAccount_BalanceAndWithBalance(t *testing.T) {
	acct := NewAccount("kid-1", "Milo")
	for i, f := range MonetaryFields {
		v := decimal.NewFromInt(int64(i + 1))
		next, err := acct.WithBalance(f, v)
		require.NoError(t, err)

		got, err := next.Balance(f)
		require.NoError(t, err)
		assert.True(t, got.Equal(v), "field %s", f)

		// The receiver is a value; the original is untouched.
		orig, err := acct.Balance(f)
		require.NoError(t, err)
		assert.True(t, orig.IsZero())
	}

	_, err := acct.Balance("tokens")
	assert.ErrorIs(t, err, ErrUnknownAccount)
	_, err = acct.WithBalance("tokens", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestGoal_Progress(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		current   string
		progress  string
		remaining string
		complete  bool
	}{
		{"empty", "100", "0", "0", "100", false},
		{"half", "100", "50", "0.5", "50", false},
		{"reached", "100", "100", "1", "0", true},
		{"zero target", "0", "0", "0", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{
				TargetAmount:  decimal.RequireFromString(tt.target),
				CurrentAmount: decimal.RequireFromString(tt.current),
			}
			assert.True(t, g.Progress().Equal(decimal.RequireFromString(tt.progress)), "progress %s", g.Progress())
			assert.True(t, g.Remaining().Equal(decimal.RequireFromString(tt.remaining)), "remaining %s", g.Remaining())
			assert.Equal(t, tt.complete, g.Complete())
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestParseTransactionType(t *testing.T) {
	tt, err := ParseTransactionType("saving")
	require.NoError(t, err)
	assert.Equal(t, TxSaving, tt)

	_, err = ParseTransactionType("refund")
	assert.Error(t, err)
}

func TestBalanceError(t *testing.T) {
	var err error = &BalanceError{Field: "savings", Have: "5", Need: "10", Err: ErrInsufficientFunds}
	wrapped := fmt.Errorf("transfer: %w", err)

	assert.ErrorIs(t, wrapped, ErrInsufficientFunds)
	assert.NotErrorIs(t, wrapped, ErrInsufficientTokens)

	var be *BalanceError
	require.True(t, errors.As(wrapped, &be))
	assert.Equal(t, "savings", be.Field)
	assert.Equal(t, "insufficient funds: savings has 5, needs 10", err.Error())
}
