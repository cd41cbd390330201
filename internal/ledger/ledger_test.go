package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testAccount() model.Account {
	acct := model.NewAccount("u1", "Ada")
	acct.MokTokens = 100
	acct.XP = 240
	acct.Savings = dec("50.00")
	acct.Investment = dec("10.00")
	return acct
}

func TestApply_Monetary(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()

	got, err := l.Apply(acct, Delta{Monetary: []MonetaryDelta{
		{Field: model.FieldSavings, Amount: dec("-20.00")},
		{Field: model.FieldUSDC, Amount: dec("20.00")},
	}})
	require.NoError(t, err)
	assert.True(t, got.Savings.Equal(dec("30.00")))
	assert.True(t, got.USDC.Equal(dec("20.00")))
	assert.Equal(t, acct.MokTokens, got.MokTokens)
	assert.Equal(t, acct.XP, got.XP)
}

func TestApply_RejectsWholeDelta(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()

	got, err := l.Apply(acct, Delta{
		Monetary: []MonetaryDelta{
			{Field: model.FieldUSDC, Amount: dec("5.00")},
			{Field: model.FieldSavings, Amount: dec("-50.01")},
		},
		Progress: ProgressDelta{Tokens: 10, XP: 10},
	})
	require.ErrorIs(t, err, model.ErrInsufficientFunds)
	assert.Equal(t, acct, got, "rejected delta must return the original snapshot")

	var be *model.BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "savings", be.Field)
}

func TestApply_SameFieldSummed(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()

	// Two debits that each fit but together do not.
	_, err := l.Apply(acct, Delta{Monetary: []MonetaryDelta{
		{Field: model.FieldSavings, Amount: dec("-30.00")},
		{Field: model.FieldSavings, Amount: dec("-30.00")},
	}})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
}

func TestApply_Tokens(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()

	_, err := l.Apply(acct, Delta{Progress: ProgressDelta{Tokens: -101}})
	assert.ErrorIs(t, err, model.ErrInsufficientTokens)

	got, err := l.Apply(acct, Delta{Progress: ProgressDelta{Tokens: -100}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.MokTokens)
}

func TestApply_NegativeXP(t *testing.T) {
	l := New(rates.Default())
	_, err := l.Apply(testAccount(), Delta{Progress: ProgressDelta{XP: -241}})
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
}

func TestApply_LevelUp(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()

	got, err := l.Apply(acct, Delta{Progress: ProgressDelta{XP: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.XP)
	assert.Equal(t, int64(1), got.Level)

	got, err = l.Apply(got, Delta{Progress: ProgressDelta{XP: 600}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Level)
}

func TestApply_LevelNeverDrops(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()
	acct.XP = 600
	acct.Level = 2

	got, err := l.Apply(acct, Delta{Progress: ProgressDelta{XP: -500}})
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.XP)
	assert.Equal(t, int64(2), got.Level)
}

func TestApply_CatchesUpStaleLevel(t *testing.T) {
	l := New(rates.Default())
	acct := testAccount()
	acct.XP = 760
	acct.Level = 1

	got, err := l.Apply(acct, Delta{Monetary: []MonetaryDelta{{Field: model.FieldSavings, Amount: dec("-5")}}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Level)

	got, err = l.Apply(acct, Delta{Progress: ProgressDelta{Tokens: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Level)
}

func TestApply_Profile(t *testing.T) {
	l := New(rates.Default())
	got, err := l.Apply(testAccount(), Delta{Profile: &ProfileDelta{DisplayName: "Grace"}})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.DisplayName)
}

func TestApply_UnknownField(t *testing.T) {
	l := New(rates.Default())
	_, err := l.Apply(testAccount(), Delta{Monetary: []MonetaryDelta{{Field: "gold", Amount: dec("1")}}})
	assert.ErrorIs(t, err, model.ErrUnknownAccount)
}

func TestRecomputeLevel(t *testing.T) {
	tests := []struct {
		current, xp, want int64
	}{
		{0, 0, 0},
		{0, 249, 0},
		{0, 250, 1},
		{0, 499, 1},
		{0, 500, 2},
		{1, 1000, 4},
		{5, 0, 5},
		{3, 260, 3},
		{2, -10, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecomputeLevel(tt.current, tt.xp, 250), "RecomputeLevel(%d, %d)", tt.current, tt.xp)
	}
}

func TestLevelProgress(t *testing.T) {
	acct := model.NewAccount("u1", "")
	acct.XP = 300
	acct.Level = 1

	into, toNext := LevelProgress(acct, 250)
	assert.Equal(t, int64(50), into)
	assert.Equal(t, int64(200), toNext)
}

func TestClampPenalty(t *testing.T) {
	acct := testAccount() // 100 tokens, 240 xp

	got := ClampPenalty(acct, ProgressDelta{Tokens: -200, XP: -300})
	assert.Equal(t, int64(-100), got.Tokens)
	assert.Equal(t, int64(-240), got.XP)

	got = ClampPenalty(acct, ProgressDelta{Tokens: -20, XP: -30})
	assert.Equal(t, ProgressDelta{Tokens: -20, XP: -30}, got)

	got = ClampPenalty(acct, ProgressDelta{Tokens: 200, XP: 300})
	assert.Equal(t, ProgressDelta{Tokens: 200, XP: 300}, got)
}
