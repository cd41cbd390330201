package filestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokbank/mokbank/internal/economy"
	"github.com/mokbank/mokbank/internal/model"
)

var when = time.Date(2026, 5, 2, 16, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	acct := model.NewAccount("kid-1", "Milo")
	acct.MokTokens = 120
	acct.Savings = dec("12.50")
	s, err := Init(t.TempDir(), acct)
	require.NoError(t, err)
	return s
}

func TestAccountCSVRoundTrip(t *testing.T) {
	acct := model.Account{
		UserID: "kid-1", DisplayName: "Milo, Jr.",
		MokTokens: 42, XP: 510, Level: 2,
		Savings: dec("10.25"), Investment: dec("100"), Crypto: dec("0.0005"),
		USDC: dec("3"), TravelMiles: dec("250.5"),
		UpdatedAt: when,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAccount(&buf, acct))

	got, err := ReadAccount(&buf)
	require.NoError(t, err)
	assert.Equal(t, acct.DisplayName, got.DisplayName)
	assert.Equal(t, int64(510), got.XP)
	assert.Equal(t, int64(2), got.Level)
	assert.True(t, got.Crypto.Equal(acct.Crypto))
	assert.True(t, got.TravelMiles.Equal(acct.TravelMiles))
	assert.Equal(t, when, got.UpdatedAt)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	good := MarshalAccount(model.NewAccount("kid-1", "Milo"))

	tests := []struct {
		name string
		col  int
		val  string
	}{
		{"empty user", colUserID, ""},
		{"bad tokens", colMokTokens, "lots"},
		{"negative xp", colXP, "-1"},
		{"negative savings", colSavings, "-0.01"},
		{"bad time", colAcctUpdated, "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := append([]string(nil), good...)
			rec[tt.col] = tt.val
			_, err := UnmarshalAccount(rec)
			assert.Error(t, err)
		})
	}
}

func TestReadAccount_RowCount(t *testing.T) {
	_, err := ReadAccount(bytes.NewBufferString(""))
	assert.Error(t, err)
}

func TestInitOpen(t *testing.T) {
	s := newStore(t)

	_, err := Init(s.Root(), model.NewAccount("kid-2", "Other"))
	assert.Error(t, err, "init over existing account")

	reopened, err := Open(s.Root())
	require.NoError(t, err)
	acct, err := reopened.LoadAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kid-1", acct.UserID)
	assert.Equal(t, int64(120), acct.MokTokens)

	_, err = Open(t.TempDir())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGoals(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	gs, err := s.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, gs)

	g := model.Goal{ID: "g1", Title: "Bike", TargetAmount: dec("80"), CurrentAmount: decimal.Zero, Priority: model.PriorityHigh, CreatedAt: when}
	require.NoError(t, s.SaveGoal(ctx, g))
	g.CurrentAmount = dec("5")
	require.NoError(t, s.SaveGoal(ctx, g))
	require.NoError(t, s.SaveGoal(ctx, model.Goal{ID: "g2", Title: "Lego", TargetAmount: dec("30"), CurrentAmount: decimal.Zero, Priority: model.PriorityLow, CreatedAt: when}))

	gs, err = s.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, gs, 2)
	assert.Equal(t, "g1", gs[0].ID)

	got, err := s.LoadGoal(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(dec("5")))

	_, err = s.LoadGoal(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMissions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveMission(ctx, model.Mission{ID: "m1", Title: "Make bed, every day", Reward: 5}))
	require.NoError(t, s.SaveMission(ctx, model.Mission{ID: "m1", Title: "Make bed, every day", Reward: 5, Completed: true, CompletedAt: when}))

	ms, err := s.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].Completed)
	assert.Equal(t, when, ms[0].CompletedAt)
	assert.Equal(t, "Make bed, every day", ms[0].Title)

	_, err = s.LoadMission(ctx, "m2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestProgress(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p, err := s.LoadProgress(ctx, "saving-101")
	require.NoError(t, err)
	assert.Equal(t, model.ModuleProgress{ModuleID: "saving-101"}, p)

	require.NoError(t, s.SaveProgress(ctx, model.ModuleProgress{ModuleID: "saving-101", Completions: 1, BestScore: 7, LastCompletedAt: when}))
	require.NoError(t, s.SaveProgress(ctx, model.ModuleProgress{ModuleID: "budgeting", Completions: 2, BestScore: 10, LastCompletedAt: when}))

	all, err := s.AllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "budgeting", all[0].ModuleID)

	p, err = s.LoadProgress(ctx, "saving-101")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.BestScore)
}

func TestCommit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	acct, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	acct.MokTokens = 130
	acct.XP = 15
	m := model.Mission{ID: "m1", Title: "Dishes", Reward: 10, Completed: true, CompletedAt: when}
	tx := model.Transaction{ID: "t1", Type: model.TxIncome, Amount: dec("10"), Category: model.CategoryMission, Description: "Dishes", Date: when}

	require.NoError(t, s.Commit(ctx, economy.Changeset{Account: acct, Mission: &m, Transactions: []model.Transaction{tx}}))

	got, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(130), got.MokTokens)
	ms, err := s.ListMissions(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	txs, err := s.Journal().ReadMonth(2026, 5)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "t1", txs[0].ID)
}

func TestCommit_FailureRestoresFiles(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tx := model.Transaction{ID: "t1", Type: model.TxIncome, Amount: dec("1"), Category: model.CategoryMission, Date: when}
	require.NoError(t, s.AppendTransaction(ctx, tx))

	before, err := os.ReadFile(filepath.Join(s.Root(), AccountFile))
	require.NoError(t, err)

	acct, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	acct.MokTokens = 999
	p := model.ModuleProgress{ModuleID: "budgeting", Completions: 1, BestScore: 3, LastCompletedAt: when}

	// Reusing t1 makes the journal append fail after the account was written.
	err = s.Commit(ctx, economy.Changeset{Account: acct, Progress: &p, Transactions: []model.Transaction{tx}})
	require.Error(t, err)

	after, err := os.ReadFile(filepath.Join(s.Root(), AccountFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(filepath.Join(s.Root(), ProgressFile))
	assert.True(t, os.IsNotExist(err), "progress.csv should be removed again")

	journal, err := os.ReadFile(s.Journal().MonthFile(when))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(journal), "\n"), "header plus the original row")
}

func TestCommit_RejectsInvalidTransaction(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	acct, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	acct.MokTokens = 0

	err = s.Commit(ctx, economy.Changeset{Account: acct, Transactions: []model.Transaction{{ID: "t1", Type: model.TxIncome, Amount: decimal.Zero, Date: when}}})
	require.Error(t, err)

	got, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.MokTokens)
}

func TestEngineOverFileStore(t *testing.T) {
	s := newStore(t)
	e := economy.New(s, economy.Options{Clock: func() time.Time { return when }})
	ctx := context.Background()

	_, err := e.Transfer(ctx, dec("12.50"), model.FieldSavings, model.FieldInvestment)
	require.NoError(t, err)

	acct, err := s.LoadAccount(ctx)
	require.NoError(t, err)
	assert.True(t, acct.Investment.Equal(dec("12.5")))
	assert.Equal(t, int64(120+25), acct.MokTokens)
	assert.Equal(t, int64(37), acct.XP)

	verrs, err := s.Journal().Verify(2026, 5)
	require.NoError(t, err)
	assert.Empty(t, verrs)
}
