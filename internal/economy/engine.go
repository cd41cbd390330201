// Package economy runs the user-facing operations end to end: load the
// snapshot, apply a pure service, commit the effects, return the new state.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mokbank/mokbank/internal/catalog"
	"github.com/mokbank/mokbank/internal/conversion"
	"github.com/mokbank/mokbank/internal/goals"
	"github.com/mokbank/mokbank/internal/id"
	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/metrics"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
	"github.com/mokbank/mokbank/internal/rewards"
	"github.com/mokbank/mokbank/internal/transfer"
)

// Operation names used in logs and metrics.
const (
	OpConvert         = "convert"
	OpTransfer        = "transfer"
	OpCreateGoal      = "create_goal"
	OpContribute      = "contribute"
	OpEditGoal        = "edit_goal"
	OpAddMission      = "add_mission"
	OpCompleteMission = "complete_mission"
	OpCompleteModule  = "complete_module"
	OpDepositCrypto   = "deposit_crypto"
	OpRename          = "rename"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Table            rates.Table
	Catalog          *catalog.Service
	RepeatCompletion bool
	Logger           *logrus.Logger
	Clock            func() time.Time
	NewID            func() string
	// AfterCommit runs after every successful commit, e.g. to snapshot the
	// data directory. Its error is logged, not returned.
	AfterCommit func(ctx context.Context, op, summary string) error
}

// Engine executes economy operations against a Store.
type Engine struct {
	store       Store
	table       rates.Table
	ledger      ledger.Ledger
	conv        *conversion.Service
	xfer        *transfer.Service
	goals       *goals.Tracker
	rewards     *rewards.Engine
	catalog     *catalog.Service
	repeat      bool
	log         *logrus.Entry
	now         func() time.Time
	newID       func() string
	afterCommit func(ctx context.Context, op, summary string) error
}

// New creates an Engine.
func New(store Store, opts Options) *Engine {
	t := opts.Table
	if t.LevelStep == 0 {
		t = rates.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.NewService(catalog.DefaultCurriculum(""))
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = id.New
	}
	return &Engine{
		store:       store,
		table:       t,
		ledger:      ledger.New(t),
		conv:        conversion.NewService(t),
		xfer:        transfer.NewService(t),
		goals:       goals.NewTracker(t),
		rewards:     rewards.NewEngine(t),
		catalog:     cat,
		repeat:      opts.RepeatCompletion,
		log:         logger.WithField("component", "economy"),
		now:         clock,
		newID:       newID,
		afterCommit: opts.AfterCommit,
	}
}

// Table returns the rate table in use.
func (e *Engine) Table() rates.Table { return e.table }

// Catalog returns the learning catalog in use.
func (e *Engine) Catalog() *catalog.Service { return e.catalog }

// Account loads the current snapshot.
func (e *Engine) Account(ctx context.Context) (model.Account, error) {
	acct, err := e.store.LoadAccount(ctx)
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account: %w", err)
	}
	return acct, nil
}

// Convert spends tokens on cash, USDC or travel miles.
func (e *Engine) Convert(ctx context.Context, amount int64, asset rates.Asset) (conversion.Result, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return conversion.Result{}, err
	}
	res, err := e.conv.Convert(acct, amount, asset, e.now())
	if err != nil {
		return conversion.Result{}, e.reject(OpConvert, acct, err)
	}
	cs := Changeset{Account: res.Account, Transactions: []model.Transaction{res.Transaction}}
	if err := e.commit(ctx, OpConvert, acct, &cs); err != nil {
		return conversion.Result{}, err
	}
	res.Account = cs.Account
	res.Transaction = cs.Transactions[0]
	metrics.TokensConverted.WithLabelValues(string(asset)).Add(float64(amount))
	e.done(ctx, OpConvert, acct, fmt.Sprintf("convert %d tokens to %s", amount, asset))
	return res, nil
}

// Transfer moves money between two of the user's sub-accounts.
func (e *Engine) Transfer(ctx context.Context, amount decimal.Decimal, from, to model.AccountField) (transfer.Result, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return transfer.Result{}, err
	}
	res, err := e.xfer.Transfer(acct, amount, from, to, e.now())
	if err != nil {
		return transfer.Result{}, e.reject(OpTransfer, acct, err)
	}
	group := e.newID()
	legs := res.Transactions
	for i := range legs {
		legs[i].GroupID = group
		legs[i].ID = id.FormatLegID(group, i)
	}
	cs := Changeset{Account: res.Account, Transactions: legs[:]}
	if err := e.commit(ctx, OpTransfer, acct, &cs); err != nil {
		return transfer.Result{}, err
	}
	res.Account = cs.Account
	res.Transactions = legs
	metrics.RecordReward("investment", res.Reward.Tokens, res.Reward.XP)
	e.done(ctx, OpTransfer, acct, fmt.Sprintf("transfer %s %s -> %s", amount, from, to))
	return res, nil
}

// CreateGoal starts a new savings goal.
func (e *Engine) CreateGoal(ctx context.Context, p goals.NewParams) (model.Goal, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return model.Goal{}, err
	}
	g, err := goals.New(p, e.now())
	if err != nil {
		return model.Goal{}, e.reject(OpCreateGoal, acct, err)
	}
	if err := e.store.SaveGoal(ctx, g); err != nil {
		return model.Goal{}, e.fail(OpCreateGoal, acct, err)
	}
	e.done(ctx, OpCreateGoal, acct, fmt.Sprintf("create goal %q", g.Title))
	return g, nil
}

// Goals lists all goals.
func (e *Engine) Goals(ctx context.Context) ([]model.Goal, error) {
	gs, err := e.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return gs, nil
}

// Contribute moves savings into a goal, optionally editing it at the same time.
func (e *Engine) Contribute(ctx context.Context, goalID string, amount decimal.Decimal, edits *goals.Edits) (goals.Result, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return goals.Result{}, err
	}
	g, err := e.store.LoadGoal(ctx, goalID)
	if err != nil {
		return goals.Result{}, e.reject(OpContribute, acct, fmt.Errorf("loading goal %s: %w", goalID, err))
	}
	res, err := e.goals.Contribute(g, acct, amount, edits, e.now())
	if err != nil {
		return goals.Result{}, e.reject(OpContribute, acct, err)
	}
	cs := Changeset{Account: res.Account, Goal: &res.Goal, Transactions: []model.Transaction{res.Transaction}}
	if err := e.commit(ctx, OpContribute, acct, &cs); err != nil {
		return goals.Result{}, err
	}
	res.Account = cs.Account
	res.Transaction = cs.Transactions[0]
	e.done(ctx, OpContribute, acct, fmt.Sprintf("contribute %s to %q", amount, g.Title))
	return res, nil
}

// EditGoal changes a goal's due date or priority.
func (e *Engine) EditGoal(ctx context.Context, goalID string, edits *goals.Edits) (model.Goal, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return model.Goal{}, err
	}
	g, err := e.store.LoadGoal(ctx, goalID)
	if err != nil {
		return model.Goal{}, e.reject(OpEditGoal, acct, fmt.Errorf("loading goal %s: %w", goalID, err))
	}
	next, err := goals.Edit(g, edits)
	if err != nil {
		return model.Goal{}, e.reject(OpEditGoal, acct, err)
	}
	if err := e.store.SaveGoal(ctx, next); err != nil {
		return model.Goal{}, e.fail(OpEditGoal, acct, err)
	}
	e.done(ctx, OpEditGoal, acct, fmt.Sprintf("edit goal %q", g.Title))
	return next, nil
}

// AddMission registers a new chore worth reward tokens.
func (e *Engine) AddMission(ctx context.Context, title string, reward int64) (model.Mission, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return model.Mission{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Mission{}, e.reject(OpAddMission, acct, errors.New("mission title is required"))
	}
	if reward <= 0 {
		return model.Mission{}, e.reject(OpAddMission, acct, fmt.Errorf("%w: mission reward %d", model.ErrInvalidAmount, reward))
	}
	m := model.Mission{ID: e.newID(), Title: title, Reward: reward}
	if err := e.store.SaveMission(ctx, m); err != nil {
		return model.Mission{}, e.fail(OpAddMission, acct, err)
	}
	e.done(ctx, OpAddMission, acct, fmt.Sprintf("add mission %q", title))
	return m, nil
}

// Missions lists all missions.
func (e *Engine) Missions(ctx context.Context) ([]model.Mission, error) {
	ms, err := e.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}
	return ms, nil
}

// MissionResult is the outcome of completing a mission.
type MissionResult struct {
	Account     model.Account
	Mission     model.Mission
	Reward      rewards.Reward
	Transaction model.Transaction
}

// CompleteMission pays out a mission. A mission pays only once.
func (e *Engine) CompleteMission(ctx context.Context, missionID string) (MissionResult, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return MissionResult{}, err
	}
	m, err := e.store.LoadMission(ctx, missionID)
	if err != nil {
		return MissionResult{}, e.reject(OpCompleteMission, acct, fmt.Errorf("loading mission %s: %w", missionID, err))
	}
	if m.Completed {
		return MissionResult{}, e.reject(OpCompleteMission, acct, fmt.Errorf("%w: %q", model.ErrMissionCompleted, m.Title))
	}
	r, err := e.rewards.Mission(m.Reward)
	if err != nil {
		return MissionResult{}, e.reject(OpCompleteMission, acct, err)
	}
	next, err := e.ledger.Apply(acct, ledger.Delta{Progress: r.Delta()})
	if err != nil {
		return MissionResult{}, e.reject(OpCompleteMission, acct, err)
	}
	now := e.now()
	m.Completed = true
	m.CompletedAt = now
	tx := model.Transaction{
		ID:          e.newID(),
		Type:        model.TxIncome,
		Amount:      decimal.NewFromInt(r.Tokens),
		Category:    model.CategoryMission,
		Description: fmt.Sprintf("Mission %q: +%d MokTokens, +%d XP", m.Title, r.Tokens, r.XP),
		Date:        now,
	}
	cs := Changeset{Account: next, Mission: &m, Transactions: []model.Transaction{tx}}
	if err := e.commit(ctx, OpCompleteMission, acct, &cs); err != nil {
		return MissionResult{}, err
	}
	metrics.RecordReward("mission", r.Tokens, r.XP)
	e.done(ctx, OpCompleteMission, acct, fmt.Sprintf("complete mission %q", m.Title))
	return MissionResult{Account: cs.Account, Mission: m, Reward: r, Transaction: cs.Transactions[0]}, nil
}

// ModuleResult is the outcome of completing a learning module.
type ModuleResult struct {
	Account  model.Account
	Progress model.ModuleProgress
	Reward   rewards.Reward
	// Transaction is nil when no tokens were awarded.
	Transaction *model.Transaction
}

// CompleteModule records a finished lesson and awards XP and tokens for the
// score. Repeat completions are paid only when the engine allows it.
func (e *Engine) CompleteModule(ctx context.Context, moduleID string, score int64) (ModuleResult, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return ModuleResult{}, err
	}
	mod, ok := e.catalog.Get(moduleID)
	if !ok {
		return ModuleResult{}, e.reject(OpCompleteModule, acct, fmt.Errorf("%w: module %s", model.ErrNotFound, moduleID))
	}
	r, err := e.rewards.Learning(score, mod.TotalPoints, mod.XPReward)
	if err != nil {
		return ModuleResult{}, e.reject(OpCompleteModule, acct, err)
	}
	prog, err := e.store.LoadProgress(ctx, moduleID)
	if err != nil {
		return ModuleResult{}, fmt.Errorf("loading progress for %s: %w", moduleID, err)
	}
	if prog.Completions > 0 && !e.repeat {
		r = rewards.Reward{}
	}
	next, err := e.ledger.Apply(acct, ledger.Delta{Progress: r.Delta()})
	if err != nil {
		return ModuleResult{}, e.reject(OpCompleteModule, acct, err)
	}

	now := e.now()
	prog.ModuleID = moduleID
	prog.Completions++
	if score > prog.BestScore {
		prog.BestScore = score
	}
	prog.LastCompletedAt = now

	cs := Changeset{Account: next, Progress: &prog}
	if r.Tokens > 0 {
		cs.Transactions = []model.Transaction{{
			ID:          e.newID(),
			Type:        model.TxIncome,
			Amount:      decimal.NewFromInt(r.Tokens),
			Category:    model.CategoryLearning,
			Description: fmt.Sprintf("Completed %q (%d/%d): +%d MokTokens, +%d XP", mod.Title, score, mod.TotalPoints, r.Tokens, r.XP),
			Date:        now,
		}}
	}
	if err := e.commit(ctx, OpCompleteModule, acct, &cs); err != nil {
		return ModuleResult{}, err
	}
	metrics.RecordReward("learning", r.Tokens, r.XP)
	e.done(ctx, OpCompleteModule, acct, fmt.Sprintf("complete module %s", moduleID))

	res := ModuleResult{Account: cs.Account, Progress: prog, Reward: r}
	if len(cs.Transactions) == 1 {
		res.Transaction = &cs.Transactions[0]
	}
	return res, nil
}

// Progress returns the recorded progress for a module.
func (e *Engine) Progress(ctx context.Context, moduleID string) (model.ModuleProgress, error) {
	p, err := e.store.LoadProgress(ctx, moduleID)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("loading progress for %s: %w", moduleID, err)
	}
	return p, nil
}

// DepositCrypto records a pending crypto deposit. Balances are untouched.
func (e *Engine) DepositCrypto(ctx context.Context, amount decimal.Decimal, source string) (model.Transaction, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return model.Transaction{}, err
	}
	tx, err := e.rewards.CryptoDeposit(amount, source, e.now())
	if err != nil {
		return model.Transaction{}, e.reject(OpDepositCrypto, acct, err)
	}
	tx.ID = e.newID()
	if err := e.store.AppendTransaction(ctx, tx); err != nil {
		return model.Transaction{}, e.fail(OpDepositCrypto, acct, err)
	}
	e.done(ctx, OpDepositCrypto, acct, fmt.Sprintf("crypto deposit %s from %s", amount, source))
	return tx, nil
}

// Rename changes the account's display name.
func (e *Engine) Rename(ctx context.Context, name string) (model.Account, error) {
	acct, err := e.Account(ctx)
	if err != nil {
		return model.Account{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, e.reject(OpRename, acct, errors.New("display name is required"))
	}
	next, err := e.ledger.Apply(acct, ledger.Delta{Profile: &ledger.ProfileDelta{DisplayName: name}})
	if err != nil {
		return model.Account{}, e.reject(OpRename, acct, err)
	}
	cs := Changeset{Account: next}
	if err := e.commit(ctx, OpRename, acct, &cs); err != nil {
		return model.Account{}, err
	}
	e.done(ctx, OpRename, acct, "rename to "+name)
	return cs.Account, nil
}
