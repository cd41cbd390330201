package economy

import (
	"context"

	"github.com/mokbank/mokbank/internal/model"
)

// AccountStore persists the account snapshot of the store's user.
type AccountStore interface {
	LoadAccount(ctx context.Context) (model.Account, error)
	Persist(ctx context.Context, acct model.Account) error
}

// TransactionStore is the append-only transaction sink.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, tx model.Transaction) error
}

// GoalStore persists savings goals. LoadGoal returns model.ErrNotFound for
// unknown IDs.
type GoalStore interface {
	LoadGoal(ctx context.Context, id string) (model.Goal, error)
	SaveGoal(ctx context.Context, g model.Goal) error
	ListGoals(ctx context.Context) ([]model.Goal, error)
}

// MissionStore persists missions. LoadMission returns model.ErrNotFound for
// unknown IDs.
type MissionStore interface {
	LoadMission(ctx context.Context, id string) (model.Mission, error)
	SaveMission(ctx context.Context, m model.Mission) error
	ListMissions(ctx context.Context) ([]model.Mission, error)
}

// ProgressStore persists learning-module progress. A module never completed
// loads as a zero ModuleProgress with its ModuleID set.
type ProgressStore interface {
	LoadProgress(ctx context.Context, moduleID string) (model.ModuleProgress, error)
	SaveProgress(ctx context.Context, p model.ModuleProgress) error
}

// Store is everything the Engine needs from persistence. Every mutating
// operation goes through Commit, so a store must apply a Changeset
// all-or-nothing.
type Store interface {
	AccountStore
	TransactionStore
	GoalStore
	MissionStore
	ProgressStore
	Committer
}

// Changeset is every effect of one operation.
type Changeset struct {
	Account      model.Account
	Goal         *model.Goal
	Mission      *model.Mission
	Progress     *model.ModuleProgress
	Transactions []model.Transaction
}

// Committer applies a whole Changeset at once. On error none of its effects
// may be visible.
type Committer interface {
	Commit(ctx context.Context, cs Changeset) error
}
