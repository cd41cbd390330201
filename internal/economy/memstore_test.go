package economy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mokbank/mokbank/internal/model"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory Store with failure injection.
type memStore struct {
	acct     model.Account
	txs      []model.Transaction
	goals    map[string]model.Goal
	missions map[string]model.Mission
	progress map[string]model.ModuleProgress

	// failPersist fails the next N account writes. failAppendAt fails the
	// Nth transaction append attempt, counted over the store's lifetime.
	failPersist  int
	failAppendAt int
	appends      int
	commits      int
}

func newMemStore(acct model.Account) *memStore {
	return &memStore{
		acct:     acct,
		goals:    map[string]model.Goal{},
		missions: map[string]model.Mission{},
		progress: map[string]model.ModuleProgress{},
	}
}

func (m *memStore) LoadAccount(context.Context) (model.Account, error) { return m.acct, nil }

func (m *memStore) Persist(_ context.Context, a model.Account) error {
	if err := m.checkPersist(); err != nil {
		return err
	}
	m.acct = a
	return nil
}

func (m *memStore) AppendTransaction(_ context.Context, tx model.Transaction) error {
	if err := m.checkAppend(tx); err != nil {
		return err
	}
	m.txs = append(m.txs, tx)
	return nil
}

func (m *memStore) checkPersist() error {
	if m.failPersist > 0 {
		m.failPersist--
		return errDiskFull
	}
	return nil
}

func (m *memStore) checkAppend(tx model.Transaction) error {
	m.appends++
	if m.appends == m.failAppendAt {
		return fmt.Errorf("append %s: %w", tx.ID, errDiskFull)
	}
	return nil
}

func (m *memStore) LoadGoal(_ context.Context, id string) (model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return model.Goal{}, fmt.Errorf("goal %s: %w", id, model.ErrNotFound)
	}
	return g, nil
}

func (m *memStore) SaveGoal(_ context.Context, g model.Goal) error {
	m.goals[g.ID] = g
	return nil
}

func (m *memStore) ListGoals(context.Context) ([]model.Goal, error) {
	out := make([]model.Goal, 0, len(m.goals))
	for _, g := range m.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) LoadMission(_ context.Context, id string) (model.Mission, error) {
	ms, ok := m.missions[id]
	if !ok {
		return model.Mission{}, fmt.Errorf("mission %s: %w", id, model.ErrNotFound)
	}
	return ms, nil
}

func (m *memStore) SaveMission(_ context.Context, ms model.Mission) error {
	m.missions[ms.ID] = ms
	return nil
}

func (m *memStore) ListMissions(context.Context) ([]model.Mission, error) {
	out := make([]model.Mission, 0, len(m.missions))
	for _, ms := range m.missions {
		out = append(out, ms)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) LoadProgress(_ context.Context, moduleID string) (model.ModuleProgress, error) {
	p, ok := m.progress[moduleID]
	if !ok {
		return model.ModuleProgress{ModuleID: moduleID}, nil
	}
	return p, nil
}

func (m *memStore) SaveProgress(_ context.Context, p model.ModuleProgress) error {
	m.progress[p.ModuleID] = p
	return nil
}

// Commit checks every write before applying any of them, so a failure
// leaves the store as it was.
func (m *memStore) Commit(_ context.Context, cs Changeset) error {
	m.commits++
	if err := m.checkPersist(); err != nil {
		return err
	}
	for _, tx := range cs.Transactions {
		if err := m.checkAppend(tx); err != nil {
			return err
		}
	}

	m.acct = cs.Account
	if cs.Goal != nil {
		m.goals[cs.Goal.ID] = *cs.Goal
	}
	if cs.Mission != nil {
		m.missions[cs.Mission.ID] = *cs.Mission
	}
	if cs.Progress != nil {
		m.progress[cs.Progress.ModuleID] = *cs.Progress
	}
	m.txs = append(m.txs, cs.Transactions...)
	return nil
}
