package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/model"
)

const goalColumns = `goal_id, title, target_amount, current_amount, category, due_date, priority, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(sc scanner) (model.Goal, error) {
	var (
		g                model.Goal
		target, current  string
		priority         string
		due, createdAtMs int64
	)
	if err := sc.Scan(&g.ID, &g.Title, &target, &current, &g.Category, &due, &priority, &createdAtMs); err != nil {
		return model.Goal{}, err
	}
	var err error
	if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return model.Goal{}, fmt.Errorf("goal %s: parsing target %q: %w", g.ID, target, err)
	}
	if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return model.Goal{}, fmt.Errorf("goal %s: parsing current %q: %w", g.ID, current, err)
	}
	if g.Priority, err = model.ParsePriority(priority); err != nil {
		return model.Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.DueDate = fromMillis(due)
	g.CreatedAt = fromMillis(createdAtMs)
	return g, nil
}

// LoadGoal reads one goal.
func (s *Store) LoadGoal(ctx context.Context, id string) (model.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? AND goal_id = ?`, s.userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, fmt.Errorf("goal %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Goal{}, fmt.Errorf("load goal: %w", err)
	}
	return g, nil
}

// ListGoals returns goals oldest first.
func (s *Store) ListGoals(ctx context.Context) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at, goal_id`, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("list goals: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return out, nil
}

// SaveGoal upserts a goal.
func (s *Store) SaveGoal(ctx context.Context, g model.Goal) error {
	return s.saveGoal(ctx, s.db, g)
}

func (s *Store) saveGoal(ctx context.Context, ex execer, g model.Goal) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO goals (user_id, `+goalColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, goal_id) DO UPDATE SET
	title = excluded.title,
	target_amount = excluded.target_amount,
	current_amount = excluded.current_amount,
	category = excluded.category,
	due_date = excluded.due_date,
	priority = excluded.priority`,
		s.userID, g.ID, g.Title, g.TargetAmount.String(), g.CurrentAmount.String(), g.Category,
		toMillis(g.DueDate), string(g.Priority), toMillis(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save goal %s: %w", g.ID, err)
	}
	return nil
}

const missionColumns = `mission_id, title, reward, completed, completed_at`

func scanMission(sc scanner) (model.Mission, error) {
	var (
		m    model.Mission
		done int64
		at   int64
	)
	if err := sc.Scan(&m.ID, &m.Title, &m.Reward, &done, &at); err != nil {
		return model.Mission{}, err
	}
	m.Completed = done != 0
	m.CompletedAt = fromMillis(at)
	return m, nil
}

// LoadMission reads one mission.
func (s *Store) LoadMission(ctx context.Context, id string) (model.Mission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE user_id = ? AND mission_id = ?`, s.userID, id)
	m, err := scanMission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Mission{}, fmt.Errorf("mission %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Mission{}, fmt.Errorf("load mission: %w", err)
	}
	return m, nil
}

// ListMissions returns open missions first, then completed ones.
func (s *Store) ListMissions(ctx context.Context) ([]model.Mission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE user_id = ? ORDER BY completed, title`, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()

	var out []model.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("list missions: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return out, nil
}

// SaveMission upserts a mission.
func (s *Store) SaveMission(ctx context.Context, m model.Mission) error {
	return s.saveMission(ctx, s.db, m)
}

func (s *Store) saveMission(ctx context.Context, ex execer, m model.Mission) error {
	var done int64
	if m.Completed {
		done = 1
	}
	_, err := ex.ExecContext(ctx, `
INSERT INTO missions (user_id, `+missionColumns+`)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, mission_id) DO UPDATE SET
	title = excluded.title,
	reward = excluded.reward,
	completed = excluded.completed,
	completed_at = excluded.completed_at`,
		s.userID, m.ID, m.Title, m.Reward, done, toMillis(m.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("save mission %s: %w", m.ID, err)
	}
	return nil
}

// LoadProgress returns a module's progress, zero if never completed.
func (s *Store) LoadProgress(ctx context.Context, moduleID string) (model.ModuleProgress, error) {
	p := model.ModuleProgress{ModuleID: moduleID}
	var last int64
	err := s.db.QueryRowContext(ctx, `
SELECT completions, best_score, last_completed_at FROM module_progress
WHERE user_id = ? AND module_id = ?`, s.userID, moduleID).Scan(&p.Completions, &p.BestScore, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("load progress: %w", err)
	}
	p.LastCompletedAt = fromMillis(last)
	return p, nil
}

// SaveProgress upserts a module's progress.
func (s *Store) SaveProgress(ctx context.Context, p model.ModuleProgress) error {
	return s.saveProgress(ctx, s.db, p)
}

func (s *Store) saveProgress(ctx context.Context, ex execer, p model.ModuleProgress) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO module_progress (user_id, module_id, completions, best_score, last_completed_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, module_id) DO UPDATE SET
	completions = excluded.completions,
	best_score = excluded.best_score,
	last_completed_at = excluded.last_completed_at`,
		s.userID, p.ModuleID, p.Completions, p.BestScore, toMillis(p.LastCompletedAt),
	)
	if err != nil {
		return fmt.Errorf("save progress %s: %w", p.ModuleID, err)
	}
	return nil
}
