// Package sqlstore keeps economy state in SQLite and commits each
// operation in a single SQL transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/mokbank/mokbank/internal/economy"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/txlog"
)

// Store is a SQLite-backed economy.Store scoped to one user.
type Store struct {
	db     *sql.DB
	userID string
}

var _ economy.Store = (*Store)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens the database at path, applies migrations and scopes the store
// to userID.
func Open(ctx context.Context, path, userID string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db, userID), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, userID string) *Store {
	return &Store{db: db, userID: userID}
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadAccount reads the user's account.
func (s *Store) LoadAccount(ctx context.Context) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT user_id, display_name, mok_tokens, xp, level, savings, investment, crypto, usdc, travel_miles, updated_at
FROM accounts WHERE user_id = ?`, s.userID)

	var (
		acct    model.Account
		monies  [5]string
		updated int64
	)
	err := row.Scan(&acct.UserID, &acct.DisplayName, &acct.MokTokens, &acct.XP, &acct.Level,
		&monies[0], &monies[1], &monies[2], &monies[3], &monies[4], &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", s.userID, model.ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("load account: %w", err)
	}
	dsts := []*decimal.Decimal{&acct.Savings, &acct.Investment, &acct.Crypto, &acct.USDC, &acct.TravelMiles}
	for i, v := range monies {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return model.Account{}, fmt.Errorf("load account: parsing balance %q: %w", v, err)
		}
		*dsts[i] = d
	}
	acct.UpdatedAt = fromMillis(updated)
	return acct, nil
}

// Persist upserts the account.
func (s *Store) Persist(ctx context.Context, acct model.Account) error {
	return s.persist(ctx, s.db, acct)
}

func (s *Store) persist(ctx context.Context, ex execer, acct model.Account) error {
	if acct.UserID != s.userID {
		return fmt.Errorf("persist account: user %q does not match store user %q", acct.UserID, s.userID)
	}
	_, err := ex.ExecContext(ctx, `
INSERT INTO accounts (user_id, display_name, mok_tokens, xp, level, savings, investment, crypto, usdc, travel_miles, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	display_name = excluded.display_name,
	mok_tokens = excluded.mok_tokens,
	xp = excluded.xp,
	level = excluded.level,
	savings = excluded.savings,
	investment = excluded.investment,
	crypto = excluded.crypto,
	usdc = excluded.usdc,
	travel_miles = excluded.travel_miles,
	updated_at = excluded.updated_at`,
		acct.UserID, acct.DisplayName, acct.MokTokens, acct.XP, acct.Level,
		acct.Savings.String(), acct.Investment.String(), acct.Crypto.String(),
		acct.USDC.String(), acct.TravelMiles.String(), toMillis(acct.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("persist account: %w", err)
	}
	return nil
}

// AppendTransaction inserts one transaction row.
func (s *Store) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	return s.appendTx(ctx, s.db, tx)
}

func (s *Store) appendTx(ctx context.Context, ex execer, tx model.Transaction) error {
	if verrs := txlog.ValidateRow(tx); len(verrs) > 0 {
		return fmt.Errorf("append transaction: %w", verrs[0])
	}
	_, err := ex.ExecContext(ctx, `
INSERT INTO transactions (tx_id, user_id, group_id, date, type, amount, category, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, s.userID, tx.GroupID, toMillis(tx.Date), string(tx.Type), tx.Amount.String(), tx.Category, tx.Description,
	)
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	return nil
}

// History returns the user's transactions matching f in insertion order.
func (s *Store) History(ctx context.Context, f txlog.Filter) ([]model.Transaction, error) {
	q := `SELECT tx_id, group_id, date, type, amount, category, description FROM transactions WHERE user_id = ?`
	args := []any{s.userID}
	if f.Type != "" {
		q += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		q += ` AND date >= ?`
		args = append(args, toMillis(f.From))
	}
	if !f.To.IsZero() {
		q += ` AND date < ?`
		args = append(args, toMillis(f.To))
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			tx     model.Transaction
			date   int64
			typ    string
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.GroupID, &date, &typ, &amount, &tx.Category, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Type, err = model.ParseTransactionType(typ); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing amount %q: %w", tx.ID, amount, err)
		}
		tx.Date = fromMillis(date)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Commit applies cs in one SQL transaction.
func (s *Store) Commit(ctx context.Context, cs economy.Changeset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	if err := s.apply(ctx, tx, cs); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) apply(ctx context.Context, ex execer, cs economy.Changeset) error {
	if err := s.persist(ctx, ex, cs.Account); err != nil {
		return err
	}
	if cs.Goal != nil {
		if err := s.saveGoal(ctx, ex, *cs.Goal); err != nil {
			return err
		}
	}
	if cs.Mission != nil {
		if err := s.saveMission(ctx, ex, *cs.Mission); err != nil {
			return err
		}
	}
	if cs.Progress != nil {
		if err := s.saveProgress(ctx, ex, *cs.Progress); err != nil {
			return err
		}
	}
	for _, t := range cs.Transactions {
		if err := s.appendTx(ctx, ex, t); err != nil {
			return err
		}
	}
	return nil
}

// toMillis stores the zero time as 0.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
