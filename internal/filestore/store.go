// Package filestore keeps one user's economy as plain CSV files in a data
// directory, suitable for versioning with git.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mokbank/mokbank/internal/economy"
	"github.com/mokbank/mokbank/internal/goals"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/txlog"
)

// File names under the data directory.
const (
	AccountFile  = "account.csv"
	GoalsFile    = "goals.csv"
	MissionsFile = "missions.csv"
	ProgressFile = "progress.csv"
	JournalDir   = "transactions"
)

// Store is a CSV-backed economy.Store. It is not safe for concurrent writers.
type Store struct {
	root string
	log  *txlog.Log
}

var _ economy.Store = (*Store)(nil)

// Init creates a data directory for acct. It fails if one already exists.
func Init(root string, acct model.Account) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(root, AccountFile)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s already exists", path)
	}
	s := &Store{root: root, log: txlog.New(filepath.Join(root, JournalDir))}
	if err := s.writeAccount(acct); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens an existing data directory.
func Open(root string) (*Store, error) {
	path := filepath.Join(root, AccountFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no account in %s (run 'mok init'): %w", root, model.ErrNotFound)
		}
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	return &Store{root: root, log: txlog.New(filepath.Join(root, JournalDir))}, nil
}

// Root returns the data directory.
func (s *Store) Root() string { return s.root }

// Journal returns the transaction log.
func (s *Store) Journal() *txlog.Log { return s.log }

func (s *Store) path(name string) string { return filepath.Join(s.root, name) }

// LoadAccount reads account.csv.
func (s *Store) LoadAccount(ctx context.Context) (model.Account, error) {
	if err := ctx.Err(); err != nil {
		return model.Account{}, err
	}
	f, err := os.Open(s.path(AccountFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Account{}, fmt.Errorf("account: %w", model.ErrNotFound)
		}
		return model.Account{}, fmt.Errorf("opening account: %w", err)
	}
	defer f.Close()
	return ReadAccount(f)
}

// Persist replaces account.csv.
func (s *Store) Persist(ctx context.Context, acct model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeAccount(acct)
}

func (s *Store) writeAccount(acct model.Account) error {
	return writeFile(s.path(AccountFile), func(w io.Writer) error { return WriteAccount(w, acct) })
}

// AppendTransaction appends one record to the monthly journal.
func (s *Store) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	return s.log.AppendTransaction(ctx, tx)
}

// History returns journal records matching f, oldest month first.
func (s *Store) History(ctx context.Context, f txlog.Filter) ([]model.Transaction, error) {
	return s.log.Query(ctx, f)
}

// LoadGoal finds a goal by ID.
func (s *Store) LoadGoal(ctx context.Context, id string) (model.Goal, error) {
	gs, err := s.ListGoals(ctx)
	if err != nil {
		return model.Goal{}, err
	}
	for _, g := range gs {
		if g.ID == id {
			return g, nil
		}
	}
	return model.Goal{}, fmt.Errorf("goal %s: %w", id, model.ErrNotFound)
}

// ListGoals reads goals.csv in file order.
func (s *Store) ListGoals(ctx context.Context) ([]model.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var gs []model.Goal
	err := readFile(s.path(GoalsFile), func(r io.Reader) (err error) {
		gs, err = goals.ReadGoals(r)
		return err
	})
	return gs, err
}

// SaveGoal inserts or replaces a goal.
func (s *Store) SaveGoal(ctx context.Context, g model.Goal) error {
	gs, err := s.ListGoals(ctx)
	if err != nil {
		return err
	}
	gs = upsert(gs, g, func(x model.Goal) bool { return x.ID == g.ID })
	return writeFile(s.path(GoalsFile), func(w io.Writer) error { return goals.WriteGoals(w, gs) })
}

// LoadMission finds a mission by ID.
func (s *Store) LoadMission(ctx context.Context, id string) (model.Mission, error) {
	ms, err := s.ListMissions(ctx)
	if err != nil {
		return model.Mission{}, err
	}
	for _, m := range ms {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Mission{}, fmt.Errorf("mission %s: %w", id, model.ErrNotFound)
}

// ListMissions reads missions.csv in file order.
func (s *Store) ListMissions(ctx context.Context) ([]model.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ms []model.Mission
	err := readFile(s.path(MissionsFile), func(r io.Reader) (err error) {
		ms, err = ReadMissions(r)
		return err
	})
	return ms, err
}

// SaveMission inserts or replaces a mission.
func (s *Store) SaveMission(ctx context.Context, m model.Mission) error {
	ms, err := s.ListMissions(ctx)
	if err != nil {
		return err
	}
	ms = upsert(ms, m, func(x model.Mission) bool { return x.ID == m.ID })
	return writeFile(s.path(MissionsFile), func(w io.Writer) error { return WriteMissions(w, ms) })
}

// LoadProgress returns the progress for a module, zero if never completed.
func (s *Store) LoadProgress(ctx context.Context, moduleID string) (model.ModuleProgress, error) {
	all, err := s.AllProgress(ctx)
	if err != nil {
		return model.ModuleProgress{}, err
	}
	for _, p := range all {
		if p.ModuleID == moduleID {
			return p, nil
		}
	}
	return model.ModuleProgress{ModuleID: moduleID}, nil
}

// AllProgress reads progress.csv sorted by module ID.
func (s *Store) AllProgress(ctx context.Context) ([]model.ModuleProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ps []model.ModuleProgress
	err := readFile(s.path(ProgressFile), func(r io.Reader) (err error) {
		ps, err = ReadProgress(r)
		return err
	})
	return ps, err
}

// SaveProgress inserts or replaces a module's progress.
func (s *Store) SaveProgress(ctx context.Context, p model.ModuleProgress) error {
	ps, err := s.AllProgress(ctx)
	if err != nil {
		return err
	}
	ps = upsert(ps, p, func(x model.ModuleProgress) bool { return x.ModuleID == p.ModuleID })
	sort.Slice(ps, func(i, j int) bool { return ps[i].ModuleID < ps[j].ModuleID })
	return writeFile(s.path(ProgressFile), func(w io.Writer) error { return WriteProgress(w, ps) })
}

// Commit writes every effect of cs. If any step fails the files it touched
// are restored, so the directory is left as it was.
func (s *Store) Commit(ctx context.Context, cs economy.Changeset) error {
	for _, tx := range cs.Transactions {
		if verrs := txlog.ValidateRow(tx); len(verrs) > 0 {
			return fmt.Errorf("transaction %s: %w", tx.ID, verrs[0])
		}
	}

	touched := []string{s.path(AccountFile)}
	if cs.Goal != nil {
		touched = append(touched, s.path(GoalsFile))
	}
	if cs.Mission != nil {
		touched = append(touched, s.path(MissionsFile))
	}
	if cs.Progress != nil {
		touched = append(touched, s.path(ProgressFile))
	}
	for _, tx := range cs.Transactions {
		touched = append(touched, s.log.MonthFile(tx.Date))
	}
	snap, err := takeSnapshot(touched)
	if err != nil {
		return err
	}

	if err := s.apply(ctx, cs); err != nil {
		if rerr := snap.restore(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

func (s *Store) apply(ctx context.Context, cs economy.Changeset) error {
	if err := s.Persist(ctx, cs.Account); err != nil {
		return err
	}
	if cs.Goal != nil {
		if err := s.SaveGoal(ctx, *cs.Goal); err != nil {
			return err
		}
	}
	if cs.Mission != nil {
		if err := s.SaveMission(ctx, *cs.Mission); err != nil {
			return err
		}
	}
	if cs.Progress != nil {
		if err := s.SaveProgress(ctx, *cs.Progress); err != nil {
			return err
		}
	}
	if len(cs.Transactions) > 0 {
		if err := s.log.Append(ctx, cs.Transactions...); err != nil {
			return err
		}
	}
	return nil
}

func upsert[T any](xs []T, v T, match func(T) bool) []T {
	for i := range xs {
		if match(xs[i]) {
			xs[i] = v
			return xs
		}
	}
	return append(xs, v)
}

// readFile calls fn with the file's contents. A missing file is empty.
func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFile replaces path via a temp file and rename.
func writeFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// snapshot holds file contents before a commit; nil means the file was absent.
type snapshot map[string][]byte

func takeSnapshot(paths []string) (snapshot, error) {
	snap := make(snapshot, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			snap[p] = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s: %w", filepath.Base(p), err)
		}
		snap[p] = data
	}
	return snap, nil
}

func (s snapshot) restore() error {
	var errs []error
	for p, data := range s {
		if data == nil {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
