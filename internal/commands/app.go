package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mokbank/mokbank/internal/activity"
	"github.com/mokbank/mokbank/internal/catalog"
	"github.com/mokbank/mokbank/internal/config"
	"github.com/mokbank/mokbank/internal/economy"
	"github.com/mokbank/mokbank/internal/filestore"
	"github.com/mokbank/mokbank/internal/gitops"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/sqlstore"
	"github.com/mokbank/mokbank/internal/txlog"
)

const (
	dotenvFile    = ".env"
	defaultDBFile = "mok.db"
)

type globalOptions struct {
	dataDir     string
	metricsFile string
}

// historySource is implemented by both store backends.
type historySource interface {
	History(ctx context.Context, f txlog.Filter) ([]model.Transaction, error)
}

// app is everything a command needs, opened from a data directory.
type app struct {
	dir     string
	cfg     *config.Config
	log     *logrus.Logger
	engine  *economy.Engine
	history historySource
	repo    *gitops.Repo
	close   func() error
}

func openApp(ctx context.Context, dataDir string, logOut io.Writer) (*app, error) {
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s not found in %s (run 'mok init')", config.FileName, dir)
		}
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(dir, dotenvFile)); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log.Level, logOut)
	if err != nil {
		return nil, err
	}

	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("loading rates: %w", err)
	}

	cat, err := catalog.Load(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cat = catalog.NewService(catalog.DefaultCurriculum(cfg.Profile.AgeBand))
	}

	a := &app{dir: dir, cfg: cfg, log: logger, close: func() error { return nil }}
	opts := economy.Options{
		Table:            table,
		Catalog:          cat,
		RepeatCompletion: cfg.Rewards.RepeatCompletion,
		Logger:           logger,
	}

	var store economy.Store
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		fsStore, err := filestore.Open(dir)
		if err != nil {
			return nil, err
		}
		store, a.history = fsStore, fsStore
		if cfg.Git.AutoCommit {
			if repo := gitops.Open(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail); repo.IsRepo() {
				a.repo = repo
			}
		}
	case config.BackendSQLite:
		sqlStore, err := sqlstore.Open(ctx, sqlitePath(dir, cfg), cfg.Profile.UserID)
		if err != nil {
			return nil, err
		}
		store, a.history, a.close = sqlStore, sqlStore, sqlStore.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	opts.AfterCommit = a.recordActivity
	a.engine = economy.New(store, opts)
	return a, nil
}

// recordActivity appends the operation to the activity log and, when the
// data directory is a git repo with auto-commit on, commits the result.
func (a *app) recordActivity(ctx context.Context, op, summary string) error {
	entry := activity.Entry{
		Timestamp: time.Now().UTC(),
		UserID:    a.cfg.Profile.UserID,
		Op:        op,
		Summary:   summary,
	}
	if err := activity.Append(a.dir, entry); err != nil {
		return err
	}
	if a.repo == nil {
		return nil
	}
	hash, err := a.repo.CommitAll(ctx, op+": "+summary)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"op": op, "commit": hash}).Debug("committed to git")
	return nil
}

func sqlitePath(dir string, cfg *config.Config) string {
	p := cfg.Store.Path
	if p == "" {
		p = defaultDBFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// withApp opens the data directory, runs fn and closes the store.
func withApp(ctx context.Context, opts *globalOptions, logOut io.Writer, fn func(*app) error) error {
	a, err := openApp(ctx, opts.dataDir, logOut)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
