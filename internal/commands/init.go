package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mokbank/mokbank/internal/catalog"
	"github.com/mokbank/mokbank/internal/config"
	"github.com/mokbank/mokbank/internal/filestore"
	"github.com/mokbank/mokbank/internal/gitops"
	"github.com/mokbank/mokbank/internal/id"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/sqlstore"
)

type initOptions struct {
	userID  string
	name    string
	ageBand string
	backend string
	noGit   bool
}

func newInitCommand(global *globalOptions) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a new data directory with an empty account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := global.dataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.userID, "user", "", "user ID (default: generated)")
	cmd.Flags().StringVar(&opts.ageBand, "age-band", "kid", "curriculum age band: kid or teen")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendFile, "store backend: file or sqlite")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts initOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.ageBand != "kid" && opts.ageBand != "teen" {
		return fmt.Errorf("unknown age band %q", opts.ageBand)
	}
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	userID := opts.userID
	if userID == "" {
		userID = id.New()
	}

	// Write mok.yaml.
	cfg := config.Default(userID, opts.name)
	cfg.Profile.AgeBand = opts.ageBand
	cfg.Store.Backend = opts.backend
	if opts.noGit {
		cfg.Git.AutoCommit = false
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the curriculum.
	svc := catalog.NewService(catalog.DefaultCurriculum(opts.ageBand))
	if err := svc.Save(dir); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}

	// Create the empty account.
	acct := model.NewAccount(userID, opts.name)
	switch opts.backend {
	case config.BackendFile:
		if _, err := filestore.Init(dir, acct); err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
	case config.BackendSQLite:
		store, err := sqlstore.Open(ctx, sqlitePath(dir, cfg), userID)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Persist(ctx, acct); err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
	default:
		return fmt.Errorf("unknown store backend %q", opts.backend)
	}

	// Write .gitignore.
	gitignore := ".env\n" + defaultDBFile + "\n" + defaultDBFile + "-*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.noGit {
		fmt.Fprintf(out, "Initialized MokBank account for %s at %s\n", opts.name, dir)
		return nil
	}

	// Initialize git and create initial commit.
	repo := gitops.Open(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := repo.CommitAll(ctx, "init: account for "+opts.name)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized MokBank account for %s at %s (%s)\n", opts.name, dir, hash)
	return nil
}
