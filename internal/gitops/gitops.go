// Package gitops records data-directory snapshots as git commits.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo is a git working tree with a fixed commit author.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Open returns a Repo for dir. It does not require dir to be a repository yet.
func Open(dir, authorName, authorEmail string) *Repo {
	return &Repo{Dir: dir, AuthorName: authorName, AuthorEmail: authorEmail}
}

// Init initializes a new git repository in r.Dir.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.run(ctx, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether r.Dir has its own .git directory.
func (r *Repo) IsRepo() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	return err == nil
}

// Dirty reports whether the working tree has uncommitted changes.
func (r *Repo) Dirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages everything and commits. It returns the short hash, or ""
// when there was nothing to commit.
func (r *Repo) CommitAll(ctx context.Context, message string) (string, error) {
	dirty, err := r.Dirty(ctx)
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", nil
	}
	if _, err := r.run(ctx, "add", "-A"); err != nil {
		return "", err
	}
	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.run(ctx, "commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", err
	}
	out, err := r.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	// The author doubles as committer when no global identity is set.
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
