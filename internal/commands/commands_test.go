package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokbank/mokbank/internal/catalog"
	"github.com/mokbank/mokbank/internal/commands"
	"github.com/mokbank/mokbank/internal/config"
	"github.com/mokbank/mokbank/internal/filestore"
)

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func runMok(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustMok(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runMok(t, args...)
	require.NoError(t, err, out)
	return out
}

func initDir(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"init", dir, "--name", "Milo", "--user", "kid-1", "--no-git"}, extra...)
	mustMok(t, args...)
	return dir
}

func extractID(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, "no id in %q", out)
	return m[1]
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initDir(t)

	for _, f := range []string{config.FileName, filestore.AccountFile, ".gitignore", filepath.Join("catalog", "modules.csv")} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "kid-1", cfg.Profile.UserID)
	assert.Equal(t, "Milo", cfg.Profile.DisplayName)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.False(t, cfg.Git.AutoCommit)

	cat, err := catalog.Load(dir)
	require.NoError(t, err)
	assert.Len(t, cat.All(), len(catalog.DefaultCurriculum("kid")))
}

func TestInit_TeenCurriculum(t *testing.T) {
	dir := initDir(t, "--age-band", "teen")
	cat, err := catalog.Load(dir)
	require.NoError(t, err)
	assert.True(t, cat.Exists("stablecoins"))
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runMok(t, "init", t.TempDir(), "--no-git")
	require.Error(t, err, "init without --name should fail")
}

func TestInit_Twice(t *testing.T) {
	dir := initDir(t)
	_, err := runMok(t, "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err)
}

func TestInit_GitRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	mustMok(t, "init", dir, "--name", "Milo")

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: account for Milo|MokBank Ledger <ledger@mokbank.app>")

	// Every operation lands as its own commit.
	mustMok(t, "-d", dir, "mission", "add", "Tidy room", "--reward", "5")
	log = exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err = log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "add_mission:")
}

func TestMissionConvertGoalFlow(t *testing.T) {
	dir := initDir(t)

	out := mustMok(t, "-d", dir, "mission", "add", "Wash the car", "--reward", "1000")
	missionID := extractID(t, out)

	out = mustMok(t, "-d", dir, "mission", "complete", missionID)
	assert.Contains(t, out, "+1000 MokTokens, +1500 XP (level 6)")

	_, err := runMok(t, "-d", dir, "mission", "complete", missionID)
	require.Error(t, err)

	out = mustMok(t, "-d", dir, "convert", "1000", "--to", "cash")
	assert.Contains(t, out, "(0 tokens left)")

	out = mustMok(t, "-d", dir, "goal", "add", "Book", "--target", "8", "--priority", "high")
	goalID := extractID(t, out)

	_, err = runMok(t, "-d", dir, "goal", "contribute", goalID, "9")
	require.Error(t, err)

	out = mustMok(t, "-d", dir, "goal", "contribute", goalID, "8")
	assert.Contains(t, out, "Goal reached!")

	out = mustMok(t, "-d", dir, "balance")
	assert.Contains(t, out, "MokTokens:    0")
	assert.Contains(t, out, "Savings:      2.00")
	assert.Contains(t, out, "level 6")

	out = mustMok(t, "-d", dir, "goal", "list")
	assert.Contains(t, out, "Book")
	assert.Contains(t, out, "done")

	out = mustMok(t, "-d", dir, "mission", "list")
	assert.Contains(t, out, "[x]")
}

func TestTransferAndHistory(t *testing.T) {
	dir := initDir(t)
	out := mustMok(t, "-d", dir, "mission", "add", "Mow lawn", "--reward", "2000")
	mustMok(t, "-d", dir, "mission", "complete", extractID(t, out))
	mustMok(t, "-d", dir, "convert", "2000", "--to", "cash")

	out = mustMok(t, "-d", dir, "transfer", "20", "--from", "savings", "--to", "investment")
	assert.Contains(t, out, "+40 MokTokens, +60 XP")

	_, err := runMok(t, "-d", dir, "transfer", "1", "--from", "savings", "--to", "savings")
	require.Error(t, err)
	_, err = runMok(t, "-d", dir, "transfer", "1", "--from", "piggy_bank", "--to", "savings")
	require.Error(t, err)

	month := time.Now().UTC().Format("2006-01")
	out = mustMok(t, "-d", dir, "history", "--month", month)
	assert.Contains(t, out, "Mow lawn")
	assert.Contains(t, out, "expense")

	out = mustMok(t, "-d", dir, "history", "--type", "income")
	assert.NotContains(t, out, "expense")

	out = mustMok(t, "-d", dir, "history", "--month", month, "--verify")
	assert.Contains(t, out, "4 transactions OK")
}

func TestLearn(t *testing.T) {
	dir := initDir(t)

	out := mustMok(t, "-d", dir, "learn", "list")
	assert.Contains(t, out, "money-basics")
	assert.Contains(t, out, "new")

	out = mustMok(t, "-d", dir, "learn", "complete", "money-basics", "--score", "5")
	assert.Contains(t, out, "+25 MokTokens, +50 XP")

	_, err := runMok(t, "-d", dir, "learn", "complete", "money-basics", "--score", "6")
	require.Error(t, err)

	out = mustMok(t, "-d", dir, "learn", "list")
	assert.Contains(t, out, "best 5/5, done 1x")
}

func TestLearn_RepeatDisabledByEnv(t *testing.T) {
	dir := initDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MOK_REPEAT_COMPLETION=false\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MOK_REPEAT_COMPLETION") })

	mustMok(t, "-d", dir, "learn", "complete", "saving-101", "--score", "10")
	out := mustMok(t, "-d", dir, "learn", "complete", "saving-101", "--score", "10")
	assert.Contains(t, out, "no reward this time")
}

func TestCryptoDeposit(t *testing.T) {
	dir := initDir(t)
	out := mustMok(t, "-d", dir, "crypto", "deposit", "0.25", "--source", "Grandma")
	assert.Contains(t, out, "pending parent approval")

	out = mustMok(t, "-d", dir, "balance")
	assert.Contains(t, out, "Crypto:       0")

	_, err := runMok(t, "-d", dir, "crypto", "deposit", "-1")
	require.Error(t, err)
}

func TestRename(t *testing.T) {
	dir := initDir(t)
	mustMok(t, "-d", dir, "rename", "Captain Milo")
	out := mustMok(t, "-d", dir, "balance")
	assert.Contains(t, out, "Captain Milo (kid-1)")
}

func TestConvert_Insufficient(t *testing.T) {
	dir := initDir(t)
	out, err := runMok(t, "-d", dir, "convert", "10")
	require.Error(t, err)
	assert.Contains(t, out, "insufficient tokens")
}

func TestSQLiteBackend(t *testing.T) {
	dir := initDir(t, "--backend", "sqlite")
	_, err := os.Stat(filepath.Join(dir, "mok.db"))
	require.NoError(t, err)

	mustMok(t, "-d", dir, "learn", "complete", "budgeting", "--score", "10")
	out := mustMok(t, "-d", dir, "balance")
	assert.Contains(t, out, "MokTokens:    50")

	out = mustMok(t, "-d", dir, "history", "--category", "learning")
	assert.Contains(t, out, "Making a Budget")
}

func TestMetricsFile(t *testing.T) {
	dir := initDir(t)
	metricsPath := filepath.Join(t.TempDir(), "mok.prom")

	mustMok(t, "-d", dir, "--metrics-file", metricsPath, "crypto", "deposit", "1")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mok_economy_operations_total")
}

func TestMissingDataDir(t *testing.T) {
	out, err := runMok(t, "-d", t.TempDir(), "balance")
	require.Error(t, err)
	assert.Contains(t, out, "mok init")
}

func TestActivityLog(t *testing.T) {
	dir := initDir(t)

	out := mustMok(t, "-d", dir, "activity")
	assert.Contains(t, out, "No activity yet.")

	mustMok(t, "-d", dir, "mission", "add", "Feed the cat", "--reward", "10")
	mustMok(t, "-d", dir, "rename", "Milo the Great")

	out = mustMok(t, "-d", dir, "activity")
	assert.Contains(t, out, "add_mission")
	assert.Contains(t, out, "rename")

	out = mustMok(t, "-d", dir, "activity", "-n", "1")
	assert.NotContains(t, out, "add_mission")
	assert.Contains(t, out, "rename")
}
