package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corrupt writes an unreadable record directly into the storage root.
func (e *testEnv) corrupt(id, content string) {
	e.t.Helper()
	dir := e.recordDir(id)
	require.NoError(e.t, os.MkdirAll(dir, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(content), 0o644))
}

type pruneOutput struct {
	Failed []struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	} `json:"failed"`
	Deleted int  `json:"deleted"`
	DryRun  bool `json:"dry_run"`
}

func TestPrune(t *testing.T) {
	env := newTestEnv(t)
	keep := env.add("Good batch", "2026-03-01", "2026-03-20")
	env.corrupt("broken-1", "{not json")
	env.corrupt("broken-2", `{"id": "broken-2", "state": "provisional"}`)

	_, stderr, err := env.exec("", "ls")
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 record(s) failed to load")
	assert.Contains(t, stderr, "fermi prune")

	var p pruneOutput
	env.runJSON(&p, "prune", "--dry-run")
	assert.True(t, p.DryRun)
	assert.Len(t, p.Failed, 2)
	assert.Zero(t, p.Deleted)
	assert.DirExists(t, env.recordDir("broken-1"))

	out := env.runStdin("n\n", "prune")
	env.contains(out, "broken-1")
	env.contains(out, "Cancelled")
	assert.DirExists(t, env.recordDir("broken-1"))

	out = env.runStdin("y\n", "prune")
	env.contains(out, "Deleted 2 record(s)")
	assert.NoDirExists(t, env.recordDir("broken-1"))
	assert.NoDirExists(t, env.recordDir("broken-2"))
	assert.DirExists(t, env.recordDir(keep))

	out = env.run("prune", "-f")
	env.contains(out, "No invalid records")
}

func TestPruneForceJSON(t *testing.T) {
	env := newTestEnv(t)
	env.corrupt("broken-1", "[]")

	var p pruneOutput
	env.runJSON(&p, "prune")
	assert.Equal(t, 1, p.Deleted, "JSON mode never prompts")

	var st struct {
		Invalid int `json:"invalid"`
	}
	env.runJSON(&st, "stats")
	assert.Zero(t, st.Invalid)
}

func TestStatsCountsInvalid(t *testing.T) {
	env := newTestEnv(t)
	env.corrupt("broken-1", "{")

	out := env.run("stats")
	env.contains(out, "Invalid:      1")
}

func TestGuide(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("guide")
	env.contains(out, "# fermi")

	out = env.run("guide", "backups")
	env.contains(out, "restore")

	var g map[string]string
	env.runJSON(&g, "guide", "query")
	assert.Equal(t, "query", g["topic"])
	assert.Contains(t, g["content"], "where")

	out, err := env.runErr("guide", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "Available:")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("version")
	env.contains(out, "Build Tag:")

	var v map[string]string
	env.runJSON(&v, "version")
	assert.NotEmpty(t, v["go_version"])
}

func TestAuditLog(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Logged", "2026-03-01", "2026-03-20")
	_, _ = env.runErr("show", "missing")

	var entries []struct {
		Source  string
		Action  string
		Record  string
		Success bool
		Error   string
	}
	env.runJSON(&entries, "log", "-n", "5")
	require.NotEmpty(t, entries)

	var sawAdd, sawFailure bool
	for _, e := range entries {
		if e.Source == "ferment:add" && e.Record == id && e.Success {
			sawAdd = true
		}
		if e.Source == "ferment:show" && !e.Success && e.Error != "" {
			sawFailure = true
		}
	}
	assert.True(t, sawAdd, "add recorded")
	assert.True(t, sawFailure, "failed show recorded")

	out := env.run("log")
	env.contains(out, "ferment:add")
}

func TestOutputFormatValidated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("ls", "-o", "xml")
	assert.Error(t, err)
}
