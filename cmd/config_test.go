package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	env := newTestEnv(t)

	var all map[string]string
	env.runJSON(&all, "config")
	assert.Equal(t, "3", all["backups.max"])

	out := env.run("config", "backups.max")
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestConfigSetGetUnset(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("config", "backups.max", "7")
	env.contains(out, "backups.max = 7 (global)")
	assert.FileExists(t, filepath.Join(env.home, ".fermi", "config.json"))
	assert.Equal(t, "7", strings.TrimSpace(env.run("config", "backups.max")))

	env.run("config", "backups.max", "--unset")
	assert.Equal(t, "3", strings.TrimSpace(env.run("config", "backups.max")))
}

func TestConfigRejects(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "colour", "blue"}},
		{"backups too low", []string{"config", "backups.max", "0"}},
		{"backups too high", []string{"config", "backups.max", "21"}},
		{"backups not a number", []string{"config", "backups.max", "many"}},
		{"relative root", []string{"config", "storage.root", "ferments"}},
		{"unset without key", []string{"config", "--unset"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.runErr(tt.args...)
			assert.Error(t, err)
		})
	}
	_, err := os.Stat(filepath.Join(env.home, ".fermi", "config.json"))
	assert.True(t, os.IsNotExist(err), "nothing saved")
}

func TestConfigLocal(t *testing.T) {
	env := newTestEnv(t)

	env.run("config", "--local", "backups.max", "5")
	assert.FileExists(t, filepath.Join(env.dir, ".fermi", "config.json"))

	var all map[string]string
	env.runJSON(&all, "config")
	assert.Equal(t, "5", all["backups.max"], "local config wins when present")
}

func TestConfigStorageRoot(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(env.dir, "elsewhere")

	env.run("config", "storage.root", other)

	// --root and FERMI_ROOT override the configured root for one run.
	id := env.add("Koji", "2026-03-01", "2026-03-20")
	_, err := os.Stat(env.recordDir(id))
	require.NoError(t, err)

	id2 := env.add("Amazake", "2026-03-01", "2026-03-20", "--root", other)
	_, err = os.Stat(filepath.Join(other, "fermi_"+id2))
	require.NoError(t, err)

	var res listResult
	env.runJSON(&res, "ls", "--root", other)
	assert.Equal(t, []string{"Amazake"}, names(res.Records))
}

func TestConfigWithoutStorage(t *testing.T) {
	env := newTestEnv(t)

	// A root that cannot be created must not break storeless commands.
	blocker := filepath.Join(env.dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	rootArgs := []string{"--root", filepath.Join(blocker, "ferments")}

	_, _, err := env.exec("", append([]string{"config"}, rootArgs...)...)
	assert.NoError(t, err)
	_, _, err = env.exec("", append([]string{"version"}, rootArgs...)...)
	assert.NoError(t, err)

	out, err := env.runErr(append([]string{"ls"}, rootArgs...)...)
	require.Error(t, err)
	assert.Contains(t, out, "open storage")
}
