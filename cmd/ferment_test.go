package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddShow(t *testing.T) {
	env := newTestEnv(t)

	id := env.add("Sauerkraut", "2026-03-01", "2026-03-20",
		"-c", "2L crock", "-i", "cabbage:1.2:kg", "-i", "salt:24:g", "--notes", "first try")

	r := env.get(id)
	assert.Equal(t, "Sauerkraut", r.Name)
	assert.Equal(t, "provisional", r.State)
	assert.Equal(t, "2L crock", r.Container)
	assert.Equal(t, "2026-03-01", r.StartDate)
	assert.Equal(t, "2026-03-20", r.EndDate)
	assert.Equal(t, "first try", r.Notes)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "salt", r.Ingredients[1].Name)
	assert.InDelta(t, 24, r.Ingredients[1].Quantity, 0.001)
	assert.Equal(t, "g", r.Ingredients[1].Unit)

	_, err := os.Stat(filepath.Join(env.recordDir(id), "data.json"))
	assert.NoError(t, err, "record written to its own directory")

	raw := env.run("show", id[:8], "--raw")
	env.contains(raw, "# Sauerkraut")
	env.contains(raw, "2L crock")
}

func TestAddDefaults(t *testing.T) {
	env := newTestEnv(t)

	t.Run("start defaults to today", func(t *testing.T) {
		var r storedRecord
		env.runJSON(&r, "add", "--name", "Kefir", "--end", "2026-03-12")
		assert.Equal(t, testToday, r.StartDate)
	})

	t.Run("for sets the end date", func(t *testing.T) {
		var r storedRecord
		env.runJSON(&r, "add", "--name", "Kimchi", "--for", "2w")
		assert.Equal(t, "2026-03-24", r.EndDate)
	})
}

func TestAddRejects(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing name", []string{"add", "--end", "2026-04-01"}, "--name is required"},
		{"missing end", []string{"add", "--name", "x"}, "is required"},
		{"end before start", []string{"add", "--name", "x", "--start", "2026-04-01", "--end", "2026-03-01"}, "endDate"},
		{"bad date", []string{"add", "--name", "x", "--end", "2026-02-30"}, "--end"},
		{"bad duration", []string{"add", "--name", "x", "--for", "0d"}, "--for"},
		{"end and for", []string{"add", "--name", "x", "--end", "2026-04-01", "--for", "1w"}, "end"},
		{"bad ingredient", []string{"add", "--name", "x", "--for", "1w", "-i", "salt:lots"}, "quantity must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.runErr(tt.args...)
			require.Error(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	var res listResult
	env.runJSON(&res, "ls")
	assert.Empty(t, res.Records, "rejected adds leave nothing behind")
}

func TestLs(t *testing.T) {
	env := newTestEnv(t)

	a := env.add("Apple cider", "2026-03-01", "2026-03-30", "-c", "Carboy")
	env.add("Beet kvass", "2026-03-02", "2026-03-05", "-c", "Jar", "-i", "beet:3")
	c := env.add("Chilli sauce", "2026-02-01", "2026-03-10", "-c", "Jar")
	env.run("complete", a, "--overall", "5")

	t.Run("sorted by end date", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls")
		assert.Equal(t, []string{"Beet kvass", "Chilli sauce", "Apple cider"}, names(res.Records))
	})

	t.Run("state", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls", "--state", "completed")
		assert.Equal(t, []string{"Apple cider"}, names(res.Records))
	})

	t.Run("container", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls", "-c", "Jar", "--sort", "name")
		assert.Equal(t, []string{"Beet kvass", "Chilli sauce"}, names(res.Records))
	})

	t.Run("search matches ingredients", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls", "-s", "beet")
		assert.Equal(t, []string{"Beet kvass"}, names(res.Records))
	})

	t.Run("where", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls", "-w", "stars >= 4")
		assert.Equal(t, []string{"Apple cider"}, names(res.Records))
	})

	t.Run("reverse and limit", func(t *testing.T) {
		var res listResult
		env.runJSON(&res, "ls", "-R", "-n", "1")
		assert.Equal(t, []string{"Apple cider"}, names(res.Records))
	})

	t.Run("long marks due and overdue", func(t *testing.T) {
		out := env.run("ls", "-l")
		env.contains(out, "STATE")
		env.contains(out, "Beet kvass [overdue]")
		env.contains(out, "Chilli sauce [due]")
		env.contains(out, c[:8])
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := env.runErr("ls", "--state", "pickled")
		assert.Error(t, err)
	})

	t.Run("bad expression", func(t *testing.T) {
		_, err := env.runErr("ls", "-w", "stars >=")
		assert.Error(t, err)
	})
}

func TestEdit(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Kombucha", "2026-03-01", "2026-03-15", "-c", "Jar")

	env.run("edit", id, "--name", "Jun kombucha", "--end", "2026-03-18")
	r := env.get(id)
	assert.Equal(t, "Jun kombucha", r.Name)
	assert.Equal(t, "2026-03-18", r.EndDate)
	assert.Equal(t, "Jar", r.Container, "untouched fields kept")

	_, err := env.runErr("edit", id)
	assert.Error(t, err, "nothing to change")

	out, err := env.runErr("edit", id, "--end", "2026-02-01")
	require.Error(t, err)
	assert.Contains(t, out, "endDate")
	assert.Equal(t, "2026-03-18", env.get(id).EndDate, "invalid edit not applied")
}

func TestComplete(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Miso", "2026-01-01", "2026-03-01")

	var r storedRecord
	env.runJSON(&r, "complete", id, "--overall", "4", "--taste", "5", "--notes", "deep and salty")
	assert.Equal(t, "completed", r.State)
	assert.Equal(t, testToday, r.CompletedAt)
	require.NotNil(t, r.Ratings.Overall.Stars)
	assert.Equal(t, 4, *r.Ratings.Overall.Stars)
	assert.Equal(t, "deep and salty", r.Ratings.Overall.Notes)

	_, err := env.runErr("complete", id)
	assert.Error(t, err, "completed records are final")

	_, err = env.runErr("fail", id, "-r", "too late")
	assert.Error(t, err)
}

func TestCompleteRejectsBadStars(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Miso", "2026-01-01", "2026-03-01")

	out, err := env.runErr("complete", id, "--overall", "6")
	require.Error(t, err)
	assert.Contains(t, out, "between 1 and 5")
	assert.Equal(t, "provisional", env.get(id).State)
}

func TestFail(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Pickles", "2026-03-01", "2026-03-08")

	_, err := env.runErr("fail", id)
	assert.Error(t, err, "reason required")

	out := env.run("fail", id[:6], "-r", "kahm yeast", "--date", "2026-03-05")
	env.contains(out, "Failed")
	r := env.get(id)
	assert.Equal(t, "failed", r.State)
	assert.Equal(t, "kahm yeast", r.Reason)
}

func TestRmAndUndo(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Hot sauce", "2026-03-01", "2026-03-31", "-i", "chilli:500:g")

	saved := env.run("rm", id)
	env.contains(saved, id)
	_, err := os.Stat(env.recordDir(id))
	assert.True(t, os.IsNotExist(err), "record directory removed")

	_, err = env.runErr("show", id)
	assert.Error(t, err)

	env.runStdin(saved, "add", "--from-json", "-")
	r := env.get(id)
	assert.Equal(t, "Hot sauce", r.Name)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "chilli", r.Ingredients[0].Name)
}

func TestPrefixResolution(t *testing.T) {
	env := newTestEnv(t)
	env.runStdin(provisionalDoc("batch-a1", "One"), "add", "--from-json", "-")
	env.runStdin(provisionalDoc("batch-a2", "Two"), "add", "--from-json", "-")

	assert.Equal(t, "Two", env.get("batch-a2").Name, "full id")
	assert.Equal(t, "One", env.get("batch-a1").Name)

	out, err := env.runErr("show", "batch-a")
	require.Error(t, err)
	assert.Contains(t, out, "ambiguous")

	out, err = env.runErr("show", "zzzz")
	require.Error(t, err)
	assert.Contains(t, out, "not in collection")
}

func TestAddFromJSONKeepsID(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "saved.json")
	require.NoError(t, os.WriteFile(path, []byte(provisionalDoc("saved-1", "Tempeh")), 0o644))

	env.run("add", "--from-json", path)
	r := env.get("saved-1")
	assert.Equal(t, "Tempeh", r.Name)

	_, err := env.runErr("add", "--from-json", path)
	assert.Error(t, err, "duplicate id")
}

func TestJSONErrors(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.exec("", "show", "missing", "-o", "json")
	require.Error(t, err)
	env.contains(out, `"error"`)
}

func TestWriteFailureReportedOnce(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.root, 0o755))
	// A plain file where the record directory should go makes the write fail.
	require.NoError(t, os.WriteFile(env.recordDir("blocked-1"), []byte("x"), 0o644))

	out, stderr, err := env.exec(provisionalDoc("blocked-1", "Blocked"), "add", "--from-json", "-")
	require.Error(t, err)
	assert.Empty(t, out)

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 1, "stderr: %s", stderr)
	assert.True(t, strings.HasPrefix(lines[0], "Error: add:"), lines[0])
	assert.Equal(t, 1, strings.Count(stderr, "write failed"))
}
