package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportResult struct {
	Exported int      `json:"exported"`
	Paths    []string `json:"paths"`
}

type importResult struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
	Failed   []struct {
		File  string `json:"file"`
		Error string `json:"error"`
	} `json:"failed"`
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			env := newTestEnv(t)
			a := env.add("Sauerkraut", "2026-03-01", "2026-03-20", "-i", "cabbage:1.2:kg")
			b := env.add("Kefir", "2026-03-01", "2026-03-03")
			env.run("complete", b, "--overall", "3")

			dst := filepath.Join(env.dir, "out")
			var ex exportResult
			env.runJSON(&ex, "export", dst, "-F", format)
			assert.Equal(t, 2, ex.Exported)
			assert.FileExists(t, filepath.Join(dst, a+"."+format))

			env.run("rm", a)
			env.run("rm", b)

			var im importResult
			env.runJSON(&im, "import", dst)
			assert.Equal(t, 2, im.Imported)
			assert.ElementsMatch(t, []string{a, b}, im.IDs)

			r := env.get(b)
			assert.Equal(t, "completed", r.State)
			require.NotNil(t, r.Ratings.Overall.Stars)
			assert.Equal(t, 3, *r.Ratings.Overall.Stars)
			assert.Equal(t, "2026-03-20", env.get(a).EndDate)
		})
	}
}

func TestExportFilters(t *testing.T) {
	env := newTestEnv(t)
	env.add("Active", "2026-03-01", "2026-03-20")
	done := env.add("Done", "2026-03-01", "2026-03-02")
	env.run("complete", done)

	dst := filepath.Join(env.dir, "out")
	var ex exportResult
	env.runJSON(&ex, "export", dst, "--state", "completed")
	require.Equal(t, 1, ex.Exported)
	assert.Equal(t, filepath.Join(dst, done+".yaml"), ex.Paths[0])

	_, err := env.runErr("export", dst, "--state", "completed")
	assert.Error(t, err, "existing files need --force")
	env.run("export", dst, "--state", "completed", "--force")

	_, err = env.runErr("export", dst, "-w", `name == "nothing"`)
	assert.Error(t, err, "nothing to export")

	_, err = env.runErr("export", dst, "-F", "toml")
	assert.Error(t, err)
}

func TestImportConflicts(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("Natto", "2026-03-01", "2026-03-03")

	dst := filepath.Join(env.dir, "out")
	env.run("export", dst, "-F", "json")
	env.run("edit", id, "--name", "Natto (edited)")

	_, err := env.runErr("import", dst)
	assert.Error(t, err, "existing id refused")
	assert.Equal(t, "Natto (edited)", env.get(id).Name)

	var im importResult
	env.runJSON(&im, "import", dst, "--replace")
	assert.Equal(t, 1, im.Imported)
	assert.Equal(t, "Natto", env.get(id).Name)
}

func TestImportSkipsBadFiles(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(env.dir, "in")
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "good.json"), []byte(provisionalDoc("good-1", "Good")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bad.yaml"), []byte("name: [unclosed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "readme.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".hidden", "h.json"), []byte(provisionalDoc("hidden-1", "Hidden")), 0o644))

	t.Run("dry run", func(t *testing.T) {
		out, stderr, err := env.exec("", "import", src, "--dry-run")
		require.Error(t, err, "bad file still reported")
		assert.Contains(t, out, "Would import: good.json -> good-1")
		assert.Contains(t, out, "Skipped: bad.yaml")
		assert.NotContains(t, out, "readme.txt")
		assert.Contains(t, stderr, "1 file(s) not imported")

		var res listResult
		env.runJSON(&res, "ls")
		assert.Empty(t, res.Records)
	})

	t.Run("import", func(t *testing.T) {
		out, _, err := env.exec("", "import", src, "-o", "json")
		require.Error(t, err)
		assert.Contains(t, out, `"imported":1`)
		assert.Equal(t, "Good", env.get("good-1").Name)

		_, err = env.runErr("show", "hidden-1")
		assert.Error(t, err, "hidden directories skipped")
	})

	t.Run("include hidden", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(src, "bad.yaml")))
		var im importResult
		env.runJSON(&im, "import", src, "--include-hidden", "--replace")
		assert.Equal(t, 2, im.Imported)
		assert.Equal(t, "Hidden", env.get("hidden-1").Name)
	})
}
