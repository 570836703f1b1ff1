// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> extension -> service -> collection -> files on
// disk. Each test gets its own HOME (config and audit log) and storage
// root, and a fixed reference date so due/overdue output is stable.

package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testToday is the reference date every test runs at.
const testToday = "2026-03-10"

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the fermi binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "fermi-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "fermi"
		if os.PathSeparator == '\\' {
			binaryName = "fermi.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		projectRoot := filepath.Dir(mustGetwd())

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string // working directory
	home   string // HOME: global config and audit log
	root   string // storage root
	binary string
}

// newTestEnv creates a temporary HOME and storage root.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	base := t.TempDir()
	env := &testEnv{
		t:      t,
		dir:    filepath.Join(base, "work"),
		home:   filepath.Join(base, "home"),
		root:   filepath.Join(base, "ferments"),
		binary: buildBinary(t),
	}
	require.NoError(t, os.MkdirAll(env.dir, 0o755))
	require.NoError(t, os.MkdirAll(env.home, 0o755))
	return env
}

func (e *testEnv) environ() []string {
	return append(os.Environ(),
		"HOME="+e.home,
		"USERPROFILE="+e.home,
		"FERMI_ROOT="+e.root,
		"FERMI_TODAY="+testToday,
		"FERMI_CONFIG=",
		"FERMI_LOG_LEVEL=error",
	)
}

// exec runs fermi with optional stdin and returns stdout and stderr
// separately so JSON output can be parsed.
func (e *testEnv) exec(stdin string, args ...string) (string, string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// run executes fermi with the given args and returns stdout.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, stderr, err := e.exec("", args...)
	if err != nil {
		e.t.Fatalf("fermi %v failed: %v\nstdout: %s\nstderr: %s", args, err, out, stderr)
	}
	return out
}

// runErr executes fermi and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()
	out, stderr, err := e.exec("", args...)
	return out + stderr, err
}

// runStdin executes fermi with stdin input and returns stdout.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	out, stderr, err := e.exec(input, args...)
	if err != nil {
		e.t.Fatalf("fermi %v failed: %v\nstdout: %s\nstderr: %s", args, err, out, stderr)
	}
	return out
}

// runJSON executes fermi with -o json and decodes stdout into v.
func (e *testEnv) runJSON(v any, args ...string) {
	e.t.Helper()
	out := e.run(append(args, "-o", "json")...)
	require.NoError(e.t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// storedRecord is the subset of the stored format the tests inspect.
type storedRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Container   string `json:"container"`
	State       string `json:"state"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Notes       string `json:"notes"`
	Reason      string `json:"reason"`
	CompletedAt string `json:"completedAt"`
	Ingredients []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"ingredients"`
	Ratings struct {
		Overall struct {
			Stars *int   `json:"stars"`
			Notes string `json:"notes"`
		} `json:"overall"`
	} `json:"ratings"`
}

// listResult mirrors ls.Result.
type listResult struct {
	Records []storedRecord `json:"records"`
}

// add creates a provisional record and returns its id.
func (e *testEnv) add(name, start, end string, extra ...string) string {
	e.t.Helper()
	var r storedRecord
	args := append([]string{"add", "--name", name, "--start", start, "--end", end}, extra...)
	e.runJSON(&r, args...)
	require.NotEmpty(e.t, r.ID)
	return r.ID
}

// get returns a record through show -o json.
func (e *testEnv) get(id string) storedRecord {
	e.t.Helper()
	var r storedRecord
	e.runJSON(&r, "show", id)
	return r
}

// names returns the record names of a list result in order.
func names(rs []storedRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

// recordDir returns the on-disk directory of id.
func (e *testEnv) recordDir(id string) string {
	return filepath.Join(e.root, "fermi_"+id)
}

// provisionalDoc returns a stored-format provisional record.
func provisionalDoc(id, name string) string {
	return `{
  "id": "` + id + `",
  "state": "provisional",
  "name": "` + name + `",
  "container": "",
  "startDate": "2026-03-01",
  "endDate": "2026-03-20",
  "createdAt": "2026-03-01T09:00:00Z",
  "updatedAt": "2026-03-01T09:00:00Z",
  "ingredients": [],
  "images": [],
  "notes": ""
}`
}
