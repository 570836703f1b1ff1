package diff

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		from    int
		to      int
		wantErr string
	}{
		{name: "single slot", input: "2", from: 2, to: Current},
		{name: "two slots", input: "3:1", from: 3, to: 1},
		{name: "against current", input: "1:0", from: 1, to: 0},
		{name: "empty colon", input: ":", wantErr: "both slots required"},
		{name: "missing end", input: "3:", wantErr: "both slots required"},
		{name: "too many colons", input: "1:2:3", wantErr: "expected from:to"},
		{name: "non-numeric", input: "abc", wantErr: "invalid slot"},
		{name: "non-numeric end", input: "1:x", wantErr: "invalid end slot"},
		{name: "negative", input: "-1", wantErr: "negative"},
		{name: "same", input: "2:2", wantErr: "slots are the same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ParseSlotRange(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestCompute(t *testing.T) {
	old := "{\n  \"name\": \"Kimchi\",\n  \"notes\": \"\"\n}\n"
	cur := "{\n  \"name\": \"Kimchi\",\n  \"notes\": \"salty\"\n}\n"

	r := Compute(old, cur, "backup_1.json", "data.json")
	assert.True(t, r.Changed())
	assert.Contains(t, r.Diff, "-   \"notes\": \"\"")
	assert.Contains(t, r.Diff, "+   \"notes\": \"salty\"")
	assert.Contains(t, r.Diff, "    \"name\": \"Kimchi\",")

	same := Compute(old, old, "a", "b")
	assert.False(t, same.Changed())
}

func TestCompute_CollapsesLongContext(t *testing.T) {
	var lines []string
	for range 10 {
		lines = append(lines, "same")
	}
	old := strings.Join(append(lines, "old"), "\n")
	cur := strings.Join(append(lines, "new"), "\n")

	r := Compute(old, cur, "a", "b")
	assert.Contains(t, r.Diff, "  ...\n")
	assert.Equal(t, 2*contextLines+1, strings.Count(r.Diff, "  same")+strings.Count(r.Diff, "  ..."))
}

func TestFormat(t *testing.T) {
	r := Result{Old: "backup_1.json", New: "data.json", Diff: "- a\n+ b\n"}

	plain := r.Format(false)
	assert.True(t, strings.HasPrefix(plain, "--- backup_1.json\n+++ data.json\n"))
	assert.NotContains(t, plain, "\033[")

	coloured := r.Format(true)
	assert.Contains(t, coloured, "\033[31m- a\033[0m")
	assert.Contains(t, coloured, "\033[32m+ b\033[0m")
}

type fakeDiffer struct {
	current string
	backups map[int]string
}

var errMissing = errors.New("missing")

func (f fakeDiffer) Current(context.Context, string) ([]byte, error) {
	return []byte(f.current), nil
}

func (f fakeDiffer) ReadBackup(_ context.Context, _ string, slot int) ([]byte, error) {
	b, ok := f.backups[slot]
	if !ok {
		return nil, errMissing
	}
	return []byte(b), nil
}

func TestRun(t *testing.T) {
	svc := fakeDiffer{current: "v3\n", backups: map[int]string{1: "v2\n", 2: "v1\n"}}

	var buf bytes.Buffer
	r, err := Run(context.Background(), &buf, svc, "abc", Options{From: 2, To: 1}, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, "--- backup_2.json\n+++ backup_1.json\n- v1\n+ v2\n", buf.String())

	_, err = Run(context.Background(), &buf, svc, "abc", Options{From: 5}, false)
	require.ErrorIs(t, err, errMissing)
}
