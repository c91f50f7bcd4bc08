package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dominoscore/internal/store"
)

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	def := map[string]int{"default": 1}

	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing"},
		{name: "empty", content: ptr("")},
		{name: "invalid json", content: ptr("{not json")},
		{name: "truncated", content: ptr(`{"a": 1`)},
		{name: "wrong shape", content: ptr(`[1, 2, 3]`)},
		{name: "null", content: ptr(`null`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if tt.content != nil {
				writeRaw(t, path, *tt.content)
			}
			got, err := store.Load(path, def)
			require.NoError(t, err)
			assert.Equal(t, def, got)
		})
	}
}

func TestLoad_DecodesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.dom")
	writeRaw(t, path, `[{"id": "a"}, {"id": "b"}]`)

	got, err := store.Load(path, []map[string]string{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1]["id"])
}

func TestLoad_MovesCorruptDocumentAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.dom")
	writeRaw(t, path, `{"version": 1, "players": `)

	got, err := store.Load(path, map[string]int(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoFileExists(t, path)

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLoad_ReturnsReadFailure(t *testing.T) {
	dir := t.TempDir()

	got, err := store.Load(dir, []string{"default"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrCorrupt)
	assert.Equal(t, []string{"default"}, got)
	assert.DirExists(t, dir)
}

func TestDecode_ReportsKind(t *testing.T) {
	dir := t.TempDir()

	err := store.Decode(filepath.Join(dir, "nope"), &struct{}{})
	assert.ErrorIs(t, err, store.ErrMissing)

	empty := filepath.Join(dir, "empty")
	writeRaw(t, empty, "")
	assert.ErrorIs(t, store.Decode(empty, &struct{}{}), store.ErrEmpty)

	bad := filepath.Join(dir, "bad")
	writeRaw(t, bad, "[]")
	var m map[string]any
	assert.ErrorIs(t, store.Decode(bad, &m), store.ErrCorrupt)
}

func TestWrite_ReplacesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "players.dom")
	writeRaw(t, path, `{"old": true}`)

	require.NoError(t, store.Write(path, map[string]int{"wins": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wins": 3}`, string(data))
	assert.Contains(t, string(data), "\n  \"wins\"", "document should be indented")
	assertNoTempFiles(t, dir)
}

func TestWrite_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "games.dom")

	require.NoError(t, store.Write(path, []string{}))
	assert.FileExists(t, path)
}

func TestWrite_FailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the final rename fail.
	target := filepath.Join(dir, "games.dom")
	require.NoError(t, os.Mkdir(target, 0o755))
	writeRaw(t, filepath.Join(target, "keep"), "keep")

	err := store.Write(target, []string{"new"})
	require.Error(t, err)

	info, statErr := os.Stat(target)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
	assert.FileExists(t, filepath.Join(target, "keep"))
	assertNoTempFiles(t, dir)
}

func TestWrite_UnencodableValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dom")

	err := store.Write(path, map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
	assert.NoFileExists(t, path)
	assertNoTempFiles(t, dir)
}

func TestQuarantine_MovesFileAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "players.dom")
	writeRaw(t, path, "garbage")

	moved, err := store.Quarantine(path)
	require.NoError(t, err)

	assert.NoFileExists(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(moved), "players.dom.corrupt-"))
	assert.FileExists(t, moved)
}

func TestRemove_MissingIsNotAnError(t *testing.T) {
	assert.NoError(t, store.Remove(filepath.Join(t.TempDir(), "absent")))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func ptr(s string) *string { return &s }
