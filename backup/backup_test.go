package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldBackup_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	// Empty dir: backup needed.
	assert.True(t, ShouldBackup(dir, "zh"))

	path, err := Create(dir, "zh", []byte("content"))
	require.NoError(t, err)

	// A backup exists now: guard flips.
	assert.False(t, ShouldBackup(dir, "zh"))
	// Other base names are unaffected.
	assert.True(t, ShouldBackup(dir, "es"))

	// Deleting the backup re-arms the guard.
	require.NoError(t, os.Remove(path))
	assert.True(t, ShouldBackup(dir, "zh"))
}

func TestShouldBackup_MissingDir(t *testing.T) {
	assert.True(t, ShouldBackup(filepath.Join(t.TempDir(), "nope"), "zh"))
}

func TestCreate_NameFormatAndDirCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups", "source")

	path, err := createAt(dir, "errCode", []byte("x"), time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "errCode_2024-03-07-09-05-01.backup", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, ts := range []string{"2024-01-01-00-00-00", "2024-06-15-12-30-00", "2023-12-31-23-59-59"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "zh_"+ts+".backup"), []byte(ts), 0644))
	}
	// Non-backup files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	records, err := List(dir, "zh")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-06-15-12-30-00", records[0].Timestamp)
	assert.Equal(t, "2024-01-01-00-00-00", records[1].Timestamp)
	assert.Equal(t, "2023-12-31-23-59-59", records[2].Timestamp)
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	records, err := List(filepath.Join(t.TempDir(), "absent"), "zh")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	backupPath, err := Create(dir, "es", []byte("old content"))
	require.NoError(t, err)

	target := filepath.Join(dir, "es.js")
	require.NoError(t, os.WriteFile(target, []byte("new content"), 0644))

	require.NoError(t, Restore(backupPath, target))
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(content))
}

func TestRestore_MissingBackup(t *testing.T) {
	err := Restore(filepath.Join(t.TempDir(), "absent.backup"), filepath.Join(t.TempDir(), "out.js"))
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(dir, "zh", []byte("a"))
	require.NoError(t, err)
	p2, err := createAt(dir, "es", []byte("b"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Single-file clean.
	n, err := Clean(dir, filepath.Base(p2))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, ShouldBackup(dir, "es"))
	assert.False(t, ShouldBackup(dir, "zh"))

	// Clean all.
	n, err = Clean(dir, "all")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	records, err := List(dir, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClean_RejectsNonBackupNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zh.js"), []byte("x"), 0644))
	_, err := Clean(dir, "zh.js")
	assert.Error(t, err)
}
