package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider translates by tagging the text with the target language;
// texts listed in fail return an error instead.
type fakeProvider struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Translate(ctx context.Context, text, src, tgt string) (string, error) {
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return "", errors.New("service unavailable")
	}
	return "[" + tgt + "]" + text, nil
}

type recordingNotifier struct {
	changed []string
}

func (n *recordingNotifier) FileChanged(path string) {
	n.changed = append(n.changed, path)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func readBack(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

const localeSource = `export default {
  "games": {
    "name": "足球",
    "rank": "排名"
  },
  "title": "首页"
}
`

func TestSyncLocales(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", localeSource)
	writeFile(t, dir, "es.js", `export default {
  "games": {
    "name": "fútbol"
  }
}
`)

	notifier := &recordingNotifier{}
	var started, keys int
	engine := New(&fakeProvider{}, WithNotifier(notifier), WithEvents(Events{
		OnFileStart: func(file string, missing int) { started = missing },
		OnKey:       func(file, key string, err error) { keys++ },
	}))

	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"es.js"}, BackupDir: "backups", SourceLang: "zh"}
	results, err := engine.SyncLocales(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, []string{"games.rank", "title"}, res.Missing)
	assert.Equal(t, 2, res.Translated)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, started)
	assert.Equal(t, 2, keys)

	want := `export default {
  "games": {
    "name": "fútbol",
    "rank": "[es]排名"
  },
  "title": "[es]首页"
}
`
	assert.Equal(t, want, readBack(t, dir, "es.js"))

	// The target was snapshotted before the rewrite.
	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, backups[0].Name(), "es_")

	require.Len(t, notifier.changed, 1)
	assert.Equal(t, filepath.Join(dir, "es.js"), notifier.changed[0])
}

func TestSyncLocales_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", localeSource)
	writeFile(t, dir, "es.js", `export default {
  "title": "inicio"
}
`)

	provider := &fakeProvider{fail: map[string]bool{"足球": true}}
	engine := New(provider)

	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"es.js"}, BackupDir: "backups", SourceLang: "zh"}
	results, err := engine.SyncLocales(context.Background(), req)
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, StatusPartial, res.Status)
	assert.Equal(t, 1, res.Translated)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "games.name")

	// The failing key did not stop the batch: both were attempted.
	assert.Equal(t, []string{"足球", "排名"}, provider.calls)

	want := `export default {
  "games": {
    "rank": "[es]排名"
  },
  "title": "inicio"
}
`
	assert.Equal(t, want, readBack(t, dir, "es.js"))
}

func TestSyncLocales_AllFailedLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", localeSource)
	original := "export default {\n}\n"
	writeFile(t, dir, "es.js", original)

	provider := &fakeProvider{fail: map[string]bool{"足球": true, "排名": true, "首页": true}}
	engine := New(provider)

	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"es.js"}, BackupDir: "backups", SourceLang: "zh"}
	results, err := engine.SyncLocales(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, original, readBack(t, dir, "es.js"))
	// Nothing was written, so nothing was snapshotted.
	_, statErr := os.Stat(filepath.Join(dir, "backups"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncLocales_SyncedAndMissingSiblings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", localeSource)
	writeFile(t, dir, "es.js", localeSource)

	engine := New(&fakeProvider{})
	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"es.js", "fr.js"}, BackupDir: "backups", SourceLang: "zh"}
	results, err := engine.SyncLocales(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// One bad file does not abort its siblings.
	assert.Equal(t, StatusSynced, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
}

func TestSyncLocales_MissingSource(t *testing.T) {
	dir := t.TempDir()
	engine := New(&fakeProvider{})
	_, err := engine.SyncLocales(context.Background(), Request{Dir: dir, SourceFile: "zh.js"})
	assert.Error(t, err)
}

func TestOrganizeLocales(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", `export default {
  games: {
    'name': '足球',
  },
}
`)

	engine := New(&fakeProvider{})
	req := Request{Dir: dir, SourceFile: "zh.js", BackupDir: "backups"}
	results, err := engine.OrganizeLocales(req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusUpdated, results[0].Status)

	want := `export default {
  "games": {
    "name": "足球"
  }
}
`
	assert.Equal(t, want, readBack(t, dir, "zh.js"))

	// Organize is a fixed point: a second run changes nothing.
	results, err = engine.OrganizeLocales(req)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, results[0].Status)
}

func TestOrganizeLocales_DryRun(t *testing.T) {
	dir := t.TempDir()
	original := "export default {\n  'a': '1',\n}\n"
	writeFile(t, dir, "zh.js", original)

	engine := New(&fakeProvider{})
	results, err := engine.OrganizeLocales(Request{Dir: dir, SourceFile: "zh.js", BackupDir: "backups", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, results[0].Status)
	assert.Equal(t, original, readBack(t, dir, "zh.js"))
}

const errCodeSource = `const errCode = {
  // 系统模块
  "1002000001": "系统错误",
  // 会员模块
  "1003000001": "会员不存在"
}
`

func TestSyncErrorCodes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", errCodeSource)
	writeFile(t, dir, "en.js", `const errCode = {
  // 系统模块
  "1002000001": "system error"
}
`)

	engine := New(&fakeProvider{})
	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"en.js"}, BackupDir: "backups", SourceLang: "zh"}
	results, err := engine.SyncErrorCodes(context.Background(), req)
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, []string{"1003000001"}, res.Missing)
	assert.Equal(t, 1, res.Translated)

	want := `const errCode = {
  // 系统模块
  "1002000001": "system error",

  // 会员模块
  "1003000001": "[en]会员不存在"
}
`
	assert.Equal(t, want, readBack(t, dir, "en.js"))
}

func TestOrganizeErrorCodes_MovesSwappedEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", `const errCode = {
  // 系统模块
  "1003000000": "会员错误",
  // 会员模块
  "1002000000": "系统错误"
}
`)

	engine := New(&fakeProvider{})
	req := Request{Dir: dir, SourceFile: "zh.js", BackupDir: "backups"}
	results, err := engine.OrganizeErrorCodes(req)
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, 2, res.Moves)

	want := `const errCode = {
  // 系统模块
  "1002000000": "系统错误",

  // 会员模块
  "1003000000": "会员错误"
}
`
	assert.Equal(t, want, readBack(t, dir, "zh.js"))
}

func TestStatusLocales(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zh.js", localeSource)
	writeFile(t, dir, "es.js", `export default {
  "games": {
    "name": "fútbol"
  },
  "extra": "sobra"
}
`)

	engine := New(&fakeProvider{})
	req := Request{Dir: dir, SourceFile: "zh.js", Targets: []string{"es.js"}}
	results, err := engine.StatusLocales(req)
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, []string{"games.rank", "title"}, res.Missing)
	assert.Equal(t, []string{"extra"}, res.Redundant)

	// Nothing written in status mode.
	_, statErr := os.Stat(filepath.Join(dir, "backups"))
	assert.True(t, os.IsNotExist(statErr))
}
