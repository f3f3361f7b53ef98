// Package reconcile implements the batch pipelines that keep a
// family's per-language target files synchronized with its source
// file: read source and target, diff key sets, translate missing
// entries one at a time, splice them into the target, write, notify.
//
// Every operation returns a per-file result list: one bad file never
// aborts its siblings, and one failed translation never aborts the
// rest of a file's batch.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eneno295/multilang-tools/backup"
	"github.com/eneno295/multilang-tools/translate"
)

// Status classifies one file's outcome.
type Status string

const (
	// StatusSynced means the file already matched the source.
	StatusSynced Status = "synced"
	// StatusUpdated means the file was rewritten successfully.
	StatusUpdated Status = "updated"
	// StatusPartial means the file was rewritten but some entries
	// failed to translate and were left out.
	StatusPartial Status = "partial"
	// StatusFailed means the file could not be processed at all.
	StatusFailed Status = "failed"
	// StatusPending is the dry-run marker: the file would change.
	StatusPending Status = "pending"
)

// FileResult is one file's entry in a batch result list.
type FileResult struct {
	// File is the target file name within the managed directory.
	File   string
	Status Status
	// Missing lists the source keys the target lacked, source order.
	Missing []string
	// Redundant lists the target keys the source lacks, target order.
	Redundant []string
	// Translated counts entries successfully translated and written.
	Translated int
	// Failed counts entries whose translation failed.
	Failed int
	// Moves counts entries relocated between sections by organize.
	Moves int
	// Ambiguous lists codes organize could not place confidently.
	Ambiguous []string
	// Errors carries the per-key and per-file error messages.
	Errors []string
}

// Request names the files one batch operation works on. The caller
// owns configuration; the engine consumes plain paths and strings.
type Request struct {
	// Dir is the managed directory.
	Dir string
	// SourceFile is the canonical source file name within Dir.
	SourceFile string
	// Targets are the target file names within Dir.
	Targets []string
	// BackupDir is where snapshots go, relative to Dir unless absolute.
	BackupDir string
	// SourceLang is the source files' language code.
	SourceLang string
	// DryRun makes organize report planned changes without writing.
	DryRun bool
}

func (r Request) sourcePath() string {
	return filepath.Join(r.Dir, r.SourceFile)
}

func (r Request) targetPath(name string) string {
	return filepath.Join(r.Dir, name)
}

func (r Request) backupDir() string {
	if filepath.IsAbs(r.BackupDir) {
		return r.BackupDir
	}
	return filepath.Join(r.Dir, r.BackupDir)
}

// Notifier is told after a managed file changes on disk, so a host UI
// can refresh its views. Injected at construction; nil means nobody
// listens.
type Notifier interface {
	FileChanged(path string)
}

// Events carries the per-key progress callbacks of a translate batch.
type Events struct {
	// OnFileStart fires before a file's missing keys are translated.
	OnFileStart func(file string, missing int)
	// OnKey fires after each key's translation attempt; err is nil on
	// success.
	OnKey func(file, key string, err error)
	// OnFileDone fires after a file's result is final.
	OnFileDone func(result FileResult)
}

func (ev Events) fileStart(file string, missing int) {
	if ev.OnFileStart != nil {
		ev.OnFileStart(file, missing)
	}
}

func (ev Events) key(file, key string, err error) {
	if ev.OnKey != nil {
		ev.OnKey(file, key, err)
	}
}

func (ev Events) fileDone(result FileResult) {
	if ev.OnFileDone != nil {
		ev.OnFileDone(result)
	}
}

// Engine runs the batch operations for both file families.
type Engine struct {
	provider translate.Provider
	notifier Notifier
	events   Events
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier injects the change notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithEvents injects the progress callbacks.
func WithEvents(ev Events) Option {
	return func(e *Engine) { e.events = ev }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an Engine around a translation provider.
func New(provider translate.Provider, opts ...Option) *Engine {
	e := &Engine{provider: provider, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) notify(path string) {
	if e.notifier != nil {
		e.notifier.FileChanged(path)
	}
}

// snapshot backs up a file before its first modification. One backup
// per base name; later writes reuse the existing snapshot.
func (e *Engine) snapshot(req Request, name string, content []byte) error {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	dir := req.backupDir()
	if !backup.ShouldBackup(dir, base) {
		return nil
	}
	path, err := backup.Create(dir, base, content)
	if err != nil {
		return err
	}
	e.log.Info().Str("backup", path).Msg("created snapshot")
	return nil
}

// write rewrites a managed file and notifies listeners.
func (e *Engine) write(path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.notify(path)
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// langOf maps a target file name to its language code: the base name
// without extension.
func langOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// failedResult builds the result for a file that could not be processed.
func failedResult(name string, err error) FileResult {
	return FileResult{File: name, Status: StatusFailed, Errors: []string{err.Error()}}
}
