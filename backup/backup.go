// Package backup implements the timestamped snapshot lifecycle for
// managed files. One backup is `{base}_{YYYY-MM-DD-HH-mm-ss}.backup`,
// a verbatim copy of the file at backup time, stored under the managed
// directory's backups subdirectory. Backups are never deleted except
// by an explicit clean.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the fixed backup timestamp format.
const TimestampLayout = "2006-01-02-15-04-05"

// Ext is the backup file extension.
const Ext = ".backup"

// Record describes one existing backup file.
type Record struct {
	// BaseName is the original file's base name without extension.
	BaseName string
	// Timestamp is the creation time in TimestampLayout form.
	Timestamp string
	// Path is the absolute or dir-relative backup file path.
	Path string
}

// ShouldBackup reports whether no backup exists yet for baseName in dir.
// It is the guard that makes the first organize/translate of a file
// snapshot it exactly once.
func ShouldBackup(dir, baseName string) bool {
	records, err := List(dir, baseName)
	if err != nil {
		return true
	}
	return len(records) == 0
}

// Create writes content as a new timestamped backup for baseName,
// creating dir if absent, and returns the backup path.
func Create(dir, baseName string, content []byte) (string, error) {
	return createAt(dir, baseName, content, time.Now())
}

func createAt(dir, baseName string, content []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s%s", baseName, now.Format(TimestampLayout), Ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", path, err)
	}
	return path, nil
}

// Restore overwrites targetPath with the backup's content, verbatim.
// A missing backup path is reported as an error to the caller.
func Restore(backupPath, targetPath string) error {
	content, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", backupPath, err)
	}
	if err := os.WriteFile(targetPath, content, 0644); err != nil {
		return fmt.Errorf("restoring %s: %w", targetPath, err)
	}
	return nil
}

// List returns the backups for baseName in dir, newest first.
// If baseName is empty, all backups in dir are returned.
// A missing directory is not an error: the list is empty.
func List(dir, baseName string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory %s: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		if baseName != "" && rec.BaseName != baseName {
			continue
		}
		rec.Path = filepath.Join(dir, entry.Name())
		records = append(records, rec)
	}

	// The fixed timestamp format sorts lexicographically; newest first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Clean deletes the named backup file in dir, or every backup when
// name is "all". It returns the number of files removed.
func Clean(dir, name string) (int, error) {
	if name != "all" {
		path := filepath.Join(dir, name)
		if _, ok := parseName(filepath.Base(name)); !ok {
			return 0, fmt.Errorf("%s is not a backup file", name)
		}
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("removing %s: %w", path, err)
		}
		return 1, nil
	}

	records, err := List(dir, "")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if err := os.Remove(rec.Path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", rec.Path, err)
		}
		removed++
	}
	return removed, nil
}

// parseName splits "{base}_{timestamp}.backup" into its parts.
func parseName(name string) (Record, bool) {
	if !strings.HasSuffix(name, Ext) {
		return Record{}, false
	}
	stem := strings.TrimSuffix(name, Ext)
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 {
		return Record{}, false
	}
	base, ts := stem[:idx], stem[idx+1:]
	if _, err := time.Parse(TimestampLayout, ts); err != nil {
		return Record{}, false
	}
	return Record{BaseName: base, Timestamp: ts}, true
}
