// Package config — .multilang.yaml configuration file support.
//
// When a .multilang.yaml file exists in the project root, multilang
// uses it as the sole source of truth for managed directories. No
// auto-detection is performed — every family must be explicitly
// declared.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .multilang.yaml structure. Each family block
// describes one managed directory: error-code tables or translation
// locale tables.
type File struct {
	// SourceLang is the source language code for all families
	// (default "zh", overridable per family).
	SourceLang string `yaml:"source_lang,omitempty"`
	// ErrorCodes configures the error-code table family.
	ErrorCodes *Family `yaml:"error_codes,omitempty"`
	// Locales configures the translation locale family.
	Locales *Family `yaml:"locales,omitempty"`
	// Service configures the external translation service.
	Service Service `yaml:"service,omitempty"`
}

// Family describes one managed directory of per-language files.
type Family struct {
	// Name is the family label used in logs ("error_codes", "locales");
	// filled in by Load, not read from YAML.
	Name string `yaml:"-"`
	// Dir is the managed directory, relative to the project root.
	Dir string `yaml:"dir"`
	// SourceFile is the canonical source-language file name, e.g. "zh.js".
	SourceFile string `yaml:"source_file"`
	// ExecFiles selects the target files: "all" (default) for every
	// other recognized file in Dir, or a comma-separated list of names.
	ExecFiles string `yaml:"exec_files,omitempty"`
	// BackupDir is the backup directory relative to Dir (default "backups").
	BackupDir string `yaml:"backup_dir,omitempty"`
	// SourceLang overrides the global source language for this family.
	SourceLang string `yaml:"source_lang,omitempty"`
}

// Service holds the translation service settings. Environment
// variables MULTILANG_ENDPOINT, MULTILANG_TIMEOUT and MULTILANG_PROXY
// override the YAML values; a .env file in the project root is loaded
// first when present.
type Service struct {
	// Endpoint overrides the built-in service URL.
	Endpoint string `yaml:"endpoint,omitempty"`
	// TimeoutSeconds bounds one request.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
}

// Timeout returns the configured timeout as a duration, 0 when unset.
func (s Service) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// FileName is the default config file name.
const FileName = ".multilang.yaml"

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load loads and validates .multilang.yaml from the given directory.
// Returns nil if no .multilang.yaml exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Defaults
	if f.SourceLang == "" {
		f.SourceLang = "zh"
	}

	families := map[string]*Family{
		"error_codes": f.ErrorCodes,
		"locales":     f.Locales,
	}
	declared := 0
	for name, fam := range families {
		if fam == nil {
			continue
		}
		declared++
		fam.Name = name
		if fam.Dir == "" {
			return nil, fmt.Errorf("%s: family %q has no dir", path, name)
		}
		if fam.SourceFile == "" {
			return nil, fmt.Errorf("%s: family %q has no source_file", path, name)
		}
		if fam.ExecFiles == "" {
			fam.ExecFiles = "all"
		}
		if fam.BackupDir == "" {
			fam.BackupDir = "backups"
		}
		if fam.SourceLang == "" {
			fam.SourceLang = f.SourceLang
		}
	}
	if declared == 0 {
		return nil, fmt.Errorf("%s: no families declared (error_codes, locales)", path)
	}

	// .env is optional; missing file is not an error.
	_ = godotenv.Load(filepath.Join(rootDir, ".env"))
	if v := os.Getenv("MULTILANG_ENDPOINT"); v != "" {
		f.Service.Endpoint = v
	}
	if v := os.Getenv("MULTILANG_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			f.Service.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("MULTILANG_PROXY"); v != "" {
		f.Service.Proxy = v
	}

	return &f, nil
}

// Families returns the declared families in a stable order.
func (f *File) Families() []*Family {
	var out []*Family
	if f.ErrorCodes != nil {
		out = append(out, f.ErrorCodes)
	}
	if f.Locales != nil {
		out = append(out, f.Locales)
	}
	return out
}

// ---------------------------------------------------------------------------
// Resolving families to absolute paths
// ---------------------------------------------------------------------------

// ResolvedFamily holds a family with its paths resolved against the
// project root.
type ResolvedFamily struct {
	Family *Family
	// AbsDir is the absolute managed directory.
	AbsDir string
}

// Resolve converts a family into a ResolvedFamily. The managed
// directory must exist.
func (fam *Family) Resolve(projectRoot string) (ResolvedFamily, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return ResolvedFamily{}, err
	}
	absDir := filepath.Join(absRoot, fam.Dir)
	info, err := os.Stat(absDir)
	if err != nil {
		return ResolvedFamily{}, fmt.Errorf("family %s: directory %s: %w", fam.Name, absDir, err)
	}
	if !info.IsDir() {
		return ResolvedFamily{}, fmt.Errorf("family %s: %s is not a directory", fam.Name, absDir)
	}
	return ResolvedFamily{Family: fam, AbsDir: absDir}, nil
}

// SourcePath returns the absolute source file path.
func (rf ResolvedFamily) SourcePath() string {
	return filepath.Join(rf.AbsDir, rf.Family.SourceFile)
}

// TargetPath returns the absolute path for a target file name.
func (rf ResolvedFamily) TargetPath(name string) string {
	return filepath.Join(rf.AbsDir, name)
}

// BackupPath returns the absolute backup directory.
func (rf ResolvedFamily) BackupPath() string {
	return filepath.Join(rf.AbsDir, rf.Family.BackupDir)
}

// TargetFiles resolves the exec-file selector: "all" means every other
// recognized per-language file in the directory; otherwise the
// comma-separated names are taken as-is (each must exist).
func (rf ResolvedFamily) TargetFiles() ([]string, error) {
	if rf.Family.ExecFiles != "all" {
		var names []string
		for _, name := range strings.Split(rf.Family.ExecFiles, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if name == rf.Family.SourceFile {
				continue
			}
			if _, err := os.Stat(rf.TargetPath(name)); err != nil {
				return nil, fmt.Errorf("family %s: target file %s: %w", rf.Family.Name, name, err)
			}
			names = append(names, name)
		}
		return names, nil
	}

	entries, err := os.ReadDir(rf.AbsDir)
	if err != nil {
		return nil, fmt.Errorf("family %s: reading %s: %w", rf.Family.Name, rf.AbsDir, err)
	}
	ext := filepath.Ext(rf.Family.SourceFile)
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == rf.Family.SourceFile {
			continue
		}
		if filepath.Ext(name) != ext {
			continue
		}
		if !isLangCode(strings.TrimSuffix(name, ext)) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Lang returns the language code for a target file name: the base name
// without extension.
func Lang(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// isLangCode checks if a string looks like a language code
// (en, ru, pt-BR, zh-CN, etc., BCP 47 with hyphens).
func isLangCode(s string) bool {
	if len(s) == 2 {
		return s[0] >= 'a' && s[0] <= 'z' && s[1] >= 'a' && s[1] <= 'z'
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 2 && len(parts[0]) == 2 && len(parts[1]) >= 2 {
		return parts[0][0] >= 'a' && parts[0][0] <= 'z' &&
			parts[0][1] >= 'a' && parts[0][1] <= 'z'
	}
	return false
}
