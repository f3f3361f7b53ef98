// multilang — keeps per-language error-code tables and locale files in
// sync with their canonical source file, translating missing entries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/eneno295/multilang-tools/backup"
	"github.com/eneno295/multilang-tools/config"
	"github.com/eneno295/multilang-tools/i18n"
	"github.com/eneno295/multilang-tools/langcode"
	"github.com/eneno295/multilang-tools/reconcile"
	"github.com/eneno295/multilang-tools/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	familyName string
	verbose    bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "multilang",
		Short: "Multi-language file synchronizer with automatic translation",
		Long: `multilang — keeps per-language files in sync with a canonical source file.

Two file families are supported, both declared in .multilang.yaml:
  error_codes   numeric error-code tables (const errCode = {...}) with
                comment-delimited module sections
  locales       nested translation tables (export default {...})

Commands:
  status      Show per-file sync statistics (read-only)
  translate   Translate missing entries into every target file
  organize    Rewrite files into canonical order (sections, sorting)
  backup      List, restore or clean timestamped backups`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (location of .multilang.yaml)")
	root.PersistentFlags().StringVar(&familyName, "family", "all", "File family to operate on: error_codes, locales, all")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newOrganizeCmd(),
		newBackupCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// newLogger builds the structured logger shared by the translation
// client and the reconcile engine. Silent unless --verbose is set.
func newLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("multilang version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Config loading and family selection
// ---------------------------------------------------------------------------

// loadConfig loads .multilang.yaml from the project root. A missing
// file is reported to the user and ends the run.
func loadConfig() (*config.File, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("%s", i18n.Tf("No .multilang.yaml found in %s", rootDir))
	}
	return cfg, nil
}

// selectFamilies filters the declared families by the --family flag.
func selectFamilies(cfg *config.File, selector string) ([]*config.Family, error) {
	declared := cfg.Families()
	if selector == "all" || selector == "" {
		return declared, nil
	}
	for _, fam := range declared {
		if fam.Name == selector {
			return []*config.Family{fam}, nil
		}
	}
	return nil, fmt.Errorf("family %q is not declared in %s", selector, config.FileName)
}

// buildRequest resolves a family into the engine's file list.
func buildRequest(fam *config.Family, dryRun bool) (reconcile.Request, error) {
	rf, err := fam.Resolve(rootDir)
	if err != nil {
		return reconcile.Request{}, err
	}
	targets, err := rf.TargetFiles()
	if err != nil {
		return reconcile.Request{}, err
	}
	return reconcile.Request{
		Dir:        rf.AbsDir,
		SourceFile: fam.SourceFile,
		Targets:    targets,
		BackupDir:  fam.BackupDir,
		SourceLang: fam.SourceLang,
		DryRun:     dryRun,
	}, nil
}

// newProvider builds the translation client from the service settings.
func newProvider(svc config.Service, log zerolog.Logger) translate.Provider {
	opts := []translate.Option{translate.WithLogger(log)}
	if svc.Endpoint != "" {
		opts = append(opts, translate.WithEndpoint(svc.Endpoint))
	}
	if svc.Timeout() > 0 {
		opts = append(opts, translate.WithTimeout(svc.Timeout()))
	}
	if svc.Proxy != "" {
		opts = append(opts, translate.WithProxy(svc.Proxy))
	}
	return translate.NewClient(opts...)
}

// ---------------------------------------------------------------------------
// status (read-only: per-file sync statistics)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-file sync statistics",
		Long: `Show how far each target file has drifted from its source file.

Lists missing and redundant keys per target. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	families, err := selectFamilies(cfg, familyName)
	if err != nil {
		return err
	}

	engine := reconcile.New(nil, reconcile.WithLogger(newLogger()))
	allSynced := true
	for _, fam := range families {
		req, err := buildRequest(fam, false)
		if err != nil {
			logError("%v", err)
			allSynced = false
			continue
		}

		var results []reconcile.FileResult
		switch fam.Name {
		case "error_codes":
			results, err = engine.StatusErrorCodes(req)
		default:
			results, err = engine.StatusLocales(req)
		}
		if err != nil {
			logError("%s: %v", fam.Name, err)
			allSynced = false
			continue
		}

		fmt.Fprintf(os.Stderr, "\n%s%s%s (%s, source %s)\n", colorBlue, fam.Name, colorReset, fam.Dir, fam.SourceFile)
		for _, res := range results {
			printStatusLine(res)
			if res.Status != reconcile.StatusSynced {
				allSynced = false
			}
		}
	}

	if allSynced {
		logSuccess("%s", i18n.T("All files are in sync"))
	}
	return nil
}

func printStatusLine(res reconcile.FileResult) {
	color := colorGreen
	switch res.Status {
	case reconcile.StatusFailed:
		color = colorRed
	case reconcile.StatusPending, reconcile.StatusPartial:
		color = colorYellow
	}
	name := langcode.Resolve(config.Lang(res.File)).Name
	fmt.Fprintf(os.Stderr, "  %-14s %-20s %s%s%s", res.File, name, color, res.Status, colorReset)
	if len(res.Missing) > 0 {
		fmt.Fprintf(os.Stderr, "  missing %d (%s)", len(res.Missing), joinCapped(res.Missing, 5))
	}
	if len(res.Redundant) > 0 {
		fmt.Fprintf(os.Stderr, "  redundant %d (%s)", len(res.Redundant), joinCapped(res.Redundant, 5))
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %s", msg)
	}
	fmt.Fprintln(os.Stderr)
}

// joinCapped joins up to max items, appending "..." when truncated.
func joinCapped(items []string, max int) string {
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:max], ", ") + ", ..."
}

// ---------------------------------------------------------------------------
// translate (sync: fill in missing entries via the translation service)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate missing entries into every target file",
		Long: `Bring every target file up to the source file's key set.

Missing entries are translated one at a time through the translation
service and spliced into the target file next to their source-file
siblings. Entries that fail to translate are skipped and reported; the
rest of the file is still written. Each file is snapshotted to the
backup directory before its first modification.

Examples:
  # Sync both families
  multilang translate

  # Sync only the locale tables
  multilang translate --family locales`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate()
		},
	}

	return cmd
}

func runTranslate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	families, err := selectFamilies(cfg, familyName)
	if err != nil {
		return err
	}

	// Graceful cancellation: a second interrupt kills the process.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, finishing current entry...")
		cancel()
	}()

	log := newLogger()
	provider := newProvider(cfg.Service, log)

	var bar *progressbar.ProgressBar
	engine := reconcile.New(provider,
		reconcile.WithLogger(log),
		reconcile.WithEvents(reconcile.Events{
			OnFileStart: func(file string, missing int) {
				bar = progressbar.NewOptions(missing,
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", file)),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "[green]=[reset]",
						SaucerHead:    "[green]>[reset]",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}))
			},
			OnKey: func(file, key string, err error) {
				if bar != nil {
					_ = bar.Add(1)
				}
			},
			OnFileDone: func(res reconcile.FileResult) {
				if bar != nil {
					_ = bar.Finish()
					fmt.Fprintln(os.Stderr)
					bar = nil
				}
			},
		}))

	translated, failed := 0, 0
	for _, fam := range families {
		req, err := buildRequest(fam, false)
		if err != nil {
			return err
		}
		logInfo("%s", i18n.Tf("Synchronizing %s...", fam.Name))

		var results []reconcile.FileResult
		switch fam.Name {
		case "error_codes":
			results, err = engine.SyncErrorCodes(ctx, req)
		default:
			results, err = engine.SyncLocales(ctx, req)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", fam.Name, err)
		}

		for _, res := range results {
			printStatusLine(res)
		}
		t, f := summarize(results)
		translated += t
		failed += f
	}

	if translated > 0 {
		logSuccess(i18n.N("Translated %d entry", "Translated %d entries", translated), translated)
	}
	if failed > 0 {
		logWarning(i18n.N("%d entry failed", "%d entries failed", failed), failed)
	}
	if translated == 0 && failed == 0 {
		logSuccess("%s", i18n.T("All files are in sync"))
	}
	return nil
}

// summarize totals the translated and failed counts of a result list.
func summarize(results []reconcile.FileResult) (translated, failed int) {
	for _, res := range results {
		translated += res.Translated
		failed += res.Failed
	}
	return translated, failed
}

// ---------------------------------------------------------------------------
// organize (rewrite files into canonical order)
// ---------------------------------------------------------------------------

func newOrganizeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Rewrite files into canonical order",
		Long: `Rewrite the source file and every target file into canonical form.

Error-code tables get their entries moved to the section their numeric
prefix names and sorted ascending within sections. Locale tables get
uniform quoting, indentation and comma placement. Organizing an
already-organized file changes nothing.

Each file is snapshotted to the backup directory before its first
modification. With --dry-run, files that would change are listed but
nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

func runOrganize(dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	families, err := selectFamilies(cfg, familyName)
	if err != nil {
		return err
	}

	engine := reconcile.New(nil, reconcile.WithLogger(newLogger()))
	changed := false
	for _, fam := range families {
		req, err := buildRequest(fam, dryRun)
		if err != nil {
			return err
		}
		logInfo("%s", i18n.Tf("Organizing %s...", fam.Name))

		var results []reconcile.FileResult
		switch fam.Name {
		case "error_codes":
			results, err = engine.OrganizeErrorCodes(req)
		default:
			results, err = engine.OrganizeLocales(req)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", fam.Name, err)
		}

		for _, res := range results {
			printOrganizeLine(res)
			if res.Status != reconcile.StatusSynced {
				changed = true
			}
		}
	}

	if !changed {
		logSuccess("%s", i18n.T("All files are in sync"))
	}
	return nil
}

func printOrganizeLine(res reconcile.FileResult) {
	printStatusLine(res)
	if res.Moves > 0 {
		fmt.Fprintf(os.Stderr, "    moved %d entr%s between sections\n", res.Moves, pluralIes(res.Moves))
	}
	for _, code := range res.Ambiguous {
		logWarning("%s: ambiguous section, left in place", code)
	}
}

func pluralIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// ---------------------------------------------------------------------------
// backup (list / restore / clean timestamped snapshots)
// ---------------------------------------------------------------------------

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "List, restore or clean timestamped backups",
		Long: `Manage the timestamped snapshots created before file rewrites.

Backups live in each family's backup directory (default: backups/ under
the managed directory) and are named {base}_{YYYY-MM-DD-HH-mm-ss}.backup.
They are never deleted automatically.`,
	}

	cmd.AddCommand(
		newBackupCreateCmd(),
		newBackupListCmd(),
		newBackupRestoreCmd(),
		newBackupCleanCmd(),
	)

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [file]",
		Short: "Snapshot managed files now",
		Long: `Create a timestamped backup of every managed file, or of one file.

Unlike the automatic pre-write snapshots, an explicit create always
writes a new backup, even when older ones exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			only := ""
			if len(args) == 1 {
				only = args[0]
			}
			created := 0
			err := eachFamilyBackupDir(func(fam *config.Family, dir string) error {
				rf, err := fam.Resolve(rootDir)
				if err != nil {
					return err
				}
				targets, err := rf.TargetFiles()
				if err != nil {
					return err
				}
				for _, name := range append([]string{fam.SourceFile}, targets...) {
					if only != "" && name != only {
						continue
					}
					content, err := os.ReadFile(rf.TargetPath(name))
					if err != nil {
						return err
					}
					base := strings.TrimSuffix(name, filepath.Ext(name))
					path, err := backup.Create(dir, base, content)
					if err != nil {
						return err
					}
					created++
					logSuccess("%s", path)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if created == 0 && only != "" {
				return fmt.Errorf("no managed file named %s", only)
			}
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List existing backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return eachFamilyBackupDir(func(fam *config.Family, dir string) error {
				records, err := backup.List(dir, "")
				if err != nil {
					return err
				}
				if len(records) == 0 {
					logInfo("%s: %s", fam.Name, i18n.T("No backups found"))
					return nil
				}
				fmt.Fprintf(os.Stderr, "\n%s%s%s (%s)\n", colorBlue, fam.Name, colorReset, dir)
				for _, rec := range records {
					fmt.Fprintf(os.Stderr, "  %s  %s\n", rec.Timestamp, filepath.Base(rec.Path))
				}
				return nil
			})
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore a managed file from its newest backup",
		Long: `Restore a managed file from its newest backup.

The argument is the managed file's name within the family directory,
e.g. "en.js". The backup content replaces the file verbatim.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			base := strings.TrimSuffix(name, filepath.Ext(name))
			restored := false

			err := eachFamilyBackupDir(func(fam *config.Family, dir string) error {
				records, err := backup.List(dir, base)
				if err != nil || len(records) == 0 {
					return err
				}
				rf, err := fam.Resolve(rootDir)
				if err != nil {
					return err
				}
				target := rf.TargetPath(name)
				if err := backup.Restore(records[0].Path, target); err != nil {
					return err
				}
				restored = true
				logSuccess("%s", i18n.Tf("Restored %s from %s", target, filepath.Base(records[0].Path)))
				return nil
			})
			if err != nil {
				return err
			}
			if !restored {
				return fmt.Errorf("%s", i18n.T("No backups found"))
			}
			return nil
		},
	}
}

func newBackupCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [name]",
		Short: "Delete backups (all by default, or one by file name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "all"
			if len(args) == 1 {
				name = args[0]
			}
			removed := 0
			err := eachFamilyBackupDir(func(fam *config.Family, dir string) error {
				n, err := backup.Clean(dir, name)
				removed += n
				// A named backup lives in exactly one family's directory.
				if err != nil && name != "all" && errors.Is(err, os.ErrNotExist) {
					return nil
				}
				return err
			})
			if err != nil {
				return err
			}
			if removed == 0 {
				logInfo("%s", i18n.T("No backups found"))
				return nil
			}
			logSuccess(i18n.N("Removed %d backup file", "Removed %d backup files", removed), removed)
			return nil
		},
	}
}

// eachFamilyBackupDir runs fn once per selected family with its
// resolved backup directory.
func eachFamilyBackupDir(fn func(fam *config.Family, dir string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	families, err := selectFamilies(cfg, familyName)
	if err != nil {
		return err
	}
	for _, fam := range families {
		rf, err := fam.Resolve(rootDir)
		if err != nil {
			return err
		}
		if err := fn(fam, rf.BackupPath()); err != nil {
			return fmt.Errorf("%s: %w", fam.Name, err)
		}
	}
	return nil
}
