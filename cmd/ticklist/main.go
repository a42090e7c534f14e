// Package main provides the CLI entry point for ticklist.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/AntoineGS/ticklist/internal/config"
	"github.com/AntoineGS/ticklist/internal/report"
	"github.com/AntoineGS/ticklist/internal/session"
	"github.com/AntoineGS/ticklist/internal/state"
	"github.com/AntoineGS/ticklist/internal/tui"
	"github.com/spf13/cobra"
)

var version = "dev"

// errSnapshotIgnored is returned by import when the snapshot does not fit
// the list.
var errSnapshotIgnored = errors.New("snapshot not applied")

// options holds the parsed flags of one invocation.
type options struct {
	configPath string
	dbPath     string
	attrsPath  string
	keyColumn  string
	statePath  string
	outPath    string
	verbose    bool
	watch      bool
	noSave     bool
	forget     bool
	force      bool
	logFile    *os.File
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ticklist [items.csv]",
		Version: version,
		Short:   "Work through a long list one item at a time",
		Long: `ticklist shows a small window of a long item list around the first
unchecked item and lets you check items off in order.

Items are read from a one-column CSV file. An optional attribute CSV with a
header row adds details to each item. Progress is saved to a local database
and restored the next time the same list is opened.

Run without a subcommand to start the interactive TUI.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts, args)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd, opts)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logFile != nil {
				_ = opts.logFile.Close() //nolint:errcheck // best-effort
				opts.logFile = nil
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "App config file (default ~/.config/ticklist/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Progress database (overrides state_db)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&opts.attrsPath, "attrs", "a", "", "Attribute CSV with a header row")
	rootCmd.PersistentFlags().StringVarP(&opts.keyColumn, "key", "k", "", "Attribute column matched against item text (overrides key_column)")

	rootCmd.Flags().StringVarP(&opts.statePath, "state", "s", "", "Import a state snapshot on start")
	rootCmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the item file when it changes")
	rootCmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not read or write saved progress")

	statusCmd := &cobra.Command{
		Use:   "status <items.csv>",
		Short: "Show remaining items and the current window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts, args)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <items.csv>",
		Short: "Check the first unchecked item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	jumpCmd := &cobra.Command{
		Use:   "jump <items.csv> <row>",
		Short: "Move to a row of the list",
		Long: `Move to the given row. With jump_mode "mark" (the default) every item
before the row is checked and saved, so the row becomes the next one to
work on. With jump_mode "scroll" nothing is checked or saved; the window
around the row is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJump(cmd, opts, args)
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset <items.csv>",
		Short: "Clear every check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts, args)
		},
	}
	resetCmd.Flags().BoolVar(&opts.forget, "forget", false, "Also delete the saved history of this list")

	exportCmd := &cobra.Command{
		Use:   "export <items.csv>",
		Short: "Write the state snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args)
		},
	}
	exportCmd.Flags().StringVarP(&opts.outPath, "output", "o", "", "Write to file instead of stdout")

	importCmd := &cobra.Command{
		Use:   "import <items.csv> <state.json>",
		Short: "Restore progress from a state snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recently saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default app configuration",
		Long: `Write the default app configuration to ~/.config/ticklist/config.yaml,
or to the path given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts)
		},
	}
	initCmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing config file")

	rootCmd.AddCommand(statusCmd, checkCmd, jumpCmd, resetCmd, exportCmd, importCmd, historyCmd, initCmd)

	return rootCmd
}

// setupLogging installs the default logger. The TUI owns the terminal, so
// its logs go to a file or nowhere.
func setupLogging(cmd *cobra.Command, opts *options) {
	interactive := !cmd.HasParent()

	var (
		w     io.Writer = cmd.ErrOrStderr()
		level           = slog.LevelError
	)

	if interactive {
		w = io.Discard
	}

	if opts.verbose {
		level = slog.LevelDebug
		if interactive {
			logPath := filepath.Join(os.TempDir(), "ticklist.log")
			f, err := os.Create(logPath) //nolint:gosec // fixed name in the temp dir
			if err == nil {
				opts.logFile = f
				w = f
				fmt.Fprintf(cmd.ErrOrStderr(), "Verbose logs: %s\n", logPath)
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

func loadAppConfig(opts *options) (*config.AppConfig, error) {
	path := opts.configPath
	if path == "" {
		path = config.AppConfigPath()
	}

	cfg, err := config.LoadAppConfigFrom(path)
	if err != nil {
		return nil, err
	}

	if opts.dbPath != "" {
		cfg.StateDB = config.ExpandPath(opts.dbPath)
	}
	if opts.keyColumn != "" {
		cfg.KeyColumn = opts.keyColumn
	}

	return cfg, nil
}

// workspace is a session together with the store backing it.
type workspace struct {
	session *session.Session
	store   *state.Store
}

func (w *workspace) Close() error {
	if w.store == nil {
		return nil
	}
	return w.store.Close()
}

// openWorkspace loads itemsPath, and the attribute file when set, into a new
// session. An empty itemsPath leaves the session without a list.
func openWorkspace(cmd *cobra.Command, opts *options, cfg *config.AppConfig, itemsPath string, persist bool) (*workspace, error) {
	ws := &workspace{}
	sessOpts := []session.Option{
		session.WithLogger(slog.Default()),
		session.WithConfig(cfg),
	}

	if persist {
		store, err := state.Open(cfg.StateDB)
		if err != nil {
			return nil, fmt.Errorf("opening progress database: %w", err)
		}
		ws.store = store
		sessOpts = append(sessOpts, session.WithStore(store))
	}

	ws.session = session.New(sessOpts...)

	if itemsPath != "" {
		if err := ws.session.LoadItemsFile(itemsPath); err != nil {
			_ = ws.Close() //nolint:errcheck // already failing
			return nil, err
		}
	}

	if opts.attrsPath != "" {
		if err := ws.session.LoadAttributesFile(opts.attrsPath, cfg.KeyColumn); err != nil {
			_ = ws.Close() //nolint:errcheck // already failing
			return nil, err
		}
	}

	printWarnings(cmd.ErrOrStderr(), ws.session)

	return ws, nil
}

// openCommandWorkspace is openWorkspace for the non-interactive commands,
// which always persist their change.
func openCommandWorkspace(cmd *cobra.Command, opts *options, itemsPath string) (*workspace, error) {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg.Autosave = true

	return openWorkspace(cmd, opts, cfg, itemsPath, true)
}

func printWarnings(w io.Writer, s *session.Session) {
	for _, warning := range s.TakeWarnings() {
		fmt.Fprintf(w, "Warning: %s\n", warning.Message)
		if warning.Detail != "" {
			fmt.Fprint(w, warning.Detail)
		}
	}
}

func runInteractive(cmd *cobra.Command, opts *options, args []string) error {
	if !tui.IsTerminal() {
		return fmt.Errorf("interactive mode requires a terminal; use subcommands (status, check, jump) for non-interactive use")
	}

	cfg, err := loadAppConfig(opts)
	if err != nil {
		return err
	}

	var itemsPath string
	if len(args) > 0 {
		itemsPath = args[0]
	}

	ws, err := openWorkspace(cmd, opts, cfg, itemsPath, !opts.noSave)
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	if opts.statePath != "" {
		if _, err := ws.session.ImportSnapshotFile(opts.statePath); err != nil {
			return err
		}
	}

	return tui.Run(ws.session, tui.Options{
		Logger: slog.Default(),
		Watch:  opts.watch,
	})
}

func runStatus(cmd *cobra.Command, opts *options, args []string) error {
	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	return report.Render(cmd.OutOrStdout(), ws.session.View())
}

func runCheck(cmd *cobra.Command, opts *options, args []string) error {
	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	idx, err := ws.session.CheckCurrent()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if idx == 0 {
		fmt.Fprintln(out, "All items are already checked")
		return nil
	}

	item, err := ws.session.State().Item(idx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Checked %d: %s\n\n", idx, item.Text)

	return report.Render(out, ws.session.View())
}

func runJump(cmd *cobra.Command, opts *options, args []string) error {
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid row %q: %w", args[1], err)
	}

	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	if err := ws.session.JumpTo(row); err != nil {
		return err
	}

	return report.Render(cmd.OutOrStdout(), ws.session.View())
}

func runReset(cmd *cobra.Command, opts *options, args []string) error {
	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	if err := ws.session.Reset(); err != nil {
		return err
	}

	if opts.forget {
		if err := ws.store.DeleteProgress(ws.session.Fingerprint()); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Progress reset (%d items)\n", ws.session.State().Len())

	return nil
}

func runExport(cmd *cobra.Command, opts *options, args []string) error {
	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	if opts.outPath == "" {
		return ws.session.ExportSnapshot(cmd.OutOrStdout())
	}

	if err := ws.session.ExportSnapshotFile(opts.outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", opts.outPath)

	return nil
}

func runImport(cmd *cobra.Command, opts *options, args []string) error {
	ws, err := openCommandWorkspace(cmd, opts, args[0])
	if err != nil {
		return err
	}
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	applied, err := ws.session.ImportSnapshotFile(args[1])
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), ws.session)
	if !applied {
		return errSnapshotIgnored
	}

	return report.Render(cmd.OutOrStdout(), ws.session.View())
}

func runHistory(cmd *cobra.Command, opts *options) error {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return err
	}

	store, err := state.Open(cfg.StateDB)
	if err != nil {
		return fmt.Errorf("opening progress database: %w", err)
	}
	defer store.Close() //nolint:errcheck // best-effort cleanup

	recs, err := store.ListProgress(cfg.HistoryLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No saved progress")
		return nil
	}

	for _, rec := range recs {
		done := 0
		for _, c := range rec.Checked {
			if c {
				done++
			}
		}
		fmt.Fprintf(out, "%s  %d/%d  %s\n",
			rec.SavedAt.Local().Format(time.DateTime), done, len(rec.Checked), rec.SourcePath)
	}

	return nil
}

func runInit(cmd *cobra.Command, opts *options) error {
	path := opts.configPath
	if path == "" {
		path = config.AppConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if err := config.SaveAppConfig(config.Default(), path); err != nil {
		return fmt.Errorf("saving app config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "App configuration saved to %s\n", path)

	return nil
}
