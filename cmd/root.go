// jsondropper/cmd/root.go
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"jsondropper/internal/config"
	"jsondropper/internal/dropper"
	"jsondropper/internal/scan"
	"jsondropper/internal/session"
	"jsondropper/internal/util"
)

var (
	configPath string
	verbose    bool
	rootFlags  []string
	allRoots   bool
	dryRun     bool
	staged     bool
	noPause    bool
)

// Set up in PersistentPreRunE, shared by every command.
var (
	appConfig *config.Config
	logger    *slog.Logger
)

// pauseBeforeExit keeps the console open after a run started from Explorer.
var pauseBeforeExit bool

var rootCmd = &cobra.Command{
	Use:   "jsondropper [archive.zip...]",
	Short: "Replace project folders with the content of form .zip exports",
	Long: `JsonDropper syncs form project folders from .zip exports.

Every archive handed over (drag and drop onto the executable, the Explorer
"Send To" menu or the command line) is opened and the Code field of its
form.json is read. Every folder below the configured roots whose own
form.json carries the same Code is emptied and refilled with the archive
content.

Started without archives, an interactive menu manages the roots.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose)
		if !cmd.HasParent() {
			pauseBeforeExit = !noPause && stdinIsTerminal()
		}

		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return fmt.Errorf("locate config file: %w", err)
			}
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
		appConfig = cfg
		logger.Debug("config loaded", "path", cfg.Path(), "roots", len(cfg.GetRoots()))

		if !cmd.HasParent() {
			pauseBeforeExit = pauseBeforeExit && cfg.GetSettings().PauseOnExit
		}
		return nil
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	console := session.NewConsole(os.Stdin, os.Stdout, stdinIsTerminal())
	session.PrintBanner(os.Stdout)

	if len(args) == 0 {
		return session.Manage(appConfig, console, rootExists)
	}

	roots, err := session.ResolveRoots(appConfig.GetRoots(), session.RootRequest{
		Explicit: rootFlags,
		All:      allRoots,
	}, console, logger)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	runner := &session.Runner{Engine: engine, Out: os.Stdout, Log: logger}
	report := runner.Run(args, roots)
	report.PrintSummary(os.Stdout)
	return nil
}

// newEngine builds the scanner and engine from the loaded settings and the
// command line switches.
func newEngine() (*dropper.Engine, error) {
	settings := appConfig.GetSettings()
	fs := util.NewHostFS()
	scanner, err := scan.New(fs, scan.Options{Exclude: settings.Exclude, Logger: logger})
	if err != nil {
		return nil, err
	}
	return dropper.New(fs, scanner, dropper.Options{
		Staged: staged || settings.StagedReplace,
		DryRun: dryRun,
		Logger: logger,
	}), nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(os.Stderr),
	}))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func stdinIsTerminal() bool { return isTerminal(os.Stdin) }

func rootExists(p string) bool {
	ok, err := util.IsDir(p)
	return err == nil && ok
}

func init() {
	// a double click from Explorer must open the interactive menu
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $"+config.EnvConfigPath+" or "+config.ConfigFileName+" next to the executable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step to stderr")

	rootCmd.Flags().StringArrayVarP(&rootFlags, "root", "r", nil, "search this root instead of the configured ones (repeatable)")
	rootCmd.Flags().BoolVar(&allRoots, "all-roots", false, "search every configured root without asking")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report which folders would be replaced")
	rootCmd.Flags().BoolVar(&staged, "staged", false, "extract next to each folder first and swap only on success")
	rootCmd.Flags().BoolVar(&noPause, "no-pause", false, "do not wait for Enter before exiting")
}

// Execute runs the command line. It is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		util.ErrorPrint("Error: %v\n", err)
	}
	if pauseBeforeExit {
		session.NewConsole(os.Stdin, os.Stdout, true).Pause()
	}
	if err != nil {
		os.Exit(1)
	}
}
