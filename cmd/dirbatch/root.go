package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/config"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
)

// app carries what the persistent pre-run sets up for the subcommands.
type app struct {
	configFile string
	logLevel   string
	verbose    int
	noColor    bool

	cfg    *config.Config
	engine *dirbatch.Engine
	report *reporter
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirbatch",
		Short: "Batch file listing, renaming and image conversion planning",
		Long: `dirbatch lists directories as JSON, renames files in bulk and resolves
image conversion targets.

Every rename batch is validated as a whole before anything is renamed: target
names are sanitized, must be unique, must stay inside the folder and must not
exist. Validated renames then run concurrently and are not rolled back when
one of them fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase verbosity (-v info, -vv debug, -vvv trace)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(newVersionCmd())
	for _, name := range dirbatch.CommandNames() {
		cmd.AddCommand(newDispatchCmd(a, name))
	}
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configFile != "" {
		a.cfg, err = config.Load(a.configFile)
	} else {
		a.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	var logLevel *string
	if cmd.Flags().Changed("log-level") {
		logLevel = &a.logLevel
	}
	a.cfg.MergeWithFlags(logLevel, &a.noColor)
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := dirbatch.LogLevelFromString(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose > 0 {
		level = dirbatch.VerbosityLevel(a.verbose)
	}
	zl := dirbatch.NewLogger(cmd.ErrOrStderr(), level)
	logger := dirbatch.NewLoggerAdapter(&zl)

	a.report = newReporter(cmd.ErrOrStderr(), useColor(a.cfg.Color, cmd.ErrOrStderr()))
	a.engine, err = dirbatch.NewEngineFromConfig(filesystem.NewOSFileSystem(), a.cfg, logger)
	if err != nil {
		return err
	}
	if a.verbose > 0 {
		a.engine.EventBus().Subscribe(core.EventHandlerFunc(a.report.progress),
			core.EventRenameCompleted, core.EventRenameFailed)
	}
	return nil
}

// useColor resolves a colour mode for output written to w.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of dirbatch`,
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dirbatch version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var batchErr *core.BatchError
	if errors.As(err, &batchErr) && a.report != nil {
		a.report.batch(batchErr)
		return 1
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}
