package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/streakbot/internal/run"
	"github.com/roach88/streakbot/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DryRun bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score yesterday's check-ins and post the leaderboard",
		Long: `Score the previous day's check-ins and publish the streak leaderboard.

The day runs from 05:00 (America/New_York by default) and is processed
once, typically from a daily scheduler. Outside the prod environment, or
with --dry-run, nothing is saved or posted and the leaderboard is printed.

Example:
  streakbot run --config streakbot.yaml
  ENVIRONMENT=prod streakbot run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreaks(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute and print without saving or posting")

	return cmd
}

func runStreaks(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}
	log := opts.logger(cmd.ErrOrStderr(), cfg)
	log.Debug("loaded config", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := opts.openStore(ctx, cfg)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, WrapExitError(ExitCommandError, "failed to open store", err))
	}
	defer closeStore(log, st)

	runner := &run.Runner{
		Chat:        opts.chat(cfg, log),
		Store:       st,
		Logger:      log,
		Config:      cfg,
		ForceDryRun: opts.DryRun,
	}

	rep, err := runner.Run(ctx, opts.now())
	if err != nil {
		return outputRunError(formatter, err)
	}
	return outputReport(formatter, rep)
}

// withStore loads config, opens the store and builds a runner for the
// read-only commands.
func withStore(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *run.Runner) error) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}
	log := opts.logger(cmd.ErrOrStderr(), cfg)

	ctx := commandContext(cmd)
	st, err := opts.openStore(ctx, cfg)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, WrapExitError(ExitCommandError, "failed to open store", err))
	}
	defer closeStore(log, st)

	return fn(ctx, &run.Runner{Chat: opts.chat(cfg, log), Store: st, Logger: log, Config: cfg})
}

func closeStore(log *slog.Logger, st store.Store) {
	if err := st.Close(); err != nil {
		log.Error("error closing store", "error", err)
	}
}

func outputReport(formatter *OutputFormatter, rep run.Report) error {
	if formatter.Format == "json" {
		return formatter.Success(rep)
	}

	fmt.Fprintln(formatter.Writer, rep.Message)
	if rep.DryRun {
		formatter.VerboseLog("dry run: streaks not saved, leaderboard not posted")
	}
	return nil
}

// outputRunError reports a failed run. Run failures exit 1; the details
// say whether the new streaks were already saved.
func outputRunError(formatter *OutputFormatter, err error) error {
	var re *run.Error
	if !errors.As(err, &re) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", err)
	}

	_ = formatter.Error(string(re.Code), err.Error(), map[string]any{
		"stage":     re.Stage,
		"persisted": run.Persisted(err),
	})
	return WrapExitError(ExitFailure, "run failed", err)
}

func outputCommandError(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return WrapExitError(ExitCommandError, code, err)
}
