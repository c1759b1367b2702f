package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/streakbot/internal/config"
	"github.com/roach88/streakbot/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	EnvFile    string

	// NewChat overrides the GroupMe client (for testing).
	NewChat func(cfg config.Config, log *slog.Logger) Chat

	// OpenStore overrides the configured store backend (for testing).
	OpenStore func(ctx context.Context, cfg config.Config) (store.Store, error)

	// Now overrides the wall clock (for testing).
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the streakbot CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, keeping
// any test overrides already set.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streakbot",
		Short: "streakbot - daily check-in streaks for GroupMe",
		Long: `Track daily reading check-ins in GroupMe channels and post a streak leaderboard.

Each run scores the previous day: members who posted a numbered check-in
("1)", "2.", ...) extend a reading streak, everyone else extends a missed
streak. The new streaks are saved before the leaderboard is posted.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Registering a flag stores its default into the target, so preset
	// fields become the defaults.
	format, envFile := opts.Format, opts.EnvFile
	if format == "" {
		format = "text"
	}
	if envFile == "" {
		envFile = ".env"
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", format, "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", envFile, "dotenv file loaded into the environment if present")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
