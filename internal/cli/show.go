package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/streakbot/internal/run"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current leaderboard without scoring a new day",
		Long: `Print the leaderboard for the current roster from the saved streaks.

Nothing is scanned, saved, or posted. Members with no saved streak show 0.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(ctx context.Context, r *run.Runner) error {
				formatter := rootOpts.formatter(cmd)
				rep, err := r.Preview(ctx, rootOpts.now())
				if err != nil {
					return outputRunError(formatter, err)
				}
				return outputReport(formatter, rep)
			})
		},
	}

	return cmd
}
