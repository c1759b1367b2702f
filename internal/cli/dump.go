package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	OutDir string
}

// DumpResult is the JSON payload of a successful dump.
type DumpResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Save the group's member document as a JSON fixture",
		Long: `Fetch the group document from GroupMe and save it as MM-DD-YY_users.json.

The file is the API response as served, indented for reading. It is useful
as a test fixture and for checking nicknames.

Example:
  streakbot dump --out-dir ./fixtures`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", ".", "directory to write the fixture into")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}
	log := opts.logger(cmd.ErrOrStderr(), cfg)

	loc, err := cfg.Location()
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, err)
	}

	raw, err := opts.chat(cfg, log).RawRoster(commandContext(cmd))
	if err != nil {
		return outputRunError(formatter, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "    "); err != nil {
		return outputCommandError(formatter, ErrCodeDump, fmt.Errorf("format roster: %w", err))
	}
	pretty.WriteByte('\n')

	name := opts.now().In(loc).Format("01-02-06") + "_users.json"
	path := filepath.Join(opts.OutDir, name)
	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return outputCommandError(formatter, ErrCodeDump, fmt.Errorf("write roster: %w", err))
	}
	log.Info("wrote roster", "path", path)

	result := DumpResult{Path: path, Bytes: pretty.Len()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, path)
	return nil
}
