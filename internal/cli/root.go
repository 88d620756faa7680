// Package cli provides ideactl, which runs the idea engine against local files.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

const (
	formatText = "text"
	formatJSON = "json"
)

// ErrIssuesFound is returned by validate when the idea fails submission checks.
var ErrIssuesFound = errors.New("idea has validation issues")

type options struct {
	format string
}

// NewRootCmd builds the ideactl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ideactl",
		Short: "Score, validate and compare startup ideas offline",
		Long: `ideactl runs the idea engine against idea files on disk.

Idea files may be YAML or JSON and use the same field names as the
workflow variables (title, tagline, problemStatement, ...).

Examples:
  ideactl validate idea.yaml
  ideactl evaluate idea.json --format json
  ideactl swot idea.yaml
  ideactl similar idea.yaml --pool ideas.yaml --max 3
  ideactl workers
  ideactl submit idea.yaml --entrepreneur ent1`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatText, formatJSON)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "output format: text or json")

	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newEvaluateCmd(opts))
	root.AddCommand(newSwotCmd(opts))
	root.AddCommand(newSimilarCmd(opts))
	root.AddCommand(newWorkersCmd(opts))
	root.AddCommand(newSubmitCmd(opts))
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
