package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge-workers/internal/engine"
)

type validateResult struct {
	File    string   `json:"file"`
	IsValid bool     `json:"isValid"`
	Issues  []string `json:"issues"`
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Run the submission checks against an idea",
		Long: `Run the submission checks against an idea.

Exits with a non-zero status when any issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := loadIdea(args[0])
			if err != nil {
				return err
			}

			issues := engine.Validate(idea)
			result := validateResult{File: args[0], IsValid: len(issues) == 0, Issues: issues}

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else if result.IsValid {
				fmt.Fprintf(out, "%s: ready to submit\n", args[0])
			} else {
				writeList(out, args[0]+": issues", issues)
			}

			if !result.IsValid {
				return fmt.Errorf("%w: %d", ErrIssuesFound, len(issues))
			}
			return nil
		},
	}
}
