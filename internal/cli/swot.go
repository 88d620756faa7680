package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge-workers/internal/engine"
)

func newSwotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "swot FILE",
		Short: "Generate a rule-based SWOT analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := loadIdea(args[0])
			if err != nil {
				return err
			}

			swot := engine.GenerateSWOT(idea)
			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return writeJSON(out, swot)
			}

			writeList(out, "Strengths", swot.Strengths)
			fmt.Fprintln(out)
			writeList(out, "Weaknesses", swot.Weaknesses)
			fmt.Fprintln(out)
			writeList(out, "Opportunities", swot.Opportunities)
			fmt.Fprintln(out)
			writeList(out, "Threats", swot.Threats)
			return nil
		},
	}
}
