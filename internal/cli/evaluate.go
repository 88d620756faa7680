package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge-workers/internal/engine"
)

func newEvaluateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate FILE",
		Short: "Score an idea with the heuristic evaluator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := loadIdea(args[0])
			if err != nil {
				return err
			}

			result := engine.Evaluate(idea)
			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return writeJSON(out, result)
			}

			fmt.Fprintf(out, "Score: %d/100\n\n", result.Score)
			values := result.Breakdown.Values()
			for _, name := range engine.SubscoreNames {
				fmt.Fprintf(out, "  %-16s %s %.2f\n", name, bar(values[name]), values[name])
			}
			fmt.Fprintln(out)
			writeList(out, "Warnings", result.Warnings)
			return nil
		},
	}
}
