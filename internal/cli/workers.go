package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ideaforge-workers/pkg/registry"
)

func newWorkersCmd(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the service tasks the worker manager implements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Default()
			if path != "" {
				loaded, err := registry.LoadRegistry(path)
				if err != nil {
					return err
				}
				reg = loaded
			}

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return writeJSON(out, reg)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERRORS")
			for _, a := range reg.Activities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.Category, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&path, "registry", "r", "", "activity registry JSON file (default: built-in catalog)")
	return cmd
}
