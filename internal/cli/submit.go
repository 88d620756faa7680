package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ideaforge-workers/internal/common/camunda"
	"ideaforge-workers/internal/engine"
	createidearecord "ideaforge-workers/internal/workers/idea/create-idea-record"
)

const (
	defaultBroker    = "localhost:26500"
	defaultProcessID = "idea-submission"
)

type processStarter interface {
	CreateInstance(ctx context.Context, bpmnProcessID string, vars interface{}) (int64, error)
	Close() error
}

// dialBroker is replaced in tests.
var dialBroker = func(address string) (processStarter, error) {
	return camunda.NewClient(address)
}

type submitResult struct {
	File               string `json:"file"`
	ProcessID          string `json:"processId"`
	ProcessInstanceKey int64  `json:"processInstanceKey"`
}

func newSubmitCmd(opts *options) *cobra.Command {
	var (
		broker    string
		processID string
		submitter createidearecord.Submitter
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Start the submission process for an idea",
		Long: `Start the submission process for an idea on a Zeebe broker.

The idea is checked locally first; use --force to submit it anyway and let
the workflow's validation gateway reject it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if submitter.ID == "" {
				return errors.New("--entrepreneur is required")
			}
			idea, err := loadIdea(args[0])
			if err != nil {
				return err
			}
			if issues := engine.Validate(idea); len(issues) > 0 && !force {
				writeList(cmd.ErrOrStderr(), args[0]+": issues", issues)
				return fmt.Errorf("%w: %d", ErrIssuesFound, len(issues))
			}

			client, err := dialBroker(broker)
			if err != nil {
				return err
			}
			defer client.Close()

			submitter.Role = "entrepreneur"
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			key, err := client.CreateInstance(ctx, processID, createidearecord.Input{
				Idea:         idea,
				Entrepreneur: submitter,
			})
			if err != nil {
				return fmt.Errorf("start %s: %w", processID, err)
			}

			result := submitResult{File: args[0], ProcessID: processID, ProcessInstanceKey: key}
			if opts.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: started %s instance %d\n", args[0], processID, key)
			return nil
		},
	}

	if env := os.Getenv("ZEEBE_ADDRESS"); env != "" {
		broker = env
	} else {
		broker = defaultBroker
	}
	cmd.Flags().StringVar(&broker, "broker", broker, "Zeebe gateway address (env ZEEBE_ADDRESS)")
	cmd.Flags().StringVar(&processID, "process", defaultProcessID, "BPMN process id to start")
	cmd.Flags().StringVar(&submitter.ID, "entrepreneur", "", "id of the submitting entrepreneur")
	cmd.Flags().StringVar(&submitter.Name, "name", "", "entrepreneur display name")
	cmd.Flags().StringVar(&submitter.Email, "email", "", "entrepreneur email")
	cmd.Flags().BoolVar(&force, "force", false, "submit even when local checks report issues")
	return cmd
}
