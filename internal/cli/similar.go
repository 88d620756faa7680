package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge-workers/internal/engine"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

type similarResult struct {
	IdeaID       string   `json:"ideaId"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Score        float64  `json:"score"`
	Label        string   `json:"label"`
	Similarities []string `json:"similarities"`
}

func newSimilarCmd(opts *options) *cobra.Command {
	var (
		poolPath   string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "similar FILE",
		Short: "Rank a pool of ideas by similarity to FILE",
		Long: `Rank a pool of ideas by similarity to the idea in FILE.

Without --pool the bundled demo ideas are used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := loadIdea(args[0])
			if err != nil {
				return err
			}

			pool, err := candidatePool(cmd.Context(), poolPath)
			if err != nil {
				return err
			}

			scores := engine.FindSimilar(target, pool, maxResults)
			results := make([]similarResult, 0, len(scores))
			for _, s := range scores {
				results = append(results, similarResult{
					IdeaID:       s.IdeaID,
					Title:        s.Idea.Title,
					Author:       s.Idea.Entrepreneur.DisplayName(),
					Score:        s.Score,
					Label:        engine.SimilarityLabel(s.Score),
					Similarities: s.Similarities,
				})
			}

			out := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return writeJSON(out, results)
			}

			if len(results) == 0 {
				fmt.Fprintf(out, "No similar ideas among %d candidates.\n", len(pool))
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s by %s [%s, %.0f%%]\n", i+1, r.Title, r.Author, r.Label, r.Score*100)
				for _, reason := range r.Similarities {
					fmt.Fprintf(out, "   - %s\n", reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&poolPath, "pool", "p", "", "YAML or JSON file with candidate ideas")
	cmd.Flags().IntVarP(&maxResults, "max", "n", engine.DefaultMaxResults, "max results")
	return cmd
}

func candidatePool(ctx context.Context, path string) ([]models.Idea, error) {
	if path != "" {
		return loadPool(path)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return repository.NewDemoRepository().List(ctx, repository.ListFilter{
		Visibility: models.VisibilityPublic,
		Statuses:   models.ListedStatuses,
	})
}
