package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doccloud/retrieval/internal/core/domain"
)

var (
	askCourse string
	askTopK   int
	askBudget int
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Retrieve grounding context for a question",
	Long: `Builds a retrieval bundle for a student question.
Combines lexical (BM25) and semantic ranking over course materials, then
assembles the top passages into a token-budgeted context with citations.
When --course is omitted, relevant courses are detected from the question.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCourse, "course", "c", "", "course to search (default: auto-detect)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 0, "maximum number of passages (default from config)")
	askCmd.Flags().IntVar(&askBudget, "budget", 0, "token budget for the bundle (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the bundle as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]

	if contextService == nil {
		return errors.New("context service not configured")
	}

	ctx := context.Background()
	opts := domain.ContextOptions{
		TopK:        askTopK,
		TokenBudget: askBudget,
	}

	bundle, err := contextService.BuildContext(ctx, askCourse, query, opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if askJSON {
		return outputBundleJSON(cmd, bundle)
	}

	return outputBundleText(cmd, bundle)
}

func outputBundleJSON(cmd *cobra.Command, bundle *domain.RetrievalBundle) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputBundleText(cmd *cobra.Command, bundle *domain.RetrievalBundle) error {
	if bundle.Empty() {
		cmd.Println("No relevant materials found.")
		return nil
	}

	if bundle.Degraded {
		cmd.Println("(semantic ranking unavailable, using lexical ranking only)")
		cmd.Println()
	}

	cmd.Println("Context:")
	cmd.Println()
	for i, item := range bundle.Items {
		// Format: [N] Title (course, relevance)
		cmd.Printf("  [%d] %s (%s, relevance %d)\n", i+1, item.Material.Title, item.Material.CourseID, item.RelevanceScore)
		if item.Material.Reference != "" {
			cmd.Printf("      %s\n", item.Material.Reference)
		}
		cmd.Printf("      %s\n", item.Material.Excerpt)
		cmd.Println()
	}

	cmd.Println("Citations:")
	for _, c := range bundle.Citations() {
		cmd.Printf("  - %s", c.SourceTitle)
		if c.Reference != "" {
			cmd.Printf(", %s", c.Reference)
		}
		if c.URL != "" {
			cmd.Printf(" <%s>", c.URL)
		}
		cmd.Println()
	}

	return nil
}
