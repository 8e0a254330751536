package cmd

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/ui/components"
)

// TagCmd returns the `howdju tag` command.
func TagCmd() *cobra.Command {
	var (
		pageSize int
		maxPages int
	)
	cmd := &cobra.Command{
		Use:   "tag <tag-id>",
		Short: "List the propositions carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, logger, err := session(cmd)
			if err != nil {
				return err
			}
			tagID := args[0]
			store := graph.NewStore()

			// Each page merges into the tag row; the tag's propositions
			// list concatenates across pages.
			token := ""
			for page := 0; maxPages <= 0 || page < maxPages; page++ {
				res, err := client.ListTaggedPropositions(tagID, pageSize, token)
				if err != nil {
					return fmt.Errorf("list tagged propositions: %w", err)
				}
				items := make([]any, len(res.Propositions))
				for i, p := range res.Propositions {
					items[i] = p
				}
				tree := map[string]any{"id": tagID, "propositions": items}
				if _, err := store.Receive(tree, graph.Tags); err != nil {
					return fmt.Errorf("normalize page %d: %w", page+1, err)
				}
				logger.Debug("fetched tag page",
					slog.String("tag", tagID),
					slog.Int("page", page+1),
					slog.Int("propositions", len(items)))

				if res.ContinuationToken == "" || res.ContinuationToken == token || len(items) == 0 {
					break
				}
				token = res.ContinuationToken
			}

			view, err := store.Denormalize(tagID, graph.Tags)
			if err != nil {
				return err
			}
			tag, _ := view.(map[string]any)
			props, _ := tag["propositions"].([]any)
			if len(props) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no propositions tagged %s\n", tagID)
				return nil
			}

			rows := make([][]string, 0, len(props))
			for _, p := range props {
				prop, ok := p.(map[string]any)
				if !ok {
					continue
				}
				rows = append(rows, []string{cellText(prop["id"]), cellText(prop["text"])})
			}
			columns := []components.TableColumn{
				{Header: "ID", Width: 12, Align: lipgloss.Left},
				{Header: "Text", Width: 40, Align: lipgloss.Left},
			}
			fmt.Fprintln(cmd.OutOrStdout(), components.TableGrid(columns, rows, outputWidth))
			return nil
		},
	}
	cmd.Flags().IntVar(&pageSize, "count", 20, "propositions per page")
	cmd.Flags().IntVar(&maxPages, "pages", 0, "stop after this many pages (0 fetches all)")
	return cmd
}
