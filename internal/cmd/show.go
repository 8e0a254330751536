package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/ui"
)

// ShowCmd returns the `howdju show` command.
func ShowCmd() *cobra.Command {
	var highlight string
	cmd := &cobra.Command{
		Use:   "show <proposition-id>",
		Short: "Print a proposition and its justification tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, logger, err := session(cmd)
			if err != nil {
				return err
			}

			tree, err := client.GetProposition(args[0])
			if err != nil {
				return fmt.Errorf("fetch proposition: %w", err)
			}
			store := graph.NewStore()
			if _, err := store.Receive(tree, graph.Propositions); err != nil {
				return fmt.Errorf("normalize proposition: %w", err)
			}
			logger.Debug("received proposition",
				slog.String("id", args[0]),
				slog.Int("justifications", len(store.Snapshot()[graph.Justifications.Key()])))

			view, err := store.Denormalize(args[0], graph.Propositions)
			if err != nil {
				return err
			}
			proposition, ok := view.(map[string]any)
			if !ok {
				return fmt.Errorf("proposition %s is not in the response", args[0])
			}
			out, err := ui.RenderJustificationTree(proposition, highlight, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&highlight, "highlight", "", "proposition id to mark among the premises")
	return cmd
}
