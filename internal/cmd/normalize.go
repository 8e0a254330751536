package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/ui/components"
)

// NormalizeCmd returns the `howdju normalize` command.
func NormalizeCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "normalize <entity> <file>",
		Short: "Flatten an entity tree into per-entity tables",
		Long:  "Normalize a yaml or json entity tree (or a list of them) and print the result references and entity tables.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ent, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			tree, err := readTree(args[1])
			if err != nil {
				return err
			}

			var schema graph.Schema = ent
			if _, ok := tree.([]any); ok {
				schema = graph.NewArray(ent)
			}
			res, err := graph.Normalize(tree, schema)
			if err != nil {
				return fmt.Errorf("normalize %s: %w", args[1], err)
			}

			if summary {
				fmt.Fprintln(cmd.OutOrStdout(), tableCounts(res.Tables))
				return nil
			}
			return writeYAML(cmd, map[string]any{
				"result":   res.Result,
				"entities": res.Tables,
			})
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print entity counts instead of the tables")
	return cmd
}

func tableCounts(tables graph.Tables) string {
	counts := make(map[string]int, len(tables))
	for key, table := range tables {
		counts[key] = len(table)
	}
	return components.CountTable("Entities", counts, outputWidth)
}
