package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/graph"
)

type fetchFunc func(id string) (map[string]any, error)

// GetCmd returns the `howdju get` command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Fetch one entity and print it normalized",
		Long:  "Fetch a proposition, justification, statement or persorg and print the result reference with every entity table it fills.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, logger, err := session(cmd)
			if err != nil {
				return err
			}
			ent, fetch, err := fetcherFor(client, args[0])
			if err != nil {
				return err
			}

			tree, err := fetch(args[1])
			if err != nil {
				return fmt.Errorf("fetch %s %s: %w", ent.Key(), args[1], err)
			}
			store := graph.NewStore()
			ref, err := store.Receive(tree, ent)
			if err != nil {
				return fmt.Errorf("normalize %s %s: %w", ent.Key(), args[1], err)
			}
			tables := store.Snapshot()
			logger.Debug("received entity",
				slog.String("entity", ent.Key()),
				slog.String("id", args[1]),
				slog.Int("tables", len(tables)))

			return writeYAML(cmd, map[string]any{
				"result":   ref,
				"entities": tables,
			})
		},
	}
}

func fetcherFor(client *api.Client, name string) (*graph.Entity, fetchFunc, error) {
	ent, err := lookupEntity(name)
	if err != nil {
		return nil, nil, err
	}
	switch ent {
	case graph.Propositions:
		return ent, client.GetProposition, nil
	case graph.Justifications:
		return ent, client.GetJustification, nil
	case graph.Statements:
		return ent, client.GetStatement, nil
	case graph.Persorgs:
		return ent, client.GetPersorg, nil
	}
	return nil, nil, fmt.Errorf("%s are only fetched inside their parents; get one of propositions, justifications, statements, persorgs", ent.Key())
}
