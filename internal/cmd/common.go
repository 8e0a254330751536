package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/config"
	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/logging"
)

// outputWidth is the table width for command output.
const outputWidth = 88

// readTree decodes a yaml or json file into a JSON-shaped tree.
func readTree(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return tree, nil
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// cellText prints a scalar for a table cell. Ids may arrive as numbers.
func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// session loads config and builds a client plus a stderr logger for a
// command. Commands that only read work without logging in.
func session(cmd *cobra.Command) (*api.Client, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, nil, err
	}
	logger, _, err := logging.New(logging.Config{Level: cfg.LogLevel, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg.BaseURL(), cfg.AuthToken), logger, nil
}

// --- Entity Schemas ---

var entitySchemas = func() map[string]*graph.Entity {
	out := make(map[string]*graph.Entity)
	for _, e := range []*graph.Entity{
		graph.Persorgs,
		graph.Tags,
		graph.Propositions,
		graph.Statements,
		graph.Writs,
		graph.WritQuotes,
		graph.PropositionCompounds,
		graph.Justifications,
	} {
		out[e.Key()] = e
	}
	return out
}()

// lookupEntity accepts the table key ("propositions") or its singular.
func lookupEntity(name string) (*graph.Entity, error) {
	if e, ok := entitySchemas[name]; ok {
		return e, nil
	}
	if e, ok := entitySchemas[name+"s"]; ok {
		return e, nil
	}
	names := make([]string, 0, len(entitySchemas))
	for key := range entitySchemas {
		names = append(names, key)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown entity %q (one of %s)", name, strings.Join(names, ", "))
}
