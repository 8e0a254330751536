package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitrone/howdju/cli/internal/entity"
)

// ErrInvalidDraft is returned by validate when the draft has errors.
var ErrInvalidDraft = errors.New("draft is invalid")

var schemaIDs = []string{
	entity.SchemaProposition,
	entity.SchemaTag,
	entity.SchemaPersorg,
	entity.SchemaStatement,
	entity.SchemaPropositionCompound,
	entity.SchemaWritQuote,
	entity.SchemaJustification,
	entity.SchemaCounterJustification,
}

// ValidateCmd returns the `howdju validate` command.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema-id> <file>",
		Short: "Check a yaml or json draft against an entity schema",
		Long:  fmt.Sprintf("Validate a draft file and print its errors keyed by field path.\n\nSchema ids: %v", schemaIDs),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := entity.NewValidator()
			if !v.Has(args[0]) {
				return fmt.Errorf("unknown schema id %q", args[0])
			}
			draft, err := readTree(args[1])
			if err != nil {
				return err
			}

			errs := v.Validate(args[0], draft)
			if errs.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			if err := writeYAML(cmd, errs); err != nil {
				return err
			}
			return fmt.Errorf("%w: %d field(s), %d model error(s)", ErrInvalidDraft, errs.Count(), len(errs.Model))
		},
	}
}
