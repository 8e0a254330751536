package editors

import (
	"log/slog"

	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/gravitrone/howdju/cli/internal/graph"
)

// RegisterDefaults binds every howdju editor type.
func (s *Store) RegisterDefaults() {
	s.Register(TypeProposition, Config{
		SchemaID: entity.SchemaProposition,
		Factory:  entity.NewPropositionDraft,
		Schema:   graph.Propositions,
	})
	s.Register(TypeStatement, Config{
		SchemaID: entity.SchemaStatement,
		Factory:  entity.NewStatementDraft,
		Schema:   graph.Statements,
	})
	s.Register(TypePersorg, Config{
		SchemaID: entity.SchemaPersorg,
		Factory:  entity.NewPersorgDraft,
		Schema:   graph.Persorgs,
	})
	s.Register(TypeJustification, Config{
		SchemaID: entity.SchemaJustification,
		Factory: func() map[string]any {
			return entity.NewJustificationDraft(entity.TargetProposition, "", entity.Positive)
		},
		Consolidate: entity.ConsolidateJustification,
		Schema:      graph.Justifications,
	})
	s.Register(TypeCounterJustification, Config{
		SchemaID: entity.SchemaCounterJustification,
		Factory: func() map[string]any {
			return entity.NewCounterJustificationDraft("")
		},
		Consolidate: entity.ConsolidateJustification,
		Schema:      graph.Justifications,
	})
	s.Register(TypePropositionCompound, Config{
		SchemaID: entity.SchemaPropositionCompound,
		Factory:  entity.NewPropositionCompoundDraft,
		Schema:   graph.PropositionCompounds,
	})
	s.Register(TypeWritQuote, Config{
		SchemaID: entity.SchemaWritQuote,
		Factory:  entity.NewWritQuoteDraft,
		Schema:   graph.WritQuotes,
	})
}

// New returns a store with the howdju validator and every editor type
// registered.
func New(g *graph.Store, logger *slog.Logger) *Store {
	s := NewStore(entity.NewValidator(), g, logger)
	s.RegisterDefaults()
	return s
}
