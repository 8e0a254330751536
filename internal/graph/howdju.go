package graph

import "github.com/gravitrone/howdju/cli/internal/entity"

// --- howdju Entity Schemas ---

var (
	Persorgs             = NewEntity("persorgs")
	Tags                 = NewEntity("tags", WithMergePolicy("propositions", Concat))
	Propositions         = NewEntity("propositions")
	Statements           = NewEntity("statements")
	Writs                = NewEntity("writs")
	WritQuotes           = NewEntity("writQuotes")
	PropositionCompounds = NewEntity("propositionCompounds")
	Justifications       = NewEntity("justifications")
)

func init() {
	sentence := NewUnion(map[string]*Entity{
		string(entity.SentenceProposition): Propositions,
		string(entity.SentenceStatement):   Statements,
	}, ParentAttribute("sentenceType"))

	target := NewObject(map[string]Schema{
		"entity": NewUnion(map[string]*Entity{
			string(entity.TargetProposition):   Propositions,
			string(entity.TargetStatement):     Statements,
			string(entity.TargetJustification): Justifications,
		}, ParentAttribute("type")),
	})

	basis := NewObject(map[string]Schema{
		"entity": NewUnion(map[string]*Entity{
			string(entity.BasisPropositionCompound): PropositionCompounds,
			string(entity.BasisWritQuote):           WritQuotes,
		}, ParentAttribute("type")),
	})

	rootTarget := NewUnion(map[string]*Entity{
		string(entity.TargetProposition): Propositions,
		string(entity.TargetStatement):   Statements,
	}, ParentAttribute("rootTargetType"))

	Tags.Define(map[string]Schema{
		"propositions": NewArray(Propositions),
	})
	Propositions.Define(map[string]Schema{
		"tags":           NewArray(Tags),
		"justifications": NewArray(Justifications),
	})
	Statements.Define(map[string]Schema{
		"speaker":        Persorgs,
		"sentence":       sentence,
		"justifications": NewArray(Justifications),
	})
	WritQuotes.Define(map[string]Schema{
		"writ": Writs,
	})
	PropositionCompounds.Define(map[string]Schema{
		"atoms": NewArray(NewObject(map[string]Schema{"entity": Propositions})),
	})
	Justifications.Define(map[string]Schema{
		"target":                target,
		"basis":                 basis,
		"rootTarget":            rootTarget,
		"counterJustifications": NewArray(Justifications),
	})
}
