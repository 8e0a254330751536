package entity

import (
	"strings"

	"github.com/gravitrone/howdju/cli/internal/validation"
)

// --- Schema IDs ---

const (
	SchemaProposition          = "proposition"
	SchemaTag                  = "tag"
	SchemaPersorg              = "persorg"
	SchemaStatement            = "statement"
	SchemaPropositionCompound  = "propositionCompound"
	SchemaWritQuote            = "writQuote"
	SchemaJustification        = "justification"
	SchemaCounterJustification = "counterJustification"
)

// --- Draft Shapes ---
//
// Drafts mirror the wire entities with validation rules attached. Editors
// hold drafts as JSON-shaped trees; the validator decodes them into these.

type TagDraft struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"notblank,max=64"`
}

type PropositionDraft struct {
	ID   string     `json:"id,omitempty"`
	Text string     `json:"text" validate:"notblank,max=512"`
	Tags []TagDraft `json:"tags,omitempty" validate:"dive"`
}

type PersorgDraft struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name" validate:"notblank,max=256"`
	IsOrganization bool   `json:"isOrganization"`
	KnownFor       string `json:"knownFor" validate:"max=2048"`
	WebsiteURL     string `json:"websiteUrl" validate:"omitempty,url"`
	TwitterURL     string `json:"twitterUrl" validate:"omitempty,url"`
	WikipediaURL   string `json:"wikipediaUrl" validate:"omitempty,url"`
}

type StatementDraft struct {
	ID           string            `json:"id,omitempty"`
	Speaker      PersorgDraft      `json:"speaker"`
	SentenceType SentenceType      `json:"sentenceType" validate:"oneof=PROPOSITION"`
	Sentence     *PropositionDraft `json:"sentence" validate:"required"`
}

type AtomDraft struct {
	Entity PropositionDraft `json:"entity"`
}

type PropositionCompoundDraft struct {
	ID    string      `json:"id,omitempty"`
	Atoms []AtomDraft `json:"atoms" validate:"min=1,dive"`
}

type WritDraft struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title" validate:"notblank,max=512"`
}

type URLDraft struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url" validate:"omitempty,url"`
}

type WritQuoteDraft struct {
	ID        string     `json:"id,omitempty"`
	QuoteText string     `json:"quoteText" validate:"max=4096"`
	Writ      WritDraft  `json:"writ"`
	URLs      []URLDraft `json:"urls" validate:"dive"`
}

type EntityRefDraft struct {
	ID string `json:"id" validate:"required"`
}

type JustificationTargetDraft struct {
	Type   TargetType     `json:"type" validate:"oneof=PROPOSITION STATEMENT JUSTIFICATION"`
	Entity EntityRefDraft `json:"entity"`
}

// JustificationBasisDraft keeps one slot per basis kind so switching kinds
// in the editor does not lose what was typed into the other.
type JustificationBasisDraft struct {
	Type                BasisType                 `json:"type" validate:"oneof=PROPOSITION_COMPOUND WRIT_QUOTE"`
	PropositionCompound *PropositionCompoundDraft `json:"propositionCompound,omitempty" validate:"required_if=Type PROPOSITION_COMPOUND"`
	WritQuote           *WritQuoteDraft           `json:"writQuote,omitempty" validate:"required_if=Type WRIT_QUOTE"`
}

func (b *JustificationBasisDraft) pruneInactive() {
	switch b.Type {
	case BasisPropositionCompound:
		b.WritQuote = nil
	case BasisWritQuote:
		b.PropositionCompound = nil
	}
}

type JustificationDraft struct {
	ID       string                   `json:"id,omitempty"`
	Polarity Polarity                 `json:"polarity" validate:"oneof=POSITIVE NEGATIVE"`
	Target   JustificationTargetDraft `json:"target"`
	Basis    JustificationBasisDraft  `json:"basis"`
}

func (d *JustificationDraft) PruneInactive() { d.Basis.pruneInactive() }

type CounterTargetDraft struct {
	Type   TargetType     `json:"type" validate:"eq=JUSTIFICATION"`
	Entity EntityRefDraft `json:"entity"`
}

// CounterJustificationDraft argues against another justification.
type CounterJustificationDraft struct {
	ID       string                  `json:"id,omitempty"`
	Polarity Polarity                `json:"polarity" validate:"eq=NEGATIVE"`
	Target   CounterTargetDraft      `json:"target"`
	Basis    JustificationBasisDraft `json:"basis"`
}

func (d *CounterJustificationDraft) PruneInactive() { d.Basis.pruneInactive() }

// RegisterSchemas binds every draft shape to its schema id.
func RegisterSchemas(v *validation.Validator) {
	v.Register(SchemaProposition, func() any { return &PropositionDraft{} })
	v.Register(SchemaTag, func() any { return &TagDraft{} })
	v.Register(SchemaPersorg, func() any { return &PersorgDraft{} })
	v.Register(SchemaStatement, func() any { return &StatementDraft{} })
	v.Register(SchemaPropositionCompound, func() any { return &PropositionCompoundDraft{} })
	v.Register(SchemaWritQuote, func() any { return &WritQuoteDraft{} })
	v.Register(SchemaJustification, func() any { return &JustificationDraft{} })
	v.Register(SchemaCounterJustification, func() any { return &CounterJustificationDraft{} })
}

// NewValidator returns a validator with all howdju schemas registered.
func NewValidator() *validation.Validator {
	v := validation.New()
	RegisterSchemas(v)
	return v
}

// --- Factories ---

func NewPropositionDraft() map[string]any {
	return map[string]any{"text": ""}
}

func NewTagDraft() map[string]any {
	return map[string]any{"name": ""}
}

func NewPersorgDraft() map[string]any {
	return map[string]any{
		"name":           "",
		"isOrganization": false,
		"knownFor":       "",
		"websiteUrl":     "",
		"twitterUrl":     "",
		"wikipediaUrl":   "",
	}
}

func NewStatementDraft() map[string]any {
	return map[string]any{
		"speaker":      NewPersorgDraft(),
		"sentenceType": string(SentenceProposition),
		"sentence":     NewPropositionDraft(),
	}
}

// NewAtom builds an empty compound clause.
func NewAtom() any {
	return map[string]any{"entity": NewPropositionDraft()}
}

// NewURL builds an empty writ quote URL.
func NewURL() any {
	return map[string]any{"url": ""}
}

func NewPropositionCompoundDraft() map[string]any {
	return map[string]any{"atoms": []any{NewAtom()}}
}

func NewWritQuoteDraft() map[string]any {
	return map[string]any{
		"quoteText": "",
		"writ":      map[string]any{"title": ""},
		"urls":      []any{NewURL()},
	}
}

// NewJustificationDraft seeds a justification of target with both basis
// variants present and the compound active.
func NewJustificationDraft(targetType TargetType, targetID string, polarity Polarity) map[string]any {
	return map[string]any{
		"polarity": string(polarity),
		"target": map[string]any{
			"type":   string(targetType),
			"entity": map[string]any{"id": targetID},
		},
		"basis": map[string]any{
			"type":                string(BasisPropositionCompound),
			"propositionCompound": NewPropositionCompoundDraft(),
			"writQuote":           NewWritQuoteDraft(),
		},
	}
}

// NewCounterJustificationDraft seeds a negative justification of another
// justification.
func NewCounterJustificationDraft(justificationID string) map[string]any {
	return NewJustificationDraft(TargetJustification, justificationID, Negative)
}

// --- Consolidation ---

// ConsolidateJustification prepares a justification draft for the wire:
// the active basis variant moves into basis.entity, the inactive one is
// dropped, and UI scratch fields are stripped.
func ConsolidateJustification(draft map[string]any) (map[string]any, error) {
	basis, _ := draft["basis"].(map[string]any)
	basisType, _ := basis["type"].(string)

	var active any
	switch BasisType(basisType) {
	case BasisPropositionCompound:
		active = basis["propositionCompound"]
	case BasisWritQuote:
		active = basis["writQuote"]
	default:
		return nil, &ExhaustedEnumError{Enum: "JustificationBasisType", Value: basisType}
	}

	out := make(map[string]any, len(draft))
	for k, v := range draft {
		out[k] = v
	}
	out["basis"] = map[string]any{"type": basisType, "entity": active}
	return StripScratch(out).(map[string]any), nil
}

// StripScratch removes UI-only keys (prefixed with "_") at every depth.
func StripScratch(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			if strings.HasPrefix(k, "_") {
				continue
			}
			out[k] = StripScratch(child)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = StripScratch(child)
		}
		return out
	default:
		return v
	}
}
