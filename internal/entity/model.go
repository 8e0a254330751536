package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// --- Leaf Entities ---

// Tag labels propositions.
type Tag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Persorg is a person or an organization that speaks statements.
type Persorg struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	IsOrganization bool   `json:"isOrganization"`
	KnownFor       string `json:"knownFor,omitempty"`
	WebsiteURL     string `json:"websiteUrl,omitempty"`
	TwitterURL     string `json:"twitterUrl,omitempty"`
	WikipediaURL   string `json:"wikipediaUrl,omitempty"`
}

// Proposition is a single declarative claim.
type Proposition struct {
	ID             string          `json:"id,omitempty"`
	Text           string          `json:"text"`
	Created        *time.Time      `json:"created,omitempty"`
	Tags           []Tag           `json:"tags,omitempty"`
	Justifications []Justification `json:"justifications,omitempty"`
}

// Statement records a speaker asserting a sentence, which is either a
// proposition or another statement.
type Statement struct {
	ID             string          `json:"id,omitempty"`
	Speaker        *Persorg        `json:"speaker,omitempty"`
	SentenceType   SentenceType    `json:"sentenceType"`
	Sentence       Sentence        `json:"sentence,omitempty"`
	Justifications []Justification `json:"justifications,omitempty"`
}

// PropositionCompoundAtom is one clause of a compound.
type PropositionCompoundAtom struct {
	Entity Proposition `json:"entity"`
}

// PropositionCompound is a conjunction of propositions used as a basis.
type PropositionCompound struct {
	ID    string                    `json:"id,omitempty"`
	Atoms []PropositionCompoundAtom `json:"atoms"`
}

// Writ is a written source.
type Writ struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

// URL locates a quote online.
type URL struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// WritQuote is a verbatim excerpt from a writ.
type WritQuote struct {
	ID        string `json:"id,omitempty"`
	QuoteText string `json:"quoteText"`
	Writ      *Writ  `json:"writ,omitempty"`
	URLs      []URL  `json:"urls,omitempty"`
}

// --- Justification ---

// Justification argues for (POSITIVE) or against (NEGATIVE) its target
// using its basis. A justification targeting another justification is a
// counter-justification.
type Justification struct {
	ID                    string              `json:"id,omitempty"`
	Polarity              Polarity            `json:"polarity"`
	Target                JustificationTarget `json:"target"`
	Basis                 JustificationBasis  `json:"basis"`
	RootTargetType        TargetType          `json:"rootTargetType,omitempty"`
	RootPolarity          Polarity            `json:"rootPolarity,omitempty"`
	CounterJustifications []Justification     `json:"counterJustifications,omitempty"`
	Created               *time.Time          `json:"created,omitempty"`
}

// IsNegative reports whether the justification argues against its target.
func (j *Justification) IsNegative() bool { return j.Polarity == Negative }

// IsCounter reports whether the justification targets another justification.
func (j *Justification) IsCounter() bool { return j.Target.Type == TargetJustification }

// --- Polymorphic Slots ---

// TargetEntity is the sealed set of things a justification can target.
type TargetEntity interface{ targetType() TargetType }

func (*Proposition) targetType() TargetType   { return TargetProposition }
func (*Statement) targetType() TargetType     { return TargetStatement }
func (*Justification) targetType() TargetType { return TargetJustification }

// BasisEntity is the sealed set of justification bases.
type BasisEntity interface{ basisType() BasisType }

func (*PropositionCompound) basisType() BasisType { return BasisPropositionCompound }
func (*WritQuote) basisType() BasisType           { return BasisWritQuote }

// Sentence is the sealed set of things a statement can assert.
type Sentence interface{ sentenceType() SentenceType }

func (*Proposition) sentenceType() SentenceType { return SentenceProposition }
func (*Statement) sentenceType() SentenceType   { return SentenceStatement }

// JustificationTarget pairs the target discriminant with its entity.
type JustificationTarget struct {
	Type   TargetType   `json:"type"`
	Entity TargetEntity `json:"entity,omitempty"`
}

func (t *JustificationTarget) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   TargetType      `json:"type"`
		Entity json.RawMessage `json:"entity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var ent TargetEntity
	switch raw.Type {
	case TargetProposition:
		ent = &Proposition{}
	case TargetStatement:
		ent = &Statement{}
	case TargetJustification:
		ent = &Justification{}
	default:
		return &ExhaustedEnumError{Enum: "JustificationTargetType", Value: raw.Type}
	}
	t.Type = raw.Type
	t.Entity = nil
	if isPresent(raw.Entity) {
		if err := json.Unmarshal(raw.Entity, ent); err != nil {
			return fmt.Errorf("decode %s target: %w", raw.Type, err)
		}
		t.Entity = ent
	}
	return nil
}

// JustificationBasis pairs the basis discriminant with its entity.
type JustificationBasis struct {
	Type   BasisType   `json:"type"`
	Entity BasisEntity `json:"entity,omitempty"`
}

func (b *JustificationBasis) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   BasisType       `json:"type"`
		Entity json.RawMessage `json:"entity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var ent BasisEntity
	switch raw.Type {
	case BasisPropositionCompound:
		ent = &PropositionCompound{}
	case BasisWritQuote:
		ent = &WritQuote{}
	default:
		return &ExhaustedEnumError{Enum: "JustificationBasisType", Value: raw.Type}
	}
	b.Type = raw.Type
	b.Entity = nil
	if isPresent(raw.Entity) {
		if err := json.Unmarshal(raw.Entity, ent); err != nil {
			return fmt.Errorf("decode %s basis: %w", raw.Type, err)
		}
		b.Entity = ent
	}
	return nil
}

func (s *Statement) UnmarshalJSON(data []byte) error {
	type plain Statement
	var raw struct {
		plain
		Sentence json.RawMessage `json:"sentence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Reference stubs carry only an id.
	if raw.SentenceType == "" && !isPresent(raw.Sentence) {
		*s = Statement(raw.plain)
		s.Sentence = nil
		return nil
	}

	var sentence Sentence
	switch raw.SentenceType {
	case SentenceProposition:
		sentence = &Proposition{}
	case SentenceStatement:
		sentence = &Statement{}
	default:
		return &ExhaustedEnumError{Enum: "SentenceType", Value: raw.SentenceType}
	}
	*s = Statement(raw.plain)
	s.Sentence = nil
	if isPresent(raw.Sentence) {
		if err := json.Unmarshal(raw.Sentence, sentence); err != nil {
			return fmt.Errorf("decode %s sentence: %w", raw.SentenceType, err)
		}
		s.Sentence = sentence
	}
	return nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// FromTree converts a JSON-shaped tree (e.g. a denormalized store view)
// into a typed entity.
func FromTree[T any](tree any) (T, error) {
	var out T
	data, err := json.Marshal(tree)
	if err != nil {
		return out, fmt.Errorf("encode tree: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode tree: %w", err)
	}
	return out, nil
}

// ToTree converts a typed entity into its JSON-shaped tree.
func ToTree(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return out, nil
}
