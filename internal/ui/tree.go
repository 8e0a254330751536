package ui

import (
	"fmt"
	"strings"

	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/gravitrone/howdju/cli/internal/trail"
	"github.com/gravitrone/howdju/cli/internal/ui/components"
)

// --- Justification Tree ---

// RenderJustificationTree renders a denormalized proposition with its
// justifications and counter-justifications. Each justification is marked
// with the polarity it has toward the root proposition, so a counter of a
// counter shows as supporting. Atoms holding the highlight proposition id
// are marked inside the compound that reached them, and the justification
// with id selected gets a cursor.
func RenderJustificationTree(view map[string]any, highlight, selected string) (string, error) {
	p, err := entity.FromTree[entity.Proposition](view)
	if err != nil {
		return "", fmt.Errorf("decode proposition: %w", err)
	}

	var b strings.Builder
	b.WriteString(BannerStyle.Render(components.SanitizeOneLine(p.Text)))
	b.WriteString("\n")
	if len(p.Justifications) == 0 {
		b.WriteString(MutedStyle.Render("  no justifications yet"))
		b.WriteString("\n")
		return b.String(), nil
	}
	for i := range p.Justifications {
		if err := renderJustification(&b, &p.Justifications[i], nil, 1, highlight, selected); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func renderJustification(b *strings.Builder, j *entity.Justification, tr trail.Trail, depth int, highlight, selected string) error {
	// Stubs are revisits of an entity already on the path.
	if j.Polarity == "" || tr.Traverses(trail.ConnectingJustification, j.ID) {
		return nil
	}

	indent := strings.Repeat("  ", depth)
	if j.ID != "" && j.ID == selected {
		b.WriteString(indent[2:])
		b.WriteString(SelectedStyle.Render("› "))
	} else {
		b.WriteString(indent)
	}
	b.WriteString(polarityMarker(effectivePolarity(j.Polarity, tr.Polarity())))
	b.WriteString(" ")

	switch basis := j.Basis.Entity.(type) {
	case *entity.PropositionCompound:
		b.WriteString(MutedStyle.Render("because"))
		b.WriteString("\n")
		compoundTrail, err := tr.Append(trail.ConnectingPropositionCompound, basis)
		if err != nil {
			return err
		}
		marked := compoundTrail.HighlightedAtomIndex(highlight)
		for i, atom := range basis.Atoms {
			b.WriteString(indent)
			if i == marked {
				b.WriteString(AccentStyle.Render("  ▸ "))
				b.WriteString(SelectedStyle.Render(components.SanitizeOneLine(atom.Entity.Text)))
			} else {
				b.WriteString("  · ")
				b.WriteString(NormalStyle.Render(components.SanitizeOneLine(atom.Entity.Text)))
			}
			b.WriteString("\n")
		}
	case *entity.WritQuote:
		b.WriteString(NormalStyle.Render(fmt.Sprintf("%q", components.SanitizeOneLine(basis.QuoteText))))
		if basis.Writ != nil && basis.Writ.Title != "" {
			b.WriteString(MutedStyle.Render(" (" + components.SanitizeOneLine(basis.Writ.Title) + ")"))
		}
		b.WriteString("\n")
	case nil:
		b.WriteString(MutedStyle.Render("(basis not loaded)"))
		b.WriteString("\n")
	default:
		return &entity.ExhaustedEnumError{Enum: "JustificationBasisType", Value: j.Basis.Type}
	}

	next, err := tr.Append(trail.ConnectingJustification, j)
	if err != nil {
		return err
	}
	for i := range j.CounterJustifications {
		if err := renderJustification(b, &j.CounterJustifications[i], next, depth+1, highlight, selected); err != nil {
			return err
		}
	}
	return nil
}

// JustificationIDs lists the justifications of a denormalized proposition
// in the order RenderJustificationTree draws them.
func JustificationIDs(view map[string]any) ([]string, error) {
	p, err := entity.FromTree[entity.Proposition](view)
	if err != nil {
		return nil, fmt.Errorf("decode proposition: %w", err)
	}
	var ids []string
	var walk func(js []entity.Justification, seen map[string]bool)
	walk = func(js []entity.Justification, seen map[string]bool) {
		for i := range js {
			j := &js[i]
			if j.Polarity == "" || seen[j.ID] {
				continue
			}
			ids = append(ids, j.ID)
			seen[j.ID] = true
			walk(j.CounterJustifications, seen)
			delete(seen, j.ID)
		}
	}
	walk(p.Justifications, map[string]bool{})
	return ids, nil
}

// effectivePolarity is own read through the polarity of its context.
func effectivePolarity(own, context entity.Polarity) entity.Polarity {
	if context == entity.Negative {
		return own.Invert()
	}
	return own
}

func polarityMarker(p entity.Polarity) string {
	if p == entity.Negative {
		return NegativeStyle.Render("-")
	}
	return PositiveStyle.Render("+")
}
