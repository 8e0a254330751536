// Package trail tracks the chain of justifications and compounds walked to
// reach the entity on screen, along with the polarity it has in that context.
package trail

import (
	"fmt"

	"github.com/gravitrone/howdju/cli/internal/entity"
)

type ConnectingEntityType string

const (
	ConnectingJustification       ConnectingEntityType = "JUSTIFICATION"
	ConnectingPropositionCompound ConnectingEntityType = "PROPOSITION_COMPOUND"
)

// Item is one step of a trail. ConnectingEntity is a *entity.Justification
// or a *entity.PropositionCompound, matching ConnectingEntityType.
type Item struct {
	ConnectingEntityType ConnectingEntityType
	ConnectingEntity     any
	Polarity             entity.Polarity
}

// NextItem builds the step that follows a tail with polarity current.
// Crossing a negative justification of a justification inverts the
// polarity; every other connector keeps it.
func NextItem(t ConnectingEntityType, connecting any, current entity.Polarity) (Item, error) {
	next := current
	switch t {
	case ConnectingJustification:
		j, ok := connecting.(*entity.Justification)
		if !ok {
			return Item{}, fmt.Errorf("trail: %s step needs *entity.Justification, got %T", t, connecting)
		}
		if j.IsCounter() && j.IsNegative() {
			next = current.Invert()
		}
	case ConnectingPropositionCompound:
		if _, ok := connecting.(*entity.PropositionCompound); !ok {
			return Item{}, fmt.Errorf("trail: %s step needs *entity.PropositionCompound, got %T", t, connecting)
		}
	default:
		return Item{}, &entity.ExhaustedEnumError{Enum: "ConnectingEntityType", Value: t}
	}
	return Item{ConnectingEntityType: t, ConnectingEntity: connecting, Polarity: next}, nil
}

// --- Trail ---

// Trail is append-only. Append returns a new trail and never modifies the
// receiver's items.
type Trail []Item

// Append extends the trail with the step through connecting.
func (tr Trail) Append(t ConnectingEntityType, connecting any) (Trail, error) {
	item, err := NextItem(t, connecting, tr.Polarity())
	if err != nil {
		return nil, err
	}
	out := make(Trail, len(tr), len(tr)+1)
	copy(out, tr)
	return append(out, item), nil
}

// Polarity is the polarity of the tail, POSITIVE for an empty trail.
func (tr Trail) Polarity() entity.Polarity {
	if tail, ok := tr.Tail(); ok {
		return tail.Polarity
	}
	return entity.Positive
}

func (tr Trail) Tail() (Item, bool) {
	if len(tr) == 0 {
		return Item{}, false
	}
	return tr[len(tr)-1], true
}

// Traverses reports whether the trail passes through the connecting entity
// of type t with the given id.
func (tr Trail) Traverses(t ConnectingEntityType, id string) bool {
	for _, item := range tr {
		if item.ConnectingEntityType == t && connectingID(item) == id {
			return true
		}
	}
	return false
}

// HighlightedAtomIndex returns the atom of the compound at the tail that
// holds propositionID, or -1 when the tail is not a compound containing it.
// Renderers use it to show a proposition inside the compound actually
// traversed.
func (tr Trail) HighlightedAtomIndex(propositionID string) int {
	tail, ok := tr.Tail()
	if !ok || tail.ConnectingEntityType != ConnectingPropositionCompound {
		return -1
	}
	compound := tail.ConnectingEntity.(*entity.PropositionCompound)
	for i, atom := range compound.Atoms {
		if atom.Entity.ID == propositionID {
			return i
		}
	}
	return -1
}

func connectingID(item Item) string {
	switch e := item.ConnectingEntity.(type) {
	case *entity.Justification:
		return e.ID
	case *entity.PropositionCompound:
		return e.ID
	default:
		return ""
	}
}
