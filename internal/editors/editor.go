// Package editors holds the per-editor edit sessions: drafts, their
// validation state and the begin/modify/submit/commit/cancel lifecycle.
package editors

import (
	"errors"

	"github.com/google/uuid"
	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/validation"
)

var (
	ErrNotEditing     = errors.New("no active edit")
	ErrCommitInFlight = errors.New("commit already in flight")
	ErrBlocked        = errors.New("draft has validation errors")
)

// --- Editor Types ---

type Type string

const (
	TypeProposition          Type = "PROPOSITION"
	TypeStatement            Type = "STATEMENT"
	TypePersorg              Type = "PERSORG"
	TypeJustification        Type = "JUSTIFICATION"
	TypeCounterJustification Type = "COUNTER_JUSTIFICATION"
	TypePropositionCompound  Type = "PROPOSITION_COMPOUND"
	TypeWritQuote            Type = "WRIT_QUOTE"
)

// Key identifies one edit session.
type Key struct {
	Type Type
	ID   string
}

// NewKey returns a key for creating a new entity of type t.
func NewKey(t Type) Key {
	return Key{Type: t, ID: "new-" + uuid.NewString()}
}

func (k Key) String() string {
	return string(k.Type) + "/" + k.ID
}

// Config binds an editor type to its draft schema and wire behavior.
type Config struct {
	// SchemaID names the validator schema drafts are checked against.
	SchemaID string
	// Factory builds the default draft when BeginEdit has no seed.
	Factory func() map[string]any
	// Consolidate turns a draft into the entity handed to the transport.
	// Nil strips UI scratch keys only.
	Consolidate func(map[string]any) (map[string]any, error)
	// Schema normalizes the server's canonical entity into the graph store.
	// Nil skips the store write.
	Schema graph.Schema
}

// --- State ---

// State is a snapshot of one editor. Draft trees and field sets are never
// modified in place, so a snapshot stays valid after further edits.
type State struct {
	EditEntity map[string]any

	// Errors is ClientErrors merged with ServerErrors.
	Errors       validation.Errors
	ClientErrors validation.Errors
	ServerErrors validation.Errors

	IsFetching         bool
	IsSaving           bool
	WasSubmitAttempted bool

	DirtyFields   validation.FieldSet
	BlurredFields validation.FieldSet

	CommitErr error
	FetchErr  error

	// Session changes on every BeginEdit; Version on every draft mutation.
	Session uuid.UUID
	Version int
}

// IsEditing reports whether an edit session is active.
func (s State) IsEditing() bool { return s.EditEntity != nil }

// VisibleErrors applies the display policy to Errors.
func (s State) VisibleErrors() validation.Errors {
	return validation.VisibleErrors(s.Errors, s.WasSubmitAttempted, s.DirtyFields, s.BlurredFields)
}

// PendingCommit is what CommitEdit hands to the transport. Session and
// Version pin the draft as it was at commit time.
type PendingCommit struct {
	Key     Key
	Session uuid.UUID
	Version int
	Entity  map[string]any
}

// Transport sends a consolidated entity to the server and returns the
// server's canonical entity. Errors exposing ValidationErrors are merged
// into the editor as server errors.
type Transport func(key Key, entity map[string]any) (map[string]any, error)

// ValidationFailure is implemented by transport errors that carry server
// field errors.
type ValidationFailure interface {
	error
	ValidationErrors() (validation.Errors, bool)
}
