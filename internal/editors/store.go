package editors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/gravitrone/howdju/cli/internal/fieldpath"
	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/validation"
)

// quiet absorbs the drift warning when stale server errors are re-merged
// after a local edit; FailCommit already reported them.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// Store is the keyed collection of editors. Operations on one Store are
// serialized, so operations for a key apply in call order.
type Store struct {
	mu        sync.Mutex
	validator *validation.Validator
	graph     *graph.Store
	logger    *slog.Logger
	configs   map[Type]Config
	editors   map[Key]State
}

// NewStore wires editors to a validator and the shared graph store. A nil
// logger falls back to slog.Default.
func NewStore(v *validation.Validator, g *graph.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		validator: v,
		graph:     g,
		logger:    logger.With(slog.String("component", "editors")),
		configs:   make(map[Type]Config),
		editors:   make(map[Key]State),
	}
}

// Register binds an editor type. The schema id must already be known to
// the validator.
func (s *Store) Register(t Type, cfg Config) {
	if !s.validator.Has(cfg.SchemaID) {
		panic(fmt.Sprintf("editors: %s uses unknown schema id %q", t, cfg.SchemaID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[t] = cfg
}

func (s *Store) config(t Type) Config {
	cfg, ok := s.configs[t]
	if !ok {
		panic(fmt.Sprintf("editors: editor type %q is not registered", t))
	}
	return cfg
}

// --- Reads ---

// State returns the editor for key. The second result is false when the
// key has never been started or was cleared.
func (s *Store) State(key Key) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.editors[key]
	return st, ok
}

// CanSubmit reports whether CommitEdit would start a commit.
func (s *Store) CanSubmit(key Key) bool {
	return s.SubmitDisabledReason(key) == ""
}

// SubmitDisabledReason explains why the submit control is disabled, or
// returns "" when submission is allowed.
func (s *Store) SubmitDisabledReason(key Key) string {
	st, ok := s.State(key)
	switch {
	case !ok || !st.IsEditing():
		if ok && st.IsFetching {
			return "still loading"
		}
		return "nothing to submit"
	case st.IsSaving:
		return "saving"
	case len(st.ClientErrors.Model) > 0:
		return st.ClientErrors.Model[0].Message
	}
	switch n := st.ClientErrors.Count(); n {
	case 0:
		return ""
	case 1:
		return "1 field needs attention"
	default:
		return fmt.Sprintf("%d fields need attention", n)
	}
}

// --- Session Start ---

// BeginFetch marks key as loading its seed.
func (s *Store) BeginFetch(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config(key.Type)
	st := s.editors[key]
	st.IsFetching = true
	st.FetchErr = nil
	s.editors[key] = st
}

// FetchFailed ends a fetch started by BeginFetch.
func (s *Store) FetchFailed(key Key, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.editors[key]
	if !ok {
		return
	}
	st.IsFetching = false
	st.FetchErr = err
	s.editors[key] = st
}

// BeginEdit starts a fresh session for key from seed, or from the type's
// factory when seed is nil. Any previous session for key is replaced.
func (s *Store) BeginEdit(key Key, seed map[string]any) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config(key.Type)
	draft := seed
	if draft == nil {
		draft = cfg.Factory()
	}
	st := State{
		EditEntity:    draft,
		DirtyFields:   validation.FieldSet{},
		BlurredFields: validation.FieldSet{},
		Session:       uuid.New(),
	}
	s.revalidate(&st, cfg)
	s.editors[key] = st

	s.logger.Debug("edit started", slog.String("editor", key.String()), slog.String("session", st.Session.String()))
	return st
}

// --- Draft Mutation ---

// PropertyChange applies {path: value} changes, given in dotted/bracket
// notation. Either every change applies or none does.
func (s *Store) PropertyChange(key Key, changes map[string]any) error {
	paths := make([]string, 0, len(changes))
	for p := range changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parsed := make([]fieldpath.Path, len(paths))
	for i, p := range paths {
		path, err := fieldpath.Parse(p)
		if err != nil {
			return err
		}
		if err := requireField(path); err != nil {
			return err
		}
		parsed[i] = path
	}

	return s.edit(key, func(st *State) error {
		draft := any(st.EditEntity)
		for i, path := range parsed {
			next, err := fieldpath.Set(draft, path, changes[paths[i]])
			if err != nil {
				return err
			}
			draft = next
		}
		root, err := asDraft(draft, nil)
		if err != nil {
			return err
		}
		st.EditEntity = root
		for _, path := range parsed {
			markChanged(st, path.String())
		}
		return nil
	})
}

// SetField sets a single value at a typed path.
func (s *Store) SetField(key Key, path fieldpath.Path, value any) error {
	if err := requireField(path); err != nil {
		return err
	}
	return s.edit(key, func(st *State) error {
		next, err := fieldpath.Set(st.EditEntity, path, value)
		if err != nil {
			return err
		}
		root, err := asDraft(next, path)
		if err != nil {
			return err
		}
		st.EditEntity = root
		markChanged(st, path.String())
		return nil
	})
}

// requireField rejects the root path; a draft is replaced with BeginEdit,
// not through a field change.
func requireField(path fieldpath.Path) error {
	if len(path) == 0 {
		return &fieldpath.PathError{Path: path, Reason: "empty path addresses the whole draft"}
	}
	return nil
}

func asDraft(v any, path fieldpath.Path) (map[string]any, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, &fieldpath.PathError{Path: path, Reason: fmt.Sprintf("draft root became %T", v)}
	}
	return root, nil
}

// AddListItem inserts factory() at index of the list at path and moves
// bookkeeping for later items along with them.
func (s *Store) AddListItem(key Key, list fieldpath.Path, index int, factory func() any) error {
	if factory == nil {
		return fmt.Errorf("add list item at %s: nil factory", list)
	}
	return s.edit(key, func(st *State) error {
		next, err := fieldpath.Insert(st.EditEntity, list, index, factory)
		if err != nil {
			return err
		}
		root, err := asDraft(next, list)
		if err != nil {
			return err
		}
		st.EditEntity = root
		st.DirtyFields = st.DirtyFields.ShiftInsert(list, index)
		st.BlurredFields = st.BlurredFields.ShiftInsert(list, index)
		st.ServerErrors = st.ServerErrors.ShiftInsert(list, index)
		return nil
	})
}

// RemoveListItem removes index from the list at path and moves
// bookkeeping for later items down.
func (s *Store) RemoveListItem(key Key, list fieldpath.Path, index int) error {
	return s.edit(key, func(st *State) error {
		next, err := fieldpath.Remove(st.EditEntity, list, index)
		if err != nil {
			return err
		}
		root, err := asDraft(next, list)
		if err != nil {
			return err
		}
		st.EditEntity = root
		st.DirtyFields = st.DirtyFields.ShiftRemove(list, index)
		st.BlurredFields = st.BlurredFields.ShiftRemove(list, index)
		st.ServerErrors = st.ServerErrors.ShiftRemove(list, index)
		return nil
	})
}

// edit runs a draft mutation on a copy of the editor and stores the result
// only if it succeeds.
func (s *Store) edit(key Key, mutate func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.editors[key]
	if !ok || !st.IsEditing() {
		return fmt.Errorf("%s: %w", key, ErrNotEditing)
	}
	if err := mutate(&st); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	st.Version++
	s.revalidate(&st, s.config(key.Type))
	s.editors[key] = st
	return nil
}

func markChanged(st *State, path string) {
	st.DirtyFields = st.DirtyFields.With(path)
	st.ServerErrors = st.ServerErrors.Without(path)
}

func (s *Store) revalidate(st *State, cfg Config) {
	st.ClientErrors = s.validator.Validate(cfg.SchemaID, st.EditEntity)
	st.Errors = validation.Merge(st.ClientErrors, st.ServerErrors, quiet)
}

// --- Focus & Submit ---

// BlurField records that the field at path lost focus.
func (s *Store) BlurField(key Key, path string) error {
	parsed, err := fieldpath.Parse(path)
	if err != nil {
		return err
	}
	return s.touch(key, func(st *State) {
		st.BlurredFields = st.BlurredFields.With(parsed.String())
	})
}

// AttemptedSubmit makes every error visible.
func (s *Store) AttemptedSubmit(key Key) error {
	return s.touch(key, func(st *State) {
		st.WasSubmitAttempted = true
	})
}

func (s *Store) touch(key Key, apply func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.editors[key]
	if !ok || !st.IsEditing() {
		return fmt.Errorf("%s: %w", key, ErrNotEditing)
	}
	apply(&st)
	s.editors[key] = st
	return nil
}

// --- Commit ---

// CommitEdit moves the editor to saving and returns the consolidated
// entity for the transport. It returns ErrCommitInFlight, leaving the
// editor untouched, while a previous commit is unresolved, and ErrBlocked
// when client validation fails.
func (s *Store) CommitEdit(key Key) (PendingCommit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.editors[key]
	if !ok || !st.IsEditing() {
		return PendingCommit{}, fmt.Errorf("%s: %w", key, ErrNotEditing)
	}
	if st.IsSaving {
		return PendingCommit{}, fmt.Errorf("%s: %w", key, ErrCommitInFlight)
	}

	st.WasSubmitAttempted = true
	if !st.ClientErrors.IsEmpty() {
		s.editors[key] = st
		return PendingCommit{}, fmt.Errorf("%s: %w", key, ErrBlocked)
	}

	cfg := s.config(key.Type)
	consolidate := cfg.Consolidate
	if consolidate == nil {
		consolidate = stripScratch
	}
	wire, err := consolidate(st.EditEntity)
	if err != nil {
		st.CommitErr = err
		s.editors[key] = st
		return PendingCommit{}, fmt.Errorf("%s: consolidate: %w", key, err)
	}

	st.IsSaving = true
	st.CommitErr = nil
	s.editors[key] = st

	s.logger.Debug("commit started", slog.String("editor", key.String()), slog.Int("version", st.Version))
	return PendingCommit{Key: key, Session: st.Session, Version: st.Version, Entity: wire}, nil
}

func stripScratch(draft map[string]any) (map[string]any, error) {
	return entity.StripScratch(draft).(map[string]any), nil
}

// CompleteCommit applies a successful commit. The canonical entity is
// merged into the graph store unless the session it belongs to was
// canceled or restarted. The editor is cleared only if the draft did not
// change since commit; otherwise it keeps the newer draft and adopts the
// server-assigned id.
func (s *Store) CompleteCommit(p PendingCommit, canonical map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.editors[p.Key]
	if !ok || st.Session != p.Session {
		s.logger.Info("discarding commit response for a closed session", slog.String("editor", p.Key.String()))
		return nil
	}

	cfg := s.config(p.Key.Type)
	if cfg.Schema != nil && canonical != nil && s.graph != nil {
		if _, err := s.graph.Receive(canonical, cfg.Schema); err != nil {
			st.IsSaving = false
			st.CommitErr = err
			s.editors[p.Key] = st
			return fmt.Errorf("%s: store committed entity: %w", p.Key, err)
		}
	}

	if st.Version == p.Version {
		delete(s.editors, p.Key)
		s.logger.Debug("commit completed", slog.String("editor", p.Key.String()))
		return nil
	}

	st.IsSaving = false
	st.CommitErr = nil
	st.ServerErrors = validation.Errors{}
	if id, hasID := canonical["id"]; hasID {
		if _, drafted := st.EditEntity["id"]; !drafted {
			next := make(map[string]any, len(st.EditEntity)+1)
			for k, v := range st.EditEntity {
				next[k] = v
			}
			next["id"] = id
			st.EditEntity = next
		}
	}
	s.revalidate(&st, cfg)
	s.editors[p.Key] = st
	s.logger.Debug("commit completed under newer edits",
		slog.String("editor", p.Key.String()),
		slog.Int("committed_version", p.Version),
		slog.Int("version", st.Version))
	return nil
}

// FailCommit returns the editor to editing with its draft intact. Server
// validation errors carried by err are merged over the client's.
func (s *Store) FailCommit(p PendingCommit, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.editors[p.Key]
	if !ok || st.Session != p.Session {
		s.logger.Info("discarding commit failure for a closed session", slog.String("editor", p.Key.String()))
		return
	}

	st.IsSaving = false
	st.CommitErr = err
	var failure ValidationFailure
	if errors.As(err, &failure) {
		if server, ok := failure.ValidationErrors(); ok {
			st.ServerErrors = server
		}
	}
	st.Errors = validation.Merge(st.ClientErrors, st.ServerErrors, s.logger)
	s.editors[p.Key] = st

	s.logger.Warn("commit failed", slog.String("editor", p.Key.String()), slog.Any("error", err))
}

// Commit runs a whole commit synchronously through transport.
func (s *Store) Commit(key Key, transport Transport) error {
	p, err := s.CommitEdit(key)
	if err != nil {
		return err
	}
	canonical, err := transport(p.Key, p.Entity)
	if err != nil {
		s.FailCommit(p, err)
		return err
	}
	return s.CompleteCommit(p, canonical)
}

// CancelEdit discards the editor. A commit still in flight for it will be
// ignored when it resolves.
func (s *Store) CancelEdit(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editors, key)
}
