package editors

import (
	"fmt"

	"github.com/gravitrone/howdju/cli/internal/fieldpath"
)

// --- Actions ---
//
// Actions are the message form of the lifecycle operations, for callers
// that queue UI events and apply them in order.

type Action interface{ editorKey() Key }

type BeginEdit struct {
	Key  Key
	Seed map[string]any
}

type PropertyChange struct {
	Key     Key
	Changes map[string]any
}

type BlurField struct {
	Key  Key
	Path string
}

type AddListItem struct {
	Key     Key
	Path    string
	Index   int
	Factory func() any
}

type RemoveListItem struct {
	Key   Key
	Path  string
	Index int
}

type AttemptedSubmit struct{ Key Key }

type CancelEdit struct{ Key Key }

func (a BeginEdit) editorKey() Key       { return a.Key }
func (a PropertyChange) editorKey() Key  { return a.Key }
func (a BlurField) editorKey() Key       { return a.Key }
func (a AddListItem) editorKey() Key     { return a.Key }
func (a RemoveListItem) editorKey() Key  { return a.Key }
func (a AttemptedSubmit) editorKey() Key { return a.Key }
func (a CancelEdit) editorKey() Key      { return a.Key }

// Dispatch applies a single action.
func (s *Store) Dispatch(action Action) error {
	switch a := action.(type) {
	case BeginEdit:
		s.BeginEdit(a.Key, a.Seed)
		return nil
	case PropertyChange:
		return s.PropertyChange(a.Key, a.Changes)
	case BlurField:
		return s.BlurField(a.Key, a.Path)
	case AddListItem:
		list, err := fieldpath.Parse(a.Path)
		if err != nil {
			return err
		}
		return s.AddListItem(a.Key, list, a.Index, a.Factory)
	case RemoveListItem:
		list, err := fieldpath.Parse(a.Path)
		if err != nil {
			return err
		}
		return s.RemoveListItem(a.Key, list, a.Index)
	case AttemptedSubmit:
		return s.AttemptedSubmit(a.Key)
	case CancelEdit:
		s.CancelEdit(a.Key)
		return nil
	default:
		panic(fmt.Sprintf("editors: unhandled action %T", action))
	}
}
