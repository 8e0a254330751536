package validation

import "github.com/gravitrone/howdju/cli/internal/fieldpath"

// FieldSet records field paths that were modified (dirty) or lost focus
// (blurred). Keys are canonical path strings.
type FieldSet map[string]bool

// Has reports whether path is in the set. A nil set is empty.
func (s FieldSet) Has(path string) bool {
	return s[path]
}

// With returns a copy of s including path.
func (s FieldSet) With(path string) FieldSet {
	out := s.Clone()
	out[path] = true
	return out
}

// Clone copies the set; the result is never nil.
func (s FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(s)+1)
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// ShiftInsert moves markers under list[index] and later items up by one,
// following an item inserted at index.
func (s FieldSet) ShiftInsert(list fieldpath.Path, index int) FieldSet {
	return s.shift(list, afterInsert(index))
}

// ShiftRemove drops markers under list[index] and moves markers for later
// items down by one, following removal of the item at index.
func (s FieldSet) ShiftRemove(list fieldpath.Path, index int) FieldSet {
	return s.shift(list, afterRemove(index))
}

func (s FieldSet) shift(list fieldpath.Path, move indexMove) FieldSet {
	out := make(FieldSet, len(s))
	for key, v := range s {
		if !v {
			continue
		}
		if moved, keep := shiftKey(key, list, move); keep {
			out[moved] = true
		}
	}
	return out
}

// ShiftInsert renumbers field errors after an insert at index in list.
func (e Errors) ShiftInsert(list fieldpath.Path, index int) Errors {
	return e.shift(list, afterInsert(index))
}

// ShiftRemove drops field errors of the removed item and renumbers later ones.
func (e Errors) ShiftRemove(list fieldpath.Path, index int) Errors {
	return e.shift(list, afterRemove(index))
}

func (e Errors) shift(list fieldpath.Path, move indexMove) Errors {
	if len(e.Fields) == 0 {
		return e
	}
	out := Errors{Model: e.Model, Fields: make(map[string][]Error, len(e.Fields))}
	for key, errs := range e.Fields {
		if moved, keep := shiftKey(key, list, move); keep {
			out.Fields[moved] = errs
		}
	}
	return out
}

// --- Index Shifting ---

// indexMove maps an old list index to its new one, or drops it.
type indexMove func(int) (int, bool)

func afterInsert(index int) indexMove {
	return func(i int) (int, bool) {
		if i >= index {
			return i + 1, true
		}
		return i, true
	}
}

func afterRemove(index int) indexMove {
	return func(i int) (int, bool) {
		switch {
		case i == index:
			return 0, false
		case i > index:
			return i - 1, true
		default:
			return i, true
		}
	}
}

// shiftKey renumbers the list index in key when key lies under list.
func shiftKey(key string, list fieldpath.Path, move indexMove) (string, bool) {
	path, err := fieldpath.Parse(key)
	if err != nil || len(path) <= len(list) || !path.HasPrefix(list) || !path[len(list)].IsIndex {
		return key, true
	}
	next, keep := move(path[len(list)].Index)
	if !keep {
		return "", false
	}
	moved := make(fieldpath.Path, len(path))
	copy(moved, path)
	moved[len(list)].Index = next
	return moved.String(), true
}
