package graph

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrMissingID is returned when an entity node has no usable id.
var ErrMissingID = errors.New("entity has no id")

// Tables maps table key → id → flattened entity.
type Tables map[string]map[string]map[string]any

// Result is the output of Normalize.
type Result struct {
	// Result is the input with every entity replaced by its id (or a
	// {"id", "schema"} reference for union positions).
	Result any
	Tables Tables

	entities map[string]*Entity
}

type normalizer struct {
	tables   Tables
	entities map[string]*Entity
}

// Normalize walks tree depth-first and flattens every entity node into
// tables. The tree must be acyclic; recursive types are fine.
func Normalize(tree any, schema Schema) (Result, error) {
	n := &normalizer{tables: Tables{}, entities: map[string]*Entity{}}
	out, err := schema.normalize(tree, nil, n)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: out, Tables: n.tables, entities: n.entities}, nil
}

func (e *Entity) normalize(value any, _ map[string]any, n *normalizer) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("normalize %s: expected an object, got %T", e.key, value)
	}
	id, ok := idString(obj[e.idAttribute])
	if !ok {
		return nil, fmt.Errorf("normalize %s: %w", e.key, ErrMissingID)
	}

	flat, err := normalizeFields(obj, e.fields, n)
	if err != nil {
		return nil, err
	}
	n.add(e, id, flat)
	return id, nil
}

func (o *Object) normalize(value any, _ map[string]any, n *normalizer) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("normalize object: expected an object, got %T", value)
	}
	return normalizeFields(obj, o.fields, n)
}

func (a *Array) normalize(value any, parent map[string]any, n *normalizer) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("normalize array: expected a list, got %T", value)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		v, err := a.of.normalize(item, parent, n)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (u *Union) normalize(value any, parent map[string]any, n *normalizer) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("normalize union: expected an object, got %T", value)
	}
	key := u.discriminant(obj, parent)
	variant, err := u.variant(key)
	if err != nil {
		return nil, err
	}
	id, err := variant.normalize(obj, parent, n)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, UnionRefSchemaKey: key}, nil
}

// normalizeFields copies obj and normalizes its declared fields. Fields
// are visited in name order so repeated entities merge deterministically.
func normalizeFields(obj map[string]any, fields map[string]Schema, n *normalizer) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, name := range sortedFieldNames(fields) {
		child, present := obj[name]
		if !present || child == nil {
			continue
		}
		v, err := fields[name].normalize(child, obj, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (n *normalizer) add(e *Entity, id string, flat map[string]any) {
	n.entities[e.key] = e
	table := n.tables[e.key]
	if table == nil {
		table = map[string]map[string]any{}
		n.tables[e.key] = table
	}
	if existing, ok := table[id]; ok {
		table[id] = mergeEntity(existing, flat, e)
		return
	}
	table[id] = flat
}

// --- Merging ---

// mergeEntity combines a stored row with incoming data without modifying
// either: nested objects deep-merge, incoming scalars win, and list fields
// follow the entity's declared policy.
func mergeEntity(existing, incoming map[string]any, e *Entity) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		prev, had := out[k]
		if !had {
			out[k] = v
			continue
		}
		if e != nil && e.Policy(k) == Concat {
			prevList, okPrev := prev.([]any)
			nextList, okNext := v.([]any)
			if okPrev && okNext {
				out[k] = concatUnique(prevList, nextList)
				continue
			}
		}
		out[k] = deepMerge(prev, v)
	}
	return out
}

func deepMerge(prev, next any) any {
	prevMap, okPrev := prev.(map[string]any)
	nextMap, okNext := next.(map[string]any)
	if !okPrev || !okNext {
		return next
	}
	return mergeEntity(prevMap, nextMap, nil)
}

func concatUnique(prev, next []any) []any {
	out := make([]any, 0, len(prev)+len(next))
	out = append(out, prev...)
	for _, item := range next {
		dup := false
		for _, have := range out {
			if reflect.DeepEqual(have, item) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, item)
		}
	}
	return out
}

func sortedFieldNames(fields map[string]Schema) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
