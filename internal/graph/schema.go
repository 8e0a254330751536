// Package graph flattens nested entity trees into id-keyed tables and
// rebuilds nested views from them.
//
// Schemas describe shape only. Recursive entity types (a justification
// targeting a justification) are declared with Entity.Define after all
// entities exist, and every recursive edge is stored as an id.
package graph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gravitrone/howdju/cli/internal/entity"
)

// Schema is one of *Entity, *Object, *Array or *Union.
type Schema interface {
	normalize(value any, parent map[string]any, n *normalizer) (any, error)
	denormalize(value any, parent map[string]any, d *denormalizer) (any, error)
}

// MergePolicy decides how a list field combines with what is already stored
// for the same entity.
type MergePolicy int

const (
	// Overwrite replaces the stored list (single-entity re-fetch).
	Overwrite MergePolicy = iota
	// Concat appends new items after the stored ones (paginated fetch).
	Concat
)

// --- Entity ---

// Entity is a table-backed type identified by an id attribute.
type Entity struct {
	key         string
	idAttribute string
	fields      map[string]Schema
	policies    map[string]MergePolicy
}

// EntityOption customizes an Entity at construction.
type EntityOption func(*Entity)

// WithMergePolicy sets how a top-level list field merges.
func WithMergePolicy(field string, policy MergePolicy) EntityOption {
	return func(e *Entity) { e.policies[field] = policy }
}

// NewEntity declares a table. Fields are attached with Define.
func NewEntity(key string, opts ...EntityOption) *Entity {
	e := &Entity{
		key:         key,
		idAttribute: "id",
		fields:      map[string]Schema{},
		policies:    map[string]MergePolicy{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Define attaches nested field schemas. It may be called after other
// entities referencing e have been built, which is how cycles are declared.
func (e *Entity) Define(fields map[string]Schema) *Entity {
	for name, s := range fields {
		e.fields[name] = s
	}
	return e
}

// Key is the table name.
func (e *Entity) Key() string { return e.key }

// Policy returns the merge policy of a top-level field.
func (e *Entity) Policy(field string) MergePolicy { return e.policies[field] }

// --- Object ---

// Object is an owned embedded value: it stays inline in its parent while
// its declared fields are normalized.
type Object struct {
	fields map[string]Schema
}

func NewObject(fields map[string]Schema) *Object {
	return &Object{fields: fields}
}

// --- Array ---

// Array is a list of values sharing one schema.
type Array struct {
	of Schema
}

func NewArray(of Schema) *Array {
	return &Array{of: of}
}

// --- Union ---

// Discriminant picks a union variant from the value and its containing
// object. An empty result means no variant applies.
type Discriminant func(value, parent map[string]any) string

// ParentAttribute reads the discriminant from a sibling field, e.g. the
// "type" next to a justification basis's "entity".
func ParentAttribute(name string) Discriminant {
	return func(_, parent map[string]any) string {
		v, _ := parent[name].(string)
		return v
	}
}

// Union is a reference whose entity type is chosen by a discriminant.
// Normalized references keep the chosen variant next to the id.
type Union struct {
	variants     map[string]*Entity
	discriminant Discriminant
}

func NewUnion(variants map[string]*Entity, discriminant Discriminant) *Union {
	return &Union{variants: variants, discriminant: discriminant}
}

// UnionRefSchemaKey is the attribute that stores the chosen variant in a
// normalized union reference ({"id": ..., "schema": ...}).
const UnionRefSchemaKey = "schema"

// variant resolves a discriminant value. An unknown value is schema drift
// and fails with entity.ExhaustedEnumError rather than being skipped.
func (u *Union) variant(value string) (*Entity, error) {
	if e, ok := u.variants[value]; ok {
		return e, nil
	}
	known := make([]string, 0, len(u.variants))
	for k := range u.variants {
		known = append(known, k)
	}
	sort.Strings(known)
	return nil, &entity.ExhaustedEnumError{Enum: fmt.Sprintf("union%v", known), Value: value}
}

// idString renders json ids (strings or numbers) as table keys.
func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	default:
		return "", false
	}
}
