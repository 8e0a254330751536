package graph

import "fmt"

type denormalizer struct {
	tables   Tables
	visiting map[string]bool
}

// Denormalize rebuilds a nested view of input (an id, a list of ids, or a
// normalized object) from tables. Ids not present in tables yield nil at
// their position. An entity already being expanded higher up the same
// branch comes back as an id-only stub, so the result is always a tree.
func Denormalize(input any, schema Schema, tables Tables) (any, error) {
	d := &denormalizer{tables: tables, visiting: map[string]bool{}}
	return schema.denormalize(input, nil, d)
}

func (e *Entity) denormalize(value any, _ map[string]any, d *denormalizer) (any, error) {
	if value == nil {
		return nil, nil
	}
	ref := value
	if obj, ok := value.(map[string]any); ok {
		ref = obj[e.idAttribute]
	}
	id, ok := idString(ref)
	if !ok {
		return nil, nil
	}
	row, ok := d.tables[e.key][id]
	if !ok {
		return nil, nil
	}

	visit := e.key + "/" + id
	if d.visiting[visit] {
		return map[string]any{e.idAttribute: row[e.idAttribute]}, nil
	}
	d.visiting[visit] = true
	defer delete(d.visiting, visit)

	return denormalizeFields(row, e.fields, d)
}

func (o *Object) denormalize(value any, _ map[string]any, d *denormalizer) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	return denormalizeFields(obj, o.fields, d)
}

func (a *Array) denormalize(value any, parent map[string]any, d *denormalizer) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return value, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := a.of.denormalize(item, parent, d)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (u *Union) denormalize(value any, parent map[string]any, d *denormalizer) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, nil
	}
	key, tagged := obj[UnionRefSchemaKey].(string)
	if !tagged {
		key = u.discriminant(obj, parent)
	}
	variant, err := u.variant(key)
	if err != nil {
		return nil, err
	}
	return variant.denormalize(obj["id"], parent, d)
}

func denormalizeFields(row map[string]any, fields map[string]Schema, d *denormalizer) (map[string]any, error) {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	for _, name := range sortedFieldNames(fields) {
		child, present := row[name]
		if !present || child == nil {
			continue
		}
		v, err := fields[name].denormalize(child, row, d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
