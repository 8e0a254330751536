package fieldpath

import "fmt"

// Get returns the value at path, or false when any step is absent.
func Get(root any, path Path) (any, bool) {
	cur := root
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			if seg.IsIndex {
				return nil, false
			}
			v, ok := node[seg.Name]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(node) {
				return nil, false
			}
			cur = node[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set returns a copy of root with value stored at path. Every node on the
// path is copied; everything else is shared with root.
func Set(root any, path Path, value any) (any, error) {
	return update(root, path, 0, func(any) (any, error) { return value, nil })
}

// Insert splices factory() into the list at path before index.
func Insert(root any, path Path, index int, factory func() any) (any, error) {
	return update(root, path, 0, func(cur any) (any, error) {
		list, err := asList(cur, path)
		if err != nil {
			return nil, err
		}
		if index < 0 || index > len(list) {
			return nil, &PathError{Path: path, At: len(path), Reason: fmt.Sprintf("insert index %d outside [0, %d]", index, len(list))}
		}
		out := make([]any, 0, len(list)+1)
		out = append(out, list[:index]...)
		out = append(out, factory())
		out = append(out, list[index:]...)
		return out, nil
	})
}

// Remove drops the list item at index from the list at path.
func Remove(root any, path Path, index int) (any, error) {
	return update(root, path, 0, func(cur any) (any, error) {
		list, err := asList(cur, path)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(list) {
			return nil, &PathError{Path: path, At: len(path), Reason: fmt.Sprintf("remove index %d outside [0, %d)", index, len(list))}
		}
		out := make([]any, 0, len(list)-1)
		out = append(out, list[:index]...)
		out = append(out, list[index+1:]...)
		return out, nil
	})
}

// update walks to the end of path, applies leaf and rebuilds the ancestors.
// A nil node is an absent container and is materialized from the segment.
func update(node any, path Path, at int, leaf func(any) (any, error)) (any, error) {
	if at == len(path) {
		return leaf(node)
	}
	seg := path[at]

	if node == nil {
		if seg.IsIndex {
			node = []any{}
		} else {
			node = map[string]any{}
		}
	}

	switch n := node.(type) {
	case map[string]any:
		if seg.IsIndex {
			return nil, &PathError{Path: path, At: at, Reason: "index segment on an object"}
		}
		child, err := update(n[seg.Name], path, at+1, leaf)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(n)+1)
		for k, v := range n {
			out[k] = v
		}
		out[seg.Name] = child
		return out, nil

	case []any:
		if !seg.IsIndex {
			return nil, &PathError{Path: path, At: at, Reason: fmt.Sprintf("field %q on a list", seg.Name)}
		}
		if seg.Index < 0 {
			return nil, &PathError{Path: path, At: at, Reason: fmt.Sprintf("negative index %d", seg.Index)}
		}
		if seg.Index > len(n) {
			return nil, &PathError{Path: path, At: at, Reason: fmt.Sprintf("index %d beyond list length %d", seg.Index, len(n))}
		}
		var cur any
		if seg.Index < len(n) {
			cur = n[seg.Index]
		}
		child, err := update(cur, path, at+1, leaf)
		if err != nil {
			return nil, err
		}
		size := len(n)
		if seg.Index == len(n) {
			size++
		}
		out := make([]any, size)
		copy(out, n)
		out[seg.Index] = child
		return out, nil

	default:
		return nil, &PathError{Path: path, At: at, Reason: fmt.Sprintf("cannot descend into %T", node)}
	}
}

func asList(v any, path Path) ([]any, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return list, nil
	default:
		return nil, &PathError{Path: path, At: len(path), Reason: fmt.Sprintf("expected a list, found %T", v)}
	}
}
