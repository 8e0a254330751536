// Package fieldpath addresses fields inside JSON-shaped draft trees.
//
// A draft is built from map[string]any, []any and scalars. Paths are typed
// segment lists; the dotted/bracket string form is only parsed at the edges.
package fieldpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path does not fit the shape of a draft.
var ErrInvalidPath = errors.New("invalid field path")

// Segment is one step of a path: a property name or a list index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// Path is an ordered list of segments from the draft root to a field.
type Path []Segment

// PathError reports where a path stopped matching the draft.
type PathError struct {
	Path   Path
	At     int
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %q at segment %d: %s", ErrInvalidPath, e.Path.String(), e.At, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrInvalidPath }

// --- Parsing ---

// Parse reads dotted/bracket notation such as "basis.atoms[2].entity.text".
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}

	var path Path
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			if i == 0 || i == len(s)-1 || s[i+1] == '.' || s[i+1] == '[' {
				return nil, fmt.Errorf("%w: unexpected '.' at %d in %q", ErrInvalidPath, i, s)
			}
			i++
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed '[' in %q", ErrInvalidPath, s)
			}
			idx, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, s[i+1:i+end], s)
			}
			path = append(path, Segment{Index: idx, IsIndex: true})
			i += end + 1
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				return nil, fmt.Errorf("%w: unexpected %q after index in %q", ErrInvalidPath, s[i], s)
			}
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				if s[j] == ']' {
					return nil, fmt.Errorf("%w: unexpected ']' in %q", ErrInvalidPath, s)
				}
				j++
			}
			path = append(path, Segment{Name: s[i:j]})
			i = j
		}
	}
	return path, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the canonical form used as a key for errors and field sets.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Name)
	}
	return b.String()
}

// Field returns a new path extended with a property name.
func (p Path) Field(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Name: name})
}

// Index returns a new path extended with a list index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Index: i, IsIndex: true})
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}
