package graph

import "sync"

// Store is the normalized arena shared by every viewer and editor. Only
// fetch completions and successful commits write to it.
type Store struct {
	mu     sync.RWMutex
	tables Tables
}

func NewStore() *Store {
	return &Store{tables: Tables{}}
}

// Receive normalizes tree and merges it in. Normalization finishes before
// anything is written, so a failing tree leaves the store untouched.
func (s *Store) Receive(tree any, schema Schema) (any, error) {
	res, err := Normalize(tree, schema)
	if err != nil {
		return nil, err
	}
	s.Merge(res)
	return res.Result, nil
}

// Merge folds a normalization result into the store using each entity's
// merge policies.
func (s *Store) Merge(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rows := range res.Tables {
		table := s.tables[key]
		if table == nil {
			table = make(map[string]map[string]any, len(rows))
			s.tables[key] = table
		}
		ent := res.entities[key]
		for id, row := range rows {
			if existing, ok := table[id]; ok {
				table[id] = mergeEntity(existing, row, ent)
				continue
			}
			table[id] = row
		}
	}
}

// Entity returns the flattened row for key/id. Rows are never modified in
// place, so the result is safe to read after the call.
func (s *Store) Entity(key, id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tables[key][id]
	return row, ok
}

// Denormalize rebuilds a nested view of input from the current tables.
func (s *Store) Denormalize(input any, schema Schema) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Denormalize(input, schema, s.tables)
}

// Snapshot copies the table index. Rows are shared and immutable.
func (s *Store) Snapshot() Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Tables, len(s.tables))
	for key, rows := range s.tables {
		copied := make(map[string]map[string]any, len(rows))
		for id, row := range rows {
			copied[id] = row
		}
		out[key] = copied
	}
	return out
}
