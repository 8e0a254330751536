package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreConcatPolicyAccumulatesTagPropositions(t *testing.T) {
	s := NewStore()

	_, err := s.Receive(map[string]any{
		"id": "t1", "name": "philosophy",
		"propositions": []any{map[string]any{"id": "p1", "text": "a"}},
	}, Tags)
	require.NoError(t, err)
	_, err = s.Receive(map[string]any{
		"id": "t1", "name": "philosophy",
		"propositions": []any{
			map[string]any{"id": "p2", "text": "b"},
			map[string]any{"id": "p1", "text": "a"},
		},
	}, Tags)
	require.NoError(t, err)

	row, ok := s.Entity("tags", "t1")
	require.True(t, ok)
	assert.Equal(t, []any{"p1", "p2"}, row["propositions"])
}

func TestStoreOverwritesListsByDefault(t *testing.T) {
	s := NewStore()

	_, err := s.Receive(map[string]any{
		"id": "p1", "text": "a",
		"justifications": []any{map[string]any{"id": "j1", "polarity": "POSITIVE"}},
	}, Propositions)
	require.NoError(t, err)
	_, err = s.Receive(map[string]any{
		"id":             "p1",
		"justifications": []any{map[string]any{"id": "j2", "polarity": "NEGATIVE"}},
	}, Propositions)
	require.NoError(t, err)

	row, ok := s.Entity("propositions", "p1")
	require.True(t, ok)
	assert.Equal(t, []any{"j2"}, row["justifications"])
	assert.Equal(t, "a", row["text"])

	// Both justifications stay addressable even though p1 no longer lists j1.
	_, ok = s.Entity("justifications", "j1")
	assert.True(t, ok)
}

func TestStoreReceiveFailureLeavesTablesUntouched(t *testing.T) {
	s := NewStore()
	_, err := s.Receive(map[string]any{"id": "p1", "text": "kept"}, Propositions)
	require.NoError(t, err)
	before := s.Snapshot()

	bad := justificationTree()
	bad["basis"].(map[string]any)["type"] = "UNKNOWN"
	_, err = s.Receive(bad, Justifications)
	require.Error(t, err)

	assert.Equal(t, before, s.Snapshot())
	_, ok := s.Entity("justifications", "j2")
	assert.False(t, ok)
}

func TestStoreDenormalizeReadsMergedView(t *testing.T) {
	s := NewStore()
	id, err := s.Receive(justificationTree(), Justifications)
	require.NoError(t, err)
	_, err = s.Receive(map[string]any{"id": "p2", "text": "All men die"}, Propositions)
	require.NoError(t, err)

	view, err := s.Denormalize(id, Justifications)
	require.NoError(t, err)
	atoms := view.(map[string]any)["basis"].(map[string]any)["entity"].(map[string]any)["atoms"].([]any)
	assert.Equal(t, "All men die", atoms[0].(map[string]any)["entity"].(map[string]any)["text"])
}

func TestStoreSnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	_, err := s.Receive(map[string]any{"id": "p1", "text": "a"}, Propositions)
	require.NoError(t, err)

	snap := s.Snapshot()
	delete(snap["propositions"], "p1")

	_, ok := s.Entity("propositions", "p1")
	assert.True(t, ok)
}

func TestStoreConcurrentReceive(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Receive(map[string]any{
				"id": "t1", "name": "shared",
				"propositions": []any{map[string]any{"id": float64(i), "text": "x"}},
			}, Tags)
		}(i)
	}
	wg.Wait()

	row, ok := s.Entity("tags", "t1")
	require.True(t, ok)
	assert.Len(t, row["propositions"], 20)
	assert.Len(t, s.Snapshot()["propositions"], 20)
}
