package graph

import (
	"errors"
	"testing"

	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func justificationTree() map[string]any {
	return map[string]any{
		"id":             "j1",
		"polarity":       "POSITIVE",
		"rootTargetType": "PROPOSITION",
		"rootTarget":     map[string]any{"id": "p1", "text": "Socrates is mortal"},
		"target": map[string]any{
			"type":   "PROPOSITION",
			"entity": map[string]any{"id": "p1", "text": "Socrates is mortal"},
		},
		"basis": map[string]any{
			"type": "PROPOSITION_COMPOUND",
			"entity": map[string]any{
				"id": "c1",
				"atoms": []any{
					map[string]any{"entity": map[string]any{"id": "p2", "text": "All men are mortal"}},
					map[string]any{"entity": map[string]any{"id": "p3", "text": "Socrates is a man"}},
				},
			},
		},
		"counterJustifications": []any{
			map[string]any{
				"id":       "j2",
				"polarity": "NEGATIVE",
				"target": map[string]any{
					"type":   "JUSTIFICATION",
					"entity": map[string]any{"id": "j1"},
				},
				"basis": map[string]any{
					"type": "WRIT_QUOTE",
					"entity": map[string]any{
						"id":        "wq1",
						"quoteText": "I know that I know nothing",
						"writ":      map[string]any{"id": "w1", "title": "Apology"},
						"urls":      []any{map[string]any{"url": "https://example.com/apology"}},
					},
				},
			},
		},
	}
}

func TestNormalizeFlattensIntoTables(t *testing.T) {
	res, err := Normalize(justificationTree(), Justifications)
	require.NoError(t, err)

	assert.Equal(t, "j1", res.Result)
	assert.ElementsMatch(t, []string{"justifications", "propositions", "propositionCompounds", "writQuotes", "writs"}, keys(res.Tables))
	assert.Len(t, res.Tables["propositions"], 3)

	j1 := res.Tables["justifications"]["j1"]
	assert.Equal(t, map[string]any{"id": "p1", "schema": "PROPOSITION"}, j1["target"].(map[string]any)["entity"])
	assert.Equal(t, []any{"j2"}, j1["counterJustifications"])

	c1 := res.Tables["propositionCompounds"]["c1"]
	assert.Equal(t, []any{
		map[string]any{"entity": "p2"},
		map[string]any{"entity": "p3"},
	}, c1["atoms"])

	// The recursive edge back to j1 is an id, not a nested copy.
	j2 := res.Tables["justifications"]["j2"]
	assert.Equal(t, map[string]any{"id": "j1", "schema": "JUSTIFICATION"}, j2["target"].(map[string]any)["entity"])
}

func TestUnionResolutionUsesDiscriminant(t *testing.T) {
	tree := map[string]any{
		"id":       "j9",
		"polarity": "POSITIVE",
		"target":   map[string]any{"type": "PROPOSITION", "entity": map[string]any{"id": "p1", "text": "x"}},
		"basis": map[string]any{
			"type":   "WRIT_QUOTE",
			"entity": map[string]any{"id": "q1", "quoteText": "quoted", "writ": map[string]any{"id": "w1", "title": "T"}},
		},
	}
	res, err := Normalize(tree, Justifications)
	require.NoError(t, err)

	assert.Contains(t, res.Tables["writQuotes"], "q1")
	assert.NotContains(t, res.Tables, "propositionCompounds")

	view, err := Denormalize(res.Result, Justifications, res.Tables)
	require.NoError(t, err)
	j, err := entity.FromTree[entity.Justification](view)
	require.NoError(t, err)
	quote, ok := j.Basis.Entity.(*entity.WritQuote)
	require.True(t, ok)
	assert.Equal(t, "quoted", quote.QuoteText)
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	tree := justificationTree()
	res, err := Normalize(tree, Justifications)
	require.NoError(t, err)

	view, err := Denormalize(res.Result, Justifications, res.Tables)
	require.NoError(t, err)
	assert.Equal(t, justificationTree(), view)
}

func TestRoundTripThroughArrayAndStatements(t *testing.T) {
	tree := []any{
		map[string]any{
			"id":           "s1",
			"sentenceType": "STATEMENT",
			"speaker":      map[string]any{"id": "ps1", "name": "Plato"},
			"sentence": map[string]any{
				"id":           "s0",
				"sentenceType": "PROPOSITION",
				"speaker":      map[string]any{"id": "ps2", "name": "Socrates"},
				"sentence":     map[string]any{"id": "p1", "text": "the unexamined life is not worth living"},
			},
		},
	}
	schema := NewArray(Statements)
	res, err := Normalize(tree, schema)
	require.NoError(t, err)
	assert.Equal(t, []any{"s1"}, res.Result)
	assert.Len(t, res.Tables["persorgs"], 2)

	view, err := Denormalize(res.Result, schema, res.Tables)
	require.NoError(t, err)
	assert.Equal(t, tree, view)
}

func TestDenormalizeToleratesMissingIDs(t *testing.T) {
	res, err := Normalize(justificationTree(), Justifications)
	require.NoError(t, err)
	delete(res.Tables["propositions"], "p2")

	view, err := Denormalize([]any{"j1", "missing"}, NewArray(Justifications), res.Tables)
	require.NoError(t, err)
	items := view.([]any)
	require.Len(t, items, 2)
	assert.Nil(t, items[1])

	atoms := items[0].(map[string]any)["basis"].(map[string]any)["entity"].(map[string]any)["atoms"].([]any)
	assert.Nil(t, atoms[0].(map[string]any)["entity"])
	assert.Equal(t, "Socrates is a man", atoms[1].(map[string]any)["entity"].(map[string]any)["text"])

	none, err := Denormalize("nope", Justifications, Tables{})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDenormalizeBreaksStoredCycles(t *testing.T) {
	tables := Tables{
		"justifications": {
			"a": {"id": "a", "counterJustifications": []any{"b"}},
			"b": {"id": "b", "target": map[string]any{"type": "JUSTIFICATION", "entity": map[string]any{"id": "a", "schema": "JUSTIFICATION"}}},
		},
	}
	view, err := Denormalize("a", Justifications, tables)
	require.NoError(t, err)

	b := view.(map[string]any)["counterJustifications"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"id": "a"}, b["target"].(map[string]any)["entity"])
}

func TestUnknownDiscriminantIsExhaustedEnum(t *testing.T) {
	tree := justificationTree()
	tree["basis"].(map[string]any)["type"] = "SOURCE_EXCERPT"

	_, err := Normalize(tree, Justifications)
	var exhausted *entity.ExhaustedEnumError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, "SOURCE_EXCERPT", exhausted.Value)

	_, err = Denormalize("j1", Justifications, Tables{
		"justifications": {"j1": {"id": "j1", "basis": map[string]any{"type": "X", "entity": map[string]any{"id": "c1", "schema": "X"}}}},
	})
	assert.True(t, errors.As(err, &exhausted))
}

func TestNormalizeRequiresIDs(t *testing.T) {
	_, err := Normalize(map[string]any{"text": "no id"}, Propositions)
	assert.True(t, errors.Is(err, ErrMissingID))
}

func TestNumericIDsBecomeStringKeys(t *testing.T) {
	res, err := Normalize(map[string]any{"id": float64(42), "text": "x"}, Propositions)
	require.NoError(t, err)
	assert.Equal(t, "42", res.Result)
	assert.Equal(t, float64(42), res.Tables["propositions"]["42"]["id"])
}

func TestRepeatedEntityMergesPreferringIncoming(t *testing.T) {
	tree := []any{
		map[string]any{"id": "p1", "text": "old", "created": "2020"},
		map[string]any{"id": "p1", "text": "new"},
	}
	res, err := Normalize(tree, NewArray(Propositions))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "p1", "text": "new", "created": "2020"}, res.Tables["propositions"]["p1"])
}

func keys(tables Tables) []string {
	out := make([]string, 0, len(tables))
	for k := range tables {
		out = append(out, k)
	}
	return out
}
