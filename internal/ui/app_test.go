package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/config"
	"github.com/gravitrone/howdju/cli/internal/editors"
)

type fakeHowdju struct {
	mu       sync.Mutex
	posted   []map[string]any
	counters []any
}

func (f *fakeHowdju) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/propositions/p1":
			writeData(w, map[string]any{
				"id":   "p1",
				"text": "Socrates is mortal",
				"justifications": []any{map[string]any{
					"id":       "j1",
					"polarity": "POSITIVE",
					"target":   map[string]any{"type": "PROPOSITION", "entity": map[string]any{"id": "p1"}},
					"basis": map[string]any{
						"type": "PROPOSITION_COMPOUND",
						"entity": map[string]any{"id": "c1", "atoms": []any{
							map[string]any{"entity": map[string]any{"id": "p2", "text": "All men are mortal"}},
						}},
					},
					"counterJustifications": f.counters,
				}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/justifications":
			var body map[string]map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			j := body["justification"]
			j["id"] = "j2"
			compound := j["basis"].(map[string]any)["entity"].(map[string]any)
			compound["id"] = "c2"
			for i, atom := range compound["atoms"].([]any) {
				atom.(map[string]any)["entity"].(map[string]any)["id"] = fmt.Sprintf("p-new-%d", i)
			}
			f.posted = append(f.posted, j)
			f.counters = append(f.counters, j)
			writeData(w, j)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"ENTITY_NOT_FOUND","message":"not found"}}`))
		}
	}
}

func writeData(w http.ResponseWriter, data any) {
	b, _ := json.Marshal(map[string]any{"data": data})
	w.Write(b)
}

func newTestApp(t *testing.T, opts Options) (App, *fakeHowdju) {
	t.Helper()
	fake := &fakeHowdju{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, "tok")
	prev := toastDuration
	toastDuration = 0
	t.Cleanup(func() { toastDuration = prev })
	return NewApp(client, &config.Config{APIURL: srv.URL}, nil, opts), fake
}

// run feeds msg to the app and keeps executing returned commands until the
// queue is empty. Toasts stay up since their clear messages are dropped.
func run(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		model, cmd := a.Update(next)
		a = model.(App)
		queue = append(queue, drain(cmd)...)
	}
	return a
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case nil, clearToastMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func typeInto(t *testing.T, a App, text string) App {
	t.Helper()
	for _, r := range text {
		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			key = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		a = run(t, a, key)
	}
	return a
}

func TestAppLoadsAndRendersProposition(t *testing.T) {
	a, _ := newTestApp(t, Options{PropositionID: "p1"})
	a = run(t, a, a.Init()())

	view := a.View()
	assert.Contains(t, view, "Socrates is mortal")
	assert.Contains(t, view, "All men are mortal")
	assert.Nil(t, a.form)
	assert.Contains(t, view, "Not logged in")
	_, ok := a.graph.Entity("justifications", "j1")
	assert.True(t, ok)
}

func TestAppWithoutPropositionStartsNewOne(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = run(t, a, a.Init()())

	require.NotNil(t, a.form)
	assert.Equal(t, editors.TypeProposition, a.form.Key().Type)
	assert.Contains(t, a.View(), "Proposition")
}

func TestAppCounterFlowPostsAndReloads(t *testing.T) {
	a, fake := newTestApp(t, Options{PropositionID: "p1"})
	a = run(t, a, a.Init()())

	a = run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.NotNil(t, a.form)
	assert.Equal(t, editors.TypeCounterJustification, a.form.Key().Type)

	// Basis kind, then the first premise.
	a = run(t, a, tea.KeyMsg{Type: tea.KeyDown})
	a = typeInto(t, a, "Socrates was a god")
	a = run(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, a.form)
	require.Len(t, fake.posted, 1)
	posted := fake.posted[0]
	assert.Equal(t, "NEGATIVE", posted["polarity"])
	assert.Equal(t, "j1", posted["target"].(map[string]any)["entity"].(map[string]any)["id"])
	assert.Equal(t, "PROPOSITION_COMPOUND", posted["basis"].(map[string]any)["type"])

	view := a.View()
	assert.Contains(t, view, "Socrates was a god")
	assert.Contains(t, view, "- because")
	assert.Contains(t, view, "Counter-justification saved")
}

func TestAppJustifyOptionOpensEditor(t *testing.T) {
	a, _ := newTestApp(t, Options{PropositionID: "p1", Justify: true})
	a = run(t, a, a.Init()())

	require.NotNil(t, a.form)
	st, ok := a.editors.State(a.form.Key())
	require.True(t, ok)
	assert.Equal(t, "p1", st.EditEntity["target"].(map[string]any)["entity"].(map[string]any)["id"])
}

func TestAppEditOptionSeedsFromStore(t *testing.T) {
	a, _ := newTestApp(t, Options{PropositionID: "p1", Edit: true})
	cmd := a.Init()

	key := editors.Key{Type: editors.TypeProposition, ID: "p1"}
	st, ok := a.editors.State(key)
	require.True(t, ok)
	assert.True(t, st.IsFetching)

	a = run(t, a, cmd())
	require.NotNil(t, a.form)
	st, _ = a.editors.State(key)
	assert.Equal(t, "Socrates is mortal", st.EditEntity["text"])
	assert.Equal(t, "p1", st.EditEntity["id"])
}

func TestAppLoadFailureIsShown(t *testing.T) {
	a, _ := newTestApp(t, Options{PropositionID: "p404", Edit: true})
	a = run(t, a, a.Init()())

	assert.Contains(t, a.View(), "not found")
	st, ok := a.editors.State(editors.Key{Type: editors.TypeProposition, ID: "p404"})
	require.True(t, ok)
	assert.False(t, st.IsFetching)
	assert.Error(t, st.FetchErr)
}

func TestAppQuitConfirmsUnsavedDraft(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	a = run(t, a, a.Init()())
	a = typeInto(t, a, "draft")

	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	a = model.(App)
	assert.Nil(t, cmd)
	assert.True(t, a.quitConfirm)
	assert.Contains(t, a.View(), "unsaved changes")

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	a = model.(App)
	assert.False(t, a.quitConfirm)
}

func TestAppBrowseSelectionWraps(t *testing.T) {
	a, _ := newTestApp(t, Options{PropositionID: "p1"})
	a = run(t, a, a.Init()())

	a = run(t, a, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, a.selected)
	assert.Contains(t, lineWith(t, a.View(), "because"), "› + because")
}
