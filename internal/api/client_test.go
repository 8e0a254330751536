package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gravitrone/howdju/cli/internal/editors"
	"github.com/gravitrone/howdju/cli/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "test-token")
	return srv, client
}

func jsonResponse(data any) []byte {
	b, _ := json.Marshal(map[string]any{"data": data})
	return b
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestLogin(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, map[string]any{"email": "socrates@example.com", "password": "hemlock"}, body["credentials"])
		w.Write(jsonResponse(map[string]any{
			"authToken": "tok-1",
			"user":      map[string]any{"id": "u1", "email": "socrates@example.com"},
		}))
	})

	session, err := client.Login(Credentials{Email: "socrates@example.com", Password: "hemlock"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.AuthToken)
	assert.Equal(t, "u1", session.User.ID)
}

func TestGetPropositionIncludesJustifications(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/propositions/p1", r.URL.Path)
		assert.Equal(t, "justifications", r.URL.Query().Get("include"))
		w.Write(jsonResponse(map[string]any{"id": "p1", "text": "Socrates is mortal", "justifications": []any{}}))
	})

	tree, err := client.GetProposition("p1")
	require.NoError(t, err)
	assert.Equal(t, "Socrates is mortal", tree["text"])
}

func TestCreateAndUpdateWrapEntity(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/justifications":
			j := body["justification"].(map[string]any)
			j["id"] = "j1"
			w.Write(jsonResponse(j))
		case r.Method == http.MethodPut && r.URL.Path == "/persorgs/ps1":
			w.Write(jsonResponse(body["persorg"]))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	j, err := client.CreateJustification(map[string]any{"polarity": "POSITIVE"})
	require.NoError(t, err)
	assert.Equal(t, "j1", j["id"])

	p, err := client.UpdatePersorg("ps1", map[string]any{"id": "ps1", "name": "Plato"})
	require.NoError(t, err)
	assert.Equal(t, "Plato", p["name"])
}

func TestListTaggedPropositionsPaginates(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tags/t1/propositions", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("count"))
		if r.URL.Query().Get("continuationToken") == "" {
			w.Write(jsonResponse(map[string]any{
				"propositions":      []any{map[string]any{"id": "p1", "text": "a"}},
				"continuationToken": "next",
			}))
			return
		}
		assert.Equal(t, "next", r.URL.Query().Get("continuationToken"))
		w.Write(jsonResponse(map[string]any{"propositions": []any{map[string]any{"id": "p2", "text": "b"}}}))
	})

	first, err := client.ListTaggedPropositions("t1", 20, "")
	require.NoError(t, err)
	assert.Len(t, first.Propositions, 1)
	assert.Equal(t, "next", first.ContinuationToken)

	second, err := client.ListTaggedPropositions("t1", 20, first.ContinuationToken)
	require.NoError(t, err)
	assert.Empty(t, second.ContinuationToken)
	assert.Equal(t, "p2", second.Propositions[0]["id"])
}

// --- Errors ---

func TestValidationErrorCarriesFieldErrors(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR","message":"invalid proposition",` +
			`"fieldErrors":{"text":[{"code":"EXCEEDS_LENGTH","message":"text is too long"}]}}}`))
	})

	_, err := client.CreateProposition(map[string]any{"text": "x"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR: invalid proposition", err.Error())

	fields, ok := apiErr.ValidationErrors()
	require.True(t, ok)
	assert.Equal(t, []validation.Error{{Code: validation.CodeExceedsLength, Message: "text is too long"}}, fields.For("text"))
}

func TestNonValidationErrorHasNoFieldErrors(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"ENTITY_NOT_FOUND","message":"no proposition p9"}}`))
	})

	_, err := client.GetProposition("p9")
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	_, ok := apiErr.ValidationErrors()
	assert.False(t, ok)
}

func TestUnstructuredErrorBodies(t *testing.T) {
	cases := map[string]string{
		`{"detail":"gateway down"}`: "gateway down",
		`{"error":"bad token"}`:     "bad token",
		`upstream exploded`:         "upstream exploded",
	}
	for body, want := range cases {
		client := NewClient("http://howdju.test", "")
		client.httpClient.Transport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		})
		_, err := client.GetJustification("j1")
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write(jsonResponse(map[string]any{"id": "s1"}))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").GetStatement("s1")
	require.NoError(t, err)
}

func TestEmptyDataIsAnError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	})

	_, err := client.GetPersorg("ps1")
	assert.Error(t, err)
}

// --- Editor Transport ---

func TestEditorTransportRoutesByType(t *testing.T) {
	var calls []string
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Write(jsonResponse(map[string]any{"id": "x1"}))
	})
	send := client.EditorTransport()

	for _, tc := range []struct {
		typ    editors.Type
		entity map[string]any
	}{
		{editors.TypeProposition, map[string]any{"text": "new"}},
		{editors.TypeProposition, map[string]any{"id": "p1", "text": "edited"}},
		{editors.TypeCounterJustification, map[string]any{"polarity": "NEGATIVE"}},
		{editors.TypeStatement, map[string]any{}},
		{editors.TypePersorg, map[string]any{"name": "Plato"}},
		{editors.TypeWritQuote, map[string]any{"quoteText": "q"}},
	} {
		_, err := send(editors.NewKey(tc.typ), tc.entity)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"POST /propositions",
		"PUT /propositions/p1",
		"POST /justifications",
		"POST /statements",
		"POST /persorgs",
		"POST /writ-quotes",
	}, calls)

	_, err := send(editors.NewKey(editors.TypePropositionCompound), map[string]any{})
	assert.ErrorIs(t, err, ErrNotStandalone)
}

func TestEditorTransportFeedsServerErrorsBackToEditor(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR","fieldErrors":{"text":[{"code":"INVALID_VALUE","message":"duplicate"}]}}}`))
	})

	store := editors.New(nil, nil)
	key := editors.NewKey(editors.TypeProposition)
	store.BeginEdit(key, map[string]any{"text": "Socrates is mortal"})

	err := store.Commit(key, client.EditorTransport())
	require.Error(t, err)

	st, ok := store.State(key)
	require.True(t, ok)
	assert.False(t, st.IsSaving)
	require.Len(t, st.Errors.For("text"), 1)
	assert.Equal(t, "duplicate", st.Errors.For("text")[0].Message)
}
