package validation

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Text string `json:"text" validate:"notblank,max=10"`
}

type testVariant struct {
	Title string `json:"title" validate:"notblank"`
}

type testDraft struct {
	Name     string       `json:"name" validate:"notblank"`
	Kind     string       `json:"kind" validate:"oneof=A B"`
	Link     string       `json:"link" validate:"omitempty,url"`
	Items    []testItem   `json:"items" validate:"min=1,dive"`
	VariantA *testVariant `json:"variantA,omitempty" validate:"required_if=Kind A"`
	VariantB *testVariant `json:"variantB,omitempty" validate:"required_if=Kind B"`
}

func (d *testDraft) PruneInactive() {
	switch d.Kind {
	case "A":
		d.VariantB = nil
	case "B":
		d.VariantA = nil
	}
}

func testValidator() *Validator {
	v := New()
	v.Register("test", func() any { return &testDraft{} })
	return v
}

func TestValidateReportsFieldPathsInDraftNotation(t *testing.T) {
	v := testValidator()
	errs := v.Validate("test", map[string]any{
		"name": "  ",
		"kind": "A",
		"link": "not a url",
		"items": []any{
			map[string]any{"text": "ok"},
			map[string]any{"text": "this text is too long"},
		},
		"variantA": map[string]any{"title": ""},
		"variantB": map[string]any{"title": ""},
	})

	require.False(t, errs.IsEmpty())
	assert.Equal(t, []string{"items[1].text", "link", "name", "variantA.title"}, errs.Paths())
	assert.Equal(t, CodeMustBeNonempty, errs.For("name")[0].Code)
	assert.Equal(t, "name must not be blank", errs.For("name")[0].Message)
	assert.Equal(t, CodeExceedsLength, errs.For("items[1].text")[0].Code)
	assert.Equal(t, CodeInvalidURL, errs.For("link")[0].Code)
	// The inactive variant was pruned before validation.
	assert.Empty(t, errs.For("variantB.title"))
}

func TestValidateEmptyListAndMissingVariant(t *testing.T) {
	v := testValidator()
	errs := v.Validate("test", map[string]any{
		"name":  "ok",
		"kind":  "B",
		"items": []any{},
	})
	assert.Equal(t, CodeMustBeNonempty, errs.For("items")[0].Code)
	assert.Equal(t, CodeIsRequired, errs.For("variantB")[0].Code)
}

func TestValidateUnknownEnumValue(t *testing.T) {
	v := testValidator()
	errs := v.Validate("test", map[string]any{
		"name":  "ok",
		"kind":  "C",
		"items": []any{map[string]any{"text": "a"}},
	})
	assert.Equal(t, []string{"kind"}, errs.Paths())
	assert.Equal(t, CodeInvalidValue, errs.For("kind")[0].Code)
}

func TestValidateValidDraft(t *testing.T) {
	v := testValidator()
	errs := v.Validate("test", map[string]any{
		"name":     "ok",
		"kind":     "A",
		"link":     "https://example.com",
		"items":    []any{map[string]any{"text": "a"}},
		"variantA": map[string]any{"title": "t"},
	})
	assert.True(t, errs.IsEmpty())
}

func TestValidateIsIdempotent(t *testing.T) {
	v := testValidator()
	draft := map[string]any{"name": "", "kind": "A", "items": []any{}}
	assert.Equal(t, v.Validate("test", draft), v.Validate("test", draft))
}

func TestValidateTypeMismatchIsDataNotPanic(t *testing.T) {
	v := testValidator()
	var errs Errors
	assert.NotPanics(t, func() {
		errs = v.Validate("test", map[string]any{"name": 42, "kind": "A", "items": []any{map[string]any{"text": "a"}}, "variantA": map[string]any{"title": "t"}})
	})
	require.NotEmpty(t, errs.For("name"))
	assert.Equal(t, CodeInvalidFormat, errs.For("name")[0].Code)
}

func TestValidateUnknownSchemaPanics(t *testing.T) {
	v := testValidator()
	assert.Panics(t, func() { v.Validate("nope", map[string]any{}) })
	assert.True(t, v.Has("test"))
	assert.False(t, v.Has("nope"))
}

func TestRegisterRuleReportsConfigurationErrors(t *testing.T) {
	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")

	err := registerRule(validator.New(), trans, "", notBlank, "{0} is odd")
	assert.Error(t, err)

	err = registerRule(validator.New(), trans, "odd", nil, "{0} is odd")
	assert.Error(t, err)

	require.NoError(t, registerRule(validator.New(), trans, "odd", notBlank, "{0} is odd"))
}
