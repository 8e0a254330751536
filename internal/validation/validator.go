// Package validation runs declarative draft validation and decides which
// errors a user should see.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Pruner is implemented by draft structs that carry inactive polymorphic
// variants (e.g. both basis kinds of a justification). Validation prunes
// them first so only the active variant is checked.
type Pruner interface {
	PruneInactive()
}

// Validator validates JSON-shaped drafts against registered struct schemas.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	schemas  map[string]func() any
}

// New builds a Validator with English messages and the custom rules drafts
// rely on.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("validation: register translations: %v", err))
	}

	if err := registerRule(v, trans, "notblank", notBlank, "{0} must not be blank"); err != nil {
		panic(fmt.Sprintf("validation: %v", err))
	}

	return &Validator{
		validate: v,
		trans:    trans,
		schemas:  make(map[string]func() any),
	}
}

// Register binds a schema id to a constructor returning a pointer to a
// tagged draft struct.
func (v *Validator) Register(schemaID string, prototype func() any) {
	v.schemas[schemaID] = prototype
}

// Has reports whether a schema id is registered.
func (v *Validator) Has(schemaID string) bool {
	_, ok := v.schemas[schemaID]
	return ok
}

// Validate checks draft against the schema registered under schemaID.
// An unknown schema id is a configuration error and panics. Anything wrong
// with the draft itself comes back as data.
func (v *Validator) Validate(schemaID string, draft any) Errors {
	proto, ok := v.schemas[schemaID]
	if !ok {
		panic(fmt.Sprintf("validation: unknown schema id %q", schemaID))
	}

	var out Errors
	target := proto()

	data, err := json.Marshal(draft)
	if err != nil {
		out.add("", Error{Code: CodeInvalidFormat, Message: err.Error()})
		return out
	}
	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			out.add(typeErr.Field, Error{
				Code:    CodeInvalidFormat,
				Message: fmt.Sprintf("%s must be a %s", fieldLabel(typeErr.Field), typeErr.Type.Kind()),
			})
		} else {
			out.add("", Error{Code: CodeInvalidFormat, Message: err.Error()})
			return out
		}
	}

	if p, ok := target.(Pruner); ok {
		p.PruneInactive()
	}

	err = v.validate.Struct(target)
	var fieldErrs validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			out.add(stripRoot(fe.Namespace()), Error{
				Code:    codeFor(fe),
				Message: fe.Translate(v.trans),
			})
		}
	default:
		panic(fmt.Sprintf("validation: schema %q is not a struct pointer: %v", schemaID, err))
	}
	return out
}

// registerRule adds a custom tag together with its English message.
func registerRule(v *validator.Validate, trans ut.Translator, tag string, fn validator.Func, message string) error {
	if err := v.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register %q: %w", tag, err)
	}
	err := v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		})
	if err != nil {
		return fmt.Errorf("register %q translation: %w", tag, err)
	}
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

// codeFor maps validator tags onto the error codes the server also uses.
func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return CodeIsRequired
	case "notblank":
		return CodeMustBeNonempty
	case "min":
		if fe.Kind() == reflect.Slice && fe.Param() == "1" {
			return CodeMustBeNonempty
		}
		return CodeTooShort
	case "max":
		return CodeExceedsLength
	case "url", "http_url":
		return CodeInvalidURL
	default:
		return CodeInvalidValue
	}
}

// stripRoot turns "JustificationDraft.basis.type" into "basis.type".
func stripRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return ""
}

func fieldLabel(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
