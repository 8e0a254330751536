package validation

import (
	"log/slog"
	"sort"
)

// --- Error Codes ---

const (
	CodeIsRequired     = "IS_REQUIRED"
	CodeMustBeNonempty = "MUST_BE_NONEMPTY"
	CodeExceedsLength  = "EXCEEDS_LENGTH"
	CodeTooShort       = "TOO_SHORT"
	CodeInvalidValue   = "INVALID_VALUE"
	CodeInvalidURL     = "INVALID_URL"
	CodeInvalidFormat  = "INVALID_FORMAT"
)

// Error is one problem with a draft, client or server reported.
type Error struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Errors holds entity-level errors and per-field errors keyed by canonical
// field path (see fieldpath.Path.String).
type Errors struct {
	Model  []Error            `json:"modelErrors,omitempty" yaml:"modelErrors,omitempty"`
	Fields map[string][]Error `json:"fieldErrors,omitempty" yaml:"fieldErrors,omitempty"`
}

// IsEmpty reports whether there are no errors at all.
func (e Errors) IsEmpty() bool {
	return len(e.Model) == 0 && e.Count() == 0
}

// For returns the errors for a single field path.
func (e Errors) For(path string) []Error {
	return e.Fields[path]
}

// Count returns the number of fields with at least one error.
func (e Errors) Count() int {
	n := 0
	for _, errs := range e.Fields {
		if len(errs) > 0 {
			n++
		}
	}
	return n
}

// Paths returns the erroneous field paths in sorted order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for p, errs := range e.Fields {
		if len(errs) > 0 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Without returns a copy with the errors for path dropped.
func (e Errors) Without(path string) Errors {
	if _, ok := e.Fields[path]; !ok {
		return e
	}
	out := Errors{Model: e.Model, Fields: make(map[string][]Error, len(e.Fields))}
	for p, errs := range e.Fields {
		if p != path {
			out.Fields[p] = errs
		}
	}
	return out
}

func (e *Errors) add(path string, err Error) {
	if path == "" {
		e.Model = append(e.Model, err)
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]Error)
	}
	e.Fields[path] = append(e.Fields[path], err)
}

// --- Merging ---

// Merge combines client and server errors. The server is authoritative: for
// any field it reports, its errors replace the client's. Server field errors
// the client validator did not predict are logged as schema drift.
func Merge(client, server Errors, logger *slog.Logger) Errors {
	if logger == nil {
		logger = slog.Default()
	}

	out := Errors{Fields: make(map[string][]Error)}
	for path, errs := range client.Fields {
		if len(errs) > 0 {
			out.Fields[path] = append([]Error(nil), errs...)
		}
	}
	for _, path := range server.Paths() {
		if len(client.Fields[path]) == 0 {
			logger.Warn("server reported a field error the client validator did not predict",
				slog.String("field", path),
				slog.String("code", server.Fields[path][0].Code))
		}
		out.Fields[path] = append([]Error(nil), server.Fields[path]...)
	}
	if len(out.Fields) == 0 {
		out.Fields = nil
	}

	seen := make(map[Error]bool)
	for _, err := range append(append([]Error(nil), client.Model...), server.Model...) {
		if !seen[err] {
			seen[err] = true
			out.Model = append(out.Model, err)
		}
	}
	return out
}

// --- Visibility ---

// Visible is the display policy: a field's errors show once the user has
// attempted to submit, or has both modified and left the field.
func Visible(path string, submitted bool, dirty, blurred FieldSet) bool {
	return submitted || (dirty.Has(path) && blurred.Has(path))
}

// VisibleErrors filters errs down to what the policy allows on screen.
// Model errors only show after a submit attempt.
func VisibleErrors(errs Errors, submitted bool, dirty, blurred FieldSet) Errors {
	out := Errors{}
	if submitted {
		out.Model = errs.Model
	}
	for path, fieldErrs := range errs.Fields {
		if len(fieldErrs) > 0 && Visible(path, submitted, dirty, blurred) {
			if out.Fields == nil {
				out.Fields = make(map[string][]Error)
			}
			out.Fields[path] = fieldErrs
		}
	}
	return out
}
