package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gravitrone/howdju/cli/internal/validation"
)

// --- API Response Envelope ---

type apiResponse[T any] struct {
	Data  T       `json:"data"`
	Error *apiErr `json:"error,omitempty"`
}

type apiErr struct {
	Code        string                        `json:"code"`
	Message     string                        `json:"message"`
	FieldErrors map[string][]validation.Error `json:"fieldErrors,omitempty"`
	ModelErrors []validation.Error            `json:"modelErrors,omitempty"`
}

// QueryParams are appended to GET paths.
type QueryParams map[string]string

// --- Errors ---

// Error codes the server reports.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeEntityNotFound    = "ENTITY_NOT_FOUND"
	CodeAuthentication    = "AUTHENTICATION_ERROR"
	CodeEntityConflict    = "ENTITY_CONFLICT"
	CodeUnexpectedFailure = "UNEXPECTED_ERROR"
)

// Error is a non-2xx API response. Validation failures carry field errors
// keyed by the same canonical paths the client validator uses.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  validation.Errors
}

func (e *Error) Error() string {
	msg, ok := formatAPIError(e.Code, e.Message)
	if !ok {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return msg
}

// ValidationErrors exposes server field errors to the editor store.
func (e *Error) ValidationErrors() (validation.Errors, bool) {
	if e.Code != CodeValidation || e.Fields.IsEmpty() {
		return validation.Errors{}, false
	}
	return e.Fields, true
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var target *Error
	return errors.As(err, &target) && target.Status == http.StatusNotFound
}

func parseError(status int, body []byte) *Error {
	out := &Error{Status: status}

	var envelope apiResponse[any]
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		out.Code = strings.TrimSpace(envelope.Error.Code)
		out.Message = strings.TrimSpace(envelope.Error.Message)
		out.Fields = validation.Errors{Model: envelope.Error.ModelErrors, Fields: envelope.Error.FieldErrors}
		return out
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg, ok := parseErrorValue(payload["error"]); ok {
			out.Message = msg
			return out
		}
		if msg, ok := parseErrorValue(payload["detail"]); ok {
			out.Message = msg
			return out
		}
	}
	out.Message = strings.TrimSpace(string(body))
	return out
}

func parseErrorValue(raw any) (string, bool) {
	switch value := raw.(type) {
	case string:
		msg := strings.TrimSpace(value)
		if msg == "" {
			return "", false
		}
		return msg, true
	case map[string]any:
		code, _ := value["code"].(string)
		message, _ := value["message"].(string)
		return formatAPIError(code, message)
	}
	return "", false
}

func formatAPIError(code, message string) (string, bool) {
	code = strings.TrimSpace(code)
	message = strings.TrimSpace(message)
	switch {
	case code != "" && message != "":
		return fmt.Sprintf("%s: %s", code, message), true
	case code != "":
		return code, true
	case message != "":
		return message, true
	default:
		return "", false
	}
}

// --- Auth ---

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by Login.
type Session struct {
	AuthToken string `json:"authToken"`
	Expires   string `json:"expires,omitempty"`
	User      struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		LongName string `json:"longName,omitempty"`
	} `json:"user"`
}

// --- Pagination ---

// PropositionPage is one page of a paginated proposition listing.
type PropositionPage struct {
	Propositions      []map[string]any `json:"propositions"`
	ContinuationToken string           `json:"continuationToken,omitempty"`
}
