package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors returned by the client. Backend responses surface as *Error,
// which matches ErrUnauthorized, ErrNotFound and ErrServer through errors.Is.
var (
	ErrInvalidURL       = errors.New("apiclient.invalid_url")
	ErrInvalidRequest   = errors.New("apiclient.invalid_request")
	ErrRequestFailed    = errors.New("apiclient.request_failed")
	ErrDecodeResponse   = errors.New("apiclient.decode_failed")
	ErrUnauthorized     = errors.New("apiclient.unauthorized")
	ErrNotFound         = errors.New("apiclient.not_found")
	ErrServer           = errors.New("apiclient.server_error")
	ErrNoCredentials    = errors.New("apiclient.no_credentials")
	ErrSessionExpired   = errors.New("apiclient.session_expired")
	ErrSuperseded       = errors.New("apiclient.credentials_superseded")
	ErrValidationFailed = errors.New("apiclient.validation_failed")
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("apiclient: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("apiclient: %d %s", e.StatusCode, e.Detail)
}

// Is maps status codes onto the package sentinels so callers can write
// errors.Is(err, apiclient.ErrUnauthorized).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message extracts the user-facing text from err: the backend's detail, or a
// description of a client-side validation failure. Anything else yields fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return validationMessage(verrs)
	}
	return fallback
}

type validationItem struct {
	Msg string `json:"msg"`
}

// parseDetail handles both {"detail": "text"} and the list form
// {"detail": [{"msg": "..."}, ...]} produced by request validation.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var items []validationItem
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func validationMessage(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
