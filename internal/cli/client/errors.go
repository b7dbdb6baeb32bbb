package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

// APIError is a non-2xx response reduced to one human-readable message
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Message: FormatErrorMessage(statusCode, body)}
}

// errorPayload is the backend's error body: detail is either a message or a
// list of field-level problems
type errorPayload struct {
	Detail any `json:"detail"`
}

// FormatErrorMessage turns an error body into a single message. A list of
// field problems becomes "loc.path: msg" items joined by "; " with the "body"
// location segment left out. A plain detail string is used as is. Anything
// else falls back to "Request failed with status N".
func FormatErrorMessage(statusCode int, body []byte) string {
	fallback := fmt.Sprintf("Request failed with status %d", statusCode)

	var payload errorPayload
	if len(body) == 0 || sonic.Unmarshal(body, &payload) != nil {
		return fallback
	}

	switch detail := payload.Detail.(type) {
	case string:
		if detail == "" {
			return fallback
		}
		return detail
	case []any:
		items := make([]string, 0, len(detail))
		for _, raw := range detail {
			items = append(items, formatDetail(toErrorDetail(raw)))
		}
		if msg := strings.Join(items, "; "); msg != "" {
			return msg
		}
	}
	return fallback
}

func toErrorDetail(raw any) types.ErrorDetail {
	var d types.ErrorDetail
	item, ok := raw.(map[string]any)
	if !ok {
		return d
	}
	if loc, ok := item["loc"].([]any); ok {
		d.Loc = loc
	}
	if msg, ok := item["msg"].(string); ok {
		d.Msg = msg
	}
	return d
}

func formatDetail(d types.ErrorDetail) string {
	parts := make([]string, 0, len(d.Loc))
	for _, p := range d.Loc {
		if s, ok := p.(string); ok && s == "body" {
			continue
		}
		parts = append(parts, fmt.Sprint(p))
	}

	msg := d.Msg
	if msg == "" {
		msg = "Invalid value"
	}
	if len(parts) == 0 {
		return msg
	}
	return strings.Join(parts, ".") + ": " + msg
}
