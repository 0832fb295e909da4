package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one backend-reported validation failure tied to a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the single error type surfaced for non-2xx backend responses.
// The backend's `detail` payload is duck-typed (a plain string or an array of
// field-error objects with varying key names); it is normalized here once so
// call sites never sniff response shapes.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("api error (%d): %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Unauthorized reports whether the error is a terminal 401 from the backend.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// detailItem covers the error-object shapes the backend emits: `msg` with a
// `loc` path, or a bare `message`/`field` pair.
type detailItem struct {
	Loc     []json.RawMessage `json:"loc"`
	Msg     string            `json:"msg"`
	Message string            `json:"message"`
	Field   string            `json:"field"`
}

// parseAPIError builds an APIError from a non-2xx response body.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	if len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil {
		apiErr.Message = message
		return apiErr
	}

	var items []detailItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		for _, item := range items {
			fe := FieldError{Field: item.Field, Message: item.Msg}
			if fe.Message == "" {
				fe.Message = item.Message
			}
			if fe.Field == "" && len(item.Loc) > 0 {
				// loc is a path like ["body", "email"]; the last element
				// names the field.
				var name string
				if json.Unmarshal(item.Loc[len(item.Loc)-1], &name) == nil {
					fe.Field = name
				}
			}
			if fe.Message != "" {
				apiErr.Fields = append(apiErr.Fields, fe)
			}
		}
		if len(apiErr.Fields) > 0 {
			apiErr.Message = apiErr.Fields[0].Message
		}
	}

	return apiErr
}
