package connector

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QueryError is a dialect-level failure reported inside a response body.
type QueryError struct {
	// Code is the backend error code, e.g. "MalformedQueryException".
	Code string

	// Message is the backend's detailed message.
	Message string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("query failed: %s", e.Message)
	}
	return fmt.Sprintf("query failed: %s: %s", e.Code, e.Message)
}

// Unwrap returns ErrQueryFailed.
func (e *QueryError) Unwrap() error {
	return ErrQueryFailed
}

type errorShape struct {
	Code            json.RawMessage `json:"code"`
	DetailedMessage *string         `json:"detailedMessage"`
	Error           json.RawMessage `json:"error"`
}

// CheckResponse returns a *QueryError when body is an error-shaped JSON
// object: {"code": ..., "detailedMessage": ...} or {"error": ...}.
// Any other body, including non-JSON text, is accepted.
func CheckResponse(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var shape errorShape
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return nil
	}

	if shape.DetailedMessage != nil {
		return &QueryError{Code: rawText(shape.Code), Message: *shape.DetailedMessage}
	}

	if len(shape.Error) > 0 && !bytes.Equal(shape.Error, []byte("null")) {
		var nested struct {
			Code    json.RawMessage `json:"code"`
			Message string          `json:"message"`
		}
		if err := json.Unmarshal(shape.Error, &nested); err == nil && nested.Message != "" {
			return &QueryError{Code: rawText(nested.Code), Message: nested.Message}
		}
		return &QueryError{Message: rawText(shape.Error)}
	}

	return nil
}

// rawText renders a JSON scalar without quotes.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
