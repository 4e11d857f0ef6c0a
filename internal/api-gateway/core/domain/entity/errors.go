package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// UpstreamError reports a transport failure or a non-success response from the
// product API. Payload holds the upstream body when it was valid JSON.
type UpstreamError struct {
	StatusCode int
	Message    string
	Payload    json.RawMessage
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.StatusCode)
	}
	return "upstream: " + e.Message
}

// Details returns what should be shown to callers about the failure: the
// upstream payload when there is one, else the message.
func (e *UpstreamError) Details() any {
	if len(e.Payload) > 0 {
		return e.Payload
	}
	return e.Message
}
