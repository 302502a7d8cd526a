package models

import (
	"errors"
	"fmt"
)

// ErrNotConfigured signals a missing endpoint or API key. It is raised
// before any network attempt and recovery is user action, never a retry.
var ErrNotConfigured = errors.New("api endpoint not configured")

// ErrBadResponse signals a response that arrived but could not be decoded
// or was missing expected fields. Logged distinctly from transport errors.
var ErrBadResponse = errors.New("malformed model response")

// HTTPError is a non-2xx reply from the model endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("model endpoint returned status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("model endpoint returned status %d", e.Status)
}
