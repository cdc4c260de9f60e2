package evaluation

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is returned for every call when no credential was configured.
// It is permanent for the lifetime of the process.
var ErrServiceUnavailable = errors.New("evaluation service unavailable: no API key configured")

// GenerationError wraps a transport or endpoint failure. The caller may retry.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the endpoint answered but broke the response contract.
type MalformedResponseError struct {
	Op     string
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}
