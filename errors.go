package dentcloud

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is matched by every *KeyError.
var ErrUnknownKey = errors.New("unknown field name")

// KeyError reports a field name outside the known taxonomy.
type KeyError struct {
	Raw string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("dentcloud: %v %q", ErrUnknownKey, e.Raw)
}

func (e *KeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// APIError is returned when the API answered with {"success": false, "error": ...}.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "dentcloud: api error: " + e.Message
}

// ParseError is returned when a response body matched neither the expected
// shape nor the error envelope. Err is the failure against the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dentcloud: failed to decode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any HTTP status outside 2xx.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dentcloud: unexpected status code %d from %s", e.StatusCode, e.URL)
}

// missingFieldError is used by the envelope decoders for required fields.
type missingFieldError struct {
	shape string
	field string
}

func (e *missingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.shape, e.field)
}
