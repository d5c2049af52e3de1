package assembly

import "fmt"

// ParseError represents probe output that is not a single JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// EncodeError represents a value that could not be encoded into the document
type EncodeError struct {
	Key   string
	Cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode error for key %q: %v", e.Key, e.Cause)
}

func (e *EncodeError) Unwrap() error {
	return e.Cause
}
