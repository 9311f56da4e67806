package schema

import "fmt"

// ValidationError reports transform output that violates the item
// contract. It names the violated constraint and fails the whole batch
// atomically; partial item sets are never returned.
type ValidationError struct {
	Constraint string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transform output: %s", e.Constraint)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EncodingError reports an encoder that rejected already-validated items
// against the schema description. It is surfaced unchanged and never
// retried.
type EncodingError struct {
	Schema string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode items against schema %q: %v", e.Schema, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
