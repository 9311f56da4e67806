package recipe

import "fmt"

// DeclarationError reports a recipe document that failed structural or
// semantic validation. It is surfaced before any fetch or script execution
// takes place.
type DeclarationError struct {
	Field  string
	Detail string
	Err    error
}

func (e *DeclarationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid recipe: %s", e.Detail)
	}
	return fmt.Sprintf("invalid recipe: %s: %s", e.Field, e.Detail)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}
