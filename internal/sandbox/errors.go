package sandbox

import (
	"errors"
	"fmt"

	"github.com/traefik/yaegi/interp"
)

// ScriptError reports a transform script that failed to evaluate: a syntax
// error, a runtime panic, or an interrupted evaluation. Value carries the
// sandbox-reported panic value verbatim so authors can debug their own
// scripts.
type ScriptError struct {
	Value interface{}
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("transform script failed: %v", e.Value)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func asScriptError(err error) error {
	var p interp.Panic
	if errors.As(err, &p) {
		return &ScriptError{Value: p.Value, Err: err}
	}
	return &ScriptError{Value: err.Error(), Err: err}
}
