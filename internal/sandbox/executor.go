// Package sandbox executes author-supplied transform scripts inside an
// isolated in-process interpreter. Scripts are untrusted: they never run
// with host privileges, and the only channels across the boundary are one
// serialized string in and one dumped value out.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

// Scripts are function bodies, not full declarations. The executor wraps
// the body in an implicit function and an implicit invocation; the body
// sees the per-query payloads bound to the conventional local queryResult
// and must end by returning a value (for the pipeline contract, the JSON
// text of the item array as a string).
//
// The wrapper's import block is the complete capability surface of the
// sandbox. Every package in it is pure computation: no os, os/exec, net,
// net/http, io, syscall or unsafe. A body cannot add imports of its own,
// since imports are only legal at file level.
const bodyMarker = "//__TRANSFORM_BODY__"

const wrapperSource = `package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var _ = []interface{}{
	json.Valid, fmt.Sprint, math.Abs, big.NewInt,
	regexp.QuoteMeta, sort.Strings, strconv.Itoa, strings.TrimSpace,
}

func run(raw string) interface{} {
	var responses []interface{}
	if err := json.Unmarshal([]byte(raw), &responses); err != nil {
		panic(fmt.Sprintf("decode query results: %v", err))
	}
	queryResult := make([]interface{}, 0, len(responses))
	for _, response := range responses {
		if obj, ok := response.(map[string]interface{}); ok {
			queryResult = append(queryResult, obj["data"])
		} else {
			queryResult = append(queryResult, response)
		}
	}
	_ = queryResult
	return func() interface{} {
		//__TRANSFORM_BODY__
	}()
}
`

// Executor runs transform scripts. Each invocation constructs a fresh
// interpreter that is dropped on every exit path; interpreters are never
// pooled or shared, so no state survives between invocations.
type Executor struct {
	timeout time.Duration
	log     *zap.Logger
}

// New returns an Executor. A zero timeout disables the deadline; when set,
// the deadline interrupts the interpreter's evaluation loop itself rather
// than relying on the caller to poll.
func New(timeout time.Duration, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{timeout: timeout, log: log}
}

// Execute runs the script body against the aggregated query results and
// returns the dumped final value. The results are serialized to a single
// JSON string before crossing into the sandbox; no live object graph is
// shared. A script that panics surfaces its own panic value as a
// *ScriptError, never a generic wrapper.
func (e *Executor) Execute(ctx context.Context, script string, results []json.RawMessage) (interface{}, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("serialize query results: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load interpreter symbols: %w", err)
	}

	src := strings.Replace(wrapperSource, bodyMarker, script, 1)
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return nil, asScriptError(err)
	}

	call := "transform.run(" + strconv.Quote(string(payload)) + ")"
	v, err := i.EvalWithContext(ctx, call)
	if err != nil {
		return nil, asScriptError(err)
	}

	e.log.Debug("transform script completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("queries", len(results)))

	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}
