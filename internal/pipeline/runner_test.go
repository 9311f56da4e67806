package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attestry/internal/query"
	"attestry/internal/recipe"
	"attestry/internal/sandbox"
	"attestry/internal/schema"
)

type stubFetcher struct {
	results []json.RawMessage
	err     error
	calls   int
}

func (s *stubFetcher) FetchAll(ctx context.Context, queries []recipe.Query, uctx query.UserContext) ([]json.RawMessage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubExecutor struct {
	out       interface{}
	err       error
	gotScript string
}

func (s *stubExecutor) Execute(ctx context.Context, script string, results []json.RawMessage) (interface{}, error) {
	s.gotScript = script
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func testRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Name: "test-recipe",
		Queries: []recipe.Query{{
			Endpoint: "https://example.org/graphql",
			Query:    "query { ok }",
		}},
		Transform: `return out`,
		Schema:    "bool ok",
		Resolver:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	}
}

func TestRunSuccess(t *testing.T) {
	fetcher := &stubFetcher{results: []json.RawMessage{json.RawMessage(`{"data":{}}`)}}
	executor := &stubExecutor{out: `[{"name":"ok","type":"bool","value":true}]`}
	runner := NewRunner(fetcher, executor, nil, nil)

	rec := testRecipe()
	result, err := runner.Run(context.Background(), rec, query.UserContext{})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "ok", result.Items[0].Name)
	assert.NotEmpty(t, result.Encoded)
	assert.Equal(t, rec.Transform, executor.gotScript)

	wantUID, err := schema.DeriveUID(rec.Schema, rec.Resolver, rec.Revokable)
	require.NoError(t, err)
	assert.Equal(t, wantUID, result.UID)
}

func TestRunRejectsInvalidDeclarationBeforeFetching(t *testing.T) {
	fetcher := &stubFetcher{}
	executor := &stubExecutor{}
	runner := NewRunner(fetcher, executor, nil, nil)

	rec := testRecipe()
	rec.Revokable = true
	_, err := runner.Run(context.Background(), rec, query.UserContext{})
	require.Error(t, err)

	var decl *recipe.DeclarationError
	assert.True(t, errors.As(err, &decl))
	assert.Zero(t, fetcher.calls, "pipeline must not start on a bad declaration")
}

func TestRunPropagatesFetchError(t *testing.T) {
	wantErr := errors.New("endpoint down")
	runner := NewRunner(&stubFetcher{err: wantErr}, &stubExecutor{}, nil, nil)

	_, err := runner.Run(context.Background(), testRecipe(), query.UserContext{})
	assert.ErrorIs(t, err, wantErr)
}

func TestRunPropagatesScriptError(t *testing.T) {
	scriptErr := &sandbox.ScriptError{Value: "boom"}
	fetcher := &stubFetcher{results: []json.RawMessage{json.RawMessage(`{}`)}}
	runner := NewRunner(fetcher, &stubExecutor{err: scriptErr}, nil, nil)

	_, err := runner.Run(context.Background(), testRecipe(), query.UserContext{})
	require.Error(t, err)

	var serr *sandbox.ScriptError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "boom", serr.Value)
}

func TestRunNonStringTransformResult(t *testing.T) {
	fetcher := &stubFetcher{results: []json.RawMessage{json.RawMessage(`{}`)}}
	runner := NewRunner(fetcher, &stubExecutor{out: 42}, nil, nil)

	_, err := runner.Run(context.Background(), testRecipe(), query.UserContext{})
	require.Error(t, err)

	var verr *schema.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRunEmptyItemArrayIsError(t *testing.T) {
	fetcher := &stubFetcher{results: []json.RawMessage{json.RawMessage(`{}`)}}
	runner := NewRunner(fetcher, &stubExecutor{out: `[]`}, nil, nil)

	_, err := runner.Run(context.Background(), testRecipe(), query.UserContext{})
	require.Error(t, err)

	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Constraint, "empty")
}
