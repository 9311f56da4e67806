// Package pipeline drives a recipe end to end: placeholder substitution,
// ordered concurrent fetch, sandboxed transform, item validation, and
// encoding, with the schema identifier derived alongside.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"attestry/internal/query"
	"attestry/internal/recipe"
	"attestry/internal/schema"
)

// Fetcher is the query fetch adapter boundary. Implementations receive
// queries whose variables still carry placeholders and are expected to
// substitute the user context before dispatch.
type Fetcher interface {
	FetchAll(ctx context.Context, queries []recipe.Query, uctx query.UserContext) ([]json.RawMessage, error)
}

// Executor is the sandboxed transform boundary: one serialized result set
// in, one dumped value out.
type Executor interface {
	Execute(ctx context.Context, script string, results []json.RawMessage) (interface{}, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	Items   []schema.Item
	Encoded []byte
	UID     schema.UID
}

// Runner wires the pipeline stages together.
type Runner struct {
	fetcher  Fetcher
	executor Executor
	encoder  schema.Encoder
	log      *zap.Logger
}

// NewRunner builds a Runner. A nil encoder defaults to the canonical JSON
// encoder.
func NewRunner(fetcher Fetcher, executor Executor, encoder schema.Encoder, log *zap.Logger) *Runner {
	if encoder == nil {
		encoder = schema.CanonicalEncoder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{fetcher: fetcher, executor: executor, encoder: encoder, log: log}
}

// Run executes the full pipeline for one recipe and user context. The
// identifier derivation depends only on the static declaration, so it runs
// concurrently with the fetch/transform leg. Errors surface to the caller
// unchanged; an empty transform result is always an error, never an empty
// attestation.
func (r *Runner) Run(ctx context.Context, rec *recipe.Recipe, uctx query.UserContext) (*Result, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := r.log.With(zap.String("recipe", rec.Name))

	var result Result
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		uid, err := schema.DeriveUID(rec.Schema, rec.Resolver, rec.Revokable)
		if err != nil {
			return err
		}
		result.UID = uid
		return nil
	})

	eg.Go(func() error {
		responses, err := r.fetcher.FetchAll(egCtx, rec.Queries, uctx)
		if err != nil {
			return err
		}
		log.Debug("queries fetched", zap.Int("count", len(responses)), zap.Duration("elapsed", time.Since(start)))

		out, err := r.executor.Execute(egCtx, rec.Transform, responses)
		if err != nil {
			return err
		}
		text, ok := out.(string)
		if !ok {
			return &schema.ValidationError{Constraint: fmt.Sprintf("transform result must be a string, got %T", out)}
		}

		items, err := schema.ParseItems(text)
		if err != nil {
			return err
		}
		log.Debug("items validated", zap.Int("count", len(items)))

		encoded, err := r.encoder.Encode(items, rec.Schema)
		if err != nil {
			return err
		}
		result.Items = items
		result.Encoded = encoded
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	log.Info("pipeline complete",
		zap.String("uid", result.UID.Hex()),
		zap.Int("items", len(result.Items)),
		zap.Duration("elapsed", time.Since(start)))
	return &result, nil
}
