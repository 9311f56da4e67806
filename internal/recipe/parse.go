package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// declarationSchema is the structural contract for recipe documents.
// additionalProperties is false throughout: unknown fields are an error,
// not ignored.
const declarationSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["name", "queries", "transform", "schema", "resolver", "revokable"],
	"properties": {
		"name": {"type": "string"},
		"display_name": {"type": "string"},
		"description": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"queries": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["endpoint", "query"],
				"properties": {
					"endpoint": {"type": "string"},
					"query": {"type": "string"},
					"variables": {"type": "object"}
				}
			}
		},
		"transform": {"type": "string"},
		"schema": {"type": "string"},
		"resolver": {"type": "string"},
		"revokable": {"type": "boolean"}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, schemaErr = compiler.Compile([]byte(declarationSchema))
	})
	return compiledSchema, schemaErr
}

// Parse decodes and validates a recipe document. Validation is strict and
// rejecting: structural violations (missing fields, unknown fields, wrong
// types) and semantic violations (name grammar, resolver format,
// revokable=true) all yield a DeclarationError.
func Parse(data []byte) (*Recipe, error) {
	schema, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("compile declaration schema: %w", err)
	}
	result := schema.ValidateJSON(data)
	if !result.IsValid() {
		return nil, &DeclarationError{Detail: fmt.Sprintf("document does not match declaration schema: %v", result.Errors)}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, &DeclarationError{Detail: "malformed recipe document", Err: err}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseFile reads and parses a recipe document from disk.
func ParseFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	return Parse(data)
}
