// Package recipe defines the attestation recipe declaration and its
// strict, rejecting validation. A recipe is parsed once from author input
// and treated as an immutable value for the remainder of the pipeline.
package recipe

import (
	"fmt"
	"regexp"

	"attestry/internal/query"
)

// Query is one remote fetch declared by a recipe: a query document sent to
// an endpoint together with its (possibly placeholder-bearing) variables.
type Query struct {
	Endpoint  string          `json:"endpoint"`
	Query     string          `json:"query"`
	Variables query.Variables `json:"variables"`
}

// Recipe declares a full attestation pipeline: the queries to fetch, the
// transform script to run over their results, and the output schema the
// resulting items must encode into.
type Recipe struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Queries     []Query  `json:"queries"`
	Transform   string   `json:"transform"`
	Schema      string   `json:"schema"`
	Resolver    string   `json:"resolver"`
	Revokable   bool     `json:"revokable"`
}

const (
	nameMinLen = 3
	nameMaxLen = 50
)

var (
	// Lowercase alphanumerics with internal hyphens. The first character
	// must be a letter, the last must not be a hyphen.
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

	resolverPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// Validate applies the semantic declaration checks. Structural checks
// (required fields, unknown fields) are handled by Parse before this runs.
func (r *Recipe) Validate() error {
	if len(r.Name) < nameMinLen || len(r.Name) > nameMaxLen {
		return &DeclarationError{Field: "name", Detail: fmt.Sprintf("must be %d-%d characters, got %d", nameMinLen, nameMaxLen, len(r.Name))}
	}
	if !namePattern.MatchString(r.Name) {
		return &DeclarationError{Field: "name", Detail: "must be lowercase alphanumerics with internal hyphens"}
	}
	if len(r.Queries) == 0 {
		return &DeclarationError{Field: "queries", Detail: "at least one query is required"}
	}
	for i, q := range r.Queries {
		if q.Endpoint == "" {
			return &DeclarationError{Field: fmt.Sprintf("queries[%d].endpoint", i), Detail: "must not be empty"}
		}
		if q.Query == "" {
			return &DeclarationError{Field: fmt.Sprintf("queries[%d].query", i), Detail: "must not be empty"}
		}
	}
	if r.Transform == "" {
		return &DeclarationError{Field: "transform", Detail: "must not be empty"}
	}
	if r.Schema == "" {
		return &DeclarationError{Field: "schema", Detail: "must not be empty"}
	}
	if !resolverPattern.MatchString(r.Resolver) {
		return &DeclarationError{Field: "resolver", Detail: "must be a 0x-prefixed 20-byte hex address"}
	}
	if r.Revokable {
		return &DeclarationError{Field: "revokable", Detail: "revocation is not supported; revokable must be false"}
	}
	return nil
}
