// Package query models the variable structures attached to recipe queries
// and the substitution of per-user context into them.
package query

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the permitted variable value shapes.
type Kind int

const (
	// KindMap is a nested variable structure. It is the zero value, so a
	// query declared without variables behaves as an empty map.
	KindMap Kind = iota
	// KindString is a plain string leaf, possibly containing placeholders.
	KindString
	// KindNumber is a numeric leaf.
	KindNumber
)

// Variables is one node of a query's variable tree: a string leaf, a
// numeric leaf, or a map of named children. The tree is produced by parsing
// a finite JSON literal, so it contains no cycles and traversal terminates.
type Variables struct {
	Kind Kind
	Str  string
	Num  float64
	Map  map[string]Variables
}

// String returns a string-leaf node.
func String(s string) Variables {
	return Variables{Kind: KindString, Str: s}
}

// Number returns a numeric-leaf node.
func Number(n float64) Variables {
	return Variables{Kind: KindNumber, Num: n}
}

// Map returns a nested node with the given children.
func Map(children map[string]Variables) Variables {
	return Variables{Kind: KindMap, Map: children}
}

// UnmarshalJSON decodes a variable tree from its JSON literal form.
// Only strings, numbers and objects are permitted; arrays, booleans and
// null have no meaning as query variables and are rejected.
func (v *Variables) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromLiteral(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON renders the tree back into the literal form expected by the
// query endpoint.
func (v Variables) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindMap:
		if v.Map == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Map)
	default:
		return nil, fmt.Errorf("unknown variable kind %d", v.Kind)
	}
}

// Keys returns the sorted child names of a map node. Leaf nodes have none.
func (v Variables) Keys() []string {
	if v.Kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.Map))
	for k := range v.Map {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fromLiteral(raw interface{}) (Variables, error) {
	switch val := raw.(type) {
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case map[string]interface{}:
		children := make(map[string]Variables, len(val))
		for k, child := range val {
			parsed, err := fromLiteral(child)
			if err != nil {
				return Variables{}, fmt.Errorf("variable %q: %w", k, err)
			}
			children[k] = parsed
		}
		return Map(children), nil
	default:
		return Variables{}, fmt.Errorf("unsupported variable value of type %T", raw)
	}
}
