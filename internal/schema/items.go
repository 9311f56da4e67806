package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Item is one named, typed attestation field. Items are constructed only
// during validation of transform output and never mutated afterwards.
type Item struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value Value  `json:"value"`
}

// ParseItems validates the raw string produced by the transform stage and
// returns the ordered item sequence. Validation is all-or-nothing: the
// first violated constraint fails the whole batch, and an empty result is
// never valid (every recipe must assert at least one field).
func ParseItems(raw string) ([]Item, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{Constraint: "transform produced no output"}
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, &ValidationError{Constraint: "transform output is not valid JSON", Err: err}
	}

	arr, ok := parsed.([]interface{})
	if !ok {
		return nil, &ValidationError{Constraint: fmt.Sprintf("transform output must be a JSON array, got %s", jsonKind(parsed))}
	}
	if len(arr) == 0 {
		return nil, &ValidationError{Constraint: "transform output is an empty array; at least one item is required"}
	}

	items := make([]Item, 0, len(arr))
	for i, el := range arr {
		item, err := parseItem(el)
		if err != nil {
			return nil, &ValidationError{Constraint: fmt.Sprintf("item %d: %v", i, err)}
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(el interface{}) (Item, error) {
	obj, ok := el.(map[string]interface{})
	if !ok {
		return Item{}, fmt.Errorf("must be an object, got %s", jsonKind(el))
	}
	for key := range obj {
		switch key {
		case "name", "type", "value":
		default:
			return Item{}, fmt.Errorf("unknown field %q", key)
		}
	}

	name, ok := obj["name"].(string)
	if !ok || name == "" {
		return Item{}, fmt.Errorf("name must be a non-empty string")
	}
	typ, ok := obj["type"].(string)
	if !ok || typ == "" {
		return Item{}, fmt.Errorf("type must be a non-empty string")
	}
	rawValue, ok := obj["value"]
	if !ok {
		return Item{}, fmt.Errorf("value is required")
	}
	value, err := classifyValue(rawValue)
	if err != nil {
		return Item{}, fmt.Errorf("value: %v", err)
	}
	return Item{Name: name, Type: typ, Value: value}, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
