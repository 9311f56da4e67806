// Package schema defines the typed attestation fields produced by the
// transform stage, their validation against the permitted value shapes,
// the deterministic schema identifier, and the encoder boundary.
package schema

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ValueKind discriminates the closed set of permitted field value shapes.
type ValueKind int

const (
	// KindString is a string scalar.
	KindString ValueKind = iota
	// KindBool is a boolean scalar.
	KindBool
	// KindNumber is a floating-point numeric scalar.
	KindNumber
	// KindBigInt is an arbitrary-precision integer scalar.
	KindBigInt
	// KindRecord is an arbitrary keyed record.
	KindRecord
	// KindRecordArray is an array of keyed records.
	KindRecordArray
	// KindArray is an array of arbitrary elements.
	KindArray
)

// Value is one permitted field value: a scalar, a record, or an array.
// Anything outside this closed union is rejected during validation.
type Value struct {
	Kind    ValueKind
	Str     string
	Bool    bool
	Num     float64
	Int     *big.Int
	Record  map[string]interface{}
	Records []map[string]interface{}
	Array   []interface{}
}

// classifyValue maps a decoded JSON value (numbers as json.Number) onto
// the Value union. The rejection rule is a finite case match.
func classifyValue(raw interface{}) (Value, error) {
	switch val := raw.(type) {
	case string:
		return Value{Kind: KindString, Str: val}, nil
	case bool:
		return Value{Kind: KindBool, Bool: val}, nil
	case json.Number:
		return classifyNumber(val)
	case map[string]interface{}:
		return Value{Kind: KindRecord, Record: val}, nil
	case []interface{}:
		return classifyArray(val), nil
	case nil:
		return Value{}, fmt.Errorf("null is not a permitted value")
	default:
		return Value{}, fmt.Errorf("value of type %T is not permitted", raw)
	}
}

func classifyNumber(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Value{}, fmt.Errorf("malformed integer %q", s)
		}
		return Value{Kind: KindBigInt, Int: i}, nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("malformed number %q: %w", s, err)
	}
	return Value{Kind: KindNumber, Num: f}, nil
}

func classifyArray(arr []interface{}) Value {
	if len(arr) > 0 {
		records := make([]map[string]interface{}, 0, len(arr))
		for _, el := range arr {
			rec, ok := el.(map[string]interface{})
			if !ok {
				return Value{Kind: KindArray, Array: arr}
			}
			records = append(records, rec)
		}
		return Value{Kind: KindRecordArray, Records: records}
	}
	return Value{Kind: KindArray, Array: arr}
}

// MarshalJSON renders the underlying value in its plain JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBigInt:
		return []byte(v.Int.String()), nil
	case KindRecord:
		return json.Marshal(v.Record)
	case KindRecordArray:
		return json.Marshal(v.Records)
	case KindArray:
		return json.Marshal(v.Array)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}
