package schema

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemsSingleBool(t *testing.T) {
	items, err := ParseItems(`[{"name":"ok","type":"bool","value":true}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "ok", items[0].Name)
	assert.Equal(t, "bool", items[0].Type)
	assert.Equal(t, KindBool, items[0].Value.Kind)
	assert.True(t, items[0].Value.Bool)
}

func TestParseItemsEmptyArrayFails(t *testing.T) {
	_, err := ParseItems(`[]`)
	requireValidationError(t, err, "empty")
}

func TestParseItemsNonArrayFails(t *testing.T) {
	_, err := ParseItems(`{"a":1}`)
	requireValidationError(t, err, "array")
}

func TestParseItemsMalformedJSONFails(t *testing.T) {
	_, err := ParseItems(`[{"name"`)
	requireValidationError(t, err, "JSON")
}

func TestParseItemsEmptyStringFails(t *testing.T) {
	_, err := ParseItems("")
	requireValidationError(t, err, "no output")
}

func TestParseItemsAtomicFailure(t *testing.T) {
	// The second item is malformed; nothing is returned for the first.
	items, err := ParseItems(`[
		{"name":"ok","type":"bool","value":true},
		{"name":"","type":"bool","value":true}
	]`)
	assert.Nil(t, items)
	requireValidationError(t, err, "item 1")
}

func TestParseItemsValueShapes(t *testing.T) {
	items, err := ParseItems(`[
		{"name":"a","type":"string","value":"hello"},
		{"name":"b","type":"uint256","value":115792089237316195423570985008687907853269984665640564039457584007913129639935},
		{"name":"c","type":"uint8","value":7},
		{"name":"d","type":"fraction","value":0.5},
		{"name":"e","type":"record","value":{"k":"v"}},
		{"name":"f","type":"records","value":[{"k":"v"},{"k":"w"}]},
		{"name":"g","type":"list","value":[1,"two",false]}
	]`)
	require.NoError(t, err)
	require.Len(t, items, 7)

	assert.Equal(t, KindString, items[0].Value.Kind)
	assert.Equal(t, KindBigInt, items[1].Value.Kind)

	maxUint256 := new(big.Int)
	maxUint256.SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	assert.Zero(t, items[1].Value.Int.Cmp(maxUint256))

	assert.Equal(t, KindBigInt, items[2].Value.Kind)
	assert.Equal(t, KindNumber, items[3].Value.Kind)
	assert.Equal(t, 0.5, items[3].Value.Num)
	assert.Equal(t, KindRecord, items[4].Value.Kind)
	assert.Equal(t, KindRecordArray, items[5].Value.Kind)
	assert.Len(t, items[5].Value.Records, 2)
	assert.Equal(t, KindArray, items[6].Value.Kind)
}

func TestParseItemsRejectsBadItems(t *testing.T) {
	cases := []struct {
		label string
		doc   string
	}{
		{"null value", `[{"name":"a","type":"t","value":null}]`},
		{"missing value", `[{"name":"a","type":"t"}]`},
		{"missing name", `[{"type":"t","value":1}]`},
		{"empty type", `[{"name":"a","type":"","value":1}]`},
		{"non-string name", `[{"name":1,"type":"t","value":1}]`},
		{"unknown field", `[{"name":"a","type":"t","value":1,"extra":2}]`},
		{"non-object element", `["just a string"]`},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			_, err := ParseItems(tc.doc)
			assert.Error(t, err)
		})
	}
}

func TestParseItemsPreservesOrder(t *testing.T) {
	items, err := ParseItems(`[
		{"name":"z","type":"bool","value":true},
		{"name":"a","type":"bool","value":false},
		{"name":"m","type":"bool","value":true}
	]`)
	require.NoError(t, err)

	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func requireValidationError(t *testing.T, err error, fragment string) {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %T: %v", err, err)
	assert.True(t, strings.Contains(verr.Constraint, fragment),
		"constraint %q does not mention %q", verr.Constraint, fragment)
}
