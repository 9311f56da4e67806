package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalEncoderDeterministic(t *testing.T) {
	items, err := ParseItems(`[
		{"name":"score","type":"uint256","value":42},
		{"name":"meta","type":"record","value":{"z":"last","a":"first"}}
	]`)
	require.NoError(t, err)

	enc := CanonicalEncoder{}
	first, err := enc.Encode(items, "uint256 score, string meta")
	require.NoError(t, err)
	second, err := enc.Encode(items, "uint256 score, string meta")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, json.Valid(first))
}

func TestCanonicalEncoderOutputShape(t *testing.T) {
	items, err := ParseItems(`[{"name":"ok","type":"bool","value":true}]`)
	require.NoError(t, err)

	out, err := CanonicalEncoder{}.Encode(items, "bool ok")
	require.NoError(t, err)

	var decoded struct {
		Schema string `json:"schema"`
		Items  []struct {
			Name  string      `json:"name"`
			Type  string      `json:"type"`
			Value interface{} `json:"value"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "bool ok", decoded.Schema)
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, true, decoded.Items[0].Value)
}

func TestCanonicalEncoderRejectsEmptyItems(t *testing.T) {
	_, err := CanonicalEncoder{}.Encode(nil, "bool ok")
	require.Error(t, err)

	var encErr *EncodingError
	assert.ErrorAs(t, err, &encErr)
}
