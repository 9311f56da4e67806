package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariablesRoundTrip(t *testing.T) {
	src := `{"first":10,"where":{"id":"abc","nested":{"count":2}}}`

	var vars Variables
	require.NoError(t, json.Unmarshal([]byte(src), &vars))

	require.Equal(t, KindMap, vars.Kind)
	assert.Equal(t, Number(10), vars.Map["first"])
	assert.Equal(t, String("abc"), vars.Map["where"].Map["id"])
	assert.Equal(t, Number(2), vars.Map["where"].Map["nested"].Map["count"])

	out, err := json.Marshal(vars)
	require.NoError(t, err)

	var again Variables
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, vars, again)
}

func TestVariablesRejectUnsupportedShapes(t *testing.T) {
	for _, src := range []string{
		`{"tags":["a","b"]}`,
		`{"flag":true}`,
		`{"empty":null}`,
		`[1,2,3]`,
	} {
		var vars Variables
		err := json.Unmarshal([]byte(src), &vars)
		assert.Error(t, err, "expected %s to be rejected", src)
	}
}

func TestVariablesKeysSorted(t *testing.T) {
	vars := Map(map[string]Variables{
		"zeta":  Number(1),
		"alpha": Number(2),
		"mid":   Number(3),
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, vars.Keys())
	assert.Nil(t, String("leaf").Keys())
}
