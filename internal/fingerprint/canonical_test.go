package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_KeyOrderIndependent(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2, "c": 3}
	b := map[string]any{"c": 3, "a": 2, "b": 1}

	outA, err := Canonicalize(a)
	require.NoError(t, err)
	outB, err := Canonicalize(b)
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(outA))
}

func TestCanonicalize_NestedObjectsSortedRecursively(t *testing.T) {
	v := map[string]any{
		"outer": map[string]any{"z": 1, "y": 2},
	}
	out, err := Canonicalize(v)
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"y":2,"z":1}}`, string(out))
}

func TestCanonicalize_ArrayOrderPreserved(t *testing.T) {
	v := map[string]any{"items": []any{3, 1, 2}}
	out, err := Canonicalize(v)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[3,1,2]}`, string(out))
}
