package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"int32", int32(7), "7"},
		{"bool", true, "true"},
		{"string slice", []string{"go", "cgo"}, `["go","cgo"]`},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"string map", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshal_SortedNestedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{"b": 1, "a": 2},
		"a": []any{"x", 3, false},
	}

	got, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x",3,false],"z":{"a":2,"b":1}}`, string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 but after it in UTF-8.
	obj := map[string]any{"｡": 1, "\U0001F600": 2}

	got, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"｡\":1}", string(got))
}

func TestMarshal_StringEscapes(t *testing.T) {
	got, err := Marshal("a\"b\\c\n<&> \x01")
	require.NoError(t, err)
	assert.Equal(t, "\"a\\\"b\\\\c\\n<&> \\u0001\"", string(got))
}

func TestMarshal_NFC(t *testing.T) {
	decomposed, err := Marshal("e\u0301")
	require.NoError(t, err)
	composed, err := Marshal("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshal_Rejects(t *testing.T) {
	_, err := Marshal(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = Marshal(map[string]any{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")

	_, err = Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestFloatFormatting(t *testing.T) {
	assert.Equal(t, "-0.0152115", Float(-0.0152115))
	assert.Equal(t, "1e-06", Float(1e-6))
	assert.Equal(t, "-0.015211452880", Fixed(-0.015211452880075338, 12))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(DomainSuite, map[string]any{"name": "x", "reps": 10})
	require.NoError(t, err)
	b, err := Fingerprint(DomainSuite, map[string]any{"reps": 10, "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := Fingerprint(DomainScenario, map[string]any{"name": "x", "reps": 10})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = Fingerprint(DomainSuite, map[string]any{"tol": 1e-6})
	require.Error(t, err)
}
