package canonical

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"number literal", json.Number("3.50"), "3.50"},
		{"float integral", 2.0, "2"},
		{"float fraction", 0.25, "0.25"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"null", nil, "null"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array", []any{1, "a", nil}, `[1,"a",null]`},
		{"object", map[string]any{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  3,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800 0xDC00) and sorts before U+E000.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal(map[string]any{"html": "<b>a & b</b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>a & b</b>"}`, string(result))
}

func TestMarshalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"control", "a\x01b", `"a\u0001b"`},
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"literal escape text", `\u2028`, `"\\u2028"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalNFCNormalization(t *testing.T) {
	decomposed := "e\u0301"
	result, err := Marshal(map[string]any{decomposed: decomposed})
	require.NoError(t, err)
	assert.Equal(t, "{\"\u00e9\":\"\u00e9\"}", string(result))
}

func TestMarshalRejectsNonFinite(t *testing.T) {
	_, err := Marshal(math.NaN())
	require.Error(t, err)

	_, err = Marshal([]any{math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}

func TestMarshalUsesJSONMarshaler(t *testing.T) {
	type item struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
		Skip  string `json:"-"`
	}

	result, err := Marshal(map[string]any{"item": item{Name: "x", Count: 2, Skip: "y"}})
	require.NoError(t, err)
	assert.Equal(t, `{"item":{"count":2,"name":"x"}}`, string(result))
}

func TestMarshalIdempotent(t *testing.T) {
	input := `{"b":[1,2.5,{"y":null,"x":"<&>"}],"a":"e\u0301"}`
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(input), &decoded))

	first, err := Marshal(decoded)
	require.NoError(t, err)

	var again any
	dec := json.NewDecoder(bytes.NewReader(first))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&again))

	second, err := Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMarshalIndent(t *testing.T) {
	result, err := MarshalIndent(map[string]any{"b": 1, "a": []any{"<x>"}}, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    \"<x>\"\n  ],\n  \"b\": 1\n}\n", string(result))
}

func TestDigest(t *testing.T) {
	a, err := DigestOf(map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	b, err := DigestOf(map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	c, err := DigestOf(map[string]any{"x": 1, "y": 3})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
	assert.Equal(t, Digest([]byte(`{"x":1,"y":2}`)), a)
}
