package convert

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "bool", input: true, expected: true},
		{name: "string", input: "foo", expected: "foo"},
		{name: "int", input: 12, expected: int64(12)},
		{name: "int32", input: int32(-7), expected: int64(-7)},
		{name: "uint8", input: uint8(255), expected: int64(255)},
		{name: "uint64 in range", input: uint64(42), expected: int64(42)},
		{name: "uint64 overflow", input: uint64(math.MaxInt64) + 1, expected: float64(math.MaxInt64) + 1},
		{name: "float32", input: float32(0.5), expected: 0.5},
		{name: "json integer", input: json.Number("3"), expected: int64(3)},
		{name: "json float", input: json.Number("3e4"), expected: 3e4},
		{
			name:     "interface keyed map",
			input:    map[any]any{"a": 1, 2: "dropped"},
			expected: map[string]any{"a": int64(1)},
		},
		{
			name:     "nested",
			input:    map[string]any{"list": []any{1, map[any]any{"x": float32(2)}}},
			expected: map[string]any{"list": []any{int64(1), map[string]any{"x": float64(2)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestDeepCopy(t *testing.T) {
	original := map[string]any{
		"train": map[string]any{"lr": 0.1},
		"tags":  []any{"a", "b"},
	}

	clone := DeepCopyMap(original)
	clone["train"].(map[string]any)["lr"] = 0.2
	clone["tags"].([]any)[0] = "z"

	assert.Equal(t, 0.1, original["train"].(map[string]any)["lr"])
	assert.Equal(t, "a", original["tags"].([]any)[0])
}

func TestDeepCopyMapNil(t *testing.T) {
	assert.Nil(t, DeepCopyMap(nil))
}
