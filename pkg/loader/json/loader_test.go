package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramflow/paramflow/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "empty", input: "", expected: nil},
		{
			name:  "object",
			input: `{"lr": 0.1, "epochs": 3, "name": "train", "flag": true, "nothing": null}`,
			expected: map[string]any{
				"lr":      0.1,
				"epochs":  int64(3),
				"name":    "train",
				"flag":    true,
				"nothing": nil,
			},
		},
		{
			name:     "large integer keeps precision",
			input:    `{"id": 9007199254740993}`,
			expected: map[string]any{"id": int64(9007199254740993)},
		},
		{
			name:     "exponent",
			input:    `{"n": 3e4}`,
			expected: map[string]any{"n": 3e4},
		},
		{
			name:     "array",
			input:    `[1, "two", 3.0]`,
			expected: []any{int64(1), "two", float64(3)},
		},
	}

	l := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := l.Load([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	l := New()

	_, err := l.Load([]byte(`{"lr":`))
	assert.ErrorIs(t, err, errors.ErrParseFailed)

	_, err = l.Load([]byte(`{"lr": 0.1} trailing`))
	assert.ErrorIs(t, err, errors.ErrParseFailed)
}

func TestLoaderMetadata(t *testing.T) {
	l := New()
	assert.Equal(t, "JSON", l.Name())
	assert.Equal(t, []string{".json"}, l.Extensions())
}
