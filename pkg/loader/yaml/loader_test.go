package yaml

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
		{name: "whitespace only", input: "\n\n  \n", expected: nil},
		{
			name:  "scalars",
			input: "lr: 0.1\nepochs: 3\nname: train\nenabled: true\nnothing: null\n",
			expected: map[string]any{
				"lr":      0.1,
				"epochs":  int64(3),
				"name":    "train",
				"enabled": true,
				"nothing": nil,
			},
		},
		{
			name:  "nested",
			input: "train:\n  optimizer:\n    lr: 0.1\n",
			expected: map[string]any{
				"train": map[string]any{"optimizer": map[string]any{"lr": 0.1}},
			},
		},
		{
			name:     "list",
			input:    "models:\n  - us\n  - de\n",
			expected: map[string]any{"models": []any{"us", "de"}},
		},
		{
			name:     "top-level list",
			input:    "- 1\n- 2\n",
			expected: []any{int64(1), int64(2)},
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
	_, err := New().Load([]byte("key: [unclosed"))
	assert.ErrorIs(t, err, errors.ErrParseFailed)
}

func TestLoaderMetadata(t *testing.T) {
	l := New()
	assert.Equal(t, "YAML", l.Name())
	assert.Equal(t, []string{".yaml", ".yml"}, l.Extensions())
}

func TestEncodeRoundTrip(t *testing.T) {
	l := New()

	data := map[string]any{"train": map[string]any{"lr": 0.1, "epochs": int64(3)}}

	encoded, err := l.Encode(data)
	require.NoError(t, err)

	decoded, err := l.Load(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}
