package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaDescend(t *testing.T) {
	root := Meta{Source: "params.yaml"}

	child := root.Descend("train").Descend("lr")
	assert.Equal(t, "params.yaml", child.Source)
	assert.Equal(t, []string{"train", "lr"}, child.Path)
	assert.Equal(t, "train.lr", child.PathString())

	// Descending does not mutate the parent.
	assert.Empty(t, root.Path)
}

func TestMetaDescendDoesNotShareBacking(t *testing.T) {
	parent := Meta{Source: "params.yaml", Path: []string{"train"}}

	a := parent.Descend("lr")
	b := parent.Descend("epochs")

	assert.Equal(t, []string{"train", "lr"}, a.Path)
	assert.Equal(t, []string{"train", "epochs"}, b.Path)
}

func TestMetaAliased(t *testing.T) {
	frozen := Meta{Source: "params.yaml", Path: []string{"models", "us"}}.WithAlias()

	// An aliased Meta is a fixed anchor; descent does not extend the path.
	child := frozen.Descend("thresh")
	assert.Equal(t, "models.us", child.PathString())
	assert.True(t, child.Aliased)
}

func TestMetaPathString(t *testing.T) {
	tests := []struct {
		name     string
		meta     Meta
		expected string
	}{
		{name: "empty", meta: Meta{}, expected: ""},
		{name: "plain path", meta: Meta{Path: []string{"train", "lr"}}, expected: "train.lr"},
		{name: "import sub-path only", meta: Meta{ImportSubPath: "envs.dev"}, expected: "envs.dev"},
		{
			name:     "import sub-path prepended",
			meta:     Meta{ImportSubPath: "envs.dev", Path: []string{"x"}},
			expected: "envs.dev.x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meta.PathString())
		})
	}
}

func TestMetaString(t *testing.T) {
	assert.Equal(t, "params.yaml:train.lr", Meta{Source: "params.yaml", Path: []string{"train", "lr"}}.String())
	assert.Equal(t, "<local>:x", Meta{Path: []string{"x"}}.String())
}
