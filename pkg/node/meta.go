// Package node implements the provenance-preserving data tree behind
// template resolution: a closed set of node kinds (Value, List, Map), each
// carrying a Meta record of the source file and structural path it came
// from, plus the Context that roots a tree and tracks which entries a
// resolution pass actually used.
package node

import "github.com/paramflow/paramflow/pkg/pathspec"

// LocalSource is the rendering used for inline data with no source file.
const LocalSource = "<local>"

// Meta is an immutable provenance record: where a node came from and the
// structural path from the root of its source.
type Meta struct {
	// Source identifies the source file; empty for inline/local data.
	Source string

	// Path holds the path segments from the root. List indices are decimal
	// strings.
	Path []string

	// ImportSubPath is the sub-path within the source file this tree was
	// imported from, prepended when rendering the full path.
	ImportSubPath string

	// Aliased marks the node as a fixed provenance anchor: descending past
	// it does not extend the path.
	Aliased bool
}

// Descend derives a child Meta by appending one path segment.
// An aliased Meta is frozen and returned unchanged.
func (m Meta) Descend(segment string) Meta {
	if m.Aliased {
		return m
	}

	path := make([]string, len(m.Path), len(m.Path)+1)
	copy(path, m.Path)

	return Meta{
		Source:        m.Source,
		Path:          append(path, segment),
		ImportSubPath: m.ImportSubPath,
	}
}

// WithAlias returns a copy of the Meta frozen as a provenance anchor.
func (m Meta) WithAlias() Meta {
	m.Aliased = true
	return m
}

// PathString renders the full dotted path, including the import sub-path
// when present.
func (m Meta) PathString() string {
	joined := pathspec.Join(m.Path)
	if m.ImportSubPath == "" {
		return joined
	}
	if joined == "" {
		return m.ImportSubPath
	}
	return m.ImportSubPath + pathspec.Separator + joined
}

// String renders the Meta as "source:path" with LocalSource standing in for
// inline data.
func (m Meta) String() string {
	source := m.Source
	if source == "" {
		source = LocalSource
	}
	return source + ":" + m.PathString()
}
