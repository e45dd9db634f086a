// Package loader provides format loaders behind a common interface, selected
// by file extension. Loaders turn raw bytes into nested values built from
// nil, bool, int64, float64, string, []any and map[string]any.
package loader

import (
	"fmt"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/filetype"
	"github.com/paramflow/paramflow/pkg/perf"
)

// Loader handles loading nested data from a specific format.
type Loader interface {
	// Name returns a human-readable name (e.g., "YAML", "JSON", "TOML").
	Name() string

	// Extensions returns supported file extensions (e.g., [".yaml", ".yml"]).
	Extensions() []string

	// Load parses raw bytes into the common representation.
	// Returns map[string]any for objects, []any for arrays.
	Load(data []byte) (any, error)
}

// Registry dispatches to a Loader based on file extension.
type Registry struct {
	byExt map[string]Loader
}

// NewRegistry creates a registry over the given loaders.
func NewRegistry(loaders ...Loader) *Registry {
	r := &Registry{byExt: map[string]Loader{}}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// Register adds a loader for all its extensions, replacing prior bindings.
func (r *Registry) Register(l Loader) {
	for _, ext := range l.Extensions() {
		r.byExt[ext] = l
	}
}

// ForPath returns the loader registered for the path's extension.
func (r *Registry) ForPath(path string) (Loader, error) {
	ext := filetype.GetFileExtension(filetype.ExtractFilenameFromPath(path))
	l, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for '%s' (path '%s')", errors.ErrUnknownFormat, ext, path)
	}
	return l, nil
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// LoadFile reads path through the filesystem capability and parses it with
// the loader registered for its extension.
func (r *Registry) LoadFile(fsys filesystem.FileSystem, path string) (any, error) {
	defer perf.Track(nil, "loader.Registry.LoadFile")()

	l, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return l.Load(data)
}
