package node

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/loader"
	"github.com/paramflow/paramflow/pkg/perf"
)

// TrackedSource is one source file and the dotted paths selected from it
// during a resolution pass.
type TrackedSource struct {
	Source string   `yaml:"source" json:"source"`
	Paths  []string `yaml:"paths" json:"paths"`
}

// Context roots a provenance tree and keeps a transient ledger of which
// entries tracked selections actually used.
//
// A Context exclusively owns its tree and is not safe for concurrent
// mutation; callers resolving templates against logically independent state
// must Clone first.
type Context struct {
	root *Map

	trackedOrder []string
	tracked      map[string]map[string]struct{}
}

// NewContext creates an empty Context for inline data.
func NewContext() *Context {
	return &Context{
		root:    NewEmptyMap(Meta{}),
		tracked: map[string]map[string]struct{}{},
	}
}

// Create wraps inline raw data into a Context. The source identifier may be
// empty for purely local data.
func Create(raw map[string]any, source string) (*Context, error) {
	root, err := NewMap(raw, Meta{Source: source})
	if err != nil {
		return nil, err
	}
	return &Context{root: root, tracked: map[string]map[string]struct{}{}}, nil
}

// LoadFrom builds a provenance tree from one source file, using the loader
// registered for the file's extension.
func LoadFrom(fsys filesystem.FileSystem, loaders *loader.Registry, path string) (*Context, error) {
	return LoadFromSubPath(fsys, loaders, path, "")
}

// LoadFromSubPath builds a Context from a sub-tree of a source file. The
// sub-path is recorded in every node's Meta and prepended to reported
// provenance paths.
func LoadFromSubPath(fsys filesystem.FileSystem, loaders *loader.Registry, path, subPath string) (*Context, error) {
	defer perf.Track(nil, "node.LoadFromSubPath")()

	raw, err := loaders.LoadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	if subPath != "" {
		meta := Meta{Source: path}
		full, err := NewMap(asMap(raw), meta)
		if err != nil {
			return nil, err
		}
		sub, err := full.Select(subPath)
		if err != nil {
			return nil, err
		}
		subMap, ok := sub.(*Map)
		if !ok {
			return nil, fmt.Errorf("%w: sub-path '%s' of '%s' is not a mapping", errors.ErrLookup, subPath, path)
		}
		root := withMeta(subMap.Clone(), Meta{Source: path, ImportSubPath: subPath}).(*Map)
		return &Context{root: root, tracked: map[string]map[string]struct{}{}}, nil
	}

	return Create(asMap(raw), path)
}

func asMap(raw any) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Root returns the root map.
func (c *Context) Root() *Map { return c.root }

// Interface returns the plain nested value of the whole tree.
func (c *Context) Interface() map[string]any {
	return c.root.Interface().(map[string]any)
}

// Set stores inline data under a top-level key. The value is local: it has
// no source and never appears in the tracked ledger, even when the tree
// itself was loaded from a file.
func (c *Context) Set(key string, raw any) error {
	return c.root.SetLocal(key, raw)
}

// SetAlias stores an existing node under a top-level key with its
// provenance frozen at its current path.
func (c *Context) SetAlias(key string, n Node) {
	c.root.SetAlias(key, n)
}

// Select resolves a dotted path against the tree. When track is set and the
// resolved node carries a non-empty source, the selection is recorded in
// the tracked ledger. The path must name something: an empty path is a
// lookup error, not the whole tree.
func (c *Context) Select(path string, track bool) (Node, error) {
	defer perf.Track(nil, "node.Context.Select")()

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: cannot select an empty path", errors.ErrLookup)
	}

	n, err := c.root.Select(path)
	if err != nil {
		return nil, err
	}

	if track {
		c.trackNode(n)
	}

	return n, nil
}

func (c *Context) trackNode(n Node) {
	for source, paths := range n.Sources() {
		if source == "" {
			continue
		}
		c.TrackPaths(source, paths...)
	}
}

// TrackPaths records paths as used from a source. Interpolation uses it to
// fold provenance of nested resolutions into the enclosing pass.
func (c *Context) TrackPaths(source string, paths ...string) {
	if source == "" || len(paths) == 0 {
		return
	}

	set, ok := c.tracked[source]
	if !ok {
		set = map[string]struct{}{}
		c.tracked[source] = set
		c.trackedOrder = append(c.trackedOrder, source)
	}
	for _, path := range paths {
		set[path] = struct{}{}
	}
}

// Tracked returns the ledger: one record per source that had at least one
// tracked selection, in first-tracked order, paths sorted.
func (c *Context) Tracked() []TrackedSource {
	out := make([]TrackedSource, 0, len(c.trackedOrder))
	for _, source := range c.trackedOrder {
		paths := make([]string, 0, len(c.tracked[source]))
		for path := range c.tracked[source] {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		out = append(out, TrackedSource{Source: source, Paths: paths})
	}
	return out
}

// ClearTracked resets the ledger.
func (c *Context) ClearTracked() {
	c.tracked = map[string]map[string]struct{}{}
	c.trackedOrder = nil
}

// Clone deep-copies the tree. The clone shares no node identity with the
// original and starts with a fresh tracked ledger.
func (c *Context) Clone() *Context {
	defer perf.Track(nil, "node.Context.Clone")()

	return &Context{
		root:    c.root.Clone().(*Map),
		tracked: map[string]map[string]struct{}{},
	}
}

// MergeUpdate recursively merges another Context's tree into this one, key
// by key. Where both sides hold maps the merge recurses; otherwise an
// existing key is a conflict unless overwrite is set, in which case the
// incoming node replaces the existing one keeping its own Meta.
func (c *Context) MergeUpdate(other *Context, overwrite bool) error {
	defer perf.Track(nil, "node.Context.MergeUpdate")()

	if other == nil {
		return nil
	}
	return mergeMaps(c.root, other.root, overwrite)
}

// MergeRaw merges plain nested data into the tree with the same conflict
// policy as MergeUpdate. Incoming values are local, like Set.
func (c *Context) MergeRaw(raw map[string]any, overwrite bool) error {
	return mergeRaw(c.root, raw, overwrite)
}

func mergeMaps(dst *Map, src *Map, overwrite bool) error {
	for _, key := range src.Keys() {
		val, _ := src.Get(key)

		if existing, ok := dst.Get(key); ok {
			dstMap, dstIsMap := existing.(*Map)
			srcMap, srcIsMap := val.(*Map)
			if dstIsMap && srcIsMap {
				if err := mergeMaps(dstMap, srcMap, overwrite); err != nil {
					return err
				}
				continue
			}
			if !overwrite {
				return mergeConflict(key, dst)
			}
		}

		// Clone keeps Context ownership exclusive: no node is shared between
		// two trees.
		if err := dst.Set(key, val.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func mergeRaw(dst *Map, raw map[string]any, overwrite bool) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := raw[key]

		if existing, ok := dst.Get(key); ok {
			dstMap, dstIsMap := existing.(*Map)
			srcMap, srcIsMap := val.(map[string]any)
			if dstIsMap && srcIsMap {
				if err := mergeRaw(dstMap, srcMap, overwrite); err != nil {
					return err
				}
				continue
			}
			if !overwrite {
				return mergeConflict(key, dst)
			}
		}

		if err := dst.SetLocal(key, val); err != nil {
			return err
		}
	}
	return nil
}

func mergeConflict(key string, dst *Map) error {
	return fmt.Errorf("%w: cannot overwrite key '%s', it already exists in %s", errors.ErrMergeConflict, key, dst)
}
