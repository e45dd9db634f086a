// Package resolver resolves a templated pipeline definition: it builds a
// provenance Context from parameter files and inline vars, interpolates
// every stage body against it, and reports which parameter entries each
// stage actually referenced.
package resolver

import (
	"fmt"
	"path"
	"sort"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/interpolate"
	"github.com/paramflow/paramflow/pkg/loader"
	"github.com/paramflow/paramflow/pkg/logger"
	"github.com/paramflow/paramflow/pkg/merge"
	"github.com/paramflow/paramflow/pkg/node"
	"github.com/paramflow/paramflow/pkg/perf"
	"github.com/paramflow/paramflow/pkg/schema"
)

// Definition keywords.
const (
	stagesKey  = "stages"
	varsKey    = "vars"
	useKey     = "use"
	setKey     = "set"
	foreachKey = "foreach"
	inKey      = "in"
	wdirKey    = "wdir"
	paramsKey  = "params"
)

// Resolver resolves one pipeline definition against its parameter files.
type Resolver struct {
	fs      filesystem.FileSystem
	loaders *loader.Registry
	cfg     *schema.Configuration

	wdir string
	data map[string]any

	global       *node.Context
	globalSource string
}

// New creates a Resolver for a definition rooted at wdir. The global
// Context is built from the `use` parameters file (default params.yaml)
// when it exists, with inline `vars` merged over it. The vars entry is a
// mapping, or a list of mappings layered in order with later entries
// winning.
func New(fsys filesystem.FileSystem, loaders *loader.Registry, cfg *schema.Configuration, wdir string, data map[string]any) (*Resolver, error) {
	r := &Resolver{
		fs:      fsys,
		loaders: loaders,
		cfg:     cfg,
		wdir:    wdir,
		data:    data,
	}

	paramsFile := cfg.ParamsFileOrDefault()
	if use, ok := data[useKey].(string); ok && use != "" {
		paramsFile = use
	}
	toImport := path.Join(wdir, paramsFile)

	vars, err := varsMap(data[varsKey])
	if err != nil {
		return nil, err
	}

	if filesystem.Exists(fsys, toImport) {
		global, err := node.LoadFrom(fsys, loaders, toImport)
		if err != nil {
			return nil, err
		}
		if err := global.MergeRaw(vars, true); err != nil {
			return nil, err
		}
		r.global = global
		r.globalSource = toImport
	} else {
		global, err := node.Create(vars, "")
		if err != nil {
			return nil, err
		}
		r.global = global
	}

	return r, nil
}

// Resolve resolves every stage and returns the definition with the stages
// section replaced by its resolved form. Each stage's params list is
// extended with the tracked provenance of its resolution.
func (r *Resolver) Resolve() (map[string]any, error) {
	defer perf.Track(r.cfg, "resolver.Resolver.Resolve")()

	stages := asMap(r.data[stagesKey])

	names := make([]string, 0, len(stages))
	for name := range stages {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := map[string]any{}
	for _, name := range names {
		def, ok := stages[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: stage '%s' is not a mapping", errors.ErrInvalidDefinition, name)
		}

		entry, err := r.resolveEntry(name, def)
		if err != nil {
			return nil, err
		}
		for stage, body := range entry {
			resolved[stage] = body
		}
	}

	out := convert.DeepCopyMap(r.data)
	out[stagesKey] = resolved
	return out, nil
}

func (r *Resolver) resolveEntry(name string, def map[string]any) (map[string]any, error) {
	ctx := r.global.Clone()

	if err := applySet(ctx, asMap(def[setKey])); err != nil {
		return nil, err
	}

	if foreachData, ok := def[foreachKey]; ok {
		inDef, ok := def[inKey].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: stage '%s' has 'foreach' without 'in'", errors.ErrInvalidDefinition, name)
		}
		return r.forEach(ctx, name, foreachData, inDef)
	}

	return r.resolveStage(ctx, name, def)
}

// resolveStage resolves one stage body against its own Context clone, with
// tracking enabled so that the provenance of every referenced parameter
// lands in the stage's params list.
func (r *Resolver) resolveStage(ctx *node.Context, name string, def map[string]any) (map[string]any, error) {
	def = convert.DeepCopyMap(def)
	delete(def, setKey)

	wdir, err := r.resolveWdir(ctx, def[wdirKey])
	if err != nil {
		return nil, err
	}

	if err := r.mergeStageParams(ctx, wdir, def[paramsKey]); err != nil {
		return nil, err
	}

	resolvedAny, err := interpolate.Resolve(ctx, def, true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stage '%s': %w", name, err)
	}
	resolved := resolvedAny.(map[string]any)

	params := paramEntries(resolved[paramsKey])
	for _, tracked := range ctx.Tracked() {
		params = append(params, map[string]any{tracked.Source: toAnySlice(tracked.Paths)})
	}
	if len(params) > 0 {
		resolved[paramsKey] = params
	} else {
		delete(resolved, paramsKey)
	}

	logger.Debug("resolved stage", "stage", name)

	return map[string]any{name: resolved}, nil
}

// forEach generates one stage per item of the resolved iterable. A list
// binds each element to `item`; a map additionally binds `key`.
func (r *Resolver) forEach(ctx *node.Context, name string, foreachData any, inDef map[string]any) (map[string]any, error) {
	expr, ok := foreachData.(string)
	if !ok {
		return nil, fmt.Errorf("%w: 'foreach' of stage '%s' must be a template string", errors.ErrInvalidDefinition, name)
	}

	iterable, err := interpolate.ResolveString(ctx, expr, false)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}

	generate := func(suffix string, bind func(c *node.Context) error) error {
		c := ctx.Clone()
		if err := bind(c); err != nil {
			return err
		}
		entry, err := r.resolveStage(c, name+"-"+suffix, inDef)
		if err != nil {
			return err
		}
		for stage, body := range entry {
			out[stage] = body
		}
		return nil
	}

	switch items := iterable.(type) {
	case []any:
		for i, item := range items {
			suffix := itemSuffix(item, i)
			if err := generate(suffix, func(c *node.Context) error {
				return c.Set("item", item)
			}); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(items))
		for key := range items {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			key, item := key, items[key]
			if err := generate(key, func(c *node.Context) error {
				if err := c.Set("key", key); err != nil {
					return err
				}
				return c.Set("item", item)
			}); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: 'foreach' of stage '%s' resolved to %T, expected a list or a mapping", errors.ErrInvalidDefinition, name, iterable)
	}

	return out, nil
}

func (r *Resolver) resolveWdir(ctx *node.Context, raw any) (string, error) {
	wdir, ok := raw.(string)
	if !ok || wdir == "" {
		return r.wdir, nil
	}

	resolved, err := interpolate.ResolveString(ctx, wdir, false)
	if err != nil {
		return "", err
	}

	s, ok := resolved.(string)
	if !ok {
		s = fmt.Sprintf("%v", resolved)
	}
	return path.Join(r.wdir, s), nil
}

// mergeStageParams layers the stage's parameter files over the Context: the
// default params file in the stage wdir (unless it is already the global
// source), then every file named by a mapping entry of the params list.
func (r *Resolver) mergeStageParams(ctx *node.Context, wdir string, rawParams any) error {
	defaultFile := path.Join(wdir, r.cfg.ParamsFileOrDefault())
	if defaultFile != r.globalSource && filesystem.Exists(r.fs, defaultFile) {
		other, err := node.LoadFrom(r.fs, r.loaders, defaultFile)
		if err != nil {
			return err
		}
		if err := ctx.MergeUpdate(other, true); err != nil {
			return err
		}
	}

	for _, entry := range paramEntries(rawParams) {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for file := range m {
			other, err := node.LoadFrom(r.fs, r.loaders, path.Join(wdir, file))
			if err != nil {
				return err
			}
			if err := ctx.MergeUpdate(other, true); err != nil {
				return err
			}
		}
	}

	return nil
}

func applySet(ctx *node.Context, set map[string]any) error {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := set[key]
		if s, ok := val.(string); ok && interpolate.HasPlaceholder(s) {
			resolved, err := interpolate.ResolveString(ctx, s, false)
			if err != nil {
				return err
			}
			val = resolved
		}
		if err := ctx.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

func paramEntries(raw any) []any {
	if entries, ok := raw.([]any); ok {
		return entries
	}
	return nil
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func itemSuffix(item any, index int) string {
	switch t := item.(type) {
	case string:
		return t
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%d", index)
	}
}

func asMap(raw any) map[string]any {
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// varsMap flattens the definition's vars entry into one map: a single
// mapping is taken as-is, a list of mappings is deep-merged in order.
func varsMap(raw any) (map[string]any, error) {
	switch t := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	case []any:
		layers := make([]map[string]any, 0, len(t))
		for _, entry := range t {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: 'vars' entries must be mappings, got %T", errors.ErrInvalidDefinition, entry)
			}
			layers = append(layers, m)
		}
		return merge.Merge(layers)
	default:
		return nil, fmt.Errorf("%w: 'vars' must be a mapping or a list of mappings, got %T", errors.ErrInvalidDefinition, raw)
	}
}
