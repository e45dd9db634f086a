// Package dependency implements parameter dependencies: a binding between a
// pipeline stage, a parameters file, and the dotted names the stage reads
// from it. Current values are hashed into a cache key and diffed against
// the baseline recorded by the previous run to decide whether the stage
// must rerun.
package dependency

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/filesystem"
	"github.com/paramflow/paramflow/pkg/hash"
	"github.com/paramflow/paramflow/pkg/loader"
	"github.com/paramflow/paramflow/pkg/logger"
	"github.com/paramflow/paramflow/pkg/pathspec"
	"github.com/paramflow/paramflow/pkg/perf"
)

// Parameter change classifications reported by Status.
const (
	StatusNew      = "new"
	StatusModified = "modified"
	StatusDeleted  = "deleted"
)

// ParamsDependency binds requested dotted parameter names to a parameters
// file on behalf of a stage.
type ParamsDependency struct {
	// Stage names the owning pipeline stage.
	Stage string

	// Path is the parameters file path.
	Path string

	// Params are the requested dotted names, in declaration order.
	// Uniqueness is not enforced.
	Params []string

	// Baseline is the hash recorded by the previous successful run; nil
	// until the first Save or explicit seeding.
	Baseline *hash.Info

	fs      filesystem.FileSystem
	loaders *loader.Registry
}

// New creates a dependency over an explicit name list.
func New(stage, path string, params []string, fsys filesystem.FileSystem, loaders *loader.Registry) *ParamsDependency {
	return &ParamsDependency{
		Stage:   stage,
		Path:    path,
		Params:  params,
		fs:      fsys,
		loaders: loaders,
	}
}

// NewFromMap creates a dependency from a name→value mapping: the keys
// become the requested names and the values pre-seed the baseline.
func NewFromMap(stage, path string, params map[string]any, fsys filesystem.FileSystem, loaders *loader.Registry) (*ParamsDependency, error) {
	baseline, err := hash.FromMap(params)
	if err != nil {
		return nil, err
	}

	d := New(stage, path, baseline.Names(), fsys, loaders)
	d.Baseline = baseline
	return d, nil
}

// ReadFile loads and parses the parameters file. The path must exist and
// be a regular file.
func (d *ParamsDependency) ReadFile() (any, error) {
	info, err := d.fs.Stat(d.Path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", errors.ErrMissingParamsFile, d.Path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: '%s', expected a parameters file", errors.ErrParamsIsADirectory, d.Path)
	}

	raw, err := d.loaders.LoadFile(d.fs, d.Path)
	if err != nil {
		if errors.Is(err, errors.ErrParseFailed) {
			return nil, fmt.Errorf("%w '%s': %w", errors.ErrBadParamFile, d.Path, err)
		}
		return nil, err
	}

	return raw, nil
}

// readRaw is ReadFile with a missing file tolerated as an empty structure.
// Status computation must survive a deleted params file.
func (d *ParamsDependency) readRaw() (any, error) {
	raw, err := d.ReadFile()
	if err != nil {
		if errors.Is(err, errors.ErrMissingParamsFile) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return raw, nil
}

// ReadParams resolves each requested name against the file's current
// content. Names absent from the file are silently omitted.
func (d *ParamsDependency) ReadParams() (map[string]any, error) {
	raw, err := d.readRaw()
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for _, name := range d.Params {
		val, err := pathspec.Get(raw, name)
		if err != nil {
			continue
		}
		out[name] = val
	}
	return out, nil
}

// GetHash reads the current values of all requested names and hashes them
// into the stage's cache key. Unlike ReadParams, any requested name absent
// from the file is fatal: the error lists every missing name at once so a
// user can fix all omissions in a single pass.
func (d *ParamsDependency) GetHash() (*hash.Info, error) {
	defer perf.Track(nil, "dependency.ParamsDependency.GetHash")()

	values, err := d.ReadParams()
	if err != nil {
		return nil, err
	}

	var missing []string
	seen := map[string]struct{}{}
	for _, name := range d.Params {
		if _, ok := values[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: '%s' missing from '%s'", errors.ErrMissingParams, strings.Join(missing, ", "), d.Path)
	}

	return hash.Compute(d.Params, values)
}

// Status compares live on-disk values against the baseline, per requested
// name. Unchanged names are omitted from the report. Equality is by parsed
// value, not raw bytes: formatting-only edits produce no change.
func (d *ParamsDependency) Status() (map[string]string, error) {
	defer perf.Track(nil, "dependency.ParamsDependency.Status")()

	raw, err := d.readRaw()
	if err != nil {
		return nil, err
	}

	baseline := d.Baseline.Map()
	out := map[string]string{}

	for _, name := range d.Params {
		actual, onDisk := lookup(raw, name)
		recorded, inBaseline := baseline[name]

		switch {
		case !onDisk && inBaseline:
			out[name] = StatusDeleted
		case !onDisk:
			// Requested but present nowhere; nothing to report.
		case !inBaseline:
			out[name] = StatusNew
		case !structurallyEqual(actual, recorded):
			out[name] = StatusModified
		}
	}

	return out, nil
}

// WorkspaceStatus is Status with the whole-file check applied first: when
// the file itself is gone and a baseline exists, per-parameter diffing is
// skipped and the whole-file deletion is reported as-is.
func (d *ParamsDependency) WorkspaceStatus() (map[string]string, error) {
	if d.Baseline != nil && !filesystem.Exists(d.fs, d.Path) {
		return map[string]string{d.Path: StatusDeleted}, nil
	}
	return d.Status()
}

// Save records the current parameter values as the new baseline and
// registers the path with the ignore mechanism. The target must exist and
// be a regular file or a directory.
func (d *ParamsDependency) Save(ignorer filesystem.Ignorer) error {
	info, err := d.fs.Stat(d.Path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return fmt.Errorf("%w: '%s'", errors.ErrDoesNotExist, d.Path)
		}
		return err
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("%w: '%s'", errors.ErrNotFileOrDir, d.Path)
	}

	if !info.IsDir() && info.Size() == 0 {
		logger.Warn("parameters file is empty", "path", d.Path)
	}

	if ignorer != nil {
		if err := ignorer.Ignore(d.Path); err != nil {
			return err
		}
	}

	baseline, err := d.GetHash()
	if err != nil {
		return err
	}
	d.Baseline = baseline

	return nil
}

// LockRecord is the on-disk shape of a dependency persisted in the
// pipeline's lock state.
type LockRecord struct {
	Path string `yaml:"path" json:"path"`

	// Params is serialized only while no baseline exists; once values are
	// recorded, the name list is implied by their keys.
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`

	// Values is the baseline name→value map.
	Values map[string]any `yaml:"values,omitempty" json:"values,omitempty"`

	// Digest is the baseline content hash.
	Digest string `yaml:"digest,omitempty" json:"digest,omitempty"`
}

// Dump serializes the dependency for lock state.
func (d *ParamsDependency) Dump() LockRecord {
	rec := LockRecord{Path: d.Path}
	if d.Baseline == nil {
		rec.Params = d.Params
		return rec
	}
	rec.Values = d.Baseline.Map()
	rec.Digest = d.Baseline.Digest()
	return rec
}

// FromLock reconstructs a dependency from a lock record, restoring the
// baseline when values were recorded.
func FromLock(stage string, rec LockRecord, fsys filesystem.FileSystem, loaders *loader.Registry) (*ParamsDependency, error) {
	d := New(stage, rec.Path, rec.Params, fsys, loaders)

	if len(rec.Values) > 0 {
		baseline, err := hash.FromMap(rec.Values)
		if err != nil {
			return nil, err
		}
		d.Baseline = baseline
		if len(d.Params) == 0 {
			d.Params = baseline.Names()
		}
	}

	return d, nil
}

func lookup(raw any, name string) (any, bool) {
	val, err := pathspec.Get(raw, name)
	if err != nil {
		return nil, false
	}
	return val, true
}

// structurallyEqual compares parsed values after canonicalizing both sides
// through a JSON round-trip, so that an int64 from one loader and a float64
// from a persisted baseline still compare equal when they denote the same
// number.
func structurallyEqual(a, b any) bool {
	return cmp.Equal(canonicalize(a), canonicalize(b))
}

func canonicalize(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return v
	}
	return out
}

// DefaultPath returns the path to use when a stage declares parameters
// without naming a file.
func DefaultPath(wdir, paramsFile string) string {
	wdir = strings.TrimSuffix(wdir, "/")
	if wdir == "" || wdir == "." {
		return paramsFile
	}
	return wdir + "/" + paramsFile
}
