// Package hash computes the content hash over resolved parameter values
// that serves as a stage's reproducibility cache key.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Info is an ordered name→value map of parameter values plus the digest of
// its canonical encoding. The digest is what lock state persists; the value
// map is kept for per-name status diffing.
type Info struct {
	names  []string
	values map[string]any
	digest string
}

// Compute builds an Info over the values, ordered by names. Names absent
// from the value map are skipped; the caller decides whether that is fatal.
func Compute(names []string, values map[string]any) (*Info, error) {
	ordered := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, name := range names {
		if _, ok := values[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		ordered = append(ordered, name)
	}

	digest, err := digestOf(ordered, values)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]any, len(ordered))
	for _, name := range ordered {
		kept[name] = values[name]
	}

	return &Info{names: ordered, values: kept, digest: digest}, nil
}

// FromMap reconstructs an Info from a persisted value map, ordering names
// lexically.
func FromMap(values map[string]any) (*Info, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return Compute(names, values)
}

// digestOf hashes the canonical JSON encoding of the ordered name/value
// pairs. Nested maps are deterministic: encoding/json sorts map keys.
func digestOf(names []string, values map[string]any) (string, error) {
	pairs := make([][2]any, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]any{name, encodable(values[name])})
	}

	encoded, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("failed to encode parameter values: %w", err)
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// encodable rewrites values JSON cannot carry. Non-finite floats are legal
// parameter values (YAML .inf/.nan) and hash as their string form.
func encodable(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = encodable(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, item := range t {
			out[key] = encodable(item)
		}
		return out
	default:
		return v
	}
}

// Names returns the parameter names in order.
func (i *Info) Names() []string {
	if i == nil {
		return nil
	}
	out := make([]string, len(i.names))
	copy(out, i.names)
	return out
}

// Value returns the recorded value for a name.
func (i *Info) Value(name string) (any, bool) {
	if i == nil {
		return nil, false
	}
	v, ok := i.values[name]
	return v, ok
}

// Map returns a copy of the name→value map.
func (i *Info) Map() map[string]any {
	if i == nil {
		return nil
	}
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}

// Digest returns the hex digest of the canonical encoding.
func (i *Info) Digest() string {
	if i == nil {
		return ""
	}
	return i.digest
}

// Equal reports whether two Infos carry the same digest.
func (i *Info) Equal(other *Info) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.digest == other.digest
}
