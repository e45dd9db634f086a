// Package pathspec implements the dotted-path addressing convention shared
// by the node tree and the params dependency layer.
//
// A dotted path such as "train.optimizer.lr" or "matrix.0.name" addresses
// nested map/list structure; integer segments index lists.
package pathspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/paramflow/paramflow/errors"
)

// Separator joins path segments.
const Separator = "."

// Split splits a dotted path into its segments.
// Examples:
//
//	Split("vars.name") -> ["vars", "name"]
//	Split("models.0.thresh") -> ["models", "0", "thresh"]
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Join joins segments into a dotted path.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Append appends a segment to an existing dotted path.
func Append(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + Separator + segment
}

// AppendIndex appends a list index to an existing dotted path.
func AppendIndex(base string, index int) string {
	return Append(base, strconv.Itoa(index))
}

// ParseIndex parses a path segment as a list index.
func ParseIndex(segment string) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(segment))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Get resolves a dotted path against plain nested data (maps and lists),
// one segment at a time. A segment that cannot be resolved returns an
// ErrLookup-wrapped error naming the segment and summarizing the container.
func Get(data any, path string) (any, error) {
	current := data
	for _, segment := range Split(path) {
		segment = strings.TrimSpace(segment)

		switch container := current.(type) {
		case map[string]any:
			val, ok := container[segment]
			if !ok {
				return nil, fmt.Errorf("%w: could not find '%s' among keys %v", errors.ErrLookup, segment, sortedKeys(container))
			}
			current = val
		case []any:
			idx, ok := ParseIndex(segment)
			if !ok || idx >= len(container) {
				return nil, fmt.Errorf("%w: could not find '%s' in a list of length %d", errors.ErrLookup, segment, len(container))
			}
			current = container[idx]
		default:
			return nil, fmt.Errorf("%w: could not find '%s' in a non-container value %v", errors.ErrLookup, segment, current)
		}
	}

	return current, nil
}

// Has reports whether the dotted path resolves against the data.
func Has(data any, path string) bool {
	_, err := Get(data, path)
	return err == nil
}

func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
