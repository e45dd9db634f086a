package node

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/convert"
)

// Kind tags the closed set of node variants.
type Kind int

const (
	// KindValue is a primitive leaf.
	KindValue Kind = iota
	// KindList is an ordered sequence.
	KindList
	// KindMap is an insertion-ordered string-keyed mapping.
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Node is the closed variant over tree nodes. Implementations are Value,
// List and Map; nothing else satisfies it usefully.
type Node interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Meta returns the node's provenance record.
	Meta() Meta

	// Select resolves a dotted path below this node. An empty path returns
	// the node itself.
	Select(path string) (Node, error)

	// Sources maps each contributing source identifier to the paths that
	// were taken from it. Inline data (empty source) is excluded.
	Sources() map[string][]string

	// Clone returns a structurally independent deep copy.
	Clone() Node

	// Interface returns the plain nested Go value.
	Interface() any

	fmt.Stringer
}

// Value is a primitive leaf: nil, bool, int64, float64 or string.
type Value struct {
	value any
	meta  Meta
}

// NewValue creates a leaf node. The caller is responsible for the value
// being a supported primitive; use Convert for arbitrary input.
func NewValue(value any, meta Meta) *Value {
	return &Value{value: value, meta: meta}
}

// Kind returns KindValue.
func (v *Value) Kind() Kind { return KindValue }

// Meta returns the provenance record.
func (v *Value) Meta() Meta { return v.meta }

// Value returns the wrapped primitive.
func (v *Value) Value() any { return v.value }

// Interface returns the wrapped primitive.
func (v *Value) Interface() any { return v.value }

// Select fails for any non-empty path: a primitive has no children.
func (v *Value) Select(path string) (Node, error) {
	if path == "" {
		return v, nil
	}
	segment, _, _ := strings.Cut(path, ".")
	return nil, fmt.Errorf("%w: could not find '%s' in primitive value '%s'", errors.ErrLookup, strings.TrimSpace(segment), v)
}

// Sources returns the leaf's own source and path, if it has a source.
func (v *Value) Sources() map[string][]string {
	if v.meta.Source == "" {
		return map[string][]string{}
	}
	return map[string][]string{v.meta.Source: {v.meta.PathString()}}
}

// Clone returns a copy of the leaf.
func (v *Value) Clone() Node {
	clone := *v
	return &clone
}

// String renders the primitive the way it would appear spliced into a
// template string.
func (v *Value) String() string {
	return formatPrimitive(v.value)
}

func formatPrimitive(value any) string {
	switch t := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Convert builds a node from arbitrary raw input, deriving the child Meta
// from the parent's by appending the key segment. Existing nodes pass
// through unchanged, keeping their own Meta. Unsupported types return
// ErrNodeType: that is a contract violation by the data producer.
func Convert(parent Meta, key string, raw any) (Node, error) {
	if n, ok := raw.(Node); ok {
		return n, nil
	}

	meta := parent.Descend(key)

	switch t := convert.Normalize(raw).(type) {
	case nil, bool, int64, float64, string:
		return NewValue(t, meta), nil
	case []any:
		return NewList(t, meta)
	case map[string]any:
		return NewMap(t, meta)
	default:
		return nil, fmt.Errorf("%w: value of type %T in '%s'", errors.ErrNodeType, raw, meta)
	}
}
