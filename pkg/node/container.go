package node

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paramflow/paramflow/errors"
	"github.com/paramflow/paramflow/pkg/pathspec"
)

// List is an ordered sequence of nodes.
type List struct {
	items []Node
	meta  Meta
}

// NewList builds a List from raw items, converting each on insertion.
func NewList(raw []any, meta Meta) (*List, error) {
	l := &List{meta: meta, items: make([]Node, 0, len(raw))}
	for _, item := range raw {
		if err := l.Append(item); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Kind returns KindList.
func (l *List) Kind() Kind { return KindList }

// Meta returns the provenance record.
func (l *List) Meta() Meta { return l.meta }

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// Index returns the item at idx.
func (l *List) Index(idx int) (Node, bool) {
	if idx < 0 || idx >= len(l.items) {
		return nil, false
	}
	return l.items[idx], true
}

// Append converts and appends one item.
func (l *List) Append(raw any) error {
	n, err := Convert(l.meta, pathspec.AppendIndex("", len(l.items)), raw)
	if err != nil {
		return err
	}
	l.items = append(l.items, n)
	return nil
}

// Items returns the underlying item slice. Callers must not mutate it.
func (l *List) Items() []Node { return l.items }

// Select resolves a dotted path below the list; the first segment must
// parse as an index.
func (l *List) Select(path string) (Node, error) {
	if path == "" {
		return l, nil
	}

	segment, rest, _ := strings.Cut(path, pathspec.Separator)
	segment = strings.TrimSpace(segment)

	idx, ok := pathspec.ParseIndex(segment)
	if !ok || idx >= len(l.items) {
		return nil, fmt.Errorf("%w: could not find '%s' in a list of length %d", errors.ErrLookup, segment, len(l.items))
	}

	return l.items[idx].Select(rest)
}

// Sources reports the list's own provenance anchor. Selecting a whole list
// tracks the list's path, not each element's.
func (l *List) Sources() map[string][]string {
	if l.meta.Source == "" {
		return map[string][]string{}
	}
	return map[string][]string{l.meta.Source: {l.meta.PathString()}}
}

// Clone returns a deep copy.
func (l *List) Clone() Node {
	clone := &List{meta: l.meta, items: make([]Node, len(l.items))}
	for i, item := range l.items {
		clone.items[i] = item.Clone()
	}
	return clone
}

// Interface returns the plain nested value.
func (l *List) Interface() any {
	out := make([]any, len(l.items))
	for i, item := range l.items {
		out[i] = item.Interface()
	}
	return out
}

// String renders the plain nested value.
func (l *List) String() string {
	return fmt.Sprintf("%v", l.Interface())
}

// Map is an insertion-ordered, string-keyed mapping of nodes.
type Map struct {
	keys  []string
	items map[string]Node
	meta  Meta
}

// NewMap builds a Map from raw data, converting values on insertion.
// Raw keys are visited in sorted order so construction is deterministic.
func NewMap(raw map[string]any, meta Meta) (*Map, error) {
	m := NewEmptyMap(meta)
	if err := m.update(raw); err != nil {
		return nil, err
	}
	return m, nil
}

// NewEmptyMap creates an empty Map with the given Meta.
func NewEmptyMap(meta Meta) *Map {
	return &Map{items: map[string]Node{}, meta: meta}
}

func (m *Map) update(raw map[string]any) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := m.Set(key, raw[key]); err != nil {
			return err
		}
	}
	return nil
}

// Kind returns KindMap.
func (m *Map) Kind() Kind { return KindMap }

// Meta returns the provenance record.
func (m *Map) Meta() Meta { return m.meta }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.items) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	n, ok := m.items[key]
	return n, ok
}

// Set converts and stores a value under key, replacing any existing entry.
// The child Meta descends from the map's own.
func (m *Map) Set(key string, raw any) error {
	n, err := Convert(m.meta, key, raw)
	if err != nil {
		return err
	}
	m.put(key, n)
	return nil
}

// SetLocal converts and stores inline data under key. The node carries no
// source, so it never surfaces in tracked provenance.
func (m *Map) SetLocal(key string, raw any) error {
	n, err := Convert(Meta{}, key, raw)
	if err != nil {
		return err
	}
	m.put(key, n)
	return nil
}

// SetAlias stores an existing node under key with its provenance frozen:
// the node becomes a fixed anchor whose path is not extended by descent.
func (m *Map) SetAlias(key string, n Node) {
	m.put(key, withMeta(n.Clone(), n.Meta().WithAlias()))
}

func (m *Map) put(key string, n Node) {
	if _, exists := m.items[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.items[key] = n
}

// Delete removes an entry.
func (m *Map) Delete(key string) {
	if _, exists := m.items[key]; !exists {
		return
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Select resolves a dotted path below the map; the first segment is used as
// a string key.
func (m *Map) Select(path string) (Node, error) {
	if path == "" {
		return m, nil
	}

	segment, rest, _ := strings.Cut(path, pathspec.Separator)
	segment = strings.TrimSpace(segment)

	child, ok := m.items[segment]
	if !ok {
		keys := m.Keys()
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: could not find '%s' among keys %v", errors.ErrLookup, segment, keys)
	}

	return child.Select(rest)
}

// Sources returns nothing for a map: selecting a whole mapping is not a
// tracked parameter use.
func (m *Map) Sources() map[string][]string {
	return map[string][]string{}
}

// Clone returns a deep copy.
func (m *Map) Clone() Node {
	clone := NewEmptyMap(m.meta)
	clone.keys = make([]string, len(m.keys))
	copy(clone.keys, m.keys)
	for key, item := range m.items {
		clone.items[key] = item.Clone()
	}
	return clone
}

// Interface returns the plain nested value.
func (m *Map) Interface() any {
	out := make(map[string]any, len(m.items))
	for key, item := range m.items {
		out[key] = item.Interface()
	}
	return out
}

// String renders the plain nested value.
func (m *Map) String() string {
	return fmt.Sprintf("%v", m.Interface())
}

// withMeta rebuilds a node with a replacement Meta.
func withMeta(n Node, meta Meta) Node {
	switch t := n.(type) {
	case *Value:
		return NewValue(t.value, meta)
	case *List:
		t.meta = meta
		return t
	case *Map:
		t.meta = meta
		return t
	default:
		return n
	}
}
