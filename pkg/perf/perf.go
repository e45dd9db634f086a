// Package perf provides lightweight call timing for hot paths.
//
// Usage:
//
//	defer perf.Track(cfg, "node.Context.Select")()
//
// Timing is collected only when the configuration enables it; otherwise Track
// returns a no-op closure so call sites stay free of conditionals.
package perf

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paramflow/paramflow/pkg/schema"
)

type stat struct {
	calls int64
	total time.Duration
}

var (
	mu    sync.Mutex
	stats = map[string]*stat{}

	enabled atomic.Bool
)

func noop() {}

// SetEnabled switches timing collection on for call sites that pass a nil
// configuration.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Track records one timed call of the named function. Collection happens
// when the configuration enables it, or globally via SetEnabled; otherwise
// Track is a no-op.
func Track(cfg *schema.Configuration, name string) func() {
	if (cfg == nil || !cfg.TrackPerf) && !enabled.Load() {
		return noop
	}

	start := time.Now()
	return func() {
		elapsed := time.Since(start)

		mu.Lock()
		defer mu.Unlock()

		s, ok := stats[name]
		if !ok {
			s = &stat{}
			stats[name] = s
		}
		s.calls++
		s.total += elapsed
	}
}

// Entry is one aggregated timing row.
type Entry struct {
	Name  string
	Calls int64
	Total time.Duration
}

// Snapshot returns the collected timings sorted by total descending.
func Snapshot() []Entry {
	mu.Lock()
	defer mu.Unlock()

	entries := make([]Entry, 0, len(stats))
	for name, s := range stats {
		entries = append(entries, Entry{Name: name, Calls: s.calls, Total: s.total})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	return entries
}

// Reset clears all collected timings.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	stats = map[string]*stat{}
}
