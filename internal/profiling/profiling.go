// Package profiling accumulates per-frame wall time for named sections such as
// "stream.step" or "clutter.step".
package profiling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Section is the accumulated time and call count of one name.
type Section struct {
	Name  string
	Total time.Duration
	Calls int
}

var (
	mu       sync.Mutex
	sections = make(map[string]*Section)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("stream.tick")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s, ok := sections[name]
		if !ok {
			s = &Section{Name: name}
			sections[name] = s
		}
		s.Total += d
		s.Calls++
		mu.Unlock()
	}
}

// ResetFrame clears the totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(sections)
	mu.Unlock()
}

// Snapshot returns the sections recorded since the last reset, slowest first.
func Snapshot() []Section {
	mu.Lock()
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, *s)
	}
	mu.Unlock()
	slices.SortFunc(out, func(a, b Section) int {
		if a.Total != b.Total {
			if a.Total > b.Total {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// TopN formats the n slowest sections, e.g. "stream.tick:4.2ms(1), stream.step:3.9ms(3)".
func TopN(n int) string {
	ss := Snapshot()
	n = min(n, len(ss))
	parts := make([]string, 0, n)
	for _, s := range ss[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms(%d)", s.Name, float64(s.Total.Microseconds())/1000, s.Calls))
	}
	return strings.Join(parts, ", ")
}
