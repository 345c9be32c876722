package trace

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Status is a live view of what compilers are building, one lane per
// entry file. Heartbeats print it, so a hang shows where it hangs.
type Status struct {
	mu      sync.Mutex
	lanes   map[string]string
	changed time.Time
	now     func() time.Time
}

func NewStatus() *Status {
	return &Status{lanes: make(map[string]string), now: time.Now, changed: time.Now()}
}

// Set records what lane is doing. An empty value clears the lane.
func (s *Status) Set(lane, value string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lanes[lane] == value {
		return
	}
	if value == "" {
		delete(s.lanes, lane)
	} else {
		s.lanes[lane] = value
	}
	s.changed = s.now()
}

// Idle reports how long nothing has changed.
func (s *Status) Idle() time.Duration {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.changed)
}

// String: "main.th: Demo.Main > Geometry; util.th: Util", lanes sorted.
func (s *Status) String() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.lanes))
	for _, lane := range slices.Sorted(maps.Keys(s.lanes)) {
		parts = append(parts, lane+": "+s.lanes[lane])
	}
	return strings.Join(parts, "; ")
}
