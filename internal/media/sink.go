package media

import (
	"sort"
	"sync"
)

// TrackStats is a display snapshot of one bound track.
type TrackStats struct {
	Kind    string
	Packets uint64
	Bytes   uint64
}

// StatsSink is the terminal client's display sink: it cannot render video,
// so binding a stream means surfacing per-track liveness counters to the UI.
type StatsSink struct {
	mu     sync.Mutex
	tracks map[string]*TrackStats
}

func NewStatsSink() *StatsSink {
	return &StatsSink{tracks: make(map[string]*TrackStats)}
}

// Bind registers a track under the sink.
func (s *StatsSink) Bind(id, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[id] = &TrackStats{Kind: kind}
}

// Sample records one media unit flowing through a bound track. Samples for
// tracks that were unbound in the meantime are dropped.
func (s *StatsSink) Sample(id string, bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tracks[id]
	if !ok {
		return
	}
	st.Packets++
	st.Bytes += uint64(bytes)
}

// Clear removes every binding.
func (s *StatsSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = make(map[string]*TrackStats)
}

// Bound reports whether any track is currently bound.
func (s *StatsSink) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks) > 0
}

// Snapshot returns the current stats ordered by kind for stable display.
func (s *StatsSink) Snapshot() []TrackStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrackStats, 0, len(s.tracks))
	for _, st := range s.tracks {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
