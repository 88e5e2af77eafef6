package monitoring

import (
	"maps"
	"sync"
)

// LoadStats is a point-in-time copy of what a load has seen.
type LoadStats struct {
	FilesLoaded int64            `json:"files_loaded"`
	FilesFailed int64            `json:"files_failed"`
	RowsLoaded  int64            `json:"rows_loaded"`
	RowsSkipped int64            `json:"rows_skipped"`
	SkipReasons map[string]int64 `json:"skip_reasons,omitempty"`
}

// Stats collects load statistics.
type Stats struct {
	mu      sync.RWMutex
	current LoadStats
}

func NewStats() *Stats {
	return &Stats{
		current: LoadStats{SkipReasons: make(map[string]int64)},
	}
}

func (s *Stats) RecordFileLoaded(rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.FilesLoaded++
	s.current.RowsLoaded += int64(rows)
}

func (s *Stats) RecordFileFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.FilesFailed++
}

func (s *Stats) RecordRowSkipped(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.RowsSkipped++
	s.current.SkipReasons[reason]++
}

// Snapshot returns a copy safe to hand out.
func (s *Stats) Snapshot() LoadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.current
	out.SkipReasons = maps.Clone(s.current.SkipReasons)
	return out
}
