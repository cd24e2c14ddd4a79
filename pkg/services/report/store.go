package report

import (
	"sync"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/rs/zerolog"
)

// Store is the per-session collection of pending report records, partitioned
// into the manual and AI provenance buckets. Both buckets are insertion
// ordered; records are immutable once appended.
type Store struct {
	mu     sync.Mutex
	manual []domain.ReportRecord
	ai     []domain.ReportRecord
	logger zerolog.Logger
}

// Snapshot is an immutable point-in-time view of both buckets, handed to the
// assembler so in-flight exports cannot be corrupted by concurrent removal.
type Snapshot struct {
	Manual []domain.ReportRecord
	AI     []domain.ReportRecord
}

func NewStore(logger zerolog.Logger) *Store {
	return &Store{logger: logger}
}

// Append adds a record to the named bucket, preserving insertion order, and
// returns the index the record landed at. That index is the positional key
// removal operates on, so callers must not derive it any other way.
func (s *Store) Append(record domain.ReportRecord, bucket domain.Bucket) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bucket == domain.BucketAI {
		s.ai = append(s.ai, record)
		return len(s.ai) - 1
	}
	s.manual = append(s.manual, record)
	return len(s.manual) - 1
}

// Remove deletes the record at index from the bucket, shifting subsequent
// indices down. The record's chart file is deleted best-effort: a missing or
// locked file is logged and swallowed, never surfaced to the caller.
func (s *Store) Remove(bucket domain.Bucket, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := &s.manual
	if bucket == domain.BucketAI {
		target = &s.ai
	}

	if index < 0 || index >= len(*target) {
		return domain.ErrIndexOutOfRange
	}

	removed := (*target)[index]
	*target = append((*target)[:index], (*target)[index+1:]...)

	if removed.ChartPath != "" {
		if err := charts.Remove(removed.ChartPath); err != nil {
			s.logger.Warn().
				Err(err).
				Str("chart_path", removed.ChartPath).
				Msg("failed to delete chart file for removed record")
		}
	}
	return nil
}

// Reset clears both buckets. Chart files already on disk are left alone;
// orphaned images are bounded by the chart directory's lifetime.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manual = nil
	s.ai = nil
}

// Snapshot copies both buckets. Later mutation of the store does not affect
// the returned view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Manual: make([]domain.ReportRecord, len(s.manual)),
		AI:     make([]domain.ReportRecord, len(s.ai)),
	}
	copy(snap.Manual, s.manual)
	copy(snap.AI, s.ai)
	return snap
}

// Counts reports the bucket sizes.
func (s *Store) Counts() (manual, ai int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.manual), len(s.ai)
}
