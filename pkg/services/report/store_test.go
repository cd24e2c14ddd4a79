package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(hint string) domain.ReportRecord {
	return domain.ReportRecord{SheetNameHint: hint, Provenance: domain.ProvenanceManual}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore(zerolog.Nop())

	s.Append(record("first"), domain.BucketManual)
	s.Append(record("second"), domain.BucketManual)
	s.Append(record("ai-one"), domain.BucketAI)

	snap := s.Snapshot()
	require.Len(t, snap.Manual, 2)
	require.Len(t, snap.AI, 1)
	assert.Equal(t, "first", snap.Manual[0].SheetNameHint)
	assert.Equal(t, "second", snap.Manual[1].SheetNameHint)
}

func TestStore_AppendReturnsPositionalIndex(t *testing.T) {
	s := NewStore(zerolog.Nop())

	assert.Equal(t, 0, s.Append(record("first"), domain.BucketManual))
	assert.Equal(t, 1, s.Append(record("second"), domain.BucketManual))
	assert.Equal(t, 0, s.Append(record("ai-one"), domain.BucketAI))
	assert.Equal(t, 1, s.Append(record("ai-two"), domain.BucketAI))

	// Removal shifts later indices down, so a fresh append reuses the slot.
	require.NoError(t, s.Remove(domain.BucketManual, 0))
	assert.Equal(t, 1, s.Append(record("third"), domain.BucketManual))
}

func TestStore_RemoveShiftsIndices(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.Append(record("a"), domain.BucketManual)
	s.Append(record("b"), domain.BucketManual)
	s.Append(record("c"), domain.BucketManual)

	require.NoError(t, s.Remove(domain.BucketManual, 0))

	snap := s.Snapshot()
	require.Len(t, snap.Manual, 2)
	assert.Equal(t, "b", snap.Manual[0].SheetNameHint)
	assert.Equal(t, "c", snap.Manual[1].SheetNameHint)
}

func TestStore_RemoveInvalidIndex(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.Append(record("a"), domain.BucketManual)

	assert.ErrorIs(t, s.Remove(domain.BucketManual, 1), domain.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Remove(domain.BucketManual, -1), domain.ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Remove(domain.BucketAI, 0), domain.ErrIndexOutOfRange)
}

func TestStore_RemoveDeletesChartFile(t *testing.T) {
	dir := t.TempDir()
	chartPath := filepath.Join(dir, "bar_City_by_Sales_x.png")
	require.NoError(t, os.WriteFile(chartPath, []byte("png"), 0o644))

	s := NewStore(zerolog.Nop())
	rec := record("a")
	rec.ChartPath = chartPath
	s.Append(rec, domain.BucketManual)

	require.NoError(t, s.Remove(domain.BucketManual, 0))

	_, err := os.Stat(chartPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RemoveWithDanglingChartPath(t *testing.T) {
	s := NewStore(zerolog.Nop())
	rec := record("a")
	rec.ChartPath = filepath.Join(t.TempDir(), "already-gone.png")
	s.Append(rec, domain.BucketManual)

	assert.NoError(t, s.Remove(domain.BucketManual, 0))
}

func TestStore_ResetClearsBothBuckets(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.Append(record("a"), domain.BucketManual)
	s.Append(record("b"), domain.BucketManual)
	s.Append(record("c"), domain.BucketAI)

	s.Reset()

	manual, ai := s.Counts()
	assert.Zero(t, manual)
	assert.Zero(t, ai)
}

func TestStore_SnapshotIsPointInTime(t *testing.T) {
	s := NewStore(zerolog.Nop())
	s.Append(record("a"), domain.BucketManual)

	snap := s.Snapshot()
	s.Append(record("b"), domain.BucketManual)
	require.NoError(t, s.Remove(domain.BucketManual, 0))

	require.Len(t, snap.Manual, 1)
	assert.Equal(t, "a", snap.Manual[0].SheetNameHint)
}
