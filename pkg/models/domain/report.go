package domain

import "time"

// Provenance tags which flow produced a report record.
type Provenance string

const (
	ProvenanceManual Provenance = "MANUAL"
	ProvenanceAI     Provenance = "AI"
)

// SheetPrefix is prepended to the sheet name hint at export time, before
// name allocation, so manual and AI records can never collide on the same hint.
func (p Provenance) SheetPrefix() string {
	if p == ProvenanceAI {
		return "AI_"
	}
	return "MAN_"
}

// ReportRecord is one unit of analysis output pending export. Records are
// immutable after creation; the only lifecycle transition is removal.
type ReportRecord struct {
	// SheetNameHint is the proposed sheet identifier, typically
	// "<category>_<numeric>". Not unique and not yet spreadsheet-legal.
	SheetNameHint string
	// PivotTable is the aggregated table, nil when aggregation or rendering
	// never produced one.
	PivotTable *Table
	// ChartPath references the rendered chart image. The record holds the
	// path only; the file may have been deleted out-of-band, and consumers
	// must treat a dangling path as "no image available".
	ChartPath string
	// Insight is external generated text. Never validated; error strings
	// from the producer are shown to the user as-is.
	Insight    string
	Provenance Provenance
	CreatedAt  time.Time
}

// Bucket identifies one of the two provenance-ordered record sequences.
type Bucket string

const (
	BucketManual Bucket = "manual"
	BucketAI     Bucket = "ai"
)
