package export

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/report"
	"github.com/rs/zerolog"
)

// State tracks assembly progress. Failed is terminal and reachable from any
// in-progress state; per-record recoverable problems never cause it.
type State string

const (
	StateIdle            State = "idle"
	StateCollecting      State = "collecting_records"
	StateAllocating      State = "allocating_names"
	StateWritingOverview State = "writing_overview_sheet"
	StateWritingReports  State = "writing_report_sheets"
	StateFinalized       State = "finalized"
	StateFailed          State = "failed"
)

const (
	// overviewSheetName is the fixed name of the raw-data sheet.
	overviewSheetName = "DATA"
	// overviewRowCap bounds the overview sheet. A hard cap, not configurable.
	overviewRowCap = 200_000
)

// Translator resolves user-visible placeholder strings. The zero-dependency
// default returns the fallback unchanged.
type Translator interface {
	Translate(key, fallback string) string
}

type noopTranslator struct{}

func (noopTranslator) Translate(_, fallback string) string { return fallback }

// Result describes a finished export.
type Result struct {
	// Path is the absolute location of the written document.
	Path string
	// Sheets counts every sheet in the document, overview included.
	Sheets int
}

// Assembler merges both record buckets into one spreadsheet document:
// an optional DATA overview sheet plus one sheet per record, in canonical
// manual-then-AI order, with collision-free sheet names.
type Assembler struct {
	exportDir  string
	translator Translator
	state      State
}

func NewAssembler(exportDir string, translator Translator) *Assembler {
	if translator == nil {
		translator = noopTranslator{}
	}
	return &Assembler{exportDir: exportDir, translator: translator, state: StateIdle}
}

// State reports the current assembly state.
func (a *Assembler) State() State {
	return a.state
}

type pendingSheet struct {
	name   string
	record domain.ReportRecord
}

// Assemble runs the full pipeline and returns the written document location.
// Structural failures (output dir/file) abort the run with an AssemblyError;
// missing charts, corrupt images and empty insights degrade to visible
// placeholder notes on the affected sheet only.
func (a *Assembler) Assemble(
	ctx context.Context,
	dataset *domain.Table,
	snapshot report.Snapshot,
	baseName string,
) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	// CollectingRecords: provenance prefixes are applied before allocation,
	// so manual and AI records sharing a hint can never collide.
	a.state = StateCollecting
	pending := make([]pendingSheet, 0, len(snapshot.Manual)+len(snapshot.AI))
	for _, rec := range snapshot.Manual {
		pending = append(pending, pendingSheet{name: rec.Provenance.SheetPrefix() + rec.SheetNameHint, record: rec})
	}
	for _, rec := range snapshot.AI {
		pending = append(pending, pendingSheet{name: rec.Provenance.SheetPrefix() + rec.SheetNameHint, record: rec})
	}

	// AllocatingNames: fixed canonical order, overview name reserved first.
	a.state = StateAllocating
	used := map[string]struct{}{overviewSheetName: {}}
	for i := range pending {
		pending[i].name = AllocateSheetName(pending[i].name, used)
	}

	if err := os.MkdirAll(a.exportDir, 0o755); err != nil {
		return nil, a.fail("prepare", err)
	}
	outPath, err := outputPath(a.exportDir, baseName)
	if err != nil {
		return nil, a.fail("prepare", err)
	}

	writer, err := NewDocumentWriter()
	if err != nil {
		return nil, a.fail("prepare", err)
	}

	sheets := 0

	// WritingOverviewSheet: the full cleaned dataset, capped; an empty
	// dataset produces no sheet at all rather than an empty one.
	a.state = StateWritingOverview
	if !dataset.IsEmpty() {
		if err := writer.CreateSheet(overviewSheetName); err != nil {
			return nil, a.fail("overview", err)
		}
		if err := writer.WriteTable(overviewSheetName, dataset.Head(overviewRowCap)); err != nil {
			return nil, a.fail("overview", err)
		}
		sheets++
	}

	a.state = StateWritingReports
	for _, sheet := range pending {
		if err := a.writeReportSheet(writer, sheet, logger); err != nil {
			return nil, a.fail("report_sheets", err)
		}
		sheets++
	}

	if err := writer.Finalize(outPath); err != nil {
		return nil, a.fail("finalize", err)
	}

	a.state = StateFinalized
	logger.Info().
		Str("path", outPath).
		Int("sheets", sheets).
		Msg("report document written")

	return &Result{Path: outPath, Sheets: sheets}, nil
}

func (a *Assembler) writeReportSheet(writer *DocumentWriter, sheet pendingSheet, logger *zerolog.Logger) error {
	if err := writer.CreateSheet(sheet.name); err != nil {
		return err
	}

	rec := sheet.record
	if !rec.PivotTable.IsEmpty() {
		if err := writer.WriteTable(sheet.name, rec.PivotTable); err != nil {
			return err
		}
	} else {
		note := a.translator.Translate("report_no_pivot", "No pivot table data.")
		if err := writer.WriteNote(sheet.name, "A1", note); err != nil {
			return err
		}
	}

	if err := writer.SetWideColumn(sheet.name); err != nil {
		return err
	}

	if err := a.writeChart(writer, sheet.name, rec.ChartPath, logger); err != nil {
		return err
	}

	insight := rec.Insight
	if isBlank(insight) {
		insight = a.translator.Translate("report_no_insight", "No insight.")
	}
	return writer.WriteInsight(sheet.name, insight)
}

// writeChart embeds the record's chart at the image anchor. A dangling path
// or a failing embed degrades to a placeholder note; only note-write failures
// propagate, since those indicate a broken document.
func (a *Assembler) writeChart(writer *DocumentWriter, sheet, chartPath string, logger *zerolog.Logger) error {
	if chartPath == "" || !fileExists(chartPath) {
		note := a.translator.Translate("report_no_chart", "No chart image found.")
		return writer.WriteNote(sheet, imageAnchor, note)
	}

	if err := writer.EmbedImage(sheet, chartPath); err != nil {
		logger.Warn().
			Err(err).
			Str("sheet", sheet).
			Str("chart_path", chartPath).
			Msg("chart embed failed, writing placeholder")
		note := a.translator.Translate("report_chart_error", fmt.Sprintf("[chart embed error] %v", err))
		return writer.WriteNote(sheet, imageAnchor, note)
	}
	return nil
}

func (a *Assembler) fail(stage string, err error) error {
	a.state = StateFailed
	return &domain.AssemblyError{Stage: stage, Err: err}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
