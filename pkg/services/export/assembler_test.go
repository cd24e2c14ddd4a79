package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/de-tools/data-lens/pkg/services/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func pivot(t *testing.T) *domain.Table {
	t.Helper()
	return domain.NewTable([]string{"cat", "val"}, [][]string{{"A", "10"}})
}

func openResult(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestAssemble_RoundTripsPivotTable(t *testing.T) {
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{
			SheetNameHint: "cat_val",
			PivotTable:    pivot(t),
			Provenance:    domain.ProvenanceManual,
		}},
	}

	res, err := a.Assemble(context.Background(), nil, snap, "out")
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, a.State())
	assert.Equal(t, 1, res.Sheets)

	f := openResult(t, res.Path)
	assert.Equal(t, []string{"MAN_cat_val"}, f.GetSheetList())

	for cell, want := range map[string]string{"A1": "cat", "B1": "val", "A2": "A", "B2": "10"} {
		got, err := f.GetCellValue("MAN_cat_val", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestAssemble_CanonicalOrderAndPrefixes(t *testing.T) {
	dataset := domain.NewTable([]string{"City", "Sales"}, [][]string{{"A", "10"}})
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{SheetNameHint: "City_Sales", Provenance: domain.ProvenanceManual}},
		AI:     []domain.ReportRecord{{SheetNameHint: "City_Sales", Provenance: domain.ProvenanceAI}},
	}

	res, err := a.Assemble(context.Background(), dataset, snap, "out")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Sheets)

	f := openResult(t, res.Path)
	assert.Equal(t, []string{"DATA", "MAN_City_Sales", "AI_City_Sales"}, f.GetSheetList())
}

func TestAssemble_EmptyDatasetOmitsOverviewSheet(t *testing.T) {
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{SheetNameHint: "only", PivotTable: pivot(t), Provenance: domain.ProvenanceManual}},
	}

	res, err := a.Assemble(context.Background(), nil, snap, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)
	assert.NotContains(t, f.GetSheetList(), "DATA")
}

func TestAssemble_MissingChartFileWritesPlaceholder(t *testing.T) {
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{
			SheetNameHint: "gone",
			PivotTable:    pivot(t),
			ChartPath:     filepath.Join(t.TempDir(), "deleted.png"),
			Provenance:    domain.ProvenanceManual,
		}},
	}

	res, err := a.Assemble(context.Background(), nil, snap, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)
	got, err := f.GetCellValue("MAN_gone", "F1")
	require.NoError(t, err)
	assert.Equal(t, "No chart image found.", got)
}

func TestAssemble_EmptyPivotWritesNoteSheet(t *testing.T) {
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		AI: []domain.ReportRecord{{SheetNameHint: "empty", Provenance: domain.ProvenanceAI}},
	}

	res, err := a.Assemble(context.Background(), nil, snap, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)
	got, err := f.GetCellValue("AI_empty", "A1")
	require.NoError(t, err)
	assert.Equal(t, "No pivot table data.", got)
}

func TestAssemble_BlankInsightWritesPlaceholderAtAnchor(t *testing.T) {
	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{
			SheetNameHint: "blank",
			PivotTable:    pivot(t),
			Insight:       "   \n",
			Provenance:    domain.ProvenanceManual,
		}},
	}

	res, err := a.Assemble(context.Background(), nil, snap, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)
	got, err := f.GetCellValue("MAN_blank", "F24")
	require.NoError(t, err)
	assert.Equal(t, "No insight.", got)
}

func TestAssemble_EmbedsRenderedChart(t *testing.T) {
	chartDir := t.TempDir()
	renderer := charts.NewRenderer(chartDir)
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{{"A", "40"}, {"B", "20"}})

	handle, err := renderer.Render(charts.KindBar, table, "City", "Sales")
	require.NoError(t, err)

	a := NewAssembler(t.TempDir(), nil)
	snap := report.Snapshot{
		Manual: []domain.ReportRecord{{
			SheetNameHint: "City_Sales",
			PivotTable:    table,
			ChartPath:     handle.Path,
			Insight:       "B trails A.",
			Provenance:    domain.ProvenanceManual,
		}},
	}

	res, err := a.Assemble(context.Background(), table, snap, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)

	pics, err := f.GetPictures("MAN_City_Sales", "F1")
	require.NoError(t, err)
	assert.NotEmpty(t, pics)

	insight, err := f.GetCellValue("MAN_City_Sales", "F24")
	require.NoError(t, err)
	assert.Equal(t, "B trails A.", insight)
}

func TestAssemble_OutputDirFailureIsAssemblyError(t *testing.T) {
	// A file where the export directory should be makes MkdirAll fail.
	base := t.TempDir()
	blocked := filepath.Join(base, "not-a-dir")
	writeFile(t, blocked)

	a := NewAssembler(blocked, nil)
	_, err := a.Assemble(context.Background(), nil, report.Snapshot{}, "out")
	require.Error(t, err)

	var asmErr *domain.AssemblyError
	assert.True(t, errors.As(err, &asmErr))
	assert.Equal(t, StateFailed, a.State())
}

func TestAssemble_EmptyStoreProducesOnlyDataSheet(t *testing.T) {
	dataset := domain.NewTable([]string{"x"}, [][]string{{"1"}})
	a := NewAssembler(t.TempDir(), nil)

	res, err := a.Assemble(context.Background(), dataset, report.Snapshot{}, "out")
	require.NoError(t, err)

	f := openResult(t, res.Path)
	assert.Equal(t, []string{"DATA"}, f.GetSheetList())
}

func TestAssemble_OverviewRowCapBoundsDataset(t *testing.T) {
	rows := make([]domain.Row, overviewRowCap+5)
	for i := range rows {
		rows[i] = domain.Row{domain.NumberValue(float64(i))}
	}
	dataset := domain.FromRows([]string{"n"}, rows)

	capped := dataset.Head(overviewRowCap)
	assert.Len(t, capped.Rows, overviewRowCap)
	assert.Equal(t, dataset.Columns, capped.Columns)

	// Under the cap the overview carries every row unchanged.
	assert.Len(t, dataset.Head(overviewRowCap+10).Rows, overviewRowCap+5)
}
