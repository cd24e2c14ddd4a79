package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDocumentWriter_FinalizeDropsDefaultSheet(t *testing.T) {
	w, err := NewDocumentWriter()
	require.NoError(t, err)
	require.NoError(t, w.CreateSheet("REPORT"))

	out := filepath.Join(t.TempDir(), "doc.xlsx")
	require.NoError(t, w.Finalize(out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"REPORT"}, f.GetSheetList())
}

func TestDocumentWriter_FinalizeLeavesNoTempFile(t *testing.T) {
	w, err := NewDocumentWriter()
	require.NoError(t, err)
	require.NoError(t, w.CreateSheet("REPORT"))

	dir := t.TempDir()
	out := filepath.Join(dir, "doc.xlsx")
	require.NoError(t, w.Finalize(out))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.xlsx", entries[0].Name())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"REPORT"}, f.GetSheetList())
}

func TestDocumentWriter_WriteTableTypesCells(t *testing.T) {
	w, err := NewDocumentWriter()
	require.NoError(t, err)
	require.NoError(t, w.CreateSheet("T"))

	table := domain.NewTable([]string{"City", "Sales"}, [][]string{{"A", "10.5"}})
	require.NoError(t, w.WriteTable("T", table))

	out := filepath.Join(t.TempDir(), "doc.xlsx")
	require.NoError(t, w.Finalize(out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	city, err := f.GetCellValue("T", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A", city)

	sales, err := f.GetCellValue("T", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10.5", sales)
}

func TestDocumentWriter_EmbedMissingImageFails(t *testing.T) {
	w, err := NewDocumentWriter()
	require.NoError(t, err)
	require.NoError(t, w.CreateSheet("T"))

	assert.Error(t, w.EmbedImage("T", filepath.Join(t.TempDir(), "nope.png")))
}
