package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// Layout contract shared with the assembler: pivot tables start at A1, column
// F hosts the chart image (anchored at F1) and the insight text (anchored at
// F24), and F is widened so neither gets clipped by default column width.
const (
	wideColumn      = "F"
	wideColumnWidth = 60.0
	imageAnchor     = "F1"
	insightAnchor   = "F24"
	imageScale      = 0.6
)

// DocumentWriter wraps the spreadsheet backend with the handful of primitives
// the assembler needs. Cell addressing follows the layout contract above.
type DocumentWriter struct {
	file         *excelize.File
	noteStyle    int
	wrapStyle    int
	createdSheet bool
}

func NewDocumentWriter() (*DocumentWriter, error) {
	f := excelize.NewFile()

	noteStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "666666"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note style: %w", err)
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wrap style: %w", err)
	}

	return &DocumentWriter{file: f, noteStyle: noteStyle, wrapStyle: wrapStyle}, nil
}

// CreateSheet adds a named sheet. The name must already be allocator-legal.
func (w *DocumentWriter) CreateSheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	w.createdSheet = true
	return nil
}

// WriteTable writes the table with a header row starting at A1.
func (w *DocumentWriter) WriteTable(sheet string, t *domain.Table) error {
	for c, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := w.file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header %q: %w", col, err)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := w.writeCell(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *DocumentWriter) writeCell(sheet, cell string, v domain.Value) error {
	var err error
	switch {
	case v.IsNull:
		return nil
	case v.IsNum:
		err = w.file.SetCellValue(sheet, cell, v.Num)
	default:
		err = w.file.SetCellValue(sheet, cell, v.Raw)
	}
	if err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}

// SetWideColumn widens the reserved chart/insight column.
func (w *DocumentWriter) SetWideColumn(sheet string) error {
	if err := w.file.SetColWidth(sheet, wideColumn, wideColumn, wideColumnWidth); err != nil {
		return fmt.Errorf("failed to widen column %s: %w", wideColumn, err)
	}
	return nil
}

// EmbedImage anchors the image file at the top of the wide column, scaled
// down so the sheet stays readable.
func (w *DocumentWriter) EmbedImage(sheet, path string) error {
	opts := &excelize.GraphicOptions{
		ScaleX:      imageScale,
		ScaleY:      imageScale,
		Positioning: "oneCell",
	}
	if err := w.file.AddPicture(sheet, imageAnchor, path, opts); err != nil {
		return fmt.Errorf("failed to embed image %q: %w", path, err)
	}
	return nil
}

// WriteNote writes italic gray placeholder text at the given cell.
func (w *DocumentWriter) WriteNote(sheet, cell, text string) error {
	if err := w.file.SetCellValue(sheet, cell, text); err != nil {
		return fmt.Errorf("failed to write note at %s: %w", cell, err)
	}
	if err := w.file.SetCellStyle(sheet, cell, cell, w.noteStyle); err != nil {
		return fmt.Errorf("failed to style note at %s: %w", cell, err)
	}
	return nil
}

// WriteInsight writes wrapped, top-aligned text at the insight anchor.
func (w *DocumentWriter) WriteInsight(sheet, text string) error {
	if err := w.file.SetCellValue(sheet, insightAnchor, text); err != nil {
		return fmt.Errorf("failed to write insight: %w", err)
	}
	if err := w.file.SetCellStyle(sheet, insightAnchor, insightAnchor, w.wrapStyle); err != nil {
		return fmt.Errorf("failed to style insight: %w", err)
	}
	return nil
}

// Finalize drops the backend's default sheet, then writes the document to a
// temporary name and renames it into place, so a failed save never leaves a
// valid-looking file behind.
func (w *DocumentWriter) Finalize(path string) error {
	defer w.file.Close()

	if w.createdSheet {
		// The backend seeds every new workbook with "Sheet1"; remove it
		// unless it is all we have (a workbook needs at least one sheet).
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	// The backend validates the extension on save, so the temporary file has
	// to be a legal workbook name too; a random .xlsx in the target directory
	// keeps the final rename atomic.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pending-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpName := tmp.Name()

	if err := w.file.Write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to save document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to flush document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}

// abs resolves the final output location under dir for a base name.
func outputPath(dir, baseName string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(dir, baseName+".xlsx"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	return abs, nil
}
