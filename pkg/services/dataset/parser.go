package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// ParserFunc turns raw upload bytes into a table.
type ParserFunc func(data []byte) (*domain.Table, error)

// Registry resolves upload parsers by file extension.
type Registry interface {
	// Register adds a parser for an extension (without the leading dot).
	Register(ext string, parser ParserFunc) error
	// Parse picks the parser from the file name's extension and runs it.
	Parse(fileName string, data []byte) (*domain.Table, error)
}

type registry struct {
	mu      sync.RWMutex
	parsers map[string]ParserFunc
}

// NewRegistry creates a parser registry pre-loaded with the csv, xlsx/xls
// and json formats.
func NewRegistry() Registry {
	r := &registry{parsers: make(map[string]ParserFunc)}
	_ = r.Register("csv", parseCSV)
	_ = r.Register("xlsx", parseExcel)
	_ = r.Register("xls", parseExcel)
	_ = r.Register("json", parseJSON)
	return r
}

func (r *registry) Register(ext string, parser ParserFunc) error {
	if ext == "" {
		return fmt.Errorf("extension cannot be empty")
	}
	if parser == nil {
		return fmt.Errorf("parser cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[ext]; exists {
		return fmt.Errorf("extension %q is already registered", ext)
	}

	r.parsers[ext] = parser
	return nil
}

func (r *registry) Parse(fileName string, data []byte) (*domain.Table, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	r.mu.RLock()
	parser, exists := r.parsers[ext]
	r.mu.RUnlock()

	if !exists {
		return nil, &domain.InputError{Op: "parse", Err: fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ext)}
	}

	table, err := parser(data)
	if err != nil {
		return nil, &domain.InputError{Op: "parse", Err: err}
	}
	return table, nil
}

func parseCSV(data []byte) (*domain.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}

	return domain.NewTable(records[0], records[1:]), nil
}

func parseExcel(data []byte) (*domain.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	return domain.NewTable(rows[0], rows[1:]), nil
}

// parseJSON accepts an array of flat objects. Column order is the sorted key
// set of the first object, so repeated parses of the same payload agree.
func parseJSON(data []byte) (*domain.Table, error) {
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode json array: %w", err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("json array is empty")
	}

	columns := make([]string, 0, len(objects[0]))
	for k := range objects[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	cells := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = jsonCell(obj[col])
		}
		cells = append(cells, row)
	}

	return domain.NewTable(columns, cells), nil
}

func jsonCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
