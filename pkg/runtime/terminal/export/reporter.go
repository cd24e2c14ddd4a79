package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/data-lens/pkg/models/domain"
)

type TableConfig struct {
	LabelWidth int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 40,
		ValueWidth: 24,
	}
}

// Reporter prints an analysis record as a bordered text table followed by
// the generated insight.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type reportView struct {
	Title      string
	Provenance string
	Columns    []string
	Rows       [][]string
	ChartPath  string
	Insight    string
}

func (c *Reporter) Handle(record domain.ReportRecord) error {
	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			label, value := "", ""
			if len(cells) > 0 {
				label = cells[0]
			}
			if len(cells) > 1 {
				value = cells[1]
			}
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.LabelWidth, label,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}

	tmpl := `
{{.Title}} [{{.Provenance}}]

{{separator}}
{{formatRow .Columns}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}
{{if .ChartPath}}
Chart: {{.ChartPath}}
{{end}}{{if .Insight}}
Insight: {{.Insight}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, toView(record))
}

// WriteExportSummary reports where an assembled document landed.
func (c *Reporter) WriteExportSummary(path string, sheets int) error {
	_, err := fmt.Fprintf(c.writer, "Exported %d sheet(s) to %s\n", sheets, path)
	return err
}

func toView(record domain.ReportRecord) reportView {
	view := reportView{
		Title:      record.SheetNameHint,
		Provenance: string(record.Provenance),
		ChartPath:  record.ChartPath,
		Insight:    record.Insight,
	}
	if record.PivotTable == nil {
		return view
	}

	view.Columns = record.PivotTable.Columns
	for _, row := range record.PivotTable.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Display()
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}
