package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/runtime/terminal/export"
	"github.com/de-tools/data-lens/pkg/services/aggregate"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/de-tools/data-lens/pkg/services/dataset"
	svcexport "github.com/de-tools/data-lens/pkg/services/export"
	"github.com/de-tools/data-lens/pkg/services/insight"

	"github.com/spf13/cobra"
)

// Dependencies are the services shared by all terminal commands.
type Dependencies struct {
	Parsers        dataset.Registry
	Renderer       *charts.Renderer
	Producer       insight.Producer
	Assembler      *svcexport.Assembler
	Reporter       *export.Reporter
	InsightTimeout time.Duration
}

type AnalyzeCmd struct {
	filePath    string
	categoryCol string
	numericCol  string
	aggregation string
	chartKind   string
	clean       bool
	deps        Dependencies
}

func NewAnalyzeCmd(deps Dependencies) *cobra.Command {
	ac := &AnalyzeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate a dataset column pair and print the pivot with an insight",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.filePath, "file", "", "Path to the dataset (csv, xlsx, xls or json)")
	cmd.Flags().StringVar(&ac.categoryCol, "category", "", "Categorical column to group by")
	cmd.Flags().StringVar(&ac.numericCol, "numeric", "", "Numeric column to aggregate")
	cmd.Flags().StringVar(&ac.aggregation, "agg", "sum", "Aggregation: sum, mean, count, min or max")
	cmd.Flags().StringVar(&ac.chartKind, "chart", "bar", "Chart kind: line, bar, scatter or pie")
	cmd.Flags().BoolVar(&ac.clean, "clean", false, "Run the cleaning pass before analyzing")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("numeric")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	table, err := loadTable(ac.deps.Parsers, ac.filePath, ac.clean)
	if err != nil {
		return err
	}

	op, err := aggregate.ParseOp(ac.aggregation)
	if err != nil {
		return err
	}
	kind, err := charts.ParseKind(ac.chartKind)
	if err != nil {
		return err
	}

	pivot, err := aggregate.Aggregate(table, ac.categoryCol, ac.numericCol, op)
	if err != nil {
		return err
	}

	record := domain.ReportRecord{
		SheetNameHint: fmt.Sprintf("%s_%s", ac.categoryCol, ac.numericCol),
		PivotTable:    pivot,
		Provenance:    domain.ProvenanceManual,
		CreatedAt:     time.Now(),
	}

	handle, err := ac.deps.Renderer.Render(kind, pivot, ac.categoryCol, aggregate.ValueColumnName(op, ac.numericCol))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "chart render failed: %v\n", err)
	} else {
		record.ChartPath = handle.Path
		prompt := fmt.Sprintf("Generate a concise report from this %s chart of %q by %q.",
			kind, ac.numericCol, ac.categoryCol)
		record.Insight = insight.ChartInsight(ctx, ac.deps.Producer, handle.Path, prompt, ac.deps.InsightTimeout)
	}

	return ac.deps.Reporter.Handle(record)
}

func loadTable(parsers dataset.Registry, path string, clean bool) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	table, err := parsers.Parse(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	if clean {
		table = dataset.Clean(table)
	}
	return table, nil
}
