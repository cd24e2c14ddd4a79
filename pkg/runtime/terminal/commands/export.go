package commands

import (
	"context"
	"time"

	"github.com/de-tools/data-lens/pkg/services/insight"
	"github.com/de-tools/data-lens/pkg/services/report"

	"github.com/spf13/cobra"
)

type ExportCmd struct {
	filePath string
	baseName string
	clean    bool
	deps     Dependencies
}

func NewExportCmd(deps Dependencies) *cobra.Command {
	ec := &ExportCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run the automatic analysis sweep and export the results to a spreadsheet",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.filePath, "file", "", "Path to the dataset (csv, xlsx, xls or json)")
	cmd.Flags().StringVar(&ec.baseName, "name", "", "Base name of the output document")
	cmd.Flags().BoolVar(&ec.clean, "clean", false, "Run the cleaning pass before analyzing")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	table, err := loadTable(ec.deps.Parsers, ec.filePath, ec.clean)
	if err != nil {
		return err
	}

	records := insight.AutoAnalyze(ctx, table, ec.deps.Renderer, ec.deps.Producer, ec.deps.InsightTimeout)

	baseName := ec.baseName
	if baseName == "" {
		baseName = "all_reports_" + time.Now().Format("20060102_150405")
	}

	result, err := ec.deps.Assembler.Assemble(ctx, table, report.Snapshot{AI: records}, baseName)
	if err != nil {
		return err
	}

	return ec.deps.Reporter.WriteExportSummary(result.Path, result.Sheets)
}
