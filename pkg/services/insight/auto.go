package insight

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/aggregate"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/rs/zerolog"
)

// ChartRenderer is the slice of the chart service AutoAnalyze needs.
type ChartRenderer interface {
	Render(kind charts.Kind, t *domain.Table, xCol, yCol string) (*charts.Handle, error)
}

const (
	// autoMaxCategories and autoMaxNumerics bound the auto-analysis batch to
	// at most a 3x3 grid of column pairs.
	autoMaxCategories = 3
	autoMaxNumerics   = 3
)

// AutoAnalyze sweeps up to 3 categorical x 3 numeric column pairs, building a
// sum aggregation, a bar chart and an insight for each, and returns the
// resulting AI-provenance records. A failing pair is logged and skipped; the
// batch never aborts as a whole.
func AutoAnalyze(
	ctx context.Context,
	t *domain.Table,
	renderer ChartRenderer,
	producer TextFromImage,
	timeout time.Duration,
) []domain.ReportRecord {
	logger := zerolog.Ctx(ctx)

	categories := t.CategoricalColumns()
	numerics := t.NumericColumns()
	if len(categories) > autoMaxCategories {
		categories = categories[:autoMaxCategories]
	}
	if len(numerics) > autoMaxNumerics {
		numerics = numerics[:autoMaxNumerics]
	}

	var records []domain.ReportRecord
	for _, category := range categories {
		for _, numeric := range numerics {
			pivot, err := aggregate.Aggregate(t, category, numeric, aggregate.OpSum)
			if err != nil {
				logger.Warn().Err(err).
					Str("category", category).
					Str("numeric", numeric).
					Msg("auto analysis aggregation skipped")
				continue
			}

			record := domain.ReportRecord{
				SheetNameHint: fmt.Sprintf("%s_%s", category, numeric),
				PivotTable:    pivot,
				Provenance:    domain.ProvenanceAI,
				CreatedAt:     time.Now(),
			}

			handle, err := renderer.Render(charts.KindBar, pivot, category, aggregate.ValueColumnName(aggregate.OpSum, numeric))
			if err != nil {
				logger.Warn().Err(err).
					Str("category", category).
					Str("numeric", numeric).
					Msg("auto analysis chart skipped")
			} else {
				record.ChartPath = handle.Path
				prompt := fmt.Sprintf(
					"Analyze this bar chart of %q by %q and give one short, actionable insight.",
					numeric, category,
				)
				record.Insight = ChartInsight(ctx, producer, handle.Path, prompt, timeout)
			}

			records = append(records, record)
		}
	}
	return records
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
