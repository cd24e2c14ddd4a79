package insight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// StaticProducer is the deterministic fallback used when no external text
// producer is configured: it phrases what it can read from the chart file
// name or the dataset profile. Also handy as a predictable test double.
type StaticProducer struct{}

func NewStaticProducer() *StaticProducer {
	return &StaticProducer{}
}

func (s *StaticProducer) TextFromImage(_ context.Context, imagePath, _ string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	parts := strings.SplitN(name, "_", 2)
	if len(parts) == 2 {
		// Chart names follow <kind>_<x>_by_<y>_<token>.
		desc := parts[1]
		if idx := strings.LastIndex(desc, "_"); idx > 0 {
			desc = desc[:idx]
		}
		return fmt.Sprintf("%s chart of %s.", capitalize(parts[0]), strings.ReplaceAll(desc, "_", " ")), nil
	}
	return "Chart generated from the current dataset.", nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *StaticProducer) TextFromQuestion(_ context.Context, question string, profile Profile) (string, error) {
	if len(profile.Columns) == 0 {
		return "No dataset is loaded yet; upload a file first.", nil
	}

	names := make([]string, 0, len(profile.Columns))
	for _, c := range profile.Columns {
		names = append(names, c.Name)
	}

	return fmt.Sprintf(
		"The dataset has %d rows across columns %s. I cannot answer %q precisely without a connected analysis model; try a manual aggregation on one of the numeric columns.",
		profile.Rows, strings.Join(names, ", "), question,
	), nil
}
