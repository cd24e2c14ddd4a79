package insight

import (
	"context"
	"time"

	"github.com/de-tools/data-lens/pkg/models/domain"
)

// TextFromImage produces a short natural-language insight for a chart image.
// Implementations are external and non-deterministic; failures come back as
// errors and are degraded to visible text by the callers in this package.
type TextFromImage interface {
	TextFromImage(ctx context.Context, imagePath, prompt string) (string, error)
}

// TextFromQuestion answers a free-form question about a dataset profile.
type TextFromQuestion interface {
	TextFromQuestion(ctx context.Context, question string, profile Profile) (string, error)
}

// Producer is the full capability surface the dashboard needs.
type Producer interface {
	TextFromImage
	TextFromQuestion
}

// ColumnProfile summarizes one column for question answering.
type ColumnProfile struct {
	Name    string
	Kind    string
	Min     float64
	Max     float64
	Mean    float64
	Samples []string
}

// Profile is a lightweight dataset description: enough context for a text
// producer without shipping the whole table.
type Profile struct {
	Rows    int
	Columns []ColumnProfile
}

const (
	maxSampleValues = 12

	noInsightText      = "No insight generated."
	chartMissingText   = "Chart file not found."
	insightFailedText  = "Insight generation failed: "
	insightTimeoutText = "Insight generation timed out."
)

// BuildProfile computes per-column summaries over the table.
func BuildProfile(t *domain.Table) Profile {
	if t == nil {
		return Profile{}
	}

	p := Profile{Rows: len(t.Rows)}
	for c, name := range t.Columns {
		cp := ColumnProfile{Name: name, Kind: t.Kinds[c].String()}
		if t.Kinds[c] == domain.KindNumber {
			profileNumeric(t, c, &cp)
		} else {
			profileText(t, c, &cp)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

func profileNumeric(t *domain.Table, col int, cp *ColumnProfile) {
	count := 0
	sum := 0.0
	for _, row := range t.Rows {
		v := row[col]
		if !v.IsNum {
			continue
		}
		if count == 0 {
			cp.Min, cp.Max = v.Num, v.Num
		} else {
			if v.Num < cp.Min {
				cp.Min = v.Num
			}
			if v.Num > cp.Max {
				cp.Max = v.Num
			}
		}
		sum += v.Num
		count++
	}
	if count > 0 {
		cp.Mean = sum / float64(count)
	}
}

func profileText(t *domain.Table, col int, cp *ColumnProfile) {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		v := row[col]
		if v.IsNull {
			continue
		}
		if _, dup := seen[v.Raw]; dup {
			continue
		}
		seen[v.Raw] = struct{}{}
		cp.Samples = append(cp.Samples, v.Raw)
		if len(cp.Samples) == maxSampleValues {
			break
		}
	}
}

// ChartInsight asks the producer to describe a rendered chart, bounded by
// timeout. Every failure mode degrades to a fixed visible string; the user
// always sees something in the insight slot, so this never returns an error.
func ChartInsight(ctx context.Context, producer TextFromImage, imagePath, prompt string, timeout time.Duration) string {
	if !fileExists(imagePath) {
		return chartMissingText
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := producer.TextFromImage(ctx, imagePath, prompt)
	switch {
	case ctx.Err() != nil:
		return insightTimeoutText
	case err != nil:
		return insightFailedText + err.Error()
	case text == "":
		return noInsightText
	default:
		return text
	}
}

// AnswerQuestion asks the producer about the dataset, with the same
// failure-as-text semantics as ChartInsight.
func AnswerQuestion(ctx context.Context, producer TextFromQuestion, question string, profile Profile, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := producer.TextFromQuestion(ctx, question, profile)
	switch {
	case ctx.Err() != nil:
		return insightTimeoutText
	case err != nil:
		return insightFailedText + err.Error()
	case text == "":
		return noInsightText
	default:
		return text
	}
}
