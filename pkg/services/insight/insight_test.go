package insight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct{ mock.Mock }

func (m *mockProducer) TextFromImage(ctx context.Context, imagePath, prompt string) (string, error) {
	args := m.Called(ctx, imagePath, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockProducer) TextFromQuestion(ctx context.Context, question string, profile Profile) (string, error) {
	args := m.Called(ctx, question, profile)
	return args.String(0), args.Error(1)
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bar_City_by_Sales_abc.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	return path
}

func TestChartInsight_ReturnsProducerText(t *testing.T) {
	img := tempImage(t)
	p := new(mockProducer)
	p.On("TextFromImage", mock.Anything, img, "describe").Return("sales peak in A", nil)

	got := ChartInsight(context.Background(), p, img, "describe", time.Second)

	assert.Equal(t, "sales peak in A", got)
	p.AssertExpectations(t)
}

func TestChartInsight_MissingFile(t *testing.T) {
	p := new(mockProducer)

	got := ChartInsight(context.Background(), p, filepath.Join(t.TempDir(), "gone.png"), "x", time.Second)

	assert.Equal(t, "Chart file not found.", got)
	p.AssertNotCalled(t, "TextFromImage")
}

func TestChartInsight_ErrorBecomesVisibleText(t *testing.T) {
	img := tempImage(t)
	p := new(mockProducer)
	p.On("TextFromImage", mock.Anything, img, mock.Anything).Return("", errors.New("quota exceeded"))

	got := ChartInsight(context.Background(), p, img, "x", time.Second)

	assert.Equal(t, "Insight generation failed: quota exceeded", got)
}

func TestChartInsight_EmptyTextBecomesPlaceholder(t *testing.T) {
	img := tempImage(t)
	p := new(mockProducer)
	p.On("TextFromImage", mock.Anything, img, mock.Anything).Return("", nil)

	got := ChartInsight(context.Background(), p, img, "x", time.Second)

	assert.Equal(t, "No insight generated.", got)
}

func TestAnswerQuestion_ErrorBecomesVisibleText(t *testing.T) {
	p := new(mockProducer)
	p.On("TextFromQuestion", mock.Anything, "why?", mock.Anything).Return("", errors.New("offline"))

	got := AnswerQuestion(context.Background(), p, "why?", Profile{}, time.Second)

	assert.Equal(t, "Insight generation failed: offline", got)
}

func TestBuildProfile(t *testing.T) {
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{
		{"A", "10"},
		{"B", "30"},
		{"A", "20"},
	})

	p := BuildProfile(table)

	assert.Equal(t, 3, p.Rows)
	require.Len(t, p.Columns, 2)
	assert.Equal(t, "text", p.Columns[0].Kind)
	assert.Equal(t, []string{"A", "B"}, p.Columns[0].Samples)
	assert.Equal(t, "number", p.Columns[1].Kind)
	assert.Equal(t, 10.0, p.Columns[1].Min)
	assert.Equal(t, 30.0, p.Columns[1].Max)
	assert.Equal(t, 20.0, p.Columns[1].Mean)
}

func TestAutoAnalyze_BuildsAIRecords(t *testing.T) {
	table := domain.NewTable([]string{"City", "Region", "Sales", "Qty"}, [][]string{
		{"A", "north", "10", "1"},
		{"B", "south", "20", "2"},
	})

	renderer := charts.NewRenderer(t.TempDir())
	p := new(mockProducer)
	p.On("TextFromImage", mock.Anything, mock.Anything, mock.Anything).Return("looks fine", nil)

	records := AutoAnalyze(context.Background(), table, renderer, p, time.Second)

	// 2 categorical x 2 numeric columns.
	require.Len(t, records, 4)
	for _, rec := range records {
		assert.Equal(t, domain.ProvenanceAI, rec.Provenance)
		assert.NotNil(t, rec.PivotTable)
		assert.NotEmpty(t, rec.ChartPath)
		assert.Equal(t, "looks fine", rec.Insight)
	}
	assert.Equal(t, "City_Sales", records[0].SheetNameHint)
}

func TestAutoAnalyze_SkipsFailingPairs(t *testing.T) {
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{
		{"A", "10"},
	})

	renderer := &failingRenderer{}
	p := new(mockProducer)

	records := AutoAnalyze(context.Background(), table, renderer, p, time.Second)

	// Aggregation succeeds; rendering fails; the record survives chartless.
	require.Len(t, records, 1)
	assert.Empty(t, records[0].ChartPath)
	assert.Empty(t, records[0].Insight)
}

type failingRenderer struct{}

func (f *failingRenderer) Render(kind charts.Kind, t *domain.Table, xCol, yCol string) (*charts.Handle, error) {
	return nil, fmt.Errorf("backend down")
}

func TestStaticProducer_TextFromImage(t *testing.T) {
	p := NewStaticProducer()

	got, err := p.TextFromImage(context.Background(), "/charts/bar_City_by_Sales_123.png", "")
	require.NoError(t, err)
	assert.Equal(t, "Bar chart of City by Sales.", got)
}

func TestStaticProducer_TextFromQuestion(t *testing.T) {
	p := NewStaticProducer()

	got, err := p.TextFromQuestion(context.Background(), "top city?", Profile{
		Rows:    2,
		Columns: []ColumnProfile{{Name: "City"}, {Name: "Sales"}},
	})
	require.NoError(t, err)
	assert.Contains(t, got, "2 rows")
	assert.Contains(t, got, "City, Sales")
}
