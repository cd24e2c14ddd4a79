package dataset

import (
	"testing"

	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_TrimsTextCells(t *testing.T) {
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{
		{"  A  ", "10"},
	})

	cleaned := Clean(table)

	assert.Equal(t, "A", cleaned.Rows[0][0].Raw)
	// Input table untouched.
	assert.Equal(t, "  A  ", table.Rows[0][0].Raw)
}

func TestClean_FillsMissingNumericWithZero(t *testing.T) {
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{
		{"A", "10"},
		{"B", ""},
	})

	cleaned := Clean(table)

	require.Len(t, cleaned.Rows, 2)
	assert.False(t, cleaned.Rows[1][1].IsNull)
	assert.Equal(t, 0.0, cleaned.Rows[1][1].Num)
}

func TestClean_DropsExactDuplicates(t *testing.T) {
	table := domain.NewTable([]string{"City", "Sales"}, [][]string{
		{"A", "10"},
		{"A", "10"},
		{"B", "20"},
		{"A", "10"},
	})

	cleaned := Clean(table)

	require.Len(t, cleaned.Rows, 2)
	assert.Equal(t, "A", cleaned.Rows[0][0].Raw)
	assert.Equal(t, "B", cleaned.Rows[1][0].Raw)
}

func TestClean_NilTable(t *testing.T) {
	assert.Nil(t, Clean(nil))
}
