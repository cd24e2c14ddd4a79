package dataset

import (
	"strings"

	"github.com/de-tools/data-lens/pkg/models/domain"
)

// Clean returns a cleaned copy of the table: text cells are trimmed, missing
// cells in numeric columns become 0, and exact-duplicate rows are dropped
// (first occurrence wins). The input table is left untouched.
func Clean(t *domain.Table) *domain.Table {
	if t == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([]domain.Row, 0, len(t.Rows))

	for _, row := range t.Rows {
		cleaned := make(domain.Row, len(row))
		for c, v := range row {
			cleaned[c] = cleanCell(t.Kinds[c], v)
		}

		key := rowKey(cleaned)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, cleaned)
	}

	return domain.FromRows(t.Columns, rows)
}

func cleanCell(kind domain.ColumnKind, v domain.Value) domain.Value {
	if kind == domain.KindNumber {
		if v.IsNull {
			return domain.NumberValue(0)
		}
		return v
	}
	if v.IsNull {
		return v
	}
	trimmed := strings.TrimSpace(v.Raw)
	if trimmed == v.Raw {
		return v
	}
	return domain.TextValue(trimmed)
}

// rowKey builds a duplicate-detection key. Cells are joined with an
// unprintable separator so "a","b" and "a\x1fb" cannot collide in practice.
func rowKey(row domain.Row) string {
	var sb strings.Builder
	for i, v := range row {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		if v.IsNull {
			sb.WriteByte('\x00')
			continue
		}
		sb.WriteString(v.Display())
	}
	return sb.String()
}
