package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/de-tools/data-lens/pkg/models/domain"
)

// Op is an aggregation operator applied per distinct group value.
type Op string

const (
	OpSum   Op = "sum"
	OpMean  Op = "mean"
	OpCount Op = "count"
	OpMin   Op = "min"
	OpMax   Op = "max"
)

// ParseOp validates a user-provided operator name.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpSum, OpMean, OpCount, OpMin, OpMax:
		return Op(s), nil
	default:
		return "", &domain.AggregationError{Op: s, Err: domain.ErrUnknownOperator}
	}
}

// MissingGroupLabel represents null group values in the output. Missing
// groups are kept, never dropped, and sort after every present key.
const MissingGroupLabel = "(missing)"

type group struct {
	label   string
	missing bool
	count   int
	sum     float64
	min     float64
	max     float64
}

// Aggregate produces one row per distinct value of groupCol, ascending by
// group key (numeric-aware when both keys parse as numbers). The output has
// two columns: the group key and "<op>_<valueCol>" (for count, just "count").
func Aggregate(t *domain.Table, groupCol, valueCol string, op Op) (*domain.Table, error) {
	if t == nil || t.IsEmpty() {
		return nil, &domain.AggregationError{Column: groupCol, Op: string(op), Err: fmt.Errorf("table is empty")}
	}

	gi, ok := t.Column(groupCol)
	if !ok {
		return nil, &domain.AggregationError{Column: groupCol, Op: string(op), Err: fmt.Errorf("column not found")}
	}

	vi := -1
	if op != OpCount {
		vi, ok = t.Column(valueCol)
		if !ok {
			return nil, &domain.AggregationError{Column: valueCol, Op: string(op), Err: fmt.Errorf("column not found")}
		}
		if t.Kinds[vi] != domain.KindNumber {
			return nil, &domain.AggregationError{
				Column: valueCol,
				Op:     string(op),
				Err:    fmt.Errorf("column is not numeric"),
			}
		}
	}

	groups := make(map[string]*group)
	var order []string

	for _, row := range t.Rows {
		key, missing := groupKey(row[gi])
		g, exists := groups[key]
		if !exists {
			g = &group{label: key, missing: missing}
			groups[key] = g
			order = append(order, key)
		}

		g.count++
		if op == OpCount {
			continue
		}

		v := row[vi]
		val := 0.0
		if v.IsNum {
			val = v.Num
		}
		if g.count == 1 {
			g.min, g.max = val, val
		} else {
			if val < g.min {
				g.min = val
			}
			if val > g.max {
				g.max = val
			}
		}
		g.sum += val
	}

	sort.Slice(order, func(i, j int) bool {
		return lessGroupKey(groups[order[i]], groups[order[j]])
	})

	rows := make([]domain.Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rows = append(rows, domain.Row{domain.TextValue(g.label), domain.NumberValue(g.value(op))})
	}

	return domain.FromRows([]string{groupCol, ValueColumnName(op, valueCol)}, rows), nil
}

func (g *group) value(op Op) float64 {
	switch op {
	case OpSum:
		return g.sum
	case OpMean:
		return g.sum / float64(g.count)
	case OpCount:
		return float64(g.count)
	case OpMin:
		return g.min
	default:
		return g.max
	}
}

// ValueColumnName is the name the aggregated value column carries in the
// output table: "count" for OpCount, "<op>_<valueCol>" otherwise. Callers that
// feed the pivot into the chart renderer address the value column by it.
func ValueColumnName(op Op, valueCol string) string {
	if op == OpCount {
		return "count"
	}
	return fmt.Sprintf("%s_%s", op, valueCol)
}

func groupKey(v domain.Value) (string, bool) {
	if v.IsNull {
		return MissingGroupLabel, true
	}
	return v.Display(), false
}

func lessGroupKey(a, b *group) bool {
	if a.missing != b.missing {
		return b.missing
	}
	af, aerr := strconv.ParseFloat(a.label, 64)
	bf, berr := strconv.ParseFloat(b.label, 64)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return a.label < b.label
}
