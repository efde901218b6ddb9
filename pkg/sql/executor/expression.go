// pkg/sql/executor/expression.go
package executor

import (
	"strings"

	"github.com/Bernard065/mini-rdbms/pkg/sql/lexer"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// lookupColumn reads a row value by column name, falling back to a
// case-insensitive scan. Missing columns read as NULL.
func lookupColumn(row storage.Row, name string) types.Value {
	if v, ok := row[name]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return types.NewNull()
}

// evalExpression evaluates a WHERE condition tree against one row
func evalExpression(expr parser.Expression, row storage.Row) bool {
	switch e := expr.(type) {
	case *parser.ComparisonExpr:
		return evalComparison(e, row)
	case *parser.LogicalExpr:
		if e.Op == lexer.AND {
			return evalExpression(e.Left, row) && evalExpression(e.Right, row)
		}
		return evalExpression(e.Left, row) || evalExpression(e.Right, row)
	default:
		return false
	}
}

// evalComparison applies one "column OP value" leaf. Equality treats
// TEXT case-insensitively; NULL equals only NULL; ordering coerces both
// operands to numbers and is false when either side does not coerce.
func evalComparison(e *parser.ComparisonExpr, row storage.Row) bool {
	v := lookupColumn(row, e.Column)

	switch e.Op {
	case lexer.EQ:
		return types.Equal(v, e.Value)
	case lexer.NEQ:
		if v.IsNull() || e.Value.IsNull() {
			return false
		}
		return !types.Equal(v, e.Value)
	case lexer.GT:
		return orderedCompare(v, e.Value, func(a, b float64) bool { return a > b })
	case lexer.LT:
		return orderedCompare(v, e.Value, func(a, b float64) bool { return a < b })
	case lexer.GTE:
		return orderedCompare(v, e.Value, func(a, b float64) bool { return a >= b })
	case lexer.LTE:
		return orderedCompare(v, e.Value, func(a, b float64) bool { return a <= b })
	case lexer.LIKE_KW:
		return types.Like(v, e.Value)
	default:
		return false
	}
}

func orderedCompare(a, b types.Value, cmp func(float64, float64) bool) bool {
	af, aok := types.Numeric(a)
	bf, bok := types.Numeric(b)
	return aok && bok && cmp(af, bf)
}

// predicateFrom builds a row predicate from an optional WHERE clause;
// a missing clause matches every row.
func predicateFrom(where parser.Expression) storage.Predicate {
	if where == nil {
		return func(storage.Row) bool { return true }
	}
	return func(row storage.Row) bool { return evalExpression(where, row) }
}
