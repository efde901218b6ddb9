// pkg/sql/executor/select.go
package executor

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Bernard065/mini-rdbms/pkg/index"
	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/lexer"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

func executeSelect(cat *storage.Catalog, stmt *parser.SelectStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}

	// Base rows, filtered by WHERE. An applicable single-comparison
	// WHERE on an indexed column goes through the index.
	rows := filterRows(table, stmt.Where)

	if stmt.Join != nil {
		joined, err := joinRows(cat, stmt, rows)
		if err != nil {
			return Error(err)
		}
		rows = joined
	}

	if stmt.Columns != nil {
		rows = projectRows(rows, stmt.Columns)
	} else if stmt.Join == nil {
		// Detach results from live table rows.
		out := make([]storage.Row, len(rows))
		for i, row := range rows {
			out[i] = row.Clone()
		}
		rows = out
	}

	if stmt.OrderBy != nil {
		sortRows(rows, stmt.OrderBy)
	}

	if stmt.Limit != nil && len(rows) > *stmt.Limit {
		rows = rows[:*stmt.Limit]
	}

	return &QueryResult{
		Success:  true,
		Kind:     KindSelect,
		Columns:  selectColumns(cat, stmt),
		Rows:     rows,
		RowCount: len(rows),
	}
}

// selectColumns derives the display column order: the projection list,
// or the schema order, prefixed per side for joins.
func selectColumns(cat *storage.Catalog, stmt *parser.SelectStmt) []string {
	if stmt.Columns != nil {
		return append([]string{}, stmt.Columns...)
	}

	var out []string
	if t, ok := cat.Get(stmt.TableName); ok {
		if stmt.Join == nil {
			return t.Schema().ColumnNames()
		}
		for _, name := range t.Schema().ColumnNames() {
			out = append(out, stmt.TableName+"."+name)
		}
	}
	if stmt.Join != nil {
		if t, ok := cat.Get(stmt.Join.TableName); ok {
			for _, name := range t.Schema().ColumnNames() {
				out = append(out, stmt.Join.TableName+"."+name)
			}
		}
	}
	return out
}

// filterRows returns the base rows satisfying the WHERE clause
func filterRows(table *storage.Table, where parser.Expression) []storage.Row {
	if where == nil {
		return table.Rows()
	}

	if rows, ok := indexedFilter(table, where); ok {
		return rows
	}

	var out []storage.Row
	for _, row := range table.Rows() {
		if evalExpression(where, row) {
			out = append(out, row)
		}
	}
	return out
}

// indexedFilter answers a single-comparison WHERE from the column's
// index when one exists and the comparison's semantics line up with
// the index's key normalization. The literal's type must match the
// stored key type, otherwise the full scan's coercion rules apply.
func indexedFilter(table *storage.Table, where parser.Expression) ([]storage.Row, bool) {
	cmp, ok := where.(*parser.ComparisonExpr)
	if !ok {
		return nil, false
	}
	idx, ok := table.Index(cmp.Column)
	if !ok {
		return nil, false
	}
	if cmp.Value.IsNull() {
		// "col = NULL" matches NULL rows, which indexes never hold.
		return nil, false
	}

	col, ok := table.Schema().Column(cmp.Column)
	if !ok || col.Type != cmp.Value.Type() {
		return nil, false
	}

	switch cmp.Op {
	case lexer.EQ:
		return table.FindByIndex(cmp.Column, cmp.Value), true
	case lexer.GT:
		return table.RowsAt(idx.RangeScan(index.RangeGT, cmp.Value)), true
	case lexer.GTE:
		return table.RowsAt(idx.RangeScan(index.RangeGTE, cmp.Value)), true
	case lexer.LT:
		return table.RowsAt(idx.RangeScan(index.RangeLT, cmp.Value)), true
	case lexer.LTE:
		return table.RowsAt(idx.RangeScan(index.RangeLTE, cmp.Value)), true
	case lexer.LIKE_KW:
		if cmp.Value.Type() != types.TypeText {
			return nil, false
		}
		return table.RowsAt(idx.LikeScan(cmp.Value.Text())), true
	default:
		return nil, false
	}
}

// strictJoinEqual is join-key equality: same type, identical value,
// with no TEXT normalization. NULL matches NULL.
func strictJoinEqual(a, b types.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case types.TypeNull:
		return true
	case types.TypeInteger:
		return a.Int() == b.Int()
	case types.TypeText:
		return a.Text() == b.Text()
	case types.TypeBoolean:
		return a.Bool() == b.Bool()
	case types.TypeReal:
		return a.Real() == b.Real()
	case types.TypeDate:
		return a.Date().Equal(b.Date())
	default:
		return false
	}
}

// joinRows performs a nested-loop join of the filtered base rows with
// the joined table, prefixing every output column with its table name.
// Unmatched sides of LEFT/RIGHT joins are filled with NULLs keyed by a
// sample row from the other side; an empty other side contributes no
// keys at all.
func joinRows(cat *storage.Catalog, stmt *parser.SelectStmt, left []storage.Row) ([]storage.Row, error) {
	join := stmt.Join
	rightTable, ok := cat.Get(join.TableName)
	if !ok {
		return nil, &schema.TableNotFoundError{Table: join.TableName}
	}
	right := rightTable.Rows()

	leftName := stmt.TableName
	rightName := join.TableName

	combine := func(l, r storage.Row) storage.Row {
		out := make(storage.Row, len(l)+len(r))
		for k, v := range l {
			out[leftName+"."+k] = v
		}
		for k, v := range r {
			out[rightName+"."+k] = v
		}
		return out
	}

	// nullSide builds the NULL-filled half for an unmatched row, using
	// the sample row's key set. A nil sample yields nothing.
	nullSide := func(prefix string, sample storage.Row) storage.Row {
		out := make(storage.Row, len(sample))
		for k := range sample {
			out[prefix+"."+k] = types.NewNull()
		}
		return out
	}

	var leftSample, rightSample storage.Row
	if len(left) > 0 {
		leftSample = left[0]
	}
	if len(right) > 0 {
		rightSample = right[0]
	}

	var out []storage.Row

	switch join.Type {
	case parser.JoinLeft:
		for _, l := range left {
			matched := false
			for _, r := range right {
				if strictJoinEqual(l[join.LeftColumn], r[join.RightColumn]) {
					out = append(out, combine(l, r))
					matched = true
				}
			}
			if !matched {
				row := make(storage.Row)
				for k, v := range l {
					row[leftName+"."+k] = v
				}
				for k, v := range nullSide(rightName, rightSample) {
					row[k] = v
				}
				out = append(out, row)
			}
		}
	case parser.JoinRight:
		for _, r := range right {
			matched := false
			for _, l := range left {
				if strictJoinEqual(l[join.LeftColumn], r[join.RightColumn]) {
					out = append(out, combine(l, r))
					matched = true
				}
			}
			if !matched {
				row := make(storage.Row)
				for k, v := range nullSide(leftName, leftSample) {
					row[k] = v
				}
				for k, v := range r {
					row[rightName+"."+k] = v
				}
				out = append(out, row)
			}
		}
	default: // inner
		for _, l := range left {
			for _, r := range right {
				if strictJoinEqual(l[join.LeftColumn], r[join.RightColumn]) {
					out = append(out, combine(l, r))
				}
			}
		}
	}

	return out, nil
}

// projectRows keeps only the requested columns, reading missing
// columns as NULL.
func projectRows(rows []storage.Row, columns []string) []storage.Row {
	out := make([]storage.Row, len(rows))
	for i, row := range rows {
		projected := make(storage.Row, len(columns))
		for _, name := range columns {
			projected[name] = lookupColumn(row, name)
		}
		out[i] = projected
	}
	return out
}

// sortRows orders rows by one column. NULLs always sort last; numeric
// and date pairs compare numerically; everything else falls back to a
// locale-aware comparison of the string forms. DESC negates the
// comparison but leaves NULLs last.
func sortRows(rows []storage.Row, orderBy *parser.OrderByClause) {
	coll := collate.New(language.Und)

	sort.SliceStable(rows, func(i, j int) bool {
		a := lookupColumn(rows[i], orderBy.Column)
		b := lookupColumn(rows[j], orderBy.Column)

		if a.IsNull() || b.IsNull() {
			return !a.IsNull() && b.IsNull()
		}

		c := compareForSort(coll, a, b)
		if orderBy.Desc {
			c = -c
		}
		return c < 0
	})
}

func compareForSort(coll *collate.Collator, a, b types.Value) int {
	if isNumericType(a.Type()) && isNumericType(b.Type()) {
		af, _ := types.Numeric(a)
		bf, _ := types.Numeric(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.Type() == types.TypeDate && b.Type() == types.TypeDate {
		am, bm := a.Date().UnixMilli(), b.Date().UnixMilli()
		switch {
		case am < bm:
			return -1
		case am > bm:
			return 1
		default:
			return 0
		}
	}
	return coll.CompareString(a.String(), b.String())
}

func isNumericType(t types.ValueType) bool {
	return t == types.TypeInteger || t == types.TypeReal
}
