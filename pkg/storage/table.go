// pkg/storage/table.go
package storage

import (
	"strings"

	"github.com/Bernard065/mini-rdbms/pkg/index"
	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// Row maps column names to values. A row always holds exactly the
// columns declared by its table's current schema.
type Row map[string]types.Value

// Clone returns an independent copy of the row
func (r Row) Clone() Row {
	clone := make(Row, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// Predicate decides whether a row participates in UPDATE or DELETE
type Predicate func(Row) bool

// Table owns a schema, its row vector, one index per primary-key or
// unique column, and the auto-increment counter.
type Table struct {
	schema  *schema.TableSchema
	rows    []Row
	indexes map[string]*index.Index // lowercase column name -> index
	autoInc int64
}

// NewTable creates an empty table and builds its indexes from the
// schema's primary-key and unique columns.
func NewTable(ts *schema.TableSchema) *Table {
	t := &Table{
		schema:  ts,
		indexes: make(map[string]*index.Index),
		autoInc: 1,
	}
	t.buildIndexMap()
	return t
}

func (t *Table) buildIndexMap() {
	t.indexes = make(map[string]*index.Index)
	for _, name := range t.schema.UniqueColumns {
		t.indexes[strings.ToLower(name)] = index.New(name, true)
	}
}

// Schema returns the table's current schema
func (t *Table) Schema() *schema.TableSchema { return t.schema }

// Rows returns the live row vector. Callers must not mutate it.
func (t *Table) Rows() []Row { return t.rows }

// RowCount returns the number of live rows
func (t *Table) RowCount() int { return len(t.rows) }

// NextAutoIncrement returns the counter's next value
func (t *Table) NextAutoIncrement() int64 { return t.autoInc }

// Index returns the index on the named column, if one exists
func (t *Table) Index(column string) (*index.Index, bool) {
	idx, ok := t.indexes[strings.ToLower(column)]
	return idx, ok
}

// InsertResult reports where a row landed and the auto-increment value
// it consumed, if any.
type InsertResult struct {
	Position        int
	LastInsertID    int64
	HasLastInsertID bool
}

// lookupValue finds a value in row data by column name, ignoring case
func lookupValue(data Row, column string) (types.Value, bool) {
	if v, ok := data[column]; ok {
		return v, true
	}
	for k, v := range data {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return types.Value{}, false
}

// Insert validates and appends one row. An auto-increment primary key
// always consumes the counter; missing values fall back to the column
// default, then NULL. Index insertions are undone when a later column
// collides, so a failed insert leaves no row and no index entry; the
// auto-increment value it consumed is not given back.
func (t *Table) Insert(data Row) (InsertResult, error) {
	res := InsertResult{Position: len(t.rows)}
	row := make(Row, len(t.schema.Columns))

	for i := range t.schema.Columns {
		col := &t.schema.Columns[i]

		var v types.Value
		if col.AutoIncrement && col.PrimaryKey {
			v = types.NewInteger(t.autoInc)
			res.LastInsertID = t.autoInc
			res.HasLastInsertID = true
			t.autoInc++
		} else if provided, ok := lookupValue(data, col.Name); ok {
			v = provided
		} else if !col.Default.IsNull() {
			v = col.Default
		} else {
			v = types.NewNull()
		}

		coerced, err := types.Coerce(v, col.Type)
		if err != nil {
			return res, &schema.ConstraintViolationError{
				Kind:    schema.ConstraintTypeMismatch,
				Column:  col.Name,
				Value:   v,
				Message: err.Error(),
			}
		}
		if col.NotNull && coerced.IsNull() {
			return res, &schema.ConstraintViolationError{
				Kind:    schema.ConstraintNotNull,
				Column:  col.Name,
				Value:   coerced,
				Message: "column does not allow NULL",
			}
		}
		row[col.Name] = coerced
	}

	// Index insertions, undoing partial work on a duplicate.
	var added []*index.Index
	for _, name := range t.schema.UniqueColumns {
		idx := t.indexes[strings.ToLower(name)]
		v := row[t.canonicalName(name)]
		if err := idx.Add(v, res.Position); err != nil {
			for _, done := range added {
				done.Remove(row[t.canonicalName(done.Column())], res.Position)
			}
			return res, t.uniqueViolation(name, v)
		}
		added = append(added, idx)
	}

	t.rows = append(t.rows, row)
	return res, nil
}

// canonicalName maps a column name to the declared spelling
func (t *Table) canonicalName(name string) string {
	if col, ok := t.schema.Column(name); ok {
		return col.Name
	}
	return name
}

// uniqueViolation builds the right violation kind for an indexed column
func (t *Table) uniqueViolation(column string, v types.Value) error {
	kind := schema.ConstraintUnique
	if strings.EqualFold(column, t.schema.PrimaryKey) {
		kind = schema.ConstraintPrimaryKey
	}
	return &schema.ConstraintViolationError{
		Kind:    kind,
		Column:  column,
		Value:   v,
		Message: "duplicate value",
	}
}

// Update writes the assignments into every row the predicate matches.
// Target columns are validated up front; per-row failures stop the
// statement but do not roll back rows already updated. The failing
// row's own index changes are undone so indexes stay consistent with
// the row vector.
func (t *Table) Update(assignments map[string]types.Value, pred Predicate) (int, error) {
	// Validate targets and coerce new values before touching any row.
	coerced := make(map[string]types.Value, len(assignments))
	for name, v := range assignments {
		col, ok := t.schema.Column(name)
		if !ok {
			return 0, &schema.ColumnNotFoundError{Column: name}
		}
		cv, err := types.Coerce(v, col.Type)
		if err != nil {
			return 0, &schema.ConstraintViolationError{
				Kind:    schema.ConstraintTypeMismatch,
				Column:  col.Name,
				Value:   v,
				Message: err.Error(),
			}
		}
		if col.NotNull && cv.IsNull() {
			return 0, &schema.ConstraintViolationError{
				Kind:    schema.ConstraintNotNull,
				Column:  col.Name,
				Value:   cv,
				Message: "column does not allow NULL",
			}
		}
		coerced[col.Name] = cv
	}

	affected := 0
	for pos, row := range t.rows {
		if !pred(row) {
			continue
		}

		type rekey struct {
			idx      *index.Index
			old, new types.Value
		}
		var done []rekey
		failed := false
		var failErr error

		for name, newVal := range coerced {
			idx, ok := t.indexes[strings.ToLower(name)]
			if !ok {
				continue
			}
			old := row[name]
			idx.Remove(old, pos)
			if err := idx.Add(newVal, pos); err != nil {
				// Restore this row's entries before failing.
				idx.Add(old, pos)
				for _, r := range done {
					r.idx.Remove(r.new, pos)
					r.idx.Add(r.old, pos)
				}
				failErr = t.uniqueViolation(name, newVal)
				failed = true
				break
			}
			done = append(done, rekey{idx: idx, old: old, new: newVal})
		}
		if failed {
			return affected, failErr
		}

		for name, newVal := range coerced {
			row[name] = newVal
		}
		affected++
	}

	return affected, nil
}

// Delete removes every row the predicate matches and returns how many
// went away. Indexes are rebuilt from the surviving rows afterwards so
// stored positions track the compacted row vector.
func (t *Table) Delete(pred Predicate) int {
	var matched []int
	for pos, row := range t.rows {
		if pred(row) {
			matched = append(matched, pos)
		}
	}
	if len(matched) == 0 {
		return 0
	}

	for _, pos := range matched {
		row := t.rows[pos]
		for _, idx := range t.indexes {
			idx.Remove(row[t.canonicalName(idx.Column())], pos)
		}
	}

	// Splice in descending order so earlier positions stay valid.
	for i := len(matched) - 1; i >= 0; i-- {
		pos := matched[i]
		t.rows = append(t.rows[:pos], t.rows[pos+1:]...)
	}

	t.RebuildIndexes()
	return len(matched)
}

// RebuildIndexes repopulates every index from the current row vector
func (t *Table) RebuildIndexes() {
	for _, idx := range t.indexes {
		idx.Clear()
		col := t.canonicalName(idx.Column())
		for pos, row := range t.rows {
			idx.Add(row[col], pos)
		}
	}
}

// FindByIndex returns the rows holding the normalized value in the
// named column, in position order. Without an index the result is
// empty; full scans are the caller's business.
func (t *Table) FindByIndex(column string, v types.Value) []Row {
	idx, ok := t.Index(column)
	if !ok {
		return nil
	}
	positions := idx.Lookup(v)
	rows := make([]Row, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, t.rows[pos])
	}
	return rows
}

// RowsAt returns the rows at the given positions, in the given order
func (t *Table) RowsAt(positions []int) []Row {
	rows := make([]Row, 0, len(positions))
	for _, pos := range positions {
		if pos >= 0 && pos < len(t.rows) {
			rows = append(rows, t.rows[pos])
		}
	}
	return rows
}

// Clone produces a fully independent copy of the table
func (t *Table) Clone() *Table {
	clone := &Table{
		schema:  t.schema.Clone(),
		rows:    make([]Row, len(t.rows)),
		indexes: make(map[string]*index.Index, len(t.indexes)),
		autoInc: t.autoInc,
	}
	for i, row := range t.rows {
		clone.rows[i] = row.Clone()
	}
	for key, idx := range t.indexes {
		clone.indexes[key] = idx.Clone()
	}
	return clone
}

// AlterSchema atomically replaces the schema and row vector, rebuilding
// indexes for the new schema's unique columns. The auto-increment
// counter is preserved.
func (t *Table) AlterSchema(ts *schema.TableSchema, rows []Row) {
	t.schema = ts
	t.rows = rows
	t.buildIndexMap()
	t.RebuildIndexes()
}
