// pkg/sql/executor/executor_test.go
package executor

import (
	"reflect"
	"testing"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// exec parses and executes one statement against the catalog
func exec(t *testing.T, cat *storage.Catalog, sql string) *QueryResult {
	t.Helper()
	stmt, err := parser.New(sql).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	return Execute(cat, stmt)
}

// mustExec fails the test when the statement errors
func mustExec(t *testing.T, cat *storage.Catalog, sql string) *QueryResult {
	t.Helper()
	res := exec(t, cat, sql)
	if !res.Success {
		t.Fatalf("%q failed: %v", sql, res.Err)
	}
	return res
}

func TestCreateTable(t *testing.T) {
	cat := storage.NewCatalog()

	res := mustExec(t, cat, "CREATE TABLE t (a INTEGER, b TEXT)")
	if res.Kind != KindCreateTable || res.TableName != "t" {
		t.Errorf("result = %+v", res)
	}

	res = exec(t, cat, "CREATE TABLE t (a INTEGER)")
	if res.Success {
		t.Fatal("duplicate CREATE should fail")
	}
	if _, ok := res.Err.(*schema.TableAlreadyExistsError); !ok {
		t.Errorf("err = %T, want TableAlreadyExistsError", res.Err)
	}

	// IF NOT EXISTS turns the failure into a no-op success.
	res = mustExec(t, cat, "CREATE TABLE IF NOT EXISTS t (a INTEGER)")
	if res.Kind != KindCreateTable {
		t.Errorf("kind = %v", res.Kind)
	}
}

func TestCreateTableRejectsBadColumns(t *testing.T) {
	cat := storage.NewCatalog()

	if res := exec(t, cat, "CREATE TABLE t (a INTEGER PRIMARY KEY, b INTEGER PRIMARY KEY)"); res.Success {
		t.Error("two primary keys should fail")
	}
	if res := exec(t, cat, "CREATE TABLE t (a INTEGER AUTO_INCREMENT)"); res.Success {
		t.Error("AUTO_INCREMENT without PRIMARY KEY should fail")
	}
	if res := exec(t, cat, "CREATE TABLE t (a TEXT PRIMARY KEY AUTO_INCREMENT)"); res.Success {
		t.Error("AUTO_INCREMENT on TEXT should fail")
	}
}

func TestDropTable(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER)")

	res := mustExec(t, cat, "DROP TABLE t")
	if res.Kind != KindDropTable || res.TableName != "t" {
		t.Errorf("result = %+v", res)
	}

	res = exec(t, cat, "DROP TABLE t")
	if _, ok := res.Err.(*schema.TableNotFoundError); !ok {
		t.Errorf("err = %T, want TableNotFoundError", res.Err)
	}

	mustExec(t, cat, "DROP TABLE IF EXISTS t")
}

func TestInsertAndSelect(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (n INTEGER, r REAL, b BOOLEAN)")

	res := mustExec(t, cat, "INSERT INTO t (n, r, b) VALUES ('42', '3.5', 'yes')")
	if res.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d", res.RowsAffected)
	}
	if res.LastInsertID != nil {
		t.Error("LastInsertID must be absent without auto-increment")
	}

	sel := mustExec(t, cat, "SELECT * FROM t")
	if sel.RowCount != 1 {
		t.Fatalf("RowCount = %d", sel.RowCount)
	}
	row := sel.Rows[0]
	if row["n"].Int() != 42 || row["r"].Real() != 3.5 || !row["b"].Bool() {
		t.Errorf("row = %v", row)
	}

	res = exec(t, cat, "INSERT INTO t (n, r, b) VALUES ('x', 1.0, TRUE)")
	cv, ok := res.Err.(*schema.ConstraintViolationError)
	if !ok || cv.Kind != schema.ConstraintTypeMismatch || cv.Column != "n" {
		t.Fatalf("err = %v, want TYPE_MISMATCH on n", res.Err)
	}
}

func TestInsertArityMismatch(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER, b INTEGER)")

	if res := exec(t, cat, "INSERT INTO t (a, b) VALUES (1)"); res.Success {
		t.Error("short value row should fail")
	}
	if res := exec(t, cat, "INSERT INTO t VALUES (1, 2, 3)"); res.Success {
		t.Error("long value row should fail")
	}
	if res := exec(t, cat, "INSERT INTO t (a, nope) VALUES (1, 2)"); res.Success {
		t.Error("unknown column should fail")
	}
}

func TestInsertMultiRowShortCircuits(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER UNIQUE)")

	res := exec(t, cat, "INSERT INTO t (a) VALUES (1), (1), (2)")
	if res.Success {
		t.Fatal("duplicate in second row should fail the statement")
	}

	// The first row stays; the third was never attempted.
	sel := mustExec(t, cat, "SELECT * FROM t")
	if sel.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", sel.RowCount)
	}
}

func TestSelectWhere(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER, s TEXT)")
	mustExec(t, cat, "INSERT INTO t (a, s) VALUES (1, 'alpha'), (2, 'beta'), (3, 'Alto')")

	sel := mustExec(t, cat, "SELECT * FROM t WHERE a >= 2")
	if sel.RowCount != 2 {
		t.Errorf("a >= 2: RowCount = %d", sel.RowCount)
	}

	sel = mustExec(t, cat, "SELECT * FROM t WHERE s = 'ALPHA'")
	if sel.RowCount != 1 {
		t.Errorf("case-insensitive equality: RowCount = %d", sel.RowCount)
	}

	sel = mustExec(t, cat, "SELECT * FROM t WHERE s LIKE 'al%'")
	if sel.RowCount != 2 {
		t.Errorf("LIKE: RowCount = %d, want 2 (alpha, Alto)", sel.RowCount)
	}

	sel = mustExec(t, cat, "SELECT * FROM t WHERE a != 2")
	if sel.RowCount != 2 {
		t.Errorf("!=: RowCount = %d", sel.RowCount)
	}
}

func TestSelectWhereNullSemantics(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER)")
	mustExec(t, cat, "INSERT INTO t (a) VALUES (1), (NULL)")

	// Equality with NULL holds only for NULL values.
	sel := mustExec(t, cat, "SELECT * FROM t WHERE a = NULL")
	if sel.RowCount != 1 {
		t.Errorf("a = NULL: RowCount = %d, want 1", sel.RowCount)
	}

	// != and ordering against NULL never match.
	sel = mustExec(t, cat, "SELECT * FROM t WHERE a != NULL")
	if sel.RowCount != 0 {
		t.Errorf("a != NULL: RowCount = %d, want 0", sel.RowCount)
	}
	sel = mustExec(t, cat, "SELECT * FROM t WHERE a > NULL")
	if sel.RowCount != 0 {
		t.Errorf("a > NULL: RowCount = %d, want 0", sel.RowCount)
	}
}

func TestWhereFlatPrecedence(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE w (a INTEGER, b INTEGER, c INTEGER)")
	mustExec(t, cat, "INSERT INTO w (a, b, c) VALUES (1, 1, 1), (1, 0, 1), (0, 1, 0)")

	// Left-associative flattening: ((a=1 OR b=1) AND c=0).
	sel := mustExec(t, cat, "SELECT * FROM w WHERE a = 1 OR b = 1 AND c = 0")
	if sel.RowCount != 1 {
		t.Fatalf("RowCount = %d, want 1", sel.RowCount)
	}
	row := sel.Rows[0]
	if row["a"].Int() != 0 || row["b"].Int() != 1 || row["c"].Int() != 0 {
		t.Errorf("row = %v, want (0,1,0)", row)
	}
}

func TestSelectProjection(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER, b INTEGER)")
	mustExec(t, cat, "INSERT INTO t (a, b) VALUES (1, 2)")

	sel := mustExec(t, cat, "SELECT a, missing FROM t")
	row := sel.Rows[0]
	if row["a"].Int() != 1 {
		t.Errorf("a = %v", row["a"])
	}
	if v, ok := row["missing"]; !ok || !v.IsNull() {
		t.Errorf("missing column should project as NULL, got %v (present %v)", v, ok)
	}
	if _, ok := row["b"]; ok {
		t.Error("unprojected column leaked")
	}
	if !reflect.DeepEqual(sel.Columns, []string{"a", "missing"}) {
		t.Errorf("Columns = %v", sel.Columns)
	}
}

func TestSelectOrderByAndLimit(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (n INTEGER, s TEXT)")
	mustExec(t, cat, "INSERT INTO t (n, s) VALUES (2, 'b'), (1, 'c'), (3, 'a'), (NULL, 'd')")

	sel := mustExec(t, cat, "SELECT * FROM t ORDER BY n")
	got := make([]interface{}, len(sel.Rows))
	for i, r := range sel.Rows {
		got[i] = r["n"].Go()
	}
	if !reflect.DeepEqual(got, []interface{}{int64(1), int64(2), int64(3), nil}) {
		t.Errorf("ASC order = %v", got)
	}

	// NULLs stay last under DESC too.
	sel = mustExec(t, cat, "SELECT * FROM t ORDER BY n DESC")
	if !sel.Rows[len(sel.Rows)-1]["n"].IsNull() {
		t.Error("NULL should sort last in DESC")
	}
	if sel.Rows[0]["n"].Int() != 3 {
		t.Errorf("DESC first = %v", sel.Rows[0]["n"])
	}

	sel = mustExec(t, cat, "SELECT * FROM t ORDER BY s LIMIT 2")
	if sel.RowCount != 2 || sel.Rows[0]["s"].Text() != "a" {
		t.Errorf("LIMIT result = %v", sel.Rows)
	}

	sel = mustExec(t, cat, "SELECT * FROM t LIMIT 0")
	if sel.RowCount != 0 {
		t.Errorf("LIMIT 0: RowCount = %d", sel.RowCount)
	}
}

func TestInnerJoinPrefixing(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE orders (id INTEGER, customer_id INTEGER, amount INTEGER)")
	mustExec(t, cat, "CREATE TABLE customers (id INTEGER, name TEXT)")
	mustExec(t, cat, "INSERT INTO orders (id, customer_id, amount) VALUES (10, 1, 5)")
	mustExec(t, cat, "INSERT INTO customers (id, name) VALUES (1, 'A')")

	sel := mustExec(t, cat, "SELECT * FROM orders INNER JOIN customers ON customer_id = id")
	if sel.RowCount != 1 {
		t.Fatalf("RowCount = %d", sel.RowCount)
	}
	row := sel.Rows[0]
	want := map[string]interface{}{
		"orders.id":          int64(10),
		"orders.customer_id": int64(1),
		"orders.amount":      int64(5),
		"customers.id":       int64(1),
		"customers.name":     "A",
	}
	if len(row) != len(want) {
		t.Fatalf("row keys = %v", row)
	}
	for k, v := range want {
		if row[k].Go() != v {
			t.Errorf("%s = %v, want %v", k, row[k].Go(), v)
		}
	}
}

func TestLeftJoinEmitsNullSide(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE l (k INTEGER)")
	mustExec(t, cat, "CREATE TABLE r (k INTEGER, v TEXT)")
	mustExec(t, cat, "INSERT INTO l (k) VALUES (1), (2)")
	mustExec(t, cat, "INSERT INTO r (k, v) VALUES (1, 'one')")

	sel := mustExec(t, cat, "SELECT * FROM l LEFT JOIN r ON k = k")
	if sel.RowCount != 2 {
		t.Fatalf("RowCount = %d", sel.RowCount)
	}

	var unmatched storage.Row
	for _, row := range sel.Rows {
		if row["l.k"].Int() == 2 {
			unmatched = row
		}
	}
	if unmatched == nil {
		t.Fatal("unmatched left row missing")
	}
	// The right side's keys come from a sample row, all NULL.
	if v, ok := unmatched["r.v"]; !ok || !v.IsNull() {
		t.Errorf("r.v = %v (present %v), want NULL", v, ok)
	}
	if v, ok := unmatched["r.k"]; !ok || !v.IsNull() {
		t.Errorf("r.k = %v (present %v), want NULL", v, ok)
	}
}

func TestLeftJoinEmptyRightOmitsKeys(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE l (k INTEGER)")
	mustExec(t, cat, "CREATE TABLE r (k INTEGER)")
	mustExec(t, cat, "INSERT INTO l (k) VALUES (1)")

	sel := mustExec(t, cat, "SELECT * FROM l LEFT JOIN r ON k = k")
	if sel.RowCount != 1 {
		t.Fatalf("RowCount = %d", sel.RowCount)
	}
	if _, ok := sel.Rows[0]["r.k"]; ok {
		t.Error("empty right side must contribute no keys")
	}
	if sel.Rows[0]["l.k"].Int() != 1 {
		t.Errorf("l.k = %v", sel.Rows[0]["l.k"])
	}
}

func TestJoinEqualityIsCaseSensitive(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE a (code TEXT)")
	mustExec(t, cat, "CREATE TABLE b (code TEXT)")
	mustExec(t, cat, "INSERT INTO a (code) VALUES ('X')")
	mustExec(t, cat, "INSERT INTO b (code) VALUES ('x')")

	// Join keys compare strictly, unlike WHERE equality.
	sel := mustExec(t, cat, "SELECT * FROM a INNER JOIN b ON code = code")
	if sel.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0 (strict equality)", sel.RowCount)
	}
}

func TestJoinMissingTable(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE a (x INTEGER)")
	res := exec(t, cat, "SELECT * FROM a INNER JOIN nope ON x = x")
	if _, ok := res.Err.(*schema.TableNotFoundError); !ok {
		t.Errorf("err = %T, want TableNotFoundError", res.Err)
	}
}

func TestUpdate(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER, b TEXT)")
	mustExec(t, cat, "INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')")

	res := mustExec(t, cat, "UPDATE t SET b = 'z' WHERE a = 1")
	if res.Kind != KindUpdate || res.RowsAffected != 1 {
		t.Errorf("result = %+v", res)
	}

	res = mustExec(t, cat, "UPDATE t SET a = 9")
	if res.RowsAffected != 2 {
		t.Errorf("unfiltered update affected %d", res.RowsAffected)
	}

	res = exec(t, cat, "UPDATE t SET nope = 1")
	if _, ok := res.Err.(*schema.ColumnNotFoundError); !ok {
		t.Errorf("err = %T, want ColumnNotFoundError", res.Err)
	}
}

func TestDelete(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER)")
	mustExec(t, cat, "INSERT INTO t (a) VALUES (1), (2), (3)")

	res := mustExec(t, cat, "DELETE FROM t WHERE a > 1")
	if res.RowsAffected != 2 {
		t.Errorf("RowsAffected = %d", res.RowsAffected)
	}
	res = mustExec(t, cat, "DELETE FROM t WHERE a > 1")
	if res.RowsAffected != 0 {
		t.Errorf("second delete affected %d", res.RowsAffected)
	}
}

func TestAlterTable(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER)")
	mustExec(t, cat, "INSERT INTO t (a) VALUES (1)")

	mustExec(t, cat, "ALTER TABLE t ADD COLUMN b TEXT")
	sel := mustExec(t, cat, "SELECT * FROM t")
	if v, ok := sel.Rows[0]["b"]; !ok || !v.IsNull() {
		t.Errorf("added column = %v (present %v), want NULL", v, ok)
	}

	mustExec(t, cat, "ALTER TABLE t RENAME COLUMN b TO c")
	sel = mustExec(t, cat, "SELECT * FROM t")
	if _, ok := sel.Rows[0]["b"]; ok {
		t.Error("old name still present after rename")
	}
	if _, ok := sel.Rows[0]["c"]; !ok {
		t.Error("new name missing after rename")
	}

	mustExec(t, cat, "ALTER TABLE t DROP COLUMN c")
	sel = mustExec(t, cat, "SELECT * FROM t")
	if len(sel.Rows[0]) != 1 {
		t.Errorf("row after drop = %v", sel.Rows[0])
	}

	if res := exec(t, cat, "ALTER TABLE t DROP COLUMN nope"); res.Success {
		t.Error("dropping unknown column should fail")
	}
	if res := exec(t, cat, "ALTER TABLE t ADD COLUMN a TEXT"); res.Success {
		t.Error("adding existing column should fail")
	}
	if res := exec(t, cat, "ALTER TABLE nope ADD COLUMN x TEXT"); res.Success {
		t.Error("altering unknown table should fail")
	}
}

func TestAlterModifyColumn(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE t (a INTEGER)")
	mustExec(t, cat, "INSERT INTO t (a) VALUES (1)")

	mustExec(t, cat, "ALTER TABLE t MODIFY a TEXT")
	desc := mustExec(t, cat, "DESCRIBE t")
	if desc.Schema.Columns[0].Type != types.TypeText {
		t.Errorf("modified type = %v", desc.Schema.Columns[0].Type)
	}

	// Existing values are not re-validated; the old INTEGER stays.
	sel := mustExec(t, cat, "SELECT * FROM t")
	if sel.Rows[0]["a"].Type() != types.TypeInteger {
		t.Errorf("existing value type = %v", sel.Rows[0]["a"].Type())
	}
}

func TestShowTablesAndDescribe(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE zeta (a INTEGER)")
	mustExec(t, cat, "CREATE TABLE alpha (b TEXT)")

	res := mustExec(t, cat, "SHOW TABLES")
	if !reflect.DeepEqual(res.TableNames, []string{"alpha", "zeta"}) {
		t.Errorf("TableNames = %v, want sorted", res.TableNames)
	}

	desc := mustExec(t, cat, "DESCRIBE alpha")
	if desc.Schema == nil || desc.Schema.Name != "alpha" {
		t.Fatalf("Schema = %+v", desc.Schema)
	}

	if res := exec(t, cat, "DESCRIBE nope"); res.Success {
		t.Error("DESCRIBE of unknown table should fail")
	}
}

func TestIndexedWhereMatchesFullScan(t *testing.T) {
	cat := storage.NewCatalog()
	mustExec(t, cat, "CREATE TABLE u (id INTEGER PRIMARY KEY AUTO_INCREMENT, e TEXT UNIQUE NOT NULL, n INTEGER)")
	mustExec(t, cat, "INSERT INTO u (e, n) VALUES ('a@x', 10), ('b@y', 20), ('c@z', 30)")

	// Equality on the unique column goes through the index and must
	// honor TEXT normalization.
	sel := mustExec(t, cat, "SELECT * FROM u WHERE e = 'C@Z'")
	if sel.RowCount != 1 || sel.Rows[0]["n"].Int() != 30 {
		t.Fatalf("indexed equality = %v", sel.Rows)
	}

	// Range over the primary key index.
	sel = mustExec(t, cat, "SELECT * FROM u WHERE id >= 2")
	if sel.RowCount != 2 {
		t.Errorf("indexed range RowCount = %d", sel.RowCount)
	}

	// LIKE over the unique TEXT index.
	sel = mustExec(t, cat, "SELECT * FROM u WHERE e LIKE '%@x'")
	if sel.RowCount != 1 || sel.Rows[0]["e"].Text() != "a@x" {
		t.Errorf("indexed LIKE = %v", sel.Rows)
	}
}

func TestExecutionTimeIsStamped(t *testing.T) {
	cat := storage.NewCatalog()
	res := mustExec(t, cat, "CREATE TABLE t (a INTEGER)")
	if res.ExecutionTime < 0 {
		t.Errorf("ExecutionTime = %f", res.ExecutionTime)
	}
	res = exec(t, cat, "SELECT * FROM nope")
	if res.Success || res.Kind != KindError {
		t.Error("error result expected")
	}
}
