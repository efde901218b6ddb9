// pkg/storage/table_test.go
package storage

import (
	"reflect"
	"testing"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

func usersTable(t *testing.T) *Table {
	t.Helper()
	ts, err := schema.NewTableSchema("users", []schema.ColumnDef{
		{Name: "id", Type: types.TypeInteger, PrimaryKey: true, AutoIncrement: true},
		{Name: "email", Type: types.TypeText, Unique: true, NotNull: true},
		{Name: "age", Type: types.TypeInteger},
	})
	if err != nil {
		t.Fatalf("NewTableSchema: %v", err)
	}
	return NewTable(ts)
}

func mustInsert(t *testing.T, tbl *Table, data Row) InsertResult {
	t.Helper()
	res, err := tbl.Insert(data)
	if err != nil {
		t.Fatalf("Insert(%v): %v", data, err)
	}
	return res
}

func TestInsertAssignsAutoIncrement(t *testing.T) {
	tbl := usersTable(t)

	res := mustInsert(t, tbl, Row{"email": types.NewText("a@x")})
	if !res.HasLastInsertID || res.LastInsertID != 1 {
		t.Errorf("first insert id = %+v, want 1", res)
	}

	res = mustInsert(t, tbl, Row{"email": types.NewText("b@x")})
	if res.LastInsertID != 2 {
		t.Errorf("second insert id = %d, want 2", res.LastInsertID)
	}

	if tbl.NextAutoIncrement() != 3 {
		t.Errorf("counter = %d, want 3", tbl.NextAutoIncrement())
	}
	if tbl.Rows()[0]["id"].Int() != 1 {
		t.Errorf("stored id = %v", tbl.Rows()[0]["id"])
	}
}

func TestInsertCoercesValues(t *testing.T) {
	ts, _ := schema.NewTableSchema("t", []schema.ColumnDef{
		{Name: "n", Type: types.TypeInteger},
		{Name: "b", Type: types.TypeBoolean},
	})
	tbl := NewTable(ts)

	mustInsert(t, tbl, Row{"n": types.NewText("42"), "b": types.NewText("yes")})
	row := tbl.Rows()[0]
	if row["n"].Int() != 42 || !row["b"].Bool() {
		t.Errorf("row = %v", row)
	}
}

func TestInsertTypeMismatch(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Insert(Row{
		"email": types.NewText("a@x"),
		"age":   types.NewText("not a number"),
	})
	cv, ok := err.(*schema.ConstraintViolationError)
	if !ok || cv.Kind != schema.ConstraintTypeMismatch || cv.Column != "age" {
		t.Fatalf("got %v, want TYPE_MISMATCH on age", err)
	}
	if tbl.RowCount() != 0 {
		t.Error("failed insert must not append a row")
	}
}

func TestInsertNotNull(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Insert(Row{"age": types.NewInteger(5)})
	cv, ok := err.(*schema.ConstraintViolationError)
	if !ok || cv.Kind != schema.ConstraintNotNull || cv.Column != "email" {
		t.Fatalf("got %v, want NOT_NULL on email", err)
	}
}

func TestInsertUniqueCollisionIsCaseInsensitive(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x")})

	_, err := tbl.Insert(Row{"email": types.NewText("A@X")})
	cv, ok := err.(*schema.ConstraintViolationError)
	if !ok || cv.Kind != schema.ConstraintUnique || cv.Column != "email" {
		t.Fatalf("got %v, want UNIQUE on email", err)
	}
	if tbl.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", tbl.RowCount())
	}

	// The failed insert must leave the primary key index clean: the id
	// it would have used is not resident.
	idx, _ := tbl.Index("id")
	if got := idx.Lookup(types.NewInteger(2)); got != nil {
		t.Errorf("undo left id index entry %v", got)
	}
}

func TestInsertUsesDefault(t *testing.T) {
	ts, _ := schema.NewTableSchema("t", []schema.ColumnDef{
		{Name: "status", Type: types.TypeText, Default: types.NewText("new")},
		{Name: "note", Type: types.TypeText},
	})
	tbl := NewTable(ts)

	mustInsert(t, tbl, Row{"note": types.NewText("hi")})
	row := tbl.Rows()[0]
	if row["status"].Text() != "new" {
		t.Errorf("status = %v, want default", row["status"])
	}

	// An explicit value wins over the default.
	mustInsert(t, tbl, Row{"status": types.NewText("done")})
	if tbl.Rows()[1]["status"].Text() != "done" {
		t.Error("explicit value should win over default")
	}
	if !tbl.Rows()[1]["note"].IsNull() {
		t.Error("missing column without default should be NULL")
	}
}

func TestUpdateFirstErrorKeepsEarlierRows(t *testing.T) {
	ts, _ := schema.NewTableSchema("t", []schema.ColumnDef{
		{Name: "k", Type: types.TypeInteger, Unique: true},
		{Name: "grp", Type: types.TypeInteger},
	})
	tbl := NewTable(ts)
	mustInsert(t, tbl, Row{"k": types.NewInteger(1), "grp": types.NewInteger(1)})
	mustInsert(t, tbl, Row{"k": types.NewInteger(2), "grp": types.NewInteger(1)})

	// Both rows match; the first takes k=9, the second then collides.
	affected, err := tbl.Update(
		map[string]types.Value{"k": types.NewInteger(9)},
		func(r Row) bool { return r["grp"].Int() == 1 },
	)
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1 (first row already updated)", affected)
	}
	if tbl.Rows()[0]["k"].Int() != 9 {
		t.Error("earlier row should keep its update")
	}
	if tbl.Rows()[1]["k"].Int() != 2 {
		t.Error("failing row must stay unchanged")
	}
	assertIndexesConsistent(t, tbl)
}

func TestUpdateUnknownColumn(t *testing.T) {
	tbl := usersTable(t)
	_, err := tbl.Update(map[string]types.Value{"nope": types.NewInteger(1)}, func(Row) bool { return true })
	if _, ok := err.(*schema.ColumnNotFoundError); !ok {
		t.Fatalf("got %v, want ColumnNotFoundError", err)
	}
}

func TestUpdateRekeysIndex(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x")})

	affected, err := tbl.Update(
		map[string]types.Value{"email": types.NewText("b@y")},
		func(Row) bool { return true },
	)
	if err != nil || affected != 1 {
		t.Fatalf("Update = %d, %v", affected, err)
	}

	if rows := tbl.FindByIndex("email", types.NewText("a@x")); len(rows) != 0 {
		t.Error("old key still resolves")
	}
	if rows := tbl.FindByIndex("email", types.NewText("B@Y")); len(rows) != 1 {
		t.Error("new key not resolvable")
	}
}

func TestDeleteRebuildsIndexes(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x")})
	mustInsert(t, tbl, Row{"email": types.NewText("b@y")})
	mustInsert(t, tbl, Row{"email": types.NewText("c@z")})

	n := tbl.Delete(func(r Row) bool { return r["email"].Text() == "b@y" })
	if n != 1 {
		t.Fatalf("Delete = %d, want 1", n)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}

	// Positions compacted: c@z moved from 2 to 1 and its index entries
	// must follow.
	rows := tbl.FindByIndex("email", types.NewText("c@z"))
	if len(rows) != 1 || rows[0]["email"].Text() != "c@z" {
		t.Fatalf("FindByIndex(c@z) = %v", rows)
	}
	assertIndexesConsistent(t, tbl)

	// Deleting the same rows again affects nothing.
	if n := tbl.Delete(func(r Row) bool { return r["email"].Text() == "b@y" }); n != 0 {
		t.Errorf("second Delete = %d, want 0", n)
	}
}

func TestFindByIndexWithoutIndex(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x"), "age": types.NewInteger(30)})
	if rows := tbl.FindByIndex("age", types.NewInteger(30)); rows != nil {
		t.Errorf("unindexed column should return empty, got %v", rows)
	}
}

func TestCloneIsDeep(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x")})

	clone := tbl.Clone()
	mustInsert(t, clone, Row{"email": types.NewText("b@y")})
	clone.Rows()[0]["email"] = types.NewText("mutated")

	if tbl.RowCount() != 1 {
		t.Errorf("original RowCount = %d, want 1", tbl.RowCount())
	}
	if tbl.Rows()[0]["email"].Text() != "a@x" {
		t.Error("row mutation leaked through the clone")
	}
	if clone.NextAutoIncrement() != 3 || tbl.NextAutoIncrement() != 2 {
		t.Error("auto-increment counters must be independent")
	}
}

func TestAlterSchemaPreservesCounter(t *testing.T) {
	tbl := usersTable(t)
	mustInsert(t, tbl, Row{"email": types.NewText("a@x")})

	old := tbl.Schema()
	cols := append([]schema.ColumnDef{}, old.Columns...)
	cols = append(cols, schema.ColumnDef{Name: "nick", Type: types.TypeText})
	ts, err := schema.NewTableSchema(old.Name, cols)
	if err != nil {
		t.Fatalf("NewTableSchema: %v", err)
	}

	rows := make([]Row, len(tbl.Rows()))
	for i, r := range tbl.Rows() {
		c := r.Clone()
		c["nick"] = types.NewNull()
		rows[i] = c
	}
	tbl.AlterSchema(ts, rows)

	if tbl.NextAutoIncrement() != 2 {
		t.Errorf("counter = %d, want 2", tbl.NextAutoIncrement())
	}
	if rows := tbl.FindByIndex("email", types.NewText("a@x")); len(rows) != 1 {
		t.Error("indexes not rebuilt after AlterSchema")
	}
}

// assertIndexesConsistent recomputes every index from a full scan and
// compares with the live entries.
func assertIndexesConsistent(t *testing.T, tbl *Table) {
	t.Helper()
	for _, name := range tbl.Schema().UniqueColumns {
		idx, ok := tbl.Index(name)
		if !ok {
			t.Fatalf("missing index on %s", name)
		}
		fresh := tbl.Clone()
		fresh.RebuildIndexes()
		freshIdx, _ := fresh.Index(name)
		if !reflect.DeepEqual(idx.Entries(), freshIdx.Entries()) {
			t.Errorf("index on %s inconsistent:\n live: %v\nfresh: %v",
				name, idx.Entries(), freshIdx.Entries())
		}
	}
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog()
	tbl := usersTable(t)

	if err := cat.Create(tbl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cat.Create(usersTable(t)); err == nil {
		t.Fatal("duplicate Create should fail")
	}

	if _, ok := cat.Get("USERS"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if got := cat.Names(); !reflect.DeepEqual(got, []string{"users"}) {
		t.Errorf("Names = %v", got)
	}

	clone := cat.Clone()
	ct, _ := clone.Get("users")
	mustInsert(t, ct, Row{"email": types.NewText("a@x")})
	if tbl.RowCount() != 0 {
		t.Error("catalog clone must be deep")
	}

	if !cat.Drop("users") {
		t.Error("Drop should report success")
	}
	if cat.Drop("users") {
		t.Error("second Drop should report absence")
	}
}
