// pkg/sql/executor/ddl.go
package executor

import (
	"fmt"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// columnDefFromAST converts a parsed column definition. DEFAULT is not
// part of the grammar, so the default is always NULL here; bootstrap
// schemas may carry one.
func columnDefFromAST(col parser.ColumnDef) schema.ColumnDef {
	return schema.ColumnDef{
		Name:          col.Name,
		Type:          col.Type,
		PrimaryKey:    col.PrimaryKey,
		AutoIncrement: col.AutoIncrement,
		Unique:        col.Unique,
		NotNull:       col.NotNull,
		Default:       types.NewNull(),
	}
}

func executeCreateTable(cat *storage.Catalog, stmt *parser.CreateTableStmt) *QueryResult {
	if cat.Has(stmt.TableName) {
		if stmt.IfNotExists {
			return &QueryResult{Success: true, Kind: KindCreateTable, TableName: stmt.TableName}
		}
		return Error(&schema.TableAlreadyExistsError{Table: stmt.TableName})
	}

	cols := make([]schema.ColumnDef, len(stmt.Columns))
	for i, col := range stmt.Columns {
		cols[i] = columnDefFromAST(col)
	}

	ts, err := schema.NewTableSchema(stmt.TableName, cols)
	if err != nil {
		return Error(err)
	}

	if err := cat.Create(storage.NewTable(ts)); err != nil {
		return Error(err)
	}
	return &QueryResult{Success: true, Kind: KindCreateTable, TableName: stmt.TableName}
}

func executeDropTable(cat *storage.Catalog, stmt *parser.DropTableStmt) *QueryResult {
	if !cat.Has(stmt.TableName) {
		if stmt.IfExists {
			return &QueryResult{Success: true, Kind: KindDropTable, TableName: stmt.TableName}
		}
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}
	cat.Drop(stmt.TableName)
	return &QueryResult{Success: true, Kind: KindDropTable, TableName: stmt.TableName}
}

func executeAlterTable(cat *storage.Catalog, stmt *parser.AlterTableStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}
	old := table.Schema()

	switch stmt.Action {
	case parser.AlterAddColumn:
		return alterAddColumn(table, old, stmt)
	case parser.AlterDropColumn:
		return alterDropColumn(table, old, stmt)
	case parser.AlterRenameColumn:
		return alterRenameColumn(table, old, stmt)
	case parser.AlterModifyColumn:
		return alterModifyColumn(table, old, stmt)
	default:
		return Error(&schema.ExecutionError{Message: "unknown ALTER TABLE action"})
	}
}

func alterAddColumn(table *storage.Table, old *schema.TableSchema, stmt *parser.AlterTableStmt) *QueryResult {
	if old.HasColumn(stmt.Column.Name) {
		return Error(&schema.ExecutionError{
			Message: fmt.Sprintf("column already exists: %s", stmt.Column.Name),
		})
	}

	cols := append(append([]schema.ColumnDef{}, old.Columns...), columnDefFromAST(*stmt.Column))
	ts, err := schema.NewTableSchema(old.Name, cols)
	if err != nil {
		return Error(err)
	}

	// Existing rows get NULL for the new column.
	rows := make([]storage.Row, len(table.Rows()))
	for i, row := range table.Rows() {
		clone := row.Clone()
		clone[stmt.Column.Name] = types.NewNull()
		rows[i] = clone
	}

	table.AlterSchema(ts, rows)
	return &QueryResult{Success: true, Kind: KindOK, TableName: old.Name}
}

func alterDropColumn(table *storage.Table, old *schema.TableSchema, stmt *parser.AlterTableStmt) *QueryResult {
	col, ok := old.Column(stmt.ColumnName)
	if !ok {
		return Error(&schema.ColumnNotFoundError{Column: stmt.ColumnName})
	}
	dropped := col.Name

	cols := make([]schema.ColumnDef, 0, len(old.Columns)-1)
	for _, c := range old.Columns {
		if c.Name != dropped {
			cols = append(cols, c)
		}
	}
	ts, err := schema.NewTableSchema(old.Name, cols)
	if err != nil {
		return Error(err)
	}

	rows := make([]storage.Row, len(table.Rows()))
	for i, row := range table.Rows() {
		clone := row.Clone()
		delete(clone, dropped)
		rows[i] = clone
	}

	table.AlterSchema(ts, rows)
	return &QueryResult{Success: true, Kind: KindOK, TableName: old.Name}
}

func alterRenameColumn(table *storage.Table, old *schema.TableSchema, stmt *parser.AlterTableStmt) *QueryResult {
	col, ok := old.Column(stmt.ColumnName)
	if !ok {
		return Error(&schema.ColumnNotFoundError{Column: stmt.ColumnName})
	}
	if old.HasColumn(stmt.NewName) {
		return Error(&schema.ExecutionError{
			Message: fmt.Sprintf("column already exists: %s", stmt.NewName),
		})
	}
	oldName := col.Name

	cols := make([]schema.ColumnDef, len(old.Columns))
	copy(cols, old.Columns)
	for i := range cols {
		if cols[i].Name == oldName {
			cols[i].Name = stmt.NewName
		}
	}
	ts, err := schema.NewTableSchema(old.Name, cols)
	if err != nil {
		return Error(err)
	}

	rows := make([]storage.Row, len(table.Rows()))
	for i, row := range table.Rows() {
		clone := row.Clone()
		if v, ok := clone[oldName]; ok {
			delete(clone, oldName)
			clone[stmt.NewName] = v
		}
		rows[i] = clone
	}

	table.AlterSchema(ts, rows)
	return &QueryResult{Success: true, Kind: KindOK, TableName: old.Name}
}

// alterModifyColumn replaces the column's definition. Existing row
// values are not re-validated against the new type.
func alterModifyColumn(table *storage.Table, old *schema.TableSchema, stmt *parser.AlterTableStmt) *QueryResult {
	col, ok := old.Column(stmt.ColumnName)
	if !ok {
		return Error(&schema.ColumnNotFoundError{Column: stmt.ColumnName})
	}
	target := col.Name

	cols := make([]schema.ColumnDef, len(old.Columns))
	copy(cols, old.Columns)
	for i := range cols {
		if cols[i].Name == target {
			def := columnDefFromAST(*stmt.Column)
			def.Name = target
			cols[i] = def
		}
	}
	ts, err := schema.NewTableSchema(old.Name, cols)
	if err != nil {
		return Error(err)
	}

	rows := make([]storage.Row, len(table.Rows()))
	for i, row := range table.Rows() {
		rows[i] = row.Clone()
	}

	table.AlterSchema(ts, rows)
	return &QueryResult{Success: true, Kind: KindOK, TableName: old.Name}
}

func executeShowTables(cat *storage.Catalog) *QueryResult {
	return &QueryResult{Success: true, Kind: KindShowTables, TableNames: cat.Names()}
}

func executeDescribe(cat *storage.Catalog, stmt *parser.DescribeStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}
	return &QueryResult{Success: true, Kind: KindDescribe, Schema: table.Schema().Clone()}
}
