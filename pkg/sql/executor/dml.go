// pkg/sql/executor/dml.go
package executor

import (
	"fmt"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
	"github.com/Bernard065/mini-rdbms/pkg/types"
)

func executeInsert(cat *storage.Catalog, stmt *parser.InsertStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}
	ts := table.Schema()

	// Resolve the target column list: explicit names or every declared
	// column in order.
	var columns []string
	if stmt.Columns != nil {
		columns = make([]string, len(stmt.Columns))
		for i, name := range stmt.Columns {
			col, ok := ts.Column(name)
			if !ok {
				return Error(&schema.ColumnNotFoundError{Column: name})
			}
			columns[i] = col.Name
		}
	} else {
		columns = ts.ColumnNames()
	}

	var lastInsertID *int64
	affected := 0
	for _, valueRow := range stmt.Values {
		if len(valueRow) != len(columns) {
			return Error(&schema.ExecutionError{
				Message: fmt.Sprintf("expected %d values, got %d", len(columns), len(valueRow)),
			})
		}

		data := make(storage.Row, len(columns))
		for i, name := range columns {
			data[name] = valueRow[i]
		}

		res, err := table.Insert(data)
		if err != nil {
			return Error(err)
		}
		if res.HasLastInsertID {
			id := res.LastInsertID
			lastInsertID = &id
		}
		affected++
	}

	return &QueryResult{
		Success:      true,
		Kind:         KindInsert,
		RowsAffected: affected,
		LastInsertID: lastInsertID,
	}
}

func executeUpdate(cat *storage.Catalog, stmt *parser.UpdateStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}

	assignments := make(map[string]types.Value, len(stmt.Assignments))
	for _, a := range stmt.Assignments {
		assignments[a.Column] = a.Value
	}

	affected, err := table.Update(assignments, predicateFrom(stmt.Where))
	if err != nil {
		return Error(err)
	}
	return &QueryResult{Success: true, Kind: KindUpdate, RowsAffected: affected}
}

func executeDelete(cat *storage.Catalog, stmt *parser.DeleteStmt) *QueryResult {
	table, ok := cat.Get(stmt.TableName)
	if !ok {
		return Error(&schema.TableNotFoundError{Table: stmt.TableName})
	}

	affected := table.Delete(predicateFrom(stmt.Where))
	return &QueryResult{Success: true, Kind: KindDelete, RowsAffected: affected}
}
