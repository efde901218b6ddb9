// pkg/sql/executor/executor.go
//
// Statement interpreters. Each statement kind has one free function
// taking the catalog and the statement variant; Execute dispatches and
// stamps the wall-clock execution time on the result.
package executor

import (
	"time"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
)

// Execute runs one statement against the catalog. Transaction control
// statements belong to the session and are rejected here.
func Execute(cat *storage.Catalog, stmt parser.Statement) *QueryResult {
	start := time.Now()
	res := dispatch(cat, stmt)
	res.ExecutionTime = float64(time.Since(start)) / float64(time.Millisecond)
	return res
}

func dispatch(cat *storage.Catalog, stmt parser.Statement) *QueryResult {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return executeCreateTable(cat, s)
	case *parser.AlterTableStmt:
		return executeAlterTable(cat, s)
	case *parser.DropTableStmt:
		return executeDropTable(cat, s)
	case *parser.InsertStmt:
		return executeInsert(cat, s)
	case *parser.SelectStmt:
		return executeSelect(cat, s)
	case *parser.UpdateStmt:
		return executeUpdate(cat, s)
	case *parser.DeleteStmt:
		return executeDelete(cat, s)
	case *parser.ShowTablesStmt:
		return executeShowTables(cat)
	case *parser.DescribeStmt:
		return executeDescribe(cat, s)
	default:
		return Error(&schema.ExecutionError{Message: "unsupported statement"})
	}
}
