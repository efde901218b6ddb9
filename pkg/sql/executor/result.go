// pkg/sql/executor/result.go
package executor

import (
	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
)

// ResultKind tags the discriminated result variants
type ResultKind string

const (
	KindSelect      ResultKind = "SELECT"
	KindInsert      ResultKind = "INSERT"
	KindUpdate      ResultKind = "UPDATE"
	KindDelete      ResultKind = "DELETE"
	KindCreateTable ResultKind = "CREATE_TABLE"
	KindDropTable   ResultKind = "DROP_TABLE"
	KindShowTables  ResultKind = "SHOW_TABLES"
	KindDescribe    ResultKind = "DESCRIBE"
	KindOK          ResultKind = "OK"
	KindError       ResultKind = "ERROR"
)

// QueryResult is the discriminated result returned for every
// statement. A result is either success-shaped or error-shaped, never
// both. ExecutionTime is wall-clock milliseconds and may be
// fractional.
type QueryResult struct {
	Success       bool
	Kind          ResultKind
	Columns       []string            // SELECT column order, for rendering
	Rows          []storage.Row       // SELECT
	RowCount      int                 // SELECT
	RowsAffected  int                 // INSERT, UPDATE, DELETE
	LastInsertID  *int64              // INSERT into auto-increment tables
	TableName     string              // CREATE_TABLE, DROP_TABLE
	TableNames    []string            // SHOW_TABLES
	Schema        *schema.TableSchema // DESCRIBE
	Err           error               // ERROR
	ExecutionTime float64
}

// Error builds an error-shaped result
func Error(err error) *QueryResult {
	return &QueryResult{Kind: KindError, Err: err}
}

// OK builds a bare acknowledgement result
func OK() *QueryResult {
	return &QueryResult{Success: true, Kind: KindOK}
}
