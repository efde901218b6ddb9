// pkg/schema/schema.go
package schema

import (
	"fmt"
	"strings"

	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// ColumnDef defines a table column
type ColumnDef struct {
	Name          string
	Type          types.ValueType
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	NotNull       bool
	Default       types.Value // NULL means no default
}

// TableSchema defines a table: ordered columns, the primary key column
// (empty when none) and the set of unique columns (primary key included).
type TableSchema struct {
	Name          string
	Columns       []ColumnDef
	PrimaryKey    string
	UniqueColumns []string
}

// NewTableSchema builds a schema from column definitions, deriving the
// primary key and unique column set. A primary key column is implicitly
// unique and not-null; AUTO_INCREMENT requires an INTEGER primary key.
func NewTableSchema(name string, columns []ColumnDef) (*TableSchema, error) {
	ts := &TableSchema{Name: name}
	seen := make(map[string]bool, len(columns))

	for _, col := range columns {
		key := strings.ToLower(col.Name)
		if seen[key] {
			return nil, &ExecutionError{Message: fmt.Sprintf("duplicate column name: %s", col.Name)}
		}
		seen[key] = true

		if col.PrimaryKey {
			if ts.PrimaryKey != "" {
				return nil, &ExecutionError{Message: "multiple primary keys are not supported"}
			}
			ts.PrimaryKey = col.Name
			col.Unique = true
			col.NotNull = true
		}
		if col.AutoIncrement {
			if !col.PrimaryKey {
				return nil, &ExecutionError{Message: "AUTO_INCREMENT requires PRIMARY KEY"}
			}
			if col.Type != types.TypeInteger {
				return nil, &ExecutionError{Message: "AUTO_INCREMENT requires an INTEGER column"}
			}
		}
		if col.Unique {
			ts.UniqueColumns = append(ts.UniqueColumns, col.Name)
		}
		ts.Columns = append(ts.Columns, col)
	}

	return ts, nil
}

// Column returns the definition of the named column (case-insensitive)
func (ts *TableSchema) Column(name string) (*ColumnDef, bool) {
	for i := range ts.Columns {
		if strings.EqualFold(ts.Columns[i].Name, name) {
			return &ts.Columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether the named column exists (case-insensitive)
func (ts *TableSchema) HasColumn(name string) bool {
	_, ok := ts.Column(name)
	return ok
}

// ColumnNames returns the declared column names in order
func (ts *TableSchema) ColumnNames() []string {
	names := make([]string, len(ts.Columns))
	for i, col := range ts.Columns {
		names[i] = col.Name
	}
	return names
}

// Clone returns an independent copy of the schema
func (ts *TableSchema) Clone() *TableSchema {
	clone := &TableSchema{
		Name:       ts.Name,
		PrimaryKey: ts.PrimaryKey,
		Columns:    make([]ColumnDef, len(ts.Columns)),
	}
	copy(clone.Columns, ts.Columns)
	if ts.UniqueColumns != nil {
		clone.UniqueColumns = make([]string, len(ts.UniqueColumns))
		copy(clone.UniqueColumns, ts.UniqueColumns)
	}
	return clone
}
