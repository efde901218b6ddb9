// pkg/schema/errors.go
package schema

import (
	"fmt"

	"github.com/Bernard065/mini-rdbms/pkg/types"
)

// ConstraintKind identifies which constraint a write violated
type ConstraintKind string

const (
	ConstraintPrimaryKey   ConstraintKind = "PRIMARY_KEY"
	ConstraintUnique       ConstraintKind = "UNIQUE"
	ConstraintNotNull      ConstraintKind = "NOT_NULL"
	ConstraintTypeMismatch ConstraintKind = "TYPE_MISMATCH"
)

// SyntaxError reports a parse failure at a byte offset in the input
type SyntaxError struct {
	Message  string
	Position int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Message)
}

// TableNotFoundError reports a reference to a missing table
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table not found: %s", e.Table)
}

// TableAlreadyExistsError reports CREATE TABLE on an existing name
type TableAlreadyExistsError struct {
	Table string
}

func (e *TableAlreadyExistsError) Error() string {
	return fmt.Sprintf("table already exists: %s", e.Table)
}

// ColumnNotFoundError reports a reference to a missing column
type ColumnNotFoundError struct {
	Column  string
	Message string
}

func (e *ColumnNotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("column not found: %s: %s", e.Column, e.Message)
	}
	return fmt.Sprintf("column not found: %s", e.Column)
}

// ConstraintViolationError reports a constraint failure on a write
type ConstraintViolationError struct {
	Kind    ConstraintKind
	Column  string
	Value   types.Value
	Message string
}

func (e *ConstraintViolationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s constraint violation on column %s: %s", e.Kind, e.Column, e.Message)
	}
	return fmt.Sprintf("%s constraint violation on column %s (value %s)", e.Kind, e.Column, e.Value.String())
}

// ExecutionError reports a failure during statement execution
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// TransactionError reports misuse of BEGIN/COMMIT/ROLLBACK
type TransactionError struct {
	Message string
}

func (e *TransactionError) Error() string {
	return e.Message
}
