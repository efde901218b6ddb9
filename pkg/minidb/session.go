// pkg/minidb/session.go
package minidb

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
	"github.com/Bernard065/mini-rdbms/pkg/sql/executor"
	"github.com/Bernard065/mini-rdbms/pkg/sql/parser"
	"github.com/Bernard065/mini-rdbms/pkg/storage"
)

// Session owns the committed catalog and, while a transaction is open,
// a shadow catalog that absorbs every read and write until COMMIT or
// ROLLBACK. A mutex serialises statements; the engine is single-writer
// by contract.
type Session struct {
	mu         sync.Mutex
	committed  *storage.Catalog
	shadow     *storage.Catalog
	inTx       bool
	statements uint64
}

// Options configures session construction
type Options struct {
	// SchemaFile bootstraps the catalog from a YAML or JSON schema
	// file before the session accepts statements.
	SchemaFile string
}

// NewSession creates a session with an empty catalog
func NewSession() *Session {
	return &Session{committed: storage.NewCatalog()}
}

// NewSessionWithOptions creates a session, applying the options
func NewSessionWithOptions(opts Options) (*Session, error) {
	s := NewSession()
	if opts.SchemaFile != "" {
		schemas, err := schema.LoadFromFile(opts.SchemaFile)
		if err != nil {
			return nil, err
		}
		for _, ts := range schemas {
			if err := s.committed.Create(storage.NewTable(ts)); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// catalog returns the catalog currently in effect: the shadow inside a
// transaction, the committed catalog otherwise.
func (s *Session) catalog() *storage.Catalog {
	if s.inTx {
		return s.shadow
	}
	return s.committed
}

// Execute parses and runs a single statement, returning its typed
// result. Internal failures surface as EXECUTION_ERROR results; this
// method does not panic.
func (s *Session) Execute(text string) (res *executor.QueryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = executor.Error(&schema.ExecutionError{Message: fmt.Sprint(r)})
		}
		if res.ExecutionTime == 0 {
			res.ExecutionTime = float64(time.Since(start)) / float64(time.Millisecond)
		}
	}()

	stmt, err := parser.New(strings.TrimSpace(text)).Parse()
	if err != nil {
		return executor.Error(err)
	}

	return s.executeStmt(stmt)
}

// ExecuteAll parses and runs a semicolon-separated script. A syntax
// error aborts the whole script; execution errors are reported per
// statement and do not stop the ones that follow.
func (s *Session) ExecuteAll(text string) []*executor.QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts, err := parser.New(strings.TrimSpace(text)).ParseStatements()
	if err != nil {
		res := executor.Error(err)
		res.ExecutionTime = 0
		return []*executor.QueryResult{res}
	}

	results := make([]*executor.QueryResult, 0, len(stmts))
	for _, stmt := range stmts {
		results = append(results, s.executeStmt(stmt))
	}
	return results
}

// executeStmt dispatches one parsed statement. The caller holds the
// session mutex.
func (s *Session) executeStmt(stmt parser.Statement) *executor.QueryResult {
	s.statements++

	switch stmt.(type) {
	case *parser.BeginStmt:
		return s.begin()
	case *parser.CommitStmt:
		return s.commit()
	case *parser.RollbackStmt:
		return s.rollback()
	default:
		return executor.Execute(s.catalog(), stmt)
	}
}

// begin opens a transaction by deep-cloning the committed catalog
func (s *Session) begin() *executor.QueryResult {
	start := time.Now()
	if s.inTx {
		return executor.Error(&schema.TransactionError{Message: "transaction already in progress"})
	}
	s.shadow = s.committed.Clone()
	s.inTx = true
	res := executor.OK()
	res.ExecutionTime = float64(time.Since(start)) / float64(time.Millisecond)
	return res
}

// commit atomically replaces the committed catalog with the shadow
func (s *Session) commit() *executor.QueryResult {
	if !s.inTx {
		return executor.Error(&schema.TransactionError{Message: "no transaction in progress"})
	}
	s.committed = s.shadow
	s.shadow = nil
	s.inTx = false
	return executor.OK()
}

// rollback discards the shadow catalog
func (s *Session) rollback() *executor.QueryResult {
	if !s.inTx {
		return executor.Error(&schema.TransactionError{Message: "no transaction in progress"})
	}
	s.shadow = nil
	s.inTx = false
	return executor.OK()
}

// InTransaction reports whether a transaction is open
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx
}

// TableNames returns the sorted table names of the catalog currently
// in effect.
func (s *Session) TableNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog().Names()
}

// Table returns a table from the catalog currently in effect
func (s *Session) Table(name string) (*storage.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog().Get(name)
}

// Database returns the catalog currently in effect. The caller must
// treat it as read-only; statements are the mutation surface.
func (s *Session) Database() *storage.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog()
}

// Reset clears the catalog and aborts any in-progress transaction
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = storage.NewCatalog()
	s.shadow = nil
	s.inTx = false
}
