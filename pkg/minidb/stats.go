// pkg/minidb/stats.go
package minidb

// Stats is a point-in-time snapshot of the session
type Stats struct {
	// Tables is the number of tables in the catalog in effect
	Tables int

	// Rows is the total live row count across those tables
	Rows int

	// Statements counts every statement the session has dispatched
	Statements uint64

	// InTransaction reports whether a transaction is open
	InTransaction bool

	// MemoryBytes is the process memory as the platform reports it
	// (peak resident set size on unix, current working set on
	// Windows), 0 when it cannot be read
	MemoryBytes uint64
}

// Stats reads the catalog currently in effect (the shadow during a
// transaction).
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.catalog()
	st := Stats{
		Tables:        cat.Len(),
		Statements:    s.statements,
		InTransaction: s.inTx,
		MemoryBytes:   processMemoryBytes(),
	}
	for _, name := range cat.Names() {
		if t, ok := cat.Get(name); ok {
			st.Rows += t.RowCount()
		}
	}
	return st
}
