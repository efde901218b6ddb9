// pkg/storage/catalog.go
package storage

import (
	"sort"
	"strings"

	"github.com/Bernard065/mini-rdbms/pkg/schema"
)

// Catalog maps table names to tables. Lookup is case-insensitive; the
// declared spelling is kept on the table's schema.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Create registers a table under its schema name
func (c *Catalog) Create(t *Table) error {
	key := strings.ToLower(t.Schema().Name)
	if _, ok := c.tables[key]; ok {
		return &schema.TableAlreadyExistsError{Table: t.Schema().Name}
	}
	c.tables[key] = t
	return nil
}

// Get returns the named table
func (c *Catalog) Get(name string) (*Table, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// Has reports whether the named table exists
func (c *Catalog) Has(name string) bool {
	_, ok := c.tables[strings.ToLower(name)]
	return ok
}

// Drop removes the named table and reports whether it existed
func (c *Catalog) Drop(name string) bool {
	key := strings.ToLower(name)
	if _, ok := c.tables[key]; !ok {
		return false
	}
	delete(c.tables, key)
	return true
}

// Names returns the declared table names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		names = append(names, t.Schema().Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tables
func (c *Catalog) Len() int {
	return len(c.tables)
}

// Clone produces a deep, independent copy of the catalog. Mutations on
// the clone are invisible through the original.
func (c *Catalog) Clone() *Catalog {
	clone := NewCatalog()
	for key, t := range c.tables {
		clone.tables[key] = t.Clone()
	}
	return clone
}
