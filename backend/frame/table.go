package frame

import (
	"sort"
	"sync"

	"github.com/src-d/go-crossquery/query"
)

// Table is an in-memory table.
type Table struct {
	name   string
	schema query.Schema
	rows   []query.Row
}

// NewTable creates an empty table with the given schema.
func NewTable(name string, schema query.Schema) *Table {
	return &Table{name: name, schema: schema}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table schema.
func (t *Table) Schema() query.Schema { return t.schema }

// Insert appends a row, checking arity and coercing every value to its
// declared column type.
func (t *Table) Insert(values ...interface{}) error {
	if len(values) != len(t.schema) {
		return query.ErrUnexpectedRowLength.New(len(t.schema), len(values))
	}

	row := make(query.Row, len(values))
	for i, v := range values {
		converted, err := t.schema[i].Type.Convert(v)
		if err != nil {
			return err
		}
		row[i] = converted
	}

	t.rows = append(t.rows, row)
	return nil
}

// RowIter returns an iterator over the table rows.
func (t *Table) RowIter() query.RowIter {
	return query.RowsToRowIter(t.rows...)
}

// Store holds the tables of one frame backend. It plays the role of the
// connection handle a bootstrap collaborator would own.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewStore returns a new empty store.
func NewStore() *Store {
	return &Store{tables: map[string]*Table{}}
}

// Add registers a table in the store.
func (s *Store) Add(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.name] = t
}

// Table returns the named table.
func (s *Store) Table(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns the names of all tables, sorted.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
