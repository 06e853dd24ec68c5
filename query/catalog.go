package query

import (
	"io"
	"sort"
	"sync"

	yaml "gopkg.in/yaml.v2"
)

// Table is a catalog entry: the metadata of one table exposed by one
// backend. The engine never reads table data through the catalog, only
// shape.
type Table struct {
	// Backend identifier the table belongs to.
	Backend string
	// Name of the table within its backend.
	Name string
	// Schema of the table.
	Schema Schema
}

// Catalog holds per-backend table metadata. It is populated by the
// bootstrap collaborator before any plan is built and is effectively
// immutable afterwards.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]map[string]*Table
}

// NewCatalog returns a new empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: map[string]map[string]*Table{}}
}

// AddTable registers a table under its backend identifier.
func (c *Catalog) AddTable(t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byName, ok := c.tables[t.Backend]
	if !ok {
		byName = map[string]*Table{}
		c.tables[t.Backend] = byName
	}
	byName[t.Name] = t
}

// Table returns the metadata of the named table in the given backend.
func (c *Catalog) Table(backend, name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byName, ok := c.tables[backend]
	if !ok {
		return nil, ErrTableNotFound.New(name, backend)
	}
	t, ok := byName[name]
	if !ok {
		return nil, ErrTableNotFound.New(name, backend)
	}
	return t, nil
}

// Tables returns the names of all tables known for the given backend,
// sorted.
func (c *Catalog) Tables(backend string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.tables[backend] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backends returns the identifiers of all backends with at least one
// table, sorted.
func (c *Catalog) Backends() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type catalogDoc struct {
	Backends []struct {
		Name   string `yaml:"name"`
		Tables []struct {
			Name    string `yaml:"name"`
			Columns []struct {
				Name     string `yaml:"name"`
				Type     string `yaml:"type"`
				Nullable bool   `yaml:"nullable"`
			} `yaml:"columns"`
		} `yaml:"tables"`
	} `yaml:"backends"`
}

// DecodeCatalog reads a YAML catalog snapshot, the form the bootstrap
// collaborator hands over:
//
//	backends:
//	  - name: sqlite
//	    tables:
//	      - name: location
//	        columns:
//	          - {name: state, type: text, nullable: true}
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	catalog := NewCatalog()
	for _, b := range doc.Backends {
		for _, t := range b.Tables {
			schema := make(Schema, len(t.Columns))
			for i, col := range t.Columns {
				typ, err := TypeFromString(col.Type)
				if err != nil {
					return nil, err
				}
				schema[i] = &Column{
					Name:     col.Name,
					Type:     typ,
					Nullable: col.Nullable,
					Source:   t.Name,
				}
			}
			catalog.AddTable(&Table{Backend: b.Name, Name: t.Name, Schema: schema})
		}
	}

	return catalog, nil
}
