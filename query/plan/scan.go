package plan

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// SnapshotBackend is the pseudo backend identifier of plans whose leaves
// are materialized snapshots rather than live backend tables. Such plans
// are executed in-process.
const SnapshotBackend = "snapshot"

// Scan is a leaf node referencing a catalog table of one backend.
type Scan struct {
	table *query.Table
}

// NewScan creates a scan over the given catalog table.
func NewScan(table *query.Table) *Scan {
	return &Scan{table: table}
}

// Table returns the catalog entry the scan references.
func (s *Scan) Table() *query.Table { return s.table }

// Name implements the Nameable interface.
func (s *Scan) Name() string { return s.table.Name }

// Schema implements the Node interface.
func (s *Scan) Schema() query.Schema { return s.table.Schema }

// Children implements the Node interface.
func (s *Scan) Children() []query.Node { return nil }

// Backend implements the Node interface.
func (s *Scan) Backend() string { return s.table.Backend }

// WithChildren implements the Node interface.
func (s *Scan) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 0 {
		return nil, query.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Scan) String() string {
	return fmt.Sprintf("Scan(%s.%s)", s.table.Backend, s.table.Name)
}

// Snapshot is a leaf node over an already-materialized result. Further
// composition over a result restarts from a snapshot scan instead of a
// live backend scan.
type Snapshot struct {
	result *query.Result
	name   string
}

// NewSnapshot creates a snapshot leaf over a materialized result.
func NewSnapshot(name string, result *query.Result) *Snapshot {
	return &Snapshot{result: result, name: name}
}

// Result returns the materialized rows backing this leaf.
func (s *Snapshot) Result() *query.Result { return s.result }

// Name implements the Nameable interface.
func (s *Snapshot) Name() string { return s.name }

// Schema implements the Node interface.
func (s *Snapshot) Schema() query.Schema { return s.result.Schema() }

// Children implements the Node interface.
func (s *Snapshot) Children() []query.Node { return nil }

// Backend implements the Node interface.
func (s *Snapshot) Backend() string { return SnapshotBackend }

// WithChildren implements the Node interface.
func (s *Snapshot) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 0 {
		return nil, query.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot(%s)", s.name)
}
