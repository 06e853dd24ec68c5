// Package backend defines the adapter contract every backend implements
// and the registry that resolves which adapter executes a plan. New
// backends are added by implementing Adapter; the plan and the scheduler
// never change.
package backend

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// Query is a translated, backend-native query: a SQL string for a
// relational backend, a chained expression for a dataframe backend, a
// remote expression for a statistical bridge, a staged job for a
// cluster. Its String form is what the backend will be asked to run.
type Query interface {
	fmt.Stringer
}

// Adapter is the per-backend translation and execution capability. An
// adapter is stateless; the connection or session it executes over is
// owned by the bootstrap collaborator and only borrowed for the
// duration of an Execute call.
type Adapter interface {
	// Name is the backend identifier this adapter serves.
	Name() string
	// Translate converts a plan into the backend-native query by
	// deterministic structural recursion. It performs no I/O and never
	// suspends. Plan nodes with no mapping for this backend fail with
	// ErrUnsupportedOperation.
	Translate(plan query.Node) (Query, error)
	// Describe returns the ordered, typed column list of the rows the
	// native query will produce. It performs no I/O and never suspends.
	Describe(q Query) (query.Schema, error)
	// Execute runs the native query against the backend and returns its
	// row stream. This is the only point of the engine that performs
	// backend I/O and the only one that may block. It honors ctx
	// cancellation and releases everything it borrowed on every exit
	// path.
	Execute(ctx *query.Context, q Query) (query.RowIter, error)
}
