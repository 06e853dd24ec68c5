package query

import "fmt"

// Nameable is something that has a name.
type Nameable interface {
	Name() string
}

// Node is a node of a query plan. Plans are immutable: composition
// returns new nodes that share unchanged children, so a common prefix
// can be reused by several downstream plans without risk of one branch
// mutating another.
type Node interface {
	fmt.Stringer
	// Schema of the rows produced by this node.
	Schema() Schema
	// Children of this node.
	Children() []Node
	// Backend returns the identifier of the backend every leaf of this
	// subtree resolves to, or the empty string if the subtree spans more
	// than one backend.
	Backend() string
	// WithChildren returns a copy of this node with the given children.
	// The number of children must match the arity of the node kind.
	WithChildren(children ...Node) (Node, error)
}

// Expression is a scalar expression evaluated against a row.
type Expression interface {
	fmt.Stringer
	// Type of the value the expression evaluates to.
	Type() Type
	// IsNullable returns whether the expression can evaluate to nil.
	IsNullable() bool
	// Eval evaluates the expression against the given row.
	Eval(row Row) (interface{}, error)
	// Children of this expression.
	Children() []Expression
}

// Aggregation is an expression that aggregates over a group of rows.
// The buffer returned by NewBuffer accumulates per-group state through
// Update calls and is resolved to a final value by Eval.
type Aggregation interface {
	Expression
	// NewBuffer returns a fresh aggregation buffer.
	NewBuffer() Row
	// Update feeds a row into the buffer.
	Update(buffer, row Row) error
	// Merge folds a partial buffer into buffer. Partial buffers come from
	// backends that aggregate in independent shards.
	Merge(buffer, partial Row) error
}
