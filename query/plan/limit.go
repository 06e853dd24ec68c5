package plan

import (
	"github.com/src-d/go-crossquery/query"
)

// Limit caps the number of rows retrieved from its child. A limit of
// zero is legal and yields an empty result without fetching any rows,
// though translation still runs so schema errors surface.
type Limit struct {
	UnaryNode
	Count int64
}

// NewLimit creates a new limit node.
func NewLimit(count int64, child query.Node) *Limit {
	return &Limit{
		UnaryNode: UnaryNode{Child: child},
		Count:     count,
	}
}

// WithChildren implements the Node interface.
func (l *Limit) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 1 {
		return nil, query.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLimit(l.Count, children[0]), nil
}

func (l *Limit) String() string {
	p := query.NewTreePrinter()
	p.WriteNode("Limit(%d)", l.Count)
	p.WriteChildren(l.Child.String())
	return p.String()
}
