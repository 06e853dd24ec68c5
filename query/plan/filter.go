package plan

import "github.com/src-d/go-crossquery/query"

// Filter skips rows that don't match a condition. The condition is a
// structured boolean expression over column references and literals,
// never a raw backend-native string.
type Filter struct {
	UnaryNode
	Condition query.Expression
}

// NewFilter creates a new filter node.
func NewFilter(condition query.Expression, child query.Node) *Filter {
	return &Filter{
		UnaryNode: UnaryNode{Child: child},
		Condition: condition,
	}
}

// WithChildren implements the Node interface.
func (f *Filter) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 1 {
		return nil, query.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFilter(f.Condition, children[0]), nil
}

func (f *Filter) String() string {
	p := query.NewTreePrinter()
	p.WriteNode("Filter(%s)", f.Condition)
	p.WriteChildren(f.Child.String())
	return p.String()
}
