package plan

import (
	"strings"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
)

// GroupBy groups rows by some columns and evaluates aggregates over each
// group. With no grouping columns the aggregates run over the whole
// relation, producing a single row.
type GroupBy struct {
	UnaryNode
	Grouping   []query.Expression
	Aggregates []query.Expression
}

// NewGroupBy creates a new GroupBy node. The output schema is the
// grouping columns followed by the aggregate columns.
func NewGroupBy(grouping, aggregates []query.Expression, child query.Node) *GroupBy {
	return &GroupBy{
		UnaryNode:  UnaryNode{Child: child},
		Grouping:   grouping,
		Aggregates: aggregates,
	}
}

// Schema implements the Node interface.
func (g *GroupBy) Schema() query.Schema {
	schema := make(query.Schema, 0, len(g.Grouping)+len(g.Aggregates))
	for _, e := range append(append([]query.Expression{}, g.Grouping...), g.Aggregates...) {
		var name string
		if n, ok := e.(query.Nameable); ok {
			name = n.Name()
		} else {
			name = e.String()
		}

		schema = append(schema, &query.Column{
			Name:     name,
			Type:     e.Type(),
			Nullable: e.IsNullable(),
		})
	}
	return schema
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 1 {
		return nil, query.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return NewGroupBy(g.Grouping, g.Aggregates, children[0]), nil
}

func (g *GroupBy) String() string {
	p := query.NewTreePrinter()
	var grouping = make([]string, len(g.Grouping))
	for i, e := range g.Grouping {
		grouping[i] = e.String()
	}
	var aggregates = make([]string, len(g.Aggregates))
	for i, e := range g.Aggregates {
		aggregates[i] = e.String()
	}
	p.WriteNode("GroupBy(%s)(%s)", strings.Join(grouping, ", "), strings.Join(aggregates, ", "))
	p.WriteChildren(g.Child.String())
	return p.String()
}

// Aggregation returns the aggregation behind the given aggregate column
// expression, unwrapping aliases.
func Aggregation(e query.Expression) (query.Aggregation, bool) {
	if a, ok := e.(*expression.Alias); ok {
		e = a.Child
	}
	agg, ok := e.(query.Aggregation)
	return agg, ok
}
