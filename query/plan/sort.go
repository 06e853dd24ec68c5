package plan

import (
	"fmt"
	"strings"

	"github.com/src-d/go-crossquery/query"
)

// SortOrder represents the order of a sort: ascending or descending.
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = iota + 1
	// Descending order.
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return "invalid SortOrder"
	}
}

// SortField is a field by which rows are sorted.
type SortField struct {
	// Column to order by.
	Column query.Expression
	// Order of the sort.
	Order SortOrder
}

// Sort orders the rows of its child. Nils sort first regardless of
// order.
type Sort struct {
	UnaryNode
	SortFields []SortField
}

// NewSort creates a new sort node.
func NewSort(fields []SortField, child query.Node) *Sort {
	return &Sort{
		UnaryNode:  UnaryNode{Child: child},
		SortFields: fields,
	}
}

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 1 {
		return nil, query.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(s.SortFields, children[0]), nil
}

func (s *Sort) String() string {
	p := query.NewTreePrinter()
	var fields = make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
	}
	p.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	p.WriteChildren(s.Child.String())
	return p.String()
}
