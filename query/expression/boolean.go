package expression

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// And is the conjunction of two boolean expressions.
type And struct {
	BinaryExpression
}

// NewAnd creates a new And expression.
func NewAnd(left, right query.Expression) *And {
	return &And{BinaryExpression{left, right}}
}

// Type implements the Expression interface.
func (*And) Type() query.Type { return query.Boolean }

// Eval implements the Expression interface.
func (a *And) Eval(row query.Row) (interface{}, error) {
	lv, err := a.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	if lv == false {
		return false, nil
	}

	rv, err := a.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	if rv == false {
		return false, nil
	}

	if lv == nil || rv == nil {
		return nil, nil
	}

	return true, nil
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Or is the disjunction of two boolean expressions.
type Or struct {
	BinaryExpression
}

// NewOr creates a new Or expression.
func NewOr(left, right query.Expression) *Or {
	return &Or{BinaryExpression{left, right}}
}

// Type implements the Expression interface.
func (*Or) Type() query.Type { return query.Boolean }

// Eval implements the Expression interface.
func (o *Or) Eval(row query.Row) (interface{}, error) {
	lv, err := o.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	if lv == true {
		return true, nil
	}

	rv, err := o.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	if rv == true {
		return true, nil
	}

	if lv == nil || rv == nil {
		return nil, nil
	}

	return false, nil
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Not negates a boolean expression.
type Not struct {
	UnaryExpression
}

// NewNot creates a new Not expression.
func NewNot(child query.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

// Type implements the Expression interface.
func (*Not) Type() query.Type { return query.Boolean }

// Eval implements the Expression interface.
func (n *Not) Eval(row query.Row) (interface{}, error) {
	v, err := n.Child.Eval(row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	b, err := query.Boolean.Convert(v)
	if err != nil {
		return nil, err
	}
	return !b.(bool), nil
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT %s", n.Child)
}
