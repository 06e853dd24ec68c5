package expression

import "github.com/src-d/go-crossquery/query"

// UnaryExpression is an expression with one child.
type UnaryExpression struct {
	Child query.Expression
}

// Children implements the Expression interface.
func (e UnaryExpression) Children() []query.Expression {
	return []query.Expression{e.Child}
}

// IsNullable implements the Expression interface.
func (e UnaryExpression) IsNullable() bool {
	return e.Child.IsNullable()
}

// BinaryExpression is an expression with two children.
type BinaryExpression struct {
	Left  query.Expression
	Right query.Expression
}

// Children implements the Expression interface.
func (e BinaryExpression) Children() []query.Expression {
	return []query.Expression{e.Left, e.Right}
}

// IsNullable implements the Expression interface.
func (e BinaryExpression) IsNullable() bool {
	return e.Left.IsNullable() || e.Right.IsNullable()
}
