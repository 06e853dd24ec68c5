package expression

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// Comparison is an expression that compares an expression against
// another. The left type drives the comparison, since both sides are
// expected to be of compatible types.
type Comparison struct {
	BinaryExpression
}

// NewComparison creates a new comparison between two expressions.
func NewComparison(left, right query.Expression) Comparison {
	return Comparison{BinaryExpression{left, right}}
}

// Compare the two given values using the type of the left expression.
func (c *Comparison) Compare(a, b interface{}) (int, error) {
	return c.Left.Type().Compare(a, b)
}

// Type implements the Expression interface.
func (*Comparison) Type() query.Type {
	return query.Boolean
}

func (c *Comparison) eval(row query.Row) (interface{}, interface{}, error) {
	a, err := c.Left.Eval(row)
	if err != nil {
		return nil, nil, err
	}

	b, err := c.Right.Eval(row)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// Equals is a comparison that checks an expression is equal to another.
type Equals struct {
	Comparison
}

// NewEquals returns a new Equals expression.
func NewEquals(left, right query.Expression) *Equals {
	return &Equals{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (e *Equals) Eval(row query.Row) (interface{}, error) {
	a, b, err := e.eval(row)
	if err != nil {
		return nil, err
	}

	if a == nil || b == nil {
		return nil, nil
	}

	c, err := e.Compare(a, b)
	if err != nil {
		return nil, err
	}
	return c == 0, nil
}

func (e *Equals) String() string {
	return fmt.Sprintf("%s = %s", e.Left, e.Right)
}

// GreaterThan is a comparison that checks an expression is greater than
// another.
type GreaterThan struct {
	Comparison
}

// NewGreaterThan returns a new GreaterThan expression.
func NewGreaterThan(left, right query.Expression) *GreaterThan {
	return &GreaterThan{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (g *GreaterThan) Eval(row query.Row) (interface{}, error) {
	a, b, err := g.eval(row)
	if err != nil {
		return nil, err
	}

	if a == nil || b == nil {
		return nil, nil
	}

	c, err := g.Compare(a, b)
	if err != nil {
		return nil, err
	}
	return c > 0, nil
}

func (g *GreaterThan) String() string {
	return fmt.Sprintf("%s > %s", g.Left, g.Right)
}

// LessThan is a comparison that checks an expression is less than
// another.
type LessThan struct {
	Comparison
}

// NewLessThan returns a new LessThan expression.
func NewLessThan(left, right query.Expression) *LessThan {
	return &LessThan{NewComparison(left, right)}
}

// Eval implements the Expression interface.
func (l *LessThan) Eval(row query.Row) (interface{}, error) {
	a, b, err := l.eval(row)
	if err != nil {
		return nil, err
	}

	if a == nil || b == nil {
		return nil, nil
	}

	c, err := l.Compare(a, b)
	if err != nil {
		return nil, err
	}
	return c < 0, nil
}

func (l *LessThan) String() string {
	return fmt.Sprintf("%s < %s", l.Left, l.Right)
}
