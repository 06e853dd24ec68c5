package expression

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// Literal is a constant value.
type Literal struct {
	value     interface{}
	fieldType query.Type
}

// NewLiteral creates a new literal expression.
func NewLiteral(value interface{}, fieldType query.Type) *Literal {
	return &Literal{value: value, fieldType: fieldType}
}

// Value returns the literal value.
func (l *Literal) Value() interface{} {
	return l.value
}

// Type implements the Expression interface.
func (l *Literal) Type() query.Type {
	return l.fieldType
}

// IsNullable implements the Expression interface.
func (l *Literal) IsNullable() bool {
	return l.value == nil
}

// Eval implements the Expression interface.
func (l *Literal) Eval(row query.Row) (interface{}, error) {
	return l.value, nil
}

// Children implements the Expression interface.
func (l *Literal) Children() []query.Expression {
	return nil
}

func (l *Literal) String() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(l.value)
}
