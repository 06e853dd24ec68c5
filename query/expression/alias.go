package expression

import (
	"fmt"

	"github.com/src-d/go-crossquery/query"
)

// Alias gives a name to an expression, so downstream nodes can reference
// its output column.
type Alias struct {
	UnaryExpression
	name string
}

// NewAlias creates an expression alias.
func NewAlias(child query.Expression, name string) *Alias {
	return &Alias{UnaryExpression{child}, name}
}

// Name returns the alias name.
func (a *Alias) Name() string { return a.name }

// Type implements the Expression interface.
func (a *Alias) Type() query.Type { return a.Child.Type() }

// Eval implements the Expression interface.
func (a *Alias) Eval(row query.Row) (interface{}, error) {
	return a.Child.Eval(row)
}

func (a *Alias) String() string {
	return fmt.Sprintf("%s AS %s", a.Child, a.name)
}
