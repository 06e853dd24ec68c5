package expression

import "github.com/src-d/go-crossquery/query"

// GetField is an expression that retrieves a field from a row by its
// position in the schema in scope.
type GetField struct {
	fieldIndex int
	name       string
	fieldType  query.Type
	nullable   bool
}

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType query.Type, fieldName string, nullable bool) *GetField {
	return &GetField{
		fieldIndex: index,
		fieldType:  fieldType,
		name:       fieldName,
		nullable:   nullable,
	}
}

// Index returns the index where the GetField will look for the value in
// a row.
func (g *GetField) Index() int { return g.fieldIndex }

// Name returns the name of the referenced column.
func (g *GetField) Name() string { return g.name }

// Type implements the Expression interface.
func (g *GetField) Type() query.Type { return g.fieldType }

// IsNullable implements the Expression interface.
func (g *GetField) IsNullable() bool { return g.nullable }

// Eval implements the Expression interface.
func (g *GetField) Eval(row query.Row) (interface{}, error) {
	if g.fieldIndex < 0 || g.fieldIndex >= len(row) {
		return nil, query.ErrUnexpectedRowLength.New(g.fieldIndex+1, len(row))
	}
	return row[g.fieldIndex], nil
}

// Children implements the Expression interface.
func (g *GetField) Children() []query.Expression {
	return nil
}

func (g *GetField) String() string { return g.name }
