package plan

import (
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
)

// AggregateFunc identifies an aggregate function of the composition API.
type AggregateFunc string

const (
	// Count rows with a non-nil value in the column.
	Count AggregateFunc = "count"
	// CountDistinct counts distinct non-nil values in the column.
	CountDistinct AggregateFunc = "count_distinct"
	// Sum the non-nil values in the column.
	Sum AggregateFunc = "sum"
)

// Predicate builds a boolean expression once the schema it applies to is
// known. Predicates are how callers reference columns by name without
// resolving indexes themselves.
type Predicate func(schema query.Schema) (query.Expression, error)

func column(schema query.Schema, name string) (*expression.GetField, error) {
	idx := schema.IndexOf(name)
	if idx < 0 {
		source := "?"
		if len(schema) > 0 && schema[0].Source != "" {
			source = schema[0].Source
		}
		return nil, query.ErrColumnNotFound.New(name, source)
	}
	col := schema[idx]
	return expression.NewGetField(idx, col.Type, col.Name, col.Nullable), nil
}

func comparison(
	name string,
	value interface{},
	build func(left, right query.Expression) query.Expression,
) Predicate {
	return func(schema query.Schema) (query.Expression, error) {
		field, err := column(schema, name)
		if err != nil {
			return nil, err
		}
		v, err := field.Type().Convert(value)
		if err != nil {
			return nil, err
		}
		return build(field, expression.NewLiteral(v, field.Type())), nil
	}
}

// Eq matches rows whose column equals the value.
func Eq(name string, value interface{}) Predicate {
	return comparison(name, value, func(l, r query.Expression) query.Expression {
		return expression.NewEquals(l, r)
	})
}

// Gt matches rows whose column is greater than the value.
func Gt(name string, value interface{}) Predicate {
	return comparison(name, value, func(l, r query.Expression) query.Expression {
		return expression.NewGreaterThan(l, r)
	})
}

// Lt matches rows whose column is less than the value.
func Lt(name string, value interface{}) Predicate {
	return comparison(name, value, func(l, r query.Expression) query.Expression {
		return expression.NewLessThan(l, r)
	})
}

// Like matches rows whose column matches a SQL pattern (% and _).
func Like(name string, pattern string) Predicate {
	return func(schema query.Schema) (query.Expression, error) {
		field, err := column(schema, name)
		if err != nil {
			return nil, err
		}
		return expression.NewLike(field, expression.NewLiteral(pattern, query.Text)), nil
	}
}

// And is the conjunction of two predicates.
func And(left, right Predicate) Predicate {
	return func(schema query.Schema) (query.Expression, error) {
		l, err := left(schema)
		if err != nil {
			return nil, err
		}
		r, err := right(schema)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(l, r), nil
	}
}

// Or is the disjunction of two predicates.
func Or(left, right Predicate) Predicate {
	return func(schema query.Schema) (query.Expression, error) {
		l, err := left(schema)
		if err != nil {
			return nil, err
		}
		r, err := right(schema)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(l, r), nil
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(schema query.Schema) (query.Expression, error) {
		e, err := p(schema)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(e), nil
	}
}

// Builder composes plans fluently against a catalog. Every method
// returns a new builder, so a common prefix can be extended into several
// independent plans. Building never touches a backend; the first error
// is remembered and surfaced by Plan.
type Builder struct {
	catalog *query.Catalog
	node    query.Node
	err     error
}

// NewBuilder returns a builder resolving tables against the given
// catalog.
func NewBuilder(catalog *query.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

func (b *Builder) with(node query.Node, err error) *Builder {
	if b.err != nil {
		return b
	}
	return &Builder{catalog: b.catalog, node: node, err: err}
}

// Scan starts a plan over a backend table.
func (b *Builder) Scan(backend, table string) *Builder {
	if b.err != nil {
		return b
	}
	t, err := b.catalog.Table(backend, table)
	if err != nil {
		return b.with(nil, err)
	}
	return b.with(NewScan(t), nil)
}

// Snapshot starts a plan over an already-materialized result.
func (b *Builder) Snapshot(name string, result *query.Result) *Builder {
	if b.err != nil {
		return b
	}
	return b.with(NewSnapshot(name, result), nil)
}

// Filter appends a filter over the given predicate.
func (b *Builder) Filter(p Predicate) *Builder {
	if b.err != nil {
		return b
	}
	cond, err := p(b.node.Schema())
	if err != nil {
		return b.with(nil, err)
	}
	return b.with(NewFilter(cond, b.node), nil)
}

// GroupBy groups the rows by the given columns. Aggregates are attached
// with Aggregate.
func (b *Builder) GroupBy(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	grouping := make([]query.Expression, len(columns))
	for i, name := range columns {
		field, err := column(b.node.Schema(), name)
		if err != nil {
			return b.with(nil, err)
		}
		grouping[i] = field
	}
	return b.with(NewGroupBy(grouping, nil, b.node), nil)
}

// Aggregate appends an aggregate over the given column. If the plan tip
// is a GroupBy the aggregate is evaluated per group; otherwise it runs
// over the whole relation. The output column is named after the
// function, so it can be referenced by SortBy.
func (b *Builder) Aggregate(fn AggregateFunc, col string) *Builder {
	if b.err != nil {
		return b
	}

	grouping := []query.Expression{}
	aggregates := []query.Expression{}
	child := b.node
	if gb, ok := b.node.(*GroupBy); ok {
		grouping = gb.Grouping
		aggregates = gb.Aggregates
		child = gb.Child
	}

	field, err := column(child.Schema(), col)
	if err != nil {
		return b.with(nil, err)
	}

	var agg query.Expression
	switch fn {
	case Count:
		agg = expression.NewCount(field)
	case CountDistinct:
		agg = expression.NewCountDistinct(field)
	case Sum:
		agg = expression.NewSum(field)
	default:
		return b.with(nil, query.ErrUnsupportedOperation.New("builder", string(fn)))
	}

	aggregates = append(append([]query.Expression{}, aggregates...), expression.NewAlias(agg, string(fn)))
	return b.with(NewGroupBy(grouping, aggregates, child), nil)
}

// SortBy appends a sort on the given column, which must be part of the
// current schema: either a scanned column or an aggregate output name.
func (b *Builder) SortBy(col string, order SortOrder) *Builder {
	if b.err != nil {
		return b
	}
	field, err := column(b.node.Schema(), col)
	if err != nil {
		return b.with(nil, err)
	}
	return b.with(NewSort([]SortField{{Column: field, Order: order}}, b.node), nil)
}

// Limit caps the plan at n rows. n must be non-negative.
func (b *Builder) Limit(n int64) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.with(nil, query.ErrInvalidLimit.New(n))
	}
	return b.with(NewLimit(n, b.node), nil)
}

// Join equi-joins this plan with another on the given keys.
func (b *Builder) Join(other *Builder, leftKey, rightKey string) *Builder {
	if b.err != nil {
		return b
	}
	if other.err != nil {
		return b.with(nil, other.err)
	}
	j := NewJoin(b.node, other.node, leftKey, rightKey)
	if _, _, err := j.KeyTypes(); err != nil {
		return b.with(nil, err)
	}
	return b.with(j, nil)
}

// Plan returns the composed plan, or the first composition error.
func (b *Builder) Plan() (query.Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.node, nil
}
