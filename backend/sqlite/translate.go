package sqlite

import (
	"fmt"
	"strings"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
	"github.com/src-d/go-crossquery/query/plan"
)

// SQL is the native query of the sqlite backend: a SELECT statement with
// `?` placeholders and its arguments.
type SQL struct {
	text   string
	args   []interface{}
	schema query.Schema
}

// Text returns the SQL text.
func (q *SQL) Text() string { return q.text }

// Args returns the placeholder arguments.
func (q *SQL) Args() []interface{} { return q.args }

// Schema returns the columns the statement produces.
func (q *SQL) Schema() query.Schema { return q.schema }

func (q *SQL) String() string { return q.text }

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (a *Adapter) translate(n query.Node) (*SQL, error) {
	switch n := n.(type) {
	case *plan.Scan:
		cols := make([]string, len(n.Schema()))
		for i, col := range n.Schema() {
			cols[i] = quote(col.Name)
		}
		return &SQL{
			text:   fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quote(n.Name())),
			schema: n.Schema(),
		}, nil

	case *plan.Filter:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		cond, args, err := a.condition(n.Condition)
		if err != nil {
			return nil, err
		}
		return &SQL{
			text:   fmt.Sprintf("SELECT * FROM (%s) WHERE %s", child.text, cond),
			args:   append(child.args, args...),
			schema: n.Schema(),
		}, nil

	case *plan.GroupBy:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		var selected []string
		var grouping []string
		for _, e := range n.Grouping {
			g, ok := e.(*expression.GetField)
			if !ok {
				return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("grouping on %T", e))
			}
			selected = append(selected, quote(g.Name()))
			grouping = append(grouping, quote(g.Name()))
		}
		var aggArgs []interface{}
		for _, e := range n.Aggregates {
			col, args, err := a.aggregate(e)
			if err != nil {
				return nil, err
			}
			selected = append(selected, col)
			aggArgs = append(aggArgs, args...)
		}
		text := fmt.Sprintf("SELECT %s FROM (%s)", strings.Join(selected, ", "), child.text)
		if len(grouping) > 0 {
			text += " GROUP BY " + strings.Join(grouping, ", ")
		}
		// The select list renders before the subquery, so aggregate
		// placeholders bind first.
		return &SQL{text: text, args: append(aggArgs, child.args...), schema: n.Schema()}, nil

	case *plan.Sort:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		var fields []string
		for _, f := range n.SortFields {
			g, ok := f.Column.(*expression.GetField)
			if !ok {
				return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("sort on %T", f.Column))
			}
			dir := "ASC"
			if f.Order == plan.Descending {
				dir = "DESC"
			}
			fields = append(fields, fmt.Sprintf("%s %s", quote(g.Name()), dir))
		}
		return &SQL{
			text:   fmt.Sprintf("SELECT * FROM (%s) ORDER BY %s", child.text, strings.Join(fields, ", ")),
			args:   child.args,
			schema: n.Schema(),
		}, nil

	case *plan.Limit:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return &SQL{
			text:   fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", child.text, n.Count),
			args:   child.args,
			schema: n.Schema(),
		}, nil

	case *plan.Join:
		if n.CrossBackend() {
			return nil, query.ErrUnsupportedOperation.New(a.name, "cross-backend join")
		}
		left, err := a.translate(n.Left())
		if err != nil {
			return nil, err
		}
		right, err := a.translate(n.Right())
		if err != nil {
			return nil, err
		}
		return &SQL{
			text: fmt.Sprintf(
				"SELECT l.*, r.* FROM (%s) AS l INNER JOIN (%s) AS r ON l.%s = r.%s",
				left.text, right.text, quote(n.LeftKey), quote(n.RightKey),
			),
			args:   append(left.args, right.args...),
			schema: n.Schema(),
		}, nil

	default:
		return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("%T", n))
	}
}

func (a *Adapter) aggregate(e query.Expression) (string, []interface{}, error) {
	name := e.String()
	if n, ok := e.(query.Nameable); ok {
		name = n.Name()
	}

	agg, ok := plan.Aggregation(e)
	if !ok {
		return "", nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("aggregate %T", e))
	}

	switch agg := agg.(type) {
	case *expression.Count:
		child, args, err := a.condition(agg.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("COUNT(%s) AS %s", child, quote(name)), args, nil
	case *expression.CountDistinct:
		child, args, err := a.condition(agg.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("COUNT(DISTINCT %s) AS %s", child, quote(name)), args, nil
	case *expression.Sum:
		child, args, err := a.condition(agg.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("SUM(%s) AS %s", child, quote(name)), args, nil
	default:
		return "", nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("aggregate %T", agg))
	}
}

// condition renders a scalar expression as SQL with `?` placeholders for
// literals.
func (a *Adapter) condition(e query.Expression) (string, []interface{}, error) {
	switch e := e.(type) {
	case *expression.GetField:
		return quote(e.Name()), nil, nil
	case *expression.Literal:
		return "?", []interface{}{e.Value()}, nil
	case *expression.Equals:
		return a.binary(e.Left, e.Right, "=")
	case *expression.GreaterThan:
		return a.binary(e.Left, e.Right, ">")
	case *expression.LessThan:
		return a.binary(e.Left, e.Right, "<")
	case *expression.Like:
		return a.binary(e.Left, e.Right, "LIKE")
	case *expression.And:
		return a.binary(e.Left, e.Right, "AND")
	case *expression.Or:
		return a.binary(e.Left, e.Right, "OR")
	case *expression.Not:
		child, args, err := a.condition(e.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT (%s)", child), args, nil
	default:
		return "", nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("expression %T", e))
	}
}

func (a *Adapter) binary(left, right query.Expression, operator string) (string, []interface{}, error) {
	l, largs, err := a.condition(left)
	if err != nil {
		return "", nil, err
	}
	r, rargs, err := a.condition(right)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s %s %s)", l, operator, r), append(largs, rargs...), nil
}
