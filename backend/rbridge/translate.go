package rbridge

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
	"github.com/src-d/go-crossquery/query/plan"
)

func (a *Adapter) translate(n query.Node) (*Expr, error) {
	switch n := n.(type) {
	case *plan.Scan:
		return &Expr{text: n.Name(), schema: n.Schema()}, nil

	case *plan.Filter:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		cond, err := a.condition(n.Condition)
		if err != nil {
			return nil, err
		}
		return a.pipe(child, fmt.Sprintf("filter(%s)", cond), n.Schema()), nil

	case *plan.GroupBy:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		var grouped = child
		if len(n.Grouping) > 0 {
			var cols []string
			for _, e := range n.Grouping {
				g, ok := e.(*expression.GetField)
				if !ok {
					return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("grouping on %T", e))
				}
				cols = append(cols, g.Name())
			}
			grouped = a.pipe(child, fmt.Sprintf("group_by(%s)", strings.Join(cols, ", ")), n.Schema())
		}

		var summaries []string
		for _, e := range n.Aggregates {
			s, err := a.aggregate(e)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, s)
		}
		return a.pipe(grouped, fmt.Sprintf("summarise(%s)", strings.Join(summaries, ", ")), n.Schema()), nil

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
			if f.Order == plan.Descending {
				fields = append(fields, fmt.Sprintf("desc(%s)", g.Name()))
			} else {
				fields = append(fields, g.Name())
			}
		}
		return a.pipe(child, fmt.Sprintf("arrange(%s)", strings.Join(fields, ", ")), n.Schema()), nil

	case *plan.Limit:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return a.pipe(child, fmt.Sprintf("head(%d)", n.Count), n.Schema()), nil

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
		return &Expr{
			text: fmt.Sprintf("inner_join(%s, %s, by = c(%q = %q))",
				left.text, right.text, n.LeftKey, n.RightKey),
			schema: n.Schema(),
		}, nil

	default:
		return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("%T", n))
	}
}

func (a *Adapter) pipe(child *Expr, stage string, schema query.Schema) *Expr {
	return &Expr{
		text:   fmt.Sprintf("%s %%>%% %s", child.text, stage),
		schema: schema,
	}
}

func (a *Adapter) aggregate(e query.Expression) (string, error) {
	name := e.String()
	if n, ok := e.(query.Nameable); ok {
		name = n.Name()
	}

	agg, ok := plan.Aggregation(e)
	if !ok {
		return "", query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("aggregate %T", e))
	}

	switch agg := agg.(type) {
	case *expression.Count:
		child, err := a.condition(agg.Child)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = sum(!is.na(%s))", name, child), nil
	case *expression.Sum:
		child, err := a.condition(agg.Child)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = sum(%s, na.rm = TRUE)", name, child), nil
	default:
		// The bridge host has no reliable distinct-count on grouped data.
		return "", query.ErrUnsupportedOperation.New(a.name, agg.String())
	}
}

func (a *Adapter) condition(e query.Expression) (string, error) {
	switch e := e.(type) {
	case *expression.GetField:
		return e.Name(), nil
	case *expression.Literal:
		return a.literal(e.Value())
	case *expression.Equals:
		return a.binary(e.Left, e.Right, "==")
	case *expression.GreaterThan:
		return a.binary(e.Left, e.Right, ">")
	case *expression.LessThan:
		return a.binary(e.Left, e.Right, "<")
	case *expression.And:
		return a.binary(e.Left, e.Right, "&")
	case *expression.Or:
		return a.binary(e.Left, e.Right, "|")
	case *expression.Not:
		child, err := a.condition(e.Child)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("!(%s)", child), nil
	case *expression.Like:
		field, err := a.condition(e.Left)
		if err != nil {
			return "", err
		}
		lit, ok := e.Right.(*expression.Literal)
		if !ok {
			return "", query.ErrUnsupportedOperation.New(a.name, e.String())
		}
		pattern, ok := lit.Value().(string)
		if !ok {
			return "", query.ErrUnsupportedOperation.New(a.name, e.String())
		}
		return fmt.Sprintf("grepl(%q, %s)", likePatternToRegex(pattern), field), nil
	default:
		return "", query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("expression %T", e))
	}
}

func (a *Adapter) binary(left, right query.Expression, operator string) (string, error) {
	l, err := a.condition(left)
	if err != nil {
		return "", err
	}
	r, err := a.condition(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, operator, r), nil
}

func (a *Adapter) literal(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case time.Time:
		return fmt.Sprintf("as.Date(%q)", v.Format("2006-01-02")), nil
	case nil:
		return "NA", nil
	default:
		return fmt.Sprint(v), nil
	}
}

// likePatternToRegex converts a SQL LIKE pattern into the anchored regex
// dialect the bridge host understands.
func likePatternToRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
