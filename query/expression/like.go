package expression

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/src-d/go-crossquery/query"
)

// Like performs SQL pattern matching against two strings. The pattern
// uses % for any run of characters and _ for a single character.
type Like struct {
	BinaryExpression
}

// NewLike creates a new LIKE expression.
func NewLike(left, right query.Expression) *Like {
	return &Like{BinaryExpression{left, right}}
}

// Type implements the Expression interface.
func (*Like) Type() query.Type { return query.Boolean }

// Eval implements the Expression interface.
func (l *Like) Eval(row query.Row) (interface{}, error) {
	left, err := l.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	right, err := l.Right.Eval(row)
	if err != nil {
		return nil, err
	}

	if left == nil || right == nil {
		return nil, nil
	}

	lv, err := query.Text.Convert(left)
	if err != nil {
		return nil, err
	}
	rv, err := query.Text.Convert(right)
	if err != nil {
		return nil, err
	}

	re, err := patternToRegexp(rv.(string))
	if err != nil {
		return nil, err
	}

	return re.MatchString(lv.(string)), nil
}

func (l *Like) String() string {
	return fmt.Sprintf("%s LIKE %s", l.Left, l.Right)
}

// patternToRegexp compiles a SQL LIKE pattern into an anchored regexp.
func patternToRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?s)^")
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
	return regexp.Compile(sb.String())
}
