package expression

import (
	"fmt"

	"github.com/cespare/xxhash"

	"github.com/src-d/go-crossquery/query"
)

// Count is an aggregation that counts the non-nil values of its child
// over a group of rows.
type Count struct {
	UnaryExpression
}

// NewCount creates a new Count aggregation.
func NewCount(child query.Expression) *Count {
	return &Count{UnaryExpression{child}}
}

// Type implements the Expression interface.
func (*Count) Type() query.Type { return query.Integer }

// IsNullable implements the Expression interface.
func (*Count) IsNullable() bool { return false }

// NewBuffer implements the Aggregation interface.
func (*Count) NewBuffer() query.Row {
	return query.NewRow(int64(0))
}

// Update implements the Aggregation interface.
func (c *Count) Update(buffer, row query.Row) error {
	v, err := c.Child.Eval(row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	buffer[0] = buffer[0].(int64) + 1
	return nil
}

// Merge implements the Aggregation interface.
func (*Count) Merge(buffer, partial query.Row) error {
	buffer[0] = buffer[0].(int64) + partial[0].(int64)
	return nil
}

// Eval implements the Expression interface. The row is an aggregation
// buffer.
func (*Count) Eval(buffer query.Row) (interface{}, error) {
	return buffer[0], nil
}

func (c *Count) String() string {
	return fmt.Sprintf("count(%s)", c.Child)
}

// CountDistinct is an aggregation that counts the distinct non-nil
// values of its child over a group of rows.
type CountDistinct struct {
	UnaryExpression
}

// NewCountDistinct creates a new CountDistinct aggregation.
func NewCountDistinct(child query.Expression) *CountDistinct {
	return &CountDistinct{UnaryExpression{child}}
}

// Type implements the Expression interface.
func (*CountDistinct) Type() query.Type { return query.Integer }

// IsNullable implements the Expression interface.
func (*CountDistinct) IsNullable() bool { return false }

// NewBuffer implements the Aggregation interface.
func (*CountDistinct) NewBuffer() query.Row {
	return query.NewRow(map[uint64]struct{}{})
}

// Update implements the Aggregation interface.
func (c *CountDistinct) Update(buffer, row query.Row) error {
	v, err := c.Child.Eval(row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	seen := buffer[0].(map[uint64]struct{})
	seen[HashOf(v)] = struct{}{}
	return nil
}

// Merge implements the Aggregation interface.
func (*CountDistinct) Merge(buffer, partial query.Row) error {
	seen := buffer[0].(map[uint64]struct{})
	for h := range partial[0].(map[uint64]struct{}) {
		seen[h] = struct{}{}
	}
	return nil
}

// Eval implements the Expression interface. The row is an aggregation
// buffer.
func (*CountDistinct) Eval(buffer query.Row) (interface{}, error) {
	return int64(len(buffer[0].(map[uint64]struct{}))), nil
}

func (c *CountDistinct) String() string {
	return fmt.Sprintf("count(distinct %s)", c.Child)
}

// Sum is an aggregation that sums the non-nil values of its child over a
// group of rows. Integer children sum to an integer, everything else to
// a real.
type Sum struct {
	UnaryExpression
}

// NewSum creates a new Sum aggregation.
func NewSum(child query.Expression) *Sum {
	return &Sum{UnaryExpression{child}}
}

// Type implements the Expression interface.
func (s *Sum) Type() query.Type {
	if s.Child.Type() == query.Integer {
		return query.Integer
	}
	return query.Real
}

// NewBuffer implements the Aggregation interface.
func (*Sum) NewBuffer() query.Row {
	return query.NewRow(nil)
}

// Update implements the Aggregation interface.
func (s *Sum) Update(buffer, row query.Row) error {
	v, err := s.Child.Eval(row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	v, err = s.Type().Convert(v)
	if err != nil {
		return err
	}

	return s.add(buffer, v)
}

// Merge implements the Aggregation interface.
func (s *Sum) Merge(buffer, partial query.Row) error {
	if partial[0] == nil {
		return nil
	}
	return s.add(buffer, partial[0])
}

func (s *Sum) add(buffer query.Row, v interface{}) error {
	if buffer[0] == nil {
		buffer[0] = v
		return nil
	}

	switch acc := buffer[0].(type) {
	case int64:
		buffer[0] = acc + v.(int64)
	case float64:
		buffer[0] = acc + v.(float64)
	default:
		return query.ErrInvalidType.New(buffer[0])
	}
	return nil
}

// Eval implements the Expression interface. The row is an aggregation
// buffer.
func (*Sum) Eval(buffer query.Row) (interface{}, error) {
	return buffer[0], nil
}

func (s *Sum) String() string {
	return fmt.Sprintf("sum(%s)", s.Child)
}

// HashOf hashes a scalar to a key usable in distinct sets and hash join
// tables.
func HashOf(v interface{}) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%T:%v", v, v))
}
