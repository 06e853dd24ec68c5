package frame

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
	"github.com/src-d/go-crossquery/query/plan"
)

// Pipeline is the native query of a frame backend: a source and a chain
// of dataframe-style operations applied to it.
type Pipeline struct {
	source   string
	snapshot *query.Result
	join     *joinSource
	ops      []op
	schema   query.Schema
}

type joinSource struct {
	left, right       *Pipeline
	leftIdx, rightIdx int
	leftKey, rightKey string
	keyType           query.Type
}

// Schema returns the columns the pipeline produces.
func (p *Pipeline) Schema() query.Schema { return p.schema }

func (p *Pipeline) String() string {
	var sb strings.Builder
	switch {
	case p.join != nil:
		fmt.Fprintf(&sb, "join(%s, %s, %s = %s)",
			p.join.left, p.join.right, p.join.leftKey, p.join.rightKey)
	default:
		sb.WriteString(p.source)
	}
	for _, o := range p.ops {
		sb.WriteString(".")
		sb.WriteString(o.describe())
	}
	return sb.String()
}

type op interface {
	describe() string
	iter(child query.RowIter) query.RowIter
}

type filterOp struct {
	cond query.Expression
}

func (o filterOp) describe() string {
	return fmt.Sprintf("filter(%s)", o.cond)
}

func (o filterOp) iter(child query.RowIter) query.RowIter {
	return &filterIter{cond: o.cond, childIter: child}
}

type filterIter struct {
	cond      query.Expression
	childIter query.RowIter
}

func (i *filterIter) Next() (query.Row, error) {
	for {
		row, err := i.childIter.Next()
		if err != nil {
			return nil, err
		}

		ok, err := i.cond.Eval(row)
		if err != nil {
			return nil, err
		}

		if ok == true {
			return row, nil
		}
	}
}

func (i *filterIter) Close() error {
	return i.childIter.Close()
}

type groupByOp struct {
	grouping   []query.Expression
	aggregates []query.Expression
}

func (o groupByOp) describe() string {
	var grouping = make([]string, len(o.grouping))
	for i, e := range o.grouping {
		grouping[i] = e.String()
	}
	var aggregates = make([]string, len(o.aggregates))
	for i, e := range o.aggregates {
		aggregates[i] = e.String()
	}
	if len(grouping) == 0 {
		return fmt.Sprintf("aggregate[%s]", strings.Join(aggregates, ", "))
	}
	return fmt.Sprintf("group_by(%s)[%s]",
		strings.Join(grouping, ", "), strings.Join(aggregates, ", "))
}

func (o groupByOp) iter(child query.RowIter) query.RowIter {
	return &groupByIter{op: o, childIter: child}
}

// groupByIter aggregates eagerly on the first Next, preserving the
// first-seen order of group keys.
type groupByIter struct {
	op        groupByOp
	childIter query.RowIter
	computed  bool
	rows      []query.Row
	pos       int
}

type group struct {
	first   query.Row
	buffers []query.Row
}

func (i *groupByIter) compute() error {
	groups := map[uint64]*group{}
	var order []uint64

	newGroup := func(row query.Row) (*group, error) {
		g := &group{first: row}
		for _, e := range i.op.aggregates {
			agg, ok := plan.Aggregation(e)
			if !ok {
				return nil, query.ErrInvalidType.New(e)
			}
			g.buffers = append(g.buffers, agg.NewBuffer())
		}
		return g, nil
	}

	for {
		row, err := i.childIter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		key, err := i.groupKey(row)
		if err != nil {
			return err
		}

		g, ok := groups[key]
		if !ok {
			g, err = newGroup(row)
			if err != nil {
				return err
			}
			groups[key] = g
			order = append(order, key)
		}

		for bi, e := range i.op.aggregates {
			agg, _ := plan.Aggregation(e)
			if err := agg.Update(g.buffers[bi], row); err != nil {
				return err
			}
		}
	}

	// A whole-relation aggregate produces one row even for empty input.
	if len(i.op.grouping) == 0 && len(order) == 0 {
		g, err := newGroup(nil)
		if err != nil {
			return err
		}
		groups[0] = g
		order = append(order, 0)
	}

	for _, key := range order {
		g := groups[key]
		out := make(query.Row, 0, len(i.op.grouping)+len(i.op.aggregates))
		for _, e := range i.op.grouping {
			v, err := e.Eval(g.first)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		for bi, e := range i.op.aggregates {
			agg, _ := plan.Aggregation(e)
			v, err := agg.Eval(g.buffers[bi])
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		i.rows = append(i.rows, out)
	}

	return nil
}

func (i *groupByIter) groupKey(row query.Row) (uint64, error) {
	if len(i.op.grouping) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	for _, e := range i.op.grouping {
		v, err := e.Eval(row)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&sb, "%T:%v,", v, v)
	}
	return expression.HashOf(sb.String()), nil
}

func (i *groupByIter) Next() (query.Row, error) {
	if !i.computed {
		if err := i.compute(); err != nil {
			return nil, err
		}
		i.computed = true
	}

	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}

	row := i.rows[i.pos]
	i.pos++
	return row, nil
}

func (i *groupByIter) Close() error {
	i.rows = nil
	return i.childIter.Close()
}

type sortOp struct {
	fields []plan.SortField
}

func (o sortOp) describe() string {
	var fields = make([]string, len(o.fields))
	for i, f := range o.fields {
		fields[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
	}
	return fmt.Sprintf("sort(%s)", strings.Join(fields, ", "))
}

func (o sortOp) iter(child query.RowIter) query.RowIter {
	return &sortIter{op: o, childIter: child}
}

// sortIter sorts eagerly on the first Next. Nils sort before any other
// value regardless of order.
type sortIter struct {
	op        sortOp
	childIter query.RowIter
	sorted    []query.Row
	pos       int
}

func (i *sortIter) Next() (query.Row, error) {
	if i.sorted == nil {
		rows, err := query.RowIterToRows(i.childIter)
		if err != nil {
			return nil, err
		}

		var sortErr error
		sort.SliceStable(rows, func(a, b int) bool {
			if sortErr != nil {
				return false
			}
			for _, f := range i.op.fields {
				av, err := f.Column.Eval(rows[a])
				if err != nil {
					sortErr = err
					return false
				}
				bv, err := f.Column.Eval(rows[b])
				if err != nil {
					sortErr = err
					return false
				}

				cmp, err := f.Column.Type().Compare(av, bv)
				if err != nil {
					sortErr = err
					return false
				}
				if cmp == 0 {
					continue
				}
				if f.Order == plan.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
		if sortErr != nil {
			return nil, sortErr
		}

		i.sorted = rows
	}

	if i.pos >= len(i.sorted) {
		return nil, io.EOF
	}

	row := i.sorted[i.pos]
	i.pos++
	return row, nil
}

func (i *sortIter) Close() error {
	i.sorted = nil
	return nil
}

type limitOp struct {
	n int64
}

func (o limitOp) describe() string {
	return fmt.Sprintf("limit(%d)", o.n)
}

func (o limitOp) iter(child query.RowIter) query.RowIter {
	return &limitIter{n: o.n, childIter: child}
}

type limitIter struct {
	n         int64
	pos       int64
	childIter query.RowIter
}

func (i *limitIter) Next() (query.Row, error) {
	if i.pos >= i.n {
		return nil, io.EOF
	}

	row, err := i.childIter.Next()
	if err != nil {
		return nil, err
	}

	i.pos++
	return row, nil
}

func (i *limitIter) Close() error {
	return i.childIter.Close()
}

// joinIter hash-joins two row streams: the right side is drained into a
// hash table, then the left side streams and probes. Duplicate keys emit
// the full Cartesian product of matching rows.
type joinIter struct {
	src       *joinSource
	leftIter  query.RowIter
	rightIter query.RowIter

	built   bool
	byKey   map[uint64][]query.Row
	pending []query.Row
	current query.Row
}

func (i *joinIter) build() error {
	i.byKey = map[uint64][]query.Row{}
	for {
		row, err := i.rightIter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		key := row[i.src.rightIdx]
		if key == nil {
			continue
		}
		h := expression.HashOf(key)
		i.byKey[h] = append(i.byKey[h], row)
	}
}

func (i *joinIter) Next() (query.Row, error) {
	if !i.built {
		if err := i.build(); err != nil {
			return nil, err
		}
		i.built = true
	}

	for {
		if len(i.pending) > 0 {
			right := i.pending[0]
			i.pending = i.pending[1:]

			// A hash bucket may hold distinct keys; only rows whose key
			// actually compares equal are joined.
			cmp, err := i.src.keyType.Compare(i.current[i.src.leftIdx], right[i.src.rightIdx])
			if err != nil {
				return nil, err
			}
			if cmp != 0 {
				continue
			}
			return append(i.current.Copy(), right...), nil
		}

		row, err := i.leftIter.Next()
		if err != nil {
			return nil, err
		}

		key := row[i.src.leftIdx]
		if key == nil {
			continue
		}
		i.current = row
		i.pending = i.byKey[expression.HashOf(key)]
	}
}

func (i *joinIter) Close() error {
	if err := i.leftIter.Close(); err != nil {
		_ = i.rightIter.Close()
		return err
	}
	return i.rightIter.Close()
}
