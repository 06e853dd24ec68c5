// Package frame implements a dataframe-style backend over in-memory
// tables. Plans translate into chained operation pipelines evaluated
// in-process with lazy iterators. It also executes plans rooted at
// materialized snapshots, which is how results re-enter composition.
package frame

import (
	"fmt"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

// Adapter is the frame backend adapter.
type Adapter struct {
	name  string
	store *Store
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates an adapter executing over the given store. The store is
// borrowed, not owned.
func New(name string, store *Store) *Adapter {
	return &Adapter{name: name, store: store}
}

// Name implements the Adapter interface.
func (a *Adapter) Name() string { return a.name }

// Translate implements the Adapter interface.
func (a *Adapter) Translate(n query.Node) (backend.Query, error) {
	return a.translate(n)
}

func (a *Adapter) translate(n query.Node) (*Pipeline, error) {
	switch n := n.(type) {
	case *plan.Scan:
		return &Pipeline{source: n.Name(), schema: n.Schema()}, nil
	case *plan.Snapshot:
		return &Pipeline{source: n.Name(), snapshot: n.Result(), schema: n.Schema()}, nil
	case *plan.Filter:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(filterOp{cond: n.Condition}, n.Schema()), nil
	case *plan.GroupBy:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(groupByOp{grouping: n.Grouping, aggregates: n.Aggregates}, n.Schema()), nil
	case *plan.Sort:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(sortOp{fields: n.SortFields}, n.Schema()), nil
	case *plan.Limit:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(limitOp{n: n.Count}, n.Schema()), nil
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
		leftSchema := n.Left().Schema()
		leftIdx := leftSchema.IndexOf(n.LeftKey)
		rightIdx := n.Right().Schema().IndexOf(n.RightKey)
		if leftIdx < 0 {
			return nil, query.ErrColumnNotFound.New(n.LeftKey, "left join side")
		}
		if rightIdx < 0 {
			return nil, query.ErrColumnNotFound.New(n.RightKey, "right join side")
		}
		return &Pipeline{
			join: &joinSource{
				left:     left,
				right:    right,
				leftIdx:  leftIdx,
				rightIdx: rightIdx,
				leftKey:  n.LeftKey,
				rightKey: n.RightKey,
				keyType:  leftSchema[leftIdx].Type,
			},
			schema: n.Schema(),
		}, nil
	default:
		return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("%T", n))
	}
}

// with returns a new pipeline extending this one with an operation, so
// shared plan prefixes never share op slices.
func (p *Pipeline) with(o op, schema query.Schema) *Pipeline {
	ops := make([]op, 0, len(p.ops)+1)
	ops = append(ops, p.ops...)
	ops = append(ops, o)
	return &Pipeline{
		source:   p.source,
		snapshot: p.snapshot,
		join:     p.join,
		ops:      ops,
		schema:   schema,
	}
}

// Describe implements the Adapter interface.
func (a *Adapter) Describe(q backend.Query) (query.Schema, error) {
	p, ok := q.(*Pipeline)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}
	return p.schema, nil
}

// Execute implements the Adapter interface.
func (a *Adapter) Execute(ctx *query.Context, q backend.Query) (query.RowIter, error) {
	p, ok := q.(*Pipeline)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}

	span, ctx := ctx.Span("frame.Execute")
	defer span.Finish()

	iter, err := a.execute(ctx, p)
	if err != nil {
		return nil, err
	}
	return backend.NewCancelIter(ctx, iter), nil
}

func (a *Adapter) execute(ctx *query.Context, p *Pipeline) (query.RowIter, error) {
	var iter query.RowIter
	switch {
	case p.snapshot != nil:
		iter = p.snapshot.RowIter()
	case p.join != nil:
		left, err := a.execute(ctx, p.join.left)
		if err != nil {
			return nil, err
		}
		right, err := a.execute(ctx, p.join.right)
		if err != nil {
			_ = left.Close()
			return nil, err
		}
		iter = &joinIter{src: p.join, leftIter: left, rightIter: right}
	default:
		table, ok := a.store.Table(p.source)
		if !ok {
			return nil, query.ErrBackendConnection.New(a.name, fmt.Sprintf("unknown table %q", p.source))
		}
		iter = table.RowIter()
	}

	for _, o := range p.ops {
		iter = o.iter(iter)
	}
	return iter, nil
}
