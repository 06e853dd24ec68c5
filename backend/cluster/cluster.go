// Package cluster implements the distributed-compute backend. Plans
// translate into staged job descriptions submitted through a
// collaborator-supplied driver; materialize triggers the collect.
// Cancelling a materialize call cancels the cluster-side job instead of
// merely abandoning it.
package cluster

import (
	"context"
	"fmt"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

// Handle is a submitted job: lazily collectible and cancellable.
type Handle interface {
	// Collect blocks until the job finishes and returns its rows.
	Collect(ctx context.Context) ([][]interface{}, error)
	// Cancel tells the cluster to stop the job.
	Cancel() error
}

// Driver is the cluster's driver API. The bootstrap collaborator owns
// the underlying cluster connection; the adapter borrows it per Execute
// call.
type Driver interface {
	// Submit ships the job to the cluster and returns its handle.
	Submit(ctx context.Context, job *Job) (Handle, error)
}

// Adapter is the cluster backend adapter.
type Adapter struct {
	name   string
	driver Driver
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates an adapter submitting through the given driver.
func New(name string, driver Driver) *Adapter {
	return &Adapter{name: name, driver: driver}
}

// Name implements the Adapter interface.
func (a *Adapter) Name() string { return a.name }

// Translate implements the Adapter interface.
func (a *Adapter) Translate(n query.Node) (backend.Query, error) {
	return a.translate(n)
}

func (a *Adapter) translate(n query.Node) (*Job, error) {
	switch n := n.(type) {
	case *plan.Scan:
		return &Job{
			Stages: []Stage{{Kind: StageScan, Table: n.Name()}},
			schema: n.Schema(),
		}, nil
	case *plan.Filter:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(Stage{Kind: StageFilter, Condition: n.Condition}, n.Schema()), nil
	case *plan.GroupBy:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		for _, e := range n.Aggregates {
			if _, ok := plan.Aggregation(e); !ok {
				return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("aggregate %T", e))
			}
		}
		return child.with(Stage{
			Kind:       StageGroup,
			Grouping:   n.Grouping,
			Aggregates: n.Aggregates,
		}, n.Schema()), nil
	case *plan.Sort:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(Stage{Kind: StageSort, SortFields: n.SortFields}, n.Schema()), nil
	case *plan.Limit:
		child, err := a.translate(n.Child)
		if err != nil {
			return nil, err
		}
		return child.with(Stage{Kind: StageLimit, Limit: n.Count}, n.Schema()), nil
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
		return &Job{
			Stages: []Stage{{Kind: StageJoin, Join: &JoinStage{
				Left:     left,
				Right:    right,
				LeftKey:  n.LeftKey,
				RightKey: n.RightKey,
			}}},
			schema: n.Schema(),
		}, nil
	default:
		return nil, query.ErrUnsupportedOperation.New(a.name, fmt.Sprintf("%T", n))
	}
}

// Describe implements the Adapter interface.
func (a *Adapter) Describe(q backend.Query) (query.Schema, error) {
	job, ok := q.(*Job)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}
	return job.schema, nil
}

// Execute implements the Adapter interface. It submits the job and
// collects it. On cancellation the handle is cancelled before
// returning, so cluster-side work stops.
func (a *Adapter) Execute(ctx *query.Context, q backend.Query) (query.RowIter, error) {
	job, ok := q.(*Job)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}

	span, ctx := ctx.Span("cluster.Execute")
	defer span.Finish()

	handle, err := a.driver.Submit(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, query.ErrBackendConnection.New(a.name, err)
	}

	rows, err := handle.Collect(ctx)
	if err != nil {
		_ = handle.Cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, query.ErrBackendConnection.New(a.name, err)
	}

	out := make([]query.Row, len(rows))
	for i, r := range rows {
		out[i] = query.NewRow(r...)
	}
	return backend.NewCancelIter(ctx, query.RowsToRowIter(out...)), nil
}
