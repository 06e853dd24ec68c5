// Package crossquery is a cross-backend query composition and lazy
// execution engine: plans composed against a catalog are translated and
// executed by per-backend adapters only when a caller materializes
// them, and joins across backends are performed in process over
// already-materialized results.
package crossquery

import (
	"context"
	"errors"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/mitchellh/hashstructure"
	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/backend/frame"
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

// State of one evaluation of a plan. Composition leaves a plan in
// Built; only an explicit materialize call advances it further, and
// every materialize call walks the whole machine again from scratch.
type State byte

const (
	// Built is the plan as constructed.
	Built State = iota
	// Translated means the backend-native query exists.
	Translated
	// Executing means backend I/O is in flight.
	Executing
	// Materialized means the canonical result has been produced.
	Materialized
	// Failed is reachable from any other state.
	Failed
)

func (s State) String() string {
	switch s {
	case Built:
		return "built"
	case Translated:
		return "translated"
	case Executing:
		return "executing"
	case Materialized:
		return "materialized"
	case Failed:
		return "failed"
	default:
		return "invalid State"
	}
}

// Engine resolves adapters for plans and materializes them. It memoizes
// nothing: materializing the same plan twice re-runs the backend both
// times, and whether the two results agree is the backend's business.
type Engine struct {
	Catalog  *query.Catalog
	Registry *backend.Registry

	// snapshots executes plans rooted at materialized snapshots.
	snapshots backend.Adapter
}

// New creates an engine over the given catalog. Adapters are registered
// by the bootstrap collaborator through the Registry.
func New(catalog *query.Catalog) *Engine {
	return &Engine{
		Catalog:   catalog,
		Registry:  backend.NewRegistry(),
		snapshots: frame.New(plan.SnapshotBackend, frame.NewStore()),
	}
}

// Plan starts a plan builder against the engine's catalog.
func (e *Engine) Plan() *plan.Builder {
	return plan.NewBuilder(e.Catalog)
}

type evaluation struct {
	state State
	log   *logrus.Entry
}

func newEvaluation(ctx *query.Context, n query.Node, backendName string) *evaluation {
	id := uuid.NewV4().String()
	fingerprint, _ := hashstructure.Hash(n.String(), nil)

	ev := &evaluation{
		state: Built,
		log: ctx.Logger().WithFields(logrus.Fields{
			EvaluationLogField: id,
			BackendLogField:    backendName,
			PlanLogField:       fingerprint,
		}),
	}
	ev.log.WithField(StateLogField, ev.state).Debug("evaluation started")
	return ev
}

func (ev *evaluation) transition(next State) {
	ev.state = next
	ev.log.WithField(StateLogField, next).Debug("evaluation state changed")
}

func (ev *evaluation) fail(err error) error {
	ev.state = Failed
	ev.log.WithField(StateLogField, Failed).WithError(err).Debug("evaluation failed")
	return err
}

// Materialize forces the evaluation of a plan into a canonical result.
// It resolves the adapter, translates, executes and normalizes; it is
// the only operation of the engine that reaches a backend.
func (e *Engine) Materialize(ctx *query.Context, n query.Node) (*query.Result, error) {
	// A zero limit at the root never fetches a row, so cross-backend
	// joins below it must not materialize their sides either; they are
	// replaced with empty snapshots after their key types check out.
	zeroLimit := false
	if l, ok := n.(*plan.Limit); ok && l.Count == 0 {
		zeroLimit = true
	}

	n, err := e.resolveCrossJoins(ctx, n, zeroLimit)
	if err != nil {
		return nil, err
	}

	name := n.Backend()
	adapter := e.snapshots
	if name != plan.SnapshotBackend {
		adapter, err = e.Registry.Adapter(name)
		if err != nil {
			return nil, err
		}
	}

	ev := newEvaluation(ctx, n, name)

	span, ctx := ctx.Span("crossquery.Materialize",
		opentracing.Tag{Key: "backend", Value: name})
	defer span.Finish()

	native, err := adapter.Translate(n)
	if err != nil {
		return nil, ev.fail(err)
	}
	ev.transition(Translated)

	schema, err := adapter.Describe(native)
	if err != nil {
		return nil, ev.fail(err)
	}

	// A zero limit yields an empty result without fetching rows, but
	// only after translation, so unknown tables and columns still fail.
	if zeroLimit {
		ev.transition(Materialized)
		return query.NewResult(schema, nil), nil
	}

	ev.transition(Executing)
	iter, err := adapter.Execute(ctx, native)
	if err != nil {
		return nil, ev.fail(asCancelled(n, err))
	}

	result, err := materializeRows(schema, iter)
	if err != nil {
		err = asCancelled(n, err)
		if !query.ErrCancelled.Is(err) {
			err = query.ErrMaterialization.Wrap(err, n, name)
		}
		return nil, ev.fail(err)
	}

	ev.transition(Materialized)
	return result, nil
}

// resolveCrossJoins replaces every cross-backend join in the plan with
// a snapshot of its in-process join result, bottom-up. Whatever remains
// above the join then executes as a snapshot-rooted plan. With skipFetch
// the join keys are still validated, but the snapshot is empty and
// neither side reaches its backend.
func (e *Engine) resolveCrossJoins(ctx *query.Context, n query.Node, skipFetch bool) (query.Node, error) {
	return plan.TransformUp(n, func(node query.Node) (query.Node, error) {
		j, ok := node.(*plan.Join)
		if !ok || !j.CrossBackend() {
			return node, nil
		}

		ltype, rtype, err := j.KeyTypes()
		if err != nil {
			return nil, err
		}
		if ltype != rtype {
			return nil, query.ErrJoinKeyTypeMismatch.New(j.LeftKey, ltype.Name(), j.RightKey, rtype.Name())
		}

		if skipFetch {
			return plan.NewSnapshot("join", query.NewResult(j.Schema(), nil)), nil
		}

		result, err := e.materializeJoin(ctx, j)
		if err != nil {
			return nil, err
		}
		return plan.NewSnapshot("join", result), nil
	})
}

// materializeJoin materializes both sides of a cross-backend join
// concurrently and hash-joins them in process. The join keys have
// already been validated by resolveCrossJoins. If both sides fail, both
// errors are reported; a side that merely got cancelled because the
// other one failed is not blamed.
func (e *Engine) materializeJoin(ctx *query.Context, j *plan.Join) (*query.Result, error) {
	eg, egCtx := ctx.NewErrgroup()
	var left, right *query.Result
	var lerr, rerr error
	eg.Go(func() error {
		left, lerr = e.Materialize(egCtx, j.Left())
		return lerr
	})
	eg.Go(func() error {
		right, rerr = e.Materialize(egCtx, j.Right())
		return rerr
	})
	_ = eg.Wait()

	switch {
	case lerr != nil && rerr != nil:
		if query.ErrCancelled.Is(lerr) && !query.ErrCancelled.Is(rerr) {
			return nil, rerr
		}
		if query.ErrCancelled.Is(rerr) && !query.ErrCancelled.Is(lerr) {
			return nil, lerr
		}
		return nil, multierror.Append(lerr, rerr)
	case lerr != nil:
		return nil, lerr
	case rerr != nil:
		return nil, rerr
	}

	return hashJoin(left, right, j.LeftKey, j.RightKey)
}

// asCancelled maps context cancellation surfaced by an adapter to the
// engine's cancellation error, attributed to the plan that was running.
// Only errors that are themselves cancellations are mapped: a genuine
// backend failure stays a backend failure even if the context got
// cancelled meanwhile, which happens when a sibling sub-plan fails
// first.
func asCancelled(n query.Node, err error) error {
	if query.ErrCancelled.Is(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return query.ErrCancelled.New(n)
	}
	return err
}
