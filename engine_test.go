package crossquery

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/backend/frame"
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

// countingAdapter counts translate and execute calls, so tests can
// assert composition never touches a backend.
type countingAdapter struct {
	backend.Adapter
	translates int
	executes   int
}

func (a *countingAdapter) Translate(n query.Node) (backend.Query, error) {
	a.translates++
	return a.Adapter.Translate(n)
}

func (a *countingAdapter) Execute(ctx *query.Context, q backend.Query) (query.RowIter, error) {
	a.executes++
	return a.Adapter.Execute(ctx, q)
}

func testEngine(t *testing.T) (*Engine, *countingAdapter, *countingAdapter) {
	t.Helper()
	require := require.New(t)

	catalog := query.NewCatalog()
	catalog.AddTable(&query.Table{
		Backend: "alpha",
		Name:    "location",
		Schema: query.Schema{
			{Name: "state", Type: query.Text, Nullable: true, Source: "location"},
			{Name: "city", Type: query.Text, Nullable: true, Source: "location"},
		},
	})
	catalog.AddTable(&query.Table{
		Backend: "alpha",
		Name:    "users",
		Schema: query.Schema{
			{Name: "id", Type: query.Integer, Source: "users"},
			{Name: "name", Type: query.Text, Nullable: true, Source: "users"},
		},
	})
	catalog.AddTable(&query.Table{
		Backend: "beta",
		Name:    "orders",
		Schema: query.Schema{
			{Name: "user_id", Type: query.Integer, Source: "orders"},
			{Name: "total", Type: query.Integer, Source: "orders"},
		},
	})

	location := frame.NewTable("location", catalogSchema(t, catalog, "alpha", "location"))
	require.NoError(location.Insert("MA", "BOSTON"))
	require.NoError(location.Insert("MA", "WORCESTER"))
	require.NoError(location.Insert("CA", "LOS ANGELES"))

	users := frame.NewTable("users", catalogSchema(t, catalog, "alpha", "users"))
	require.NoError(users.Insert(int64(1), "alice"))
	require.NoError(users.Insert(int64(2), "bob"))

	alphaStore := frame.NewStore()
	alphaStore.Add(location)
	alphaStore.Add(users)

	orders := frame.NewTable("orders", catalogSchema(t, catalog, "beta", "orders"))
	require.NoError(orders.Insert(int64(1), int64(10)))
	require.NoError(orders.Insert(int64(1), int64(20)))
	require.NoError(orders.Insert(int64(3), int64(30)))

	betaStore := frame.NewStore()
	betaStore.Add(orders)

	alpha := &countingAdapter{Adapter: frame.New("alpha", alphaStore)}
	beta := &countingAdapter{Adapter: frame.New("beta", betaStore)}

	engine := New(catalog)
	engine.Registry.Register(alpha)
	engine.Registry.Register(beta)
	return engine, alpha, beta
}

func catalogSchema(t *testing.T, catalog *query.Catalog, backendName, table string) query.Schema {
	t.Helper()
	entry, err := catalog.Table(backendName, table)
	require.NoError(t, err)
	return entry.Schema
}

func TestMaterializeTopStates(t *testing.T) {
	require := require.New(t)

	engine, alpha, _ := testEngine(t)
	node, err := engine.Plan().
		Scan("alpha", "location").
		Filter(plan.Like("state", "M%")).
		GroupBy("state").
		Aggregate(plan.Count, "city").
		SortBy("count", plan.Descending).
		Limit(5).
		Plan()
	require.NoError(err)

	// Composition alone never touches the backend.
	require.Equal(0, alpha.translates)
	require.Equal(0, alpha.executes)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal([]query.Row{{"MA", int64(2)}}, result.Rows())
	require.Equal(1, alpha.translates)
	require.Equal(1, alpha.executes)
}

func TestMaterializeTwiceReExecutes(t *testing.T) {
	require := require.New(t)

	engine, alpha, _ := testEngine(t)
	node, err := engine.Plan().Scan("alpha", "location").Plan()
	require.NoError(err)

	first, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	second, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)

	require.Equal(first.Rows(), second.Rows())
	require.Equal(2, alpha.executes)
}

func TestMaterializeLimitZeroSkipsExecution(t *testing.T) {
	require := require.New(t)

	engine, alpha, _ := testEngine(t)
	node, err := engine.Plan().Scan("alpha", "location").Limit(0).Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal(0, result.Len())
	require.Len(result.Schema(), 2)

	// Translation ran, so schema errors would have surfaced; the row
	// fetch did not.
	require.Equal(1, alpha.translates)
	require.Equal(0, alpha.executes)
}

func TestMaterializeCrossBackendJoinLimitZero(t *testing.T) {
	require := require.New(t)

	engine, alpha, beta := testEngine(t)
	users := engine.Plan().Scan("alpha", "users")
	orders := engine.Plan().Scan("beta", "orders")

	node, err := users.Join(orders, "id", "user_id").Limit(0).Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal(0, result.Len())
	require.Len(result.Schema(), 4)

	// Neither join side reached its backend.
	require.Equal(0, alpha.executes)
	require.Equal(0, beta.executes)
}

func TestMaterializeLogsEvaluation(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	node, err := engine.Plan().Scan("alpha", "location").Plan()
	require.NoError(err)

	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ctx := query.NewContext(context.Background(), query.WithLogger(logrus.NewEntry(logger)))

	_, err = engine.Materialize(ctx, node)
	require.NoError(err)

	var ids []string
	for _, entry := range hook.AllEntries() {
		if id, ok := entry.Data[EvaluationLogField].(string); ok {
			ids = append(ids, id)
		}
	}
	require.NotEmpty(ids)
	for _, id := range ids {
		// Evaluations are identified by a random UUID.
		require.Len(id, 36)
	}
}

func TestMaterializeBackendNotFound(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	engine.Catalog.AddTable(&query.Table{
		Backend: "gamma",
		Name:    "ghost",
		Schema:  query.Schema{{Name: "id", Type: query.Integer, Source: "ghost"}},
	})

	node, err := engine.Plan().Scan("gamma", "ghost").Plan()
	require.NoError(err)

	_, err = engine.Materialize(query.NewEmptyContext(), node)
	require.Error(err)
	require.True(query.ErrBackendNotFound.Is(err))
}

// stubAdapter answers a fixed row set, or a fixed error, whatever the
// plan.
type stubAdapter struct {
	name   string
	schema query.Schema
	rows   []query.Row
	err    error
}

type stubQuery struct {
	name string
}

func (q stubQuery) String() string { return q.name }

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Translate(query.Node) (backend.Query, error) {
	return stubQuery{name: a.name}, nil
}

func (a *stubAdapter) Describe(backend.Query) (query.Schema, error) {
	return a.schema, nil
}

func (a *stubAdapter) Execute(*query.Context, backend.Query) (query.RowIter, error) {
	if a.err != nil {
		return nil, a.err
	}
	return query.RowsToRowIter(a.rows...), nil
}

func TestMaterializeCoercionFailure(t *testing.T) {
	require := require.New(t)

	catalog := query.NewCatalog()
	schema := query.Schema{{Name: "total", Type: query.Integer, Source: "orders"}}
	catalog.AddTable(&query.Table{Backend: "stub", Name: "orders", Schema: schema})

	engine := New(catalog)
	engine.Registry.Register(&stubAdapter{
		name:   "stub",
		schema: schema,
		rows: []query.Row{
			{int64(1)},
			{"one hundred"},
		},
	})

	node, err := engine.Plan().Scan("stub", "orders").Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.Nil(result)
	require.Error(err)
	require.True(query.ErrTypeCoercion.Is(err))
	require.Contains(err.Error(), `"total"`)
	require.Contains(err.Error(), "row 1")

	// The failure names the backend and plan it came from.
	require.True(query.ErrMaterialization.Is(err))
	require.Contains(err.Error(), `"stub"`)
}

func TestMaterializeCrossBackendJoin(t *testing.T) {
	require := require.New(t)

	engine, alpha, beta := testEngine(t)
	users := engine.Plan().Scan("alpha", "users")
	orders := engine.Plan().Scan("beta", "orders")

	node, err := users.Join(orders, "id", "user_id").Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal([]query.Row{
		{int64(1), "alice", int64(1), int64(10)},
		{int64(1), "alice", int64(1), int64(20)},
	}, result.Rows())
	require.Equal(1, alpha.executes)
	require.Equal(1, beta.executes)
}

func TestMaterializeCrossBackendJoinWithDownstreamOps(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	users := engine.Plan().Scan("alpha", "users")
	orders := engine.Plan().Scan("beta", "orders")

	node, err := users.
		Join(orders, "id", "user_id").
		SortBy("total", plan.Descending).
		Limit(1).
		Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal([]query.Row{
		{int64(1), "alice", int64(1), int64(20)},
	}, result.Rows())
}

func TestMaterializeCrossBackendJoinOneSideFails(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	engine.Registry.Register(&stubAdapter{
		name:   "beta",
		schema: catalogSchema(t, engine.Catalog, "beta", "orders"),
		err:    query.ErrBackendConnection.New("beta", fmt.Errorf("connection refused")),
	})

	users := engine.Plan().Scan("alpha", "users")
	orders := engine.Plan().Scan("beta", "orders")
	node, err := users.Join(orders, "id", "user_id").Plan()
	require.NoError(err)

	_, err = engine.Materialize(query.NewEmptyContext(), node)
	require.Error(err)
	require.True(query.ErrBackendConnection.Is(err))
	require.Contains(err.Error(), `"beta"`)
	require.NotContains(err.Error(), `"alpha"`)
}

func TestMaterializeCrossBackendJoinBothSidesFail(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	engine.Registry.Register(&stubAdapter{
		name:   "alpha",
		schema: catalogSchema(t, engine.Catalog, "alpha", "users"),
		err:    query.ErrBackendConnection.New("alpha", fmt.Errorf("timeout")),
	})
	engine.Registry.Register(&stubAdapter{
		name:   "beta",
		schema: catalogSchema(t, engine.Catalog, "beta", "orders"),
		err:    query.ErrBackendConnection.New("beta", fmt.Errorf("connection refused")),
	})

	users := engine.Plan().Scan("alpha", "users")
	orders := engine.Plan().Scan("beta", "orders")
	node, err := users.Join(orders, "id", "user_id").Plan()
	require.NoError(err)

	_, err = engine.Materialize(query.NewEmptyContext(), node)
	require.Error(err)
	require.True(strings.Contains(err.Error(), `"alpha"`))
	require.True(strings.Contains(err.Error(), `"beta"`))
}

func TestMaterializeJoinKeyTypeMismatch(t *testing.T) {
	require := require.New(t)

	engine, alpha, beta := testEngine(t)
	engine.Catalog.AddTable(&query.Table{
		Backend: "beta",
		Name:    "refunds",
		Schema: query.Schema{
			{Name: "user_id", Type: query.Text, Source: "refunds"},
		},
	})

	users := engine.Plan().Scan("alpha", "users")
	refunds := engine.Plan().Scan("beta", "refunds")
	node, err := users.Join(refunds, "id", "user_id").Plan()
	require.NoError(err)

	_, err = engine.Materialize(query.NewEmptyContext(), node)
	require.Error(err)
	require.True(query.ErrJoinKeyTypeMismatch.Is(err))

	// Neither side was materialized.
	require.Equal(0, alpha.executes)
	require.Equal(0, beta.executes)
}

func TestMaterializeCancellation(t *testing.T) {
	require := require.New(t)

	engine, _, _ := testEngine(t)
	node, err := engine.Plan().Scan("alpha", "location").Plan()
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Materialize(query.NewContext(ctx), node)
	require.Error(err)
	require.True(query.ErrCancelled.Is(err))
}

func TestMaterializeSnapshotComposition(t *testing.T) {
	require := require.New(t)

	engine, alpha, _ := testEngine(t)
	node, err := engine.Plan().Scan("alpha", "location").Plan()
	require.NoError(err)

	base, err := engine.Materialize(query.NewEmptyContext(), node)
	require.NoError(err)
	require.Equal(1, alpha.executes)

	// Composing over the result restarts from a snapshot: the original
	// backend is not consulted again.
	followUp, err := engine.Plan().
		Snapshot("location", base).
		Filter(plan.Eq("state", "CA")).
		Plan()
	require.NoError(err)

	result, err := engine.Materialize(query.NewEmptyContext(), followUp)
	require.NoError(err)
	require.Equal([]query.Row{{"CA", "LOS ANGELES"}}, result.Rows())
	require.Equal(1, alpha.executes)
}

func TestStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("built", Built.String())
	require.Equal("translated", Translated.String())
	require.Equal("executing", Executing.String())
	require.Equal("materialized", Materialized.String())
	require.Equal("failed", Failed.String())
}
