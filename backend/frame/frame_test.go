package frame

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
	"github.com/src-d/go-crossquery/query/plan"
)

var locationSchema = query.Schema{
	{Name: "state", Type: query.Text, Nullable: true, Source: "location"},
	{Name: "city", Type: query.Text, Nullable: true, Source: "location"},
}

var orderSchema = query.Schema{
	{Name: "state", Type: query.Text, Nullable: true, Source: "orders"},
	{Name: "total", Type: query.Integer, Nullable: false, Source: "orders"},
}

func testCatalog() *query.Catalog {
	catalog := query.NewCatalog()
	catalog.AddTable(&query.Table{Backend: "frame", Name: "location", Schema: locationSchema})
	catalog.AddTable(&query.Table{Backend: "frame", Name: "orders", Schema: orderSchema})
	return catalog
}

func testAdapter(t *testing.T) *Adapter {
	t.Helper()
	require := require.New(t)

	location := NewTable("location", locationSchema)
	require.NoError(location.Insert("MA", "BOSTON"))
	require.NoError(location.Insert("MA", "WORCESTER"))
	require.NoError(location.Insert("CA", "LOS ANGELES"))

	orders := NewTable("orders", orderSchema)
	require.NoError(orders.Insert("MA", int64(10)))
	require.NoError(orders.Insert("CA", int64(20)))
	require.NoError(orders.Insert("MA", int64(5)))

	store := NewStore()
	store.Add(location)
	store.Add(orders)
	return New("frame", store)
}

func execute(t *testing.T, a *Adapter, n query.Node) []query.Row {
	t.Helper()
	require := require.New(t)

	q, err := a.Translate(n)
	require.NoError(err)

	schema, err := a.Describe(q)
	require.NoError(err)
	require.True(n.Schema().Equals(schema))

	iter, err := a.Execute(query.NewEmptyContext(), q)
	require.NoError(err)

	rows, err := query.RowIterToRows(iter)
	require.NoError(err)
	return rows
}

func TestExecuteTopStates(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		Filter(plan.Like("state", "M%")).
		GroupBy("state").
		Aggregate(plan.Count, "city").
		SortBy("count", plan.Descending).
		Limit(5).
		Plan()
	require.NoError(err)

	rows := execute(t, testAdapter(t), node)
	require.Equal([]query.Row{{"MA", int64(2)}}, rows)
}

func TestExecuteFilterWithoutMatches(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		Filter(plan.Like("state", "Z%")).
		Plan()
	require.NoError(err)

	rows := execute(t, testAdapter(t), node)
	require.Empty(rows)
}

func TestExecuteGroupByKeepsFirstSeenOrder(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		GroupBy("state").
		Aggregate(plan.Count, "city").
		Plan()
	require.NoError(err)

	rows := execute(t, testAdapter(t), node)
	require.Equal([]query.Row{
		{"MA", int64(2)},
		{"CA", int64(1)},
	}, rows)
}

func TestExecuteWholeRelationAggregateOnEmptyInput(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		Filter(plan.Like("state", "Z%")).
		Aggregate(plan.Count, "city").
		Plan()
	require.NoError(err)

	rows := execute(t, testAdapter(t), node)
	require.Equal([]query.Row{{int64(0)}}, rows)
}

func TestExecuteSortNullsFirst(t *testing.T) {
	require := require.New(t)

	location := NewTable("location", locationSchema)
	require.NoError(location.Insert("MA", "BOSTON"))
	require.NoError(location.Insert(nil, "UNKNOWN"))
	require.NoError(location.Insert("CA", "LOS ANGELES"))
	store := NewStore()
	store.Add(location)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		SortBy("state", plan.Ascending).
		Plan()
	require.NoError(err)

	rows := execute(t, New("frame", store), node)
	require.Equal([]query.Row{
		{nil, "UNKNOWN"},
		{"CA", "LOS ANGELES"},
		{"MA", "BOSTON"},
	}, rows)
}

func TestExecuteSameBackendJoin(t *testing.T) {
	require := require.New(t)

	catalog := testCatalog()
	location := plan.NewBuilder(catalog).Scan("frame", "location")
	orders := plan.NewBuilder(catalog).Scan("frame", "orders")

	node, err := location.
		Filter(plan.Eq("city", "BOSTON")).
		Join(orders, "state", "state").
		Plan()
	require.NoError(err)

	rows := execute(t, testAdapter(t), node)
	require.Equal([]query.Row{
		{"MA", "BOSTON", "MA", int64(10)},
		{"MA", "BOSTON", "MA", int64(5)},
	}, rows)
}

func TestJoinChecksKeyEqualityOnHashMatch(t *testing.T) {
	require := require.New(t)

	// Two distinct keys forced into one bucket stand in for a hash
	// collision: only the row whose key compares equal may join.
	iter := &joinIter{
		src:      &joinSource{leftIdx: 0, rightIdx: 0, keyType: query.Integer},
		leftIter: query.RowsToRowIter(query.Row{int64(1), "alice"}),
		built:    true,
		byKey: map[uint64][]query.Row{
			expression.HashOf(int64(1)): {
				{int64(2), int64(99)},
				{int64(1), int64(10)},
			},
		},
	}

	row, err := iter.Next()
	require.NoError(err)
	require.Equal(query.Row{int64(1), "alice", int64(1), int64(10)}, row)

	_, err = iter.Next()
	require.Equal(io.EOF, err)
}

func TestExecuteSnapshotSource(t *testing.T) {
	require := require.New(t)

	snapshot := query.NewResult(locationSchema, []query.Row{
		{"MA", "BOSTON"},
		{"CA", "LOS ANGELES"},
	})

	node, err := plan.NewBuilder(testCatalog()).
		Snapshot("location", snapshot).
		Filter(plan.Eq("state", "MA")).
		Plan()
	require.NoError(err)
	require.Equal(plan.SnapshotBackend, node.Backend())

	rows := execute(t, testAdapter(t), node)
	require.Equal([]query.Row{{"MA", "BOSTON"}}, rows)
}

func TestExecuteUnknownTable(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).Scan("frame", "location").Plan()
	require.NoError(err)

	a := New("frame", NewStore())
	q, err := a.Translate(node)
	require.NoError(err)

	_, err = a.Execute(query.NewEmptyContext(), q)
	require.Error(err)
	require.True(query.ErrBackendConnection.Is(err))
}

func TestTranslateCrossBackendJoin(t *testing.T) {
	require := require.New(t)

	other := &query.Table{Backend: "sqlite", Name: "users", Schema: query.Schema{
		{Name: "state", Type: query.Text, Source: "users"},
	}}

	location, err := plan.NewBuilder(testCatalog()).Scan("frame", "location").Plan()
	require.NoError(err)

	join := plan.NewJoin(location, plan.NewScan(other), "state", "state")
	require.True(join.CrossBackend())

	_, err = testAdapter(t).Translate(join)
	require.Error(err)
	require.True(query.ErrUnsupportedOperation.Is(err))
}

func TestPipelineString(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("frame", "location").
		Filter(plan.Like("state", "M%")).
		GroupBy("state").
		Aggregate(plan.Count, "city").
		SortBy("count", plan.Descending).
		Limit(5).
		Plan()
	require.NoError(err)

	q, err := testAdapter(t).Translate(node)
	require.NoError(err)
	require.Equal(
		`location.filter(state LIKE "M%").group_by(state)[count(city) AS count].sort(count DESC).limit(5)`,
		q.String(),
	)
}

func TestTableInsert(t *testing.T) {
	require := require.New(t)

	table := NewTable("orders", orderSchema)
	require.NoError(table.Insert("MA", 10))

	rows, err := query.RowIterToRows(table.RowIter())
	require.NoError(err)
	require.Equal([]query.Row{{"MA", int64(10)}}, rows)

	err = table.Insert("MA")
	require.Error(err)
	require.True(query.ErrUnexpectedRowLength.Is(err))
}
