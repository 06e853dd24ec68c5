package rbridge

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

func testCatalog() *query.Catalog {
	catalog := query.NewCatalog()
	catalog.AddTable(&query.Table{
		Backend: "r",
		Name:    "location",
		Schema: query.Schema{
			{Name: "state", Type: query.Text, Nullable: true, Source: "location"},
			{Name: "city", Type: query.Text, Nullable: true, Source: "location"},
		},
	})
	catalog.AddTable(&query.Table{
		Backend: "r",
		Name:    "users",
		Schema: query.Schema{
			{Name: "id", Type: query.Integer, Source: "users"},
			{Name: "name", Type: query.Text, Nullable: true, Source: "users"},
		},
	})
	catalog.AddTable(&query.Table{
		Backend: "r",
		Name:    "orders",
		Schema: query.Schema{
			{Name: "user_id", Type: query.Integer, Source: "orders"},
			{Name: "total", Type: query.Integer, Source: "orders"},
		},
	})
	return catalog
}

// fakeSession records evaluated expressions and replies with a fixed
// frame.
type fakeSession struct {
	exprs []string
	frame *Frame
	err   error
}

func (s *fakeSession) Eval(ctx context.Context, expr string) (*Frame, error) {
	s.exprs = append(s.exprs, expr)
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

func TestTranslateTopStates(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("r", "location").
		Filter(plan.Like("state", "M%")).
		GroupBy("state").
		Aggregate(plan.Count, "city").
		SortBy("count", plan.Descending).
		Limit(5).
		Plan()
	require.NoError(err)

	q, err := New("r", nil).Translate(node)
	require.NoError(err)

	g := goldie.New(t)
	g.Assert(t, "top_states", []byte(q.String()))
}

func TestTranslateJoin(t *testing.T) {
	require := require.New(t)

	catalog := testCatalog()
	users := plan.NewBuilder(catalog).Scan("r", "users")
	orders := plan.NewBuilder(catalog).Scan("r", "orders")

	node, err := users.Join(orders, "id", "user_id").Plan()
	require.NoError(err)

	q, err := New("r", nil).Translate(node)
	require.NoError(err)

	g := goldie.New(t)
	g.Assert(t, "join", []byte(q.String()))
}

func TestTranslateCountDistinctUnsupported(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).
		Scan("r", "location").
		GroupBy("state").
		Aggregate(plan.CountDistinct, "city").
		Plan()
	require.NoError(err)

	session := &fakeSession{}
	_, err = New("r", session).Translate(node)
	require.Error(err)
	require.True(query.ErrUnsupportedOperation.Is(err))

	// Declared at translate time: no round trip ever happened.
	require.Empty(session.exprs)
}

func TestExecuteAlignsColumnsByName(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).Scan("r", "location").Plan()
	require.NoError(err)

	session := &fakeSession{frame: &Frame{
		// The bridge answers with the columns swapped.
		Columns: []string{"city", "state"},
		Rows: [][]interface{}{
			{"BOSTON", "MA"},
			{"LOS ANGELES", "CA"},
		},
	}}
	a := New("r", session)

	q, err := a.Translate(node)
	require.NoError(err)

	iter, err := a.Execute(query.NewEmptyContext(), q)
	require.NoError(err)

	rows, err := query.RowIterToRows(iter)
	require.NoError(err)
	require.Equal([]query.Row{
		{"MA", "BOSTON"},
		{"CA", "LOS ANGELES"},
	}, rows)
	require.Equal([]string{"location"}, session.exprs)
}

func TestExecuteSessionError(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).Scan("r", "location").Plan()
	require.NoError(err)

	a := New("r", &fakeSession{err: fmt.Errorf("connection reset")})
	q, err := a.Translate(node)
	require.NoError(err)

	_, err = a.Execute(query.NewEmptyContext(), q)
	require.Error(err)
	require.True(query.ErrBackendConnection.Is(err))
}

func TestExecuteColumnCountMismatch(t *testing.T) {
	require := require.New(t)

	node, err := plan.NewBuilder(testCatalog()).Scan("r", "location").Plan()
	require.NoError(err)

	a := New("r", &fakeSession{frame: &Frame{Columns: []string{"state"}}})
	q, err := a.Translate(node)
	require.NoError(err)

	_, err = a.Execute(query.NewEmptyContext(), q)
	require.Error(err)
	require.True(query.ErrBackendConnection.Is(err))
}

func TestLikePatternToRegex(t *testing.T) {
	require := require.New(t)

	require.Equal("^M.*$", likePatternToRegex("M%"))
	require.Equal("^M.$", likePatternToRegex("M_"))
	require.Equal(`^a\.c$`, likePatternToRegex("a.c"))
}
