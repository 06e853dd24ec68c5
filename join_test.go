package crossquery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/src-d/go-crossquery/query"
)

var usersSchema = query.Schema{
	{Name: "id", Type: query.Integer, Source: "users"},
	{Name: "name", Type: query.Text, Nullable: true, Source: "users"},
}

var ordersSchema = query.Schema{
	{Name: "user_id", Type: query.Integer, Source: "orders"},
	{Name: "total", Type: query.Real, Source: "orders"},
}

func TestHashJoin(t *testing.T) {
	require := require.New(t)

	left := query.NewResult(usersSchema, []query.Row{
		{int64(1), "alice"},
		{int64(2), "bob"},
		{int64(3), "carol"},
	})
	right := query.NewResult(ordersSchema, []query.Row{
		{int64(1), 10.0},
		{int64(1), 20.0},
		{int64(4), 40.0},
	})

	result, err := hashJoin(left, right, "id", "user_id")
	require.NoError(err)

	require.Len(result.Schema(), 4)
	require.Equal("id", result.Schema()[0].Name)
	require.Equal("user_id", result.Schema()[2].Name)

	require.Equal([]query.Row{
		{int64(1), "alice", int64(1), 10.0},
		{int64(1), "alice", int64(1), 20.0},
	}, result.Rows())
}

func TestHashJoinBuildSideDoesNotChangeColumnOrder(t *testing.T) {
	require := require.New(t)

	// The right side is smaller, so it builds the hash table; output
	// columns must still be left then right.
	left := query.NewResult(usersSchema, []query.Row{
		{int64(1), "alice"},
		{int64(2), "bob"},
		{int64(3), "carol"},
	})
	right := query.NewResult(ordersSchema, []query.Row{
		{int64(1), 10.0},
	})

	result, err := hashJoin(left, right, "id", "user_id")
	require.NoError(err)
	require.Equal([]query.Row{
		{int64(1), "alice", int64(1), 10.0},
	}, result.Rows())
}

func TestHashJoinDuplicateKeys(t *testing.T) {
	require := require.New(t)

	left := query.NewResult(usersSchema, []query.Row{
		{int64(1), "alice"},
		{int64(1), "alias"},
		{int64(9), "zoe"},
	})
	right := query.NewResult(ordersSchema, []query.Row{
		{int64(1), 10.0},
		{int64(1), 20.0},
	})

	result, err := hashJoin(left, right, "id", "user_id")
	require.NoError(err)
	require.Len(result.Rows(), 4)
	for _, row := range result.Rows() {
		require.Equal(int64(1), row[0])
		require.Equal(int64(1), row[2])
	}
}

func TestHashJoinNilKeysNeverMatch(t *testing.T) {
	require := require.New(t)

	left := query.NewResult(usersSchema, []query.Row{
		{nil, "ghost"},
		{int64(1), "alice"},
	})
	right := query.NewResult(ordersSchema, []query.Row{
		{nil, 99.0},
		{int64(1), 10.0},
	})

	result, err := hashJoin(left, right, "id", "user_id")
	require.NoError(err)
	require.Equal([]query.Row{
		{int64(1), "alice", int64(1), 10.0},
	}, result.Rows())
}

func TestHashJoinCommutativeRowContent(t *testing.T) {
	require := require.New(t)

	left := query.NewResult(usersSchema, []query.Row{
		{int64(1), "alice"},
		{int64(2), "bob"},
	})
	right := query.NewResult(ordersSchema, []query.Row{
		{int64(1), 10.0},
		{int64(1), 20.0},
	})

	ab, err := hashJoin(left, right, "id", "user_id")
	require.NoError(err)
	ba, err := hashJoin(right, left, "user_id", "id")
	require.NoError(err)
	require.Equal(ab.Len(), ba.Len())

	// Same combined rows, differing only in column order.
	recombined := make([]query.Row, len(ba.Rows()))
	for i, row := range ba.Rows() {
		recombined[i] = append(row[2:4:4].Copy(), row[0:2]...)
	}
	require.ElementsMatch(ab.Rows(), recombined)
}

func TestHashJoinKeyTypeMismatch(t *testing.T) {
	require := require.New(t)

	badOrders := query.Schema{
		{Name: "user_id", Type: query.Text, Source: "orders"},
		{Name: "total", Type: query.Real, Source: "orders"},
	}

	left := query.NewResult(usersSchema, []query.Row{{int64(1), "alice"}})
	right := query.NewResult(badOrders, []query.Row{{"1", 10.0}})

	_, err := hashJoin(left, right, "id", "user_id")
	require.Error(err)
	require.True(query.ErrJoinKeyTypeMismatch.Is(err))
}

func TestHashJoinMissingKeyColumn(t *testing.T) {
	require := require.New(t)

	left := query.NewResult(usersSchema, nil)
	right := query.NewResult(ordersSchema, nil)

	_, err := hashJoin(left, right, "missing", "user_id")
	require.Error(err)
	require.True(query.ErrColumnNotFound.Is(err))

	_, err = hashJoin(left, right, "id", "missing")
	require.Error(err)
	require.True(query.ErrColumnNotFound.Is(err))
}
