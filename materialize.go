package crossquery

import (
	"io"

	"github.com/src-d/go-crossquery/query"
)

// materializeRows drains a backend row stream into a canonical result,
// coercing every cell to the declared type of its column. Any coercion
// failure aborts the whole call: no partial result is ever returned.
func materializeRows(schema query.Schema, iter query.RowIter) (*query.Result, error) {
	var rows []query.Row
	for ordinal := 0; ; ordinal++ {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = iter.Close()
			return nil, err
		}

		if len(row) != len(schema) {
			_ = iter.Close()
			return nil, query.ErrUnexpectedRowLength.New(len(schema), len(row))
		}

		out := make(query.Row, len(row))
		for i, col := range schema {
			v, err := col.Type.Convert(row[i])
			if err != nil {
				_ = iter.Close()
				return nil, query.ErrTypeCoercion.New(row[i], col.Type.Name(), col.Name, ordinal)
			}
			out[i] = v
		}
		rows = append(rows, out)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}

	return query.NewResult(schema, rows), nil
}
