package backend

import "github.com/src-d/go-crossquery/query"

// NewCancelIter wraps a row iterator so every Next observes the context.
// Once the context is done the iterator stops fetching and reports the
// context error, so callers can stop backend-side work instead of
// abandoning it.
func NewCancelIter(ctx *query.Context, iter query.RowIter) query.RowIter {
	return &cancelIter{ctx: ctx, iter: iter}
}

type cancelIter struct {
	ctx  *query.Context
	iter query.RowIter
}

func (i *cancelIter) Next() (query.Row, error) {
	if err := i.ctx.Err(); err != nil {
		return nil, err
	}
	return i.iter.Next()
}

func (i *cancelIter) Close() error {
	return i.iter.Close()
}
