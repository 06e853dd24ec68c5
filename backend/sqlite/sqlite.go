// Package sqlite implements the embedded relational backend. Plans
// translate into SQL SELECT statements executed over a borrowed
// database/sql handle; the expected driver is the pure-Go
// modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/query"
)

// Adapter is the sqlite backend adapter.
type Adapter struct {
	name string
	db   *sql.DB
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates an adapter executing over the given open database handle.
// The handle is borrowed: the bootstrap collaborator owns it, pools it
// and closes it.
func New(name string, db *sql.DB) *Adapter {
	return &Adapter{name: name, db: db}
}

// Name implements the Adapter interface.
func (a *Adapter) Name() string { return a.name }

// Translate implements the Adapter interface.
func (a *Adapter) Translate(n query.Node) (backend.Query, error) {
	return a.translate(n)
}

// Describe implements the Adapter interface.
func (a *Adapter) Describe(q backend.Query) (query.Schema, error) {
	sq, ok := q.(*SQL)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}
	return sq.schema, nil
}

// Execute implements the Adapter interface.
func (a *Adapter) Execute(ctx *query.Context, q backend.Query) (query.RowIter, error) {
	sq, ok := q.(*SQL)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}

	span, ctx := ctx.Span("sqlite.Execute")
	defer span.Finish()

	rows, err := a.db.QueryContext(ctx, sq.text, sq.args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, query.ErrBackendConnection.New(a.name, err)
	}

	return backend.NewCancelIter(ctx, &rowIter{
		backend: a.name,
		rows:    rows,
		width:   len(sq.schema),
	}), nil
}

type rowIter struct {
	backend string
	rows    *sql.Rows
	width   int
}

func (i *rowIter) Next() (query.Row, error) {
	if !i.rows.Next() {
		if err := i.rows.Err(); err != nil {
			return nil, query.ErrBackendConnection.New(i.backend, err)
		}
		return nil, io.EOF
	}

	values := make([]interface{}, i.width)
	ptrs := make([]interface{}, i.width)
	for idx := range values {
		ptrs[idx] = &values[idx]
	}
	if err := i.rows.Scan(ptrs...); err != nil {
		return nil, query.ErrBackendConnection.New(i.backend, err)
	}

	return query.NewRow(values...), nil
}

func (i *rowIter) Close() error {
	return i.rows.Close()
}
