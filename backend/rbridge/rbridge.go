// Package rbridge implements the statistical-computing bridge backend.
// Plans translate into expression strings in the bridge's host language
// (dplyr-flavored pipelines) which a collaborator-supplied session
// evaluates remotely, returning a single tabular value.
//
// The bridge declares no support for count-distinct: translating a plan
// containing one fails with ErrUnsupportedOperation before any round
// trip happens.
package rbridge

import (
	"context"
	"fmt"
	"io"

	"github.com/src-d/go-crossquery/backend"
	"github.com/src-d/go-crossquery/query"
)

// Frame is the structured tabular value a bridge round trip returns.
type Frame struct {
	// Columns are the column names, in the order the bridge produced
	// them.
	Columns []string
	// Rows are the data rows, aligned to Columns.
	Rows [][]interface{}
}

// Session is an open, authenticated bridge session. It is owned by the
// bootstrap collaborator; the adapter borrows it per Execute call.
type Session interface {
	// Eval evaluates an expression in the bridge's host language and
	// returns the resulting tabular value.
	Eval(ctx context.Context, expr string) (*Frame, error)
}

// Expr is the native query of the bridge backend: a host-language
// expression string.
type Expr struct {
	text   string
	schema query.Schema
}

// Text returns the expression string sent to the bridge.
func (e *Expr) Text() string { return e.text }

func (e *Expr) String() string { return e.text }

// Adapter is the bridge backend adapter.
type Adapter struct {
	name    string
	session Session
}

var _ backend.Adapter = (*Adapter)(nil)

// New creates an adapter executing over the given session.
func New(name string, session Session) *Adapter {
	return &Adapter{name: name, session: session}
}

// Name implements the Adapter interface.
func (a *Adapter) Name() string { return a.name }

// Translate implements the Adapter interface.
func (a *Adapter) Translate(n query.Node) (backend.Query, error) {
	return a.translate(n)
}

// Describe implements the Adapter interface.
func (a *Adapter) Describe(q backend.Query) (query.Schema, error) {
	e, ok := q.(*Expr)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}
	return e.schema, nil
}

// Execute implements the Adapter interface. The whole tabular value
// comes back in one round trip; the iterator just walks it.
func (a *Adapter) Execute(ctx *query.Context, q backend.Query) (query.RowIter, error) {
	e, ok := q.(*Expr)
	if !ok {
		return nil, query.ErrInvalidType.New(fmt.Sprintf("%T", q))
	}

	span, ctx := ctx.Span("rbridge.Execute")
	defer span.Finish()

	frame, err := a.session.Eval(ctx, e.text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, query.ErrBackendConnection.New(a.name, err)
	}

	mapping, err := columnMapping(e.schema, frame)
	if err != nil {
		return nil, query.ErrBackendConnection.New(a.name, err)
	}

	return backend.NewCancelIter(ctx, &frameIter{frame: frame, mapping: mapping}), nil
}

// columnMapping aligns the frame's columns to the declared schema: by
// name when all names match, positionally otherwise.
func columnMapping(schema query.Schema, frame *Frame) ([]int, error) {
	if len(frame.Columns) != len(schema) {
		return nil, fmt.Errorf("expected %d columns, bridge returned %d", len(schema), len(frame.Columns))
	}

	byName := make([]int, len(schema))
	for i, col := range schema {
		idx := -1
		for j, name := range frame.Columns {
			if name == col.Name {
				idx = j
				break
			}
		}
		if idx < 0 {
			// Fall back to positional alignment.
			for j := range byName {
				byName[j] = j
			}
			return byName, nil
		}
		byName[i] = idx
	}
	return byName, nil
}

type frameIter struct {
	frame   *Frame
	mapping []int
	pos     int
}

func (i *frameIter) Next() (query.Row, error) {
	if i.pos >= len(i.frame.Rows) {
		return nil, io.EOF
	}

	raw := i.frame.Rows[i.pos]
	i.pos++

	if len(raw) != len(i.mapping) {
		return nil, query.ErrUnexpectedRowLength.New(len(i.mapping), len(raw))
	}

	row := make(query.Row, len(i.mapping))
	for out, in := range i.mapping {
		row[out] = raw[in]
	}
	return row, nil
}

func (i *frameIter) Close() error {
	i.frame = nil
	return nil
}
