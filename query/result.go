package query

// Result is the canonical tabular value every materialize call produces:
// ordered, typed columns and ordered rows of nullable scalar cells. It
// is a value, not a cursor. No backend-specific object ever crosses this
// boundary.
type Result struct {
	schema Schema
	rows   []Row
}

// NewResult creates a result from a schema and rows. The rows are
// expected to be already normalized to the schema's declared types.
func NewResult(schema Schema, rows []Row) *Result {
	return &Result{schema: schema, rows: rows}
}

// Schema returns the ordered columns of the result.
func (r *Result) Schema() Schema {
	return r.schema
}

// Rows returns the ordered rows of the result.
func (r *Result) Rows() []Row {
	return r.rows
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.rows)
}

// RowIter returns an iterator over the result rows.
func (r *Result) RowIter() RowIter {
	return RowsToRowIter(r.rows...)
}
