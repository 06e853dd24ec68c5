package crossquery

import (
	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/expression"
)

// hashJoin equi-joins two materialized results in process. It builds a
// hash table from the smaller side and probes it with the larger one.
// Duplicate keys emit the full Cartesian product of matching rows. The
// output columns are always the left columns followed by the right
// ones, whichever side built the table.
func hashJoin(left, right *query.Result, leftKey, rightKey string) (*query.Result, error) {
	li := left.Schema().IndexOf(leftKey)
	if li < 0 {
		return nil, query.ErrColumnNotFound.New(leftKey, "left join side")
	}
	ri := right.Schema().IndexOf(rightKey)
	if ri < 0 {
		return nil, query.ErrColumnNotFound.New(rightKey, "right join side")
	}

	ltype := left.Schema()[li].Type
	rtype := right.Schema()[ri].Type
	if ltype != rtype {
		return nil, query.ErrJoinKeyTypeMismatch.New(leftKey, ltype.Name(), rightKey, rtype.Name())
	}

	schema := append(append(query.Schema{}, left.Schema()...), right.Schema()...)

	build, probe := left, right
	buildIdx, probeIdx := li, ri
	buildIsLeft := true
	if right.Len() < left.Len() {
		build, probe = right, left
		buildIdx, probeIdx = ri, li
		buildIsLeft = false
	}

	byKey := map[uint64][]query.Row{}
	for _, row := range build.Rows() {
		key := row[buildIdx]
		if key == nil {
			continue
		}
		h := expression.HashOf(key)
		byKey[h] = append(byKey[h], row)
	}

	var rows []query.Row
	for _, row := range probe.Rows() {
		key := row[probeIdx]
		if key == nil {
			continue
		}
		for _, match := range byKey[expression.HashOf(key)] {
			// Hash collisions are resolved with a real comparison.
			cmp, err := ltype.Compare(key, match[buildIdx])
			if err != nil {
				return nil, err
			}
			if cmp != 0 {
				continue
			}

			var joined query.Row
			if buildIsLeft {
				joined = append(match.Copy(), row...)
			} else {
				joined = append(row.Copy(), match...)
			}
			rows = append(rows, joined)
		}
	}

	return query.NewResult(schema, rows), nil
}
