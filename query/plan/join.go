package plan

import "github.com/src-d/go-crossquery/query"

// Join is an equi-join between two plans on one key per side. When both
// sides resolve to the same backend the join is pushdown-eligible and
// the backend executes it natively. Otherwise it is a cross-backend
// join: both sides are materialized independently and combined
// in-process.
type Join struct {
	BinaryNode
	LeftKey  string
	RightKey string
}

// NewJoin creates a new equi-join node.
func NewJoin(left, right query.Node, leftKey, rightKey string) *Join {
	return &Join{
		BinaryNode: BinaryNode{left: left, right: right},
		LeftKey:    leftKey,
		RightKey:   rightKey,
	}
}

// Schema implements the Node interface. The joined schema is the left
// schema followed by the right schema.
func (j *Join) Schema() query.Schema {
	return append(append(query.Schema{}, j.Left().Schema()...), j.Right().Schema()...)
}

// CrossBackend reports whether the two sides resolve to different
// backends, forcing materialization of both sides before joining.
func (j *Join) CrossBackend() bool {
	return j.Left().Backend() != j.Right().Backend() ||
		j.Left().Backend() == "" || j.Right().Backend() == ""
}

// KeyTypes returns the declared types of the left and right join keys.
func (j *Join) KeyTypes() (left, right query.Type, err error) {
	li := j.Left().Schema().IndexOf(j.LeftKey)
	if li < 0 {
		return nil, nil, query.ErrColumnNotFound.New(j.LeftKey, nodeName(j.Left()))
	}
	ri := j.Right().Schema().IndexOf(j.RightKey)
	if ri < 0 {
		return nil, nil, query.ErrColumnNotFound.New(j.RightKey, nodeName(j.Right()))
	}
	return j.Left().Schema()[li].Type, j.Right().Schema()[ri].Type, nil
}

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...query.Node) (query.Node, error) {
	if len(children) != 2 {
		return nil, query.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewJoin(children[0], children[1], j.LeftKey, j.RightKey), nil
}

func (j *Join) String() string {
	p := query.NewTreePrinter()
	p.WriteNode("Join(%s = %s)", j.LeftKey, j.RightKey)
	p.WriteChildren(j.Left().String(), j.Right().String())
	return p.String()
}

func nodeName(n query.Node) string {
	if nameable, ok := n.(query.Nameable); ok {
		return nameable.Name()
	}
	return "?"
}
