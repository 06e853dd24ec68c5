package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreePrinterLeafChildren(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	p.WriteNode("Join(%s = %s)", "a", "b")
	p.WriteChildren("Scan(x)", "Scan(y)")

	require.Equal("Join(a = b)\n"+
		" ├─ Scan(x)\n"+
		" └─ Scan(y)\n",
		p.String())
}

func TestTreePrinterNestedChildren(t *testing.T) {
	require := require.New(t)

	inner := NewTreePrinter()
	inner.WriteNode("Filter(f)")
	inner.WriteChildren("Scan(x)")

	p := NewTreePrinter()
	p.WriteNode("Join(a = b)")
	p.WriteChildren(inner.String(), "Scan(y)")

	require.Equal("Join(a = b)\n"+
		" ├─ Filter(f)\n"+
		" │    └─ Scan(x)\n"+
		" └─ Scan(y)\n",
		p.String())
}
