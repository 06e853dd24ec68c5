package query

import (
	"fmt"
	"strings"
)

// TreePrinter renders plan trees for error messages and logs.
type TreePrinter struct {
	buf  strings.Builder
	node bool
}

// NewTreePrinter returns a new tree printer.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// WriteNode writes the header of the node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) {
	p.node = true
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteRune('\n')
}

// WriteChildren writes the rendered children of the node, indented under
// it.
func (p *TreePrinter) WriteChildren(children ...string) {
	for i, child := range children {
		last := i == len(children)-1
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			var prefix string
			switch {
			case j == 0 && last:
				prefix = " └─ "
			case j == 0:
				prefix = " ├─ "
			case last:
				prefix = "     "
			default:
				prefix = " │   "
			}
			p.buf.WriteString(prefix)
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
}

// String returns the rendered tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
