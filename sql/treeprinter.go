package sql

import (
	"bytes"
	"fmt"
	"strings"
)

// TreePrinter prints plan trees, one node per line, with the children of
// every node indented below it.
type TreePrinter struct {
	buf         bytes.Buffer
	nodeWritten bool
	written     bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

// WriteNode writes the main node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return ErrNodeAlreadyWritten.New()
	}

	_, err := fmt.Fprintf(&p.buf, format, args...)
	if err != nil {
		return err
	}
	p.buf.WriteRune('\n')
	p.nodeWritten = true
	return nil
}

// WriteChildren writes a children of the tree.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return ErrNodeNotWritten.New()
	}

	if p.written {
		return ErrChildrenAlreadyWritten.New()
	}

	p.written = true

	for i, child := range children {
		last := i+1 == len(children)
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")

		for j, l := range lines {
			switch {
			case j == 0 && last:
				p.buf.WriteString(" └─ ")
			case j == 0:
				p.buf.WriteString(" ├─ ")
			case last:
				p.buf.WriteString("    ")
			default:
				p.buf.WriteString(" │  ")
			}
			p.buf.WriteString(l)
			p.buf.WriteRune('\n')
		}
	}

	return nil
}

// WriteNodes writes the given plan nodes as the children of the tree.
func (p *TreePrinter) WriteNodes(children ...Node) error {
	strs := make([]string, len(children))
	for i, c := range children {
		strs[i] = c.String()
	}
	return p.WriteChildren(strs...)
}

// String returns the output of the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
