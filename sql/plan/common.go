package plan

import (
	"strings"

	"github.com/src-d/go-sql-planner/sql"
)

// IsUnary returns whether the node is unary or not.
func IsUnary(node sql.Node) bool {
	return len(node.Children()) == 1
}

// IsBinary returns whether the node is binary or not.
func IsBinary(node sql.Node) bool {
	return len(node.Children()) == 2
}

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	Child sql.Node
}

// Resolved implements the Resolvable interface.
func (n UnaryNode) Resolved() bool {
	return n.Child.Resolved()
}

// Children implements the Node interface.
func (n UnaryNode) Children() []sql.Node {
	return []sql.Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	Left  sql.Node
	Right sql.Node
}

// Resolved implements the Resolvable interface.
func (n BinaryNode) Resolved() bool {
	return n.Left.Resolved() && n.Right.Resolved()
}

// Children implements the Node interface.
func (n BinaryNode) Children() []sql.Node {
	return []sql.Node{n.Left, n.Right}
}

func expressionsResolved(exprs ...sql.Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

func joinExpressions(exprs []sql.Expression) string {
	var parts = make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func joinNames(names []*sql.QualifiedName) string {
	var parts = make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

func namedExpressions(exprs []sql.Expression, names []*sql.QualifiedName) string {
	var parts = make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String() + " AS " + names[i].String()
	}
	return strings.Join(parts, ", ")
}

func unaryString(name string, child sql.Node, format string, args ...interface{}) string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode(name+"("+format+")", args...)
	_ = p.WriteNodes(child)
	return p.String()
}

func binaryString(name string, left, right sql.Node, format string, args ...interface{}) string {
	p := sql.NewTreePrinter()
	if format == "" {
		_ = p.WriteNode(name)
	} else {
		_ = p.WriteNode(name+"("+format+")", args...)
	}
	_ = p.WriteNodes(left, right)
	return p.String()
}
