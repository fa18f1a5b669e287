package plan

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
)

// Group groups the rows of its child by the given keys and computes the
// given functions, usually aggregates, per group. With no keys the whole
// input is a single group.
type Group struct {
	UnaryNode
	Keys      []sql.Expression
	Functions []sql.Expression
	Names     []*sql.QualifiedName
}

// NewGroup creates a new Group node. Functions and Names must have the same
// length.
func NewGroup(
	keys []sql.Expression,
	functions []sql.Expression,
	names []*sql.QualifiedName,
	child sql.Node,
) *Group {
	return &Group{UnaryNode{child}, keys, functions, names}
}

// Resolved implements the Resolvable interface.
func (g *Group) Resolved() bool {
	return g.Child.Resolved() &&
		expressionsResolved(g.Keys...) &&
		expressionsResolved(g.Functions...)
}

// Expressions implements the Expressioner interface.
func (g *Group) Expressions() []sql.Expression {
	var exprs []sql.Expression
	exprs = append(exprs, g.Keys...)
	exprs = append(exprs, g.Functions...)
	return exprs
}

// WithChildren implements the Node interface.
func (g *Group) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return NewGroup(g.Keys, g.Functions, g.Names, children[0]), nil
}

func (g *Group) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Group")
	keys := fmt.Sprintf("Keys(%s)", joinExpressions(g.Keys))
	functions := fmt.Sprintf("Functions(%s)", namedExpressions(g.Functions, g.Names))
	_ = p.WriteChildren(keys, functions, g.Child.String())
	return p.String()
}

// CreateFunctions computes the given functions for each row of its child
// and exposes them as new columns.
type CreateFunctions struct {
	UnaryNode
	Functions []sql.Expression
	Names     []*sql.QualifiedName
}

// NewCreateFunctions creates a new CreateFunctions node.
func NewCreateFunctions(functions []sql.Expression, names []*sql.QualifiedName, child sql.Node) *CreateFunctions {
	return &CreateFunctions{UnaryNode{child}, functions, names}
}

// Resolved implements the Resolvable interface.
func (c *CreateFunctions) Resolved() bool {
	return c.Child.Resolved() && expressionsResolved(c.Functions...)
}

// Expressions implements the Expressioner interface.
func (c *CreateFunctions) Expressions() []sql.Expression {
	return c.Functions
}

// WithChildren implements the Node interface.
func (c *CreateFunctions) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCreateFunctions(c.Functions, c.Names, children[0]), nil
}

func (c *CreateFunctions) String() string {
	return unaryString("CreateFunctions", c.Child, "%s", namedExpressions(c.Functions, c.Names))
}
