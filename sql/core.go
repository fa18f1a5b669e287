package sql

import "fmt"

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Resolvable is something that can be resolved or not.
type Resolvable interface {
	// Resolved returns whether the node is resolved.
	Resolved() bool
}

// Expression is a combination of one or more SQL expressions.
type Expression interface {
	Resolvable
	fmt.Stringer
	// Children returns the children expressions of this expression.
	Children() []Expression
	// WithChildren returns a copy of the expression with children replaced.
	// It will return an error if the number of children is different than
	// the current number of children. They must be given in the same order
	// as they are returned by Children.
	WithChildren(children ...Expression) (Expression, error)
}

// Node is a node in the query plan tree. Plan nodes are immutable: every
// transformation returns a new node.
type Node interface {
	Resolvable
	fmt.Stringer
	// Children nodes.
	Children() []Node
	// WithChildren returns a copy of the node with children replaced.
	// It will return an error if the number of children is different than
	// the current number of children. They must be given in the same order
	// as they are returned by Children.
	WithChildren(children ...Node) (Node, error)
}

// Expressioner is a node that contains expressions.
type Expressioner interface {
	// Expressions returns the list of expressions contained by the node.
	Expressions() []Expression
}

// Table represents the metadata of a SQL table. Only the metadata is
// needed to plan a query; rows are provided by the execution engine.
type Table interface {
	Nameable
	// Schema of the table.
	Schema() Schema
}

// Database represents the database.
type Database interface {
	Nameable
	// Tables returns the information of all tables.
	Tables() map[string]Table
}

// Resolver is the name-resolution collaborator used while compiling a query.
// Implementations must be safe for concurrent reads.
type Resolver interface {
	// ResolveTable returns the canonical, fully qualified name of the given
	// table together with its metadata.
	ResolveTable(ctx *Context, name *QualifiedName) (*QualifiedName, Table, error)
	// IsCaseInsensitive reports whether identifiers are compared ignoring case.
	IsCaseInsensitive() bool
	// IsAggregate reports whether the function with the given name is an
	// aggregate function.
	IsAggregate(name string) bool
}
