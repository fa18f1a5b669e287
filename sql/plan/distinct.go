package plan

import "github.com/src-d/go-sql-planner/sql"

// Distinct is a node that ensures all rows that come from it are unique
// over the given columns.
type Distinct struct {
	UnaryNode
	Columns []*sql.QualifiedName
}

// NewDistinct creates a new Distinct node.
func NewDistinct(columns []*sql.QualifiedName, child sql.Node) *Distinct {
	return &Distinct{UnaryNode{child}, columns}
}

// WithChildren implements the Node interface.
func (d *Distinct) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(d, len(children), 1)
	}
	return NewDistinct(d.Columns, children[0]), nil
}

func (d *Distinct) String() string {
	return unaryString("Distinct", d.Child, "%s", joinNames(d.Columns))
}
