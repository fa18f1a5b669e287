package plan

import (
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
)

// Composite combines the rows of two query blocks with a set operation.
type Composite struct {
	BinaryNode
	Op  ast.CompositeOp
	All bool
}

// NewComposite creates a new Composite node.
func NewComposite(op ast.CompositeOp, all bool, left, right sql.Node) *Composite {
	return &Composite{BinaryNode{left, right}, op, all}
}

// WithChildren implements the Node interface.
func (c *Composite) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewComposite(c.Op, c.All, children[0], children[1]), nil
}

func (c *Composite) String() string {
	op := c.Op.String()
	if c.All {
		op += " ALL"
	}
	return binaryString("Composite", c.Left, c.Right, "%s", op)
}
