package plan

import "github.com/src-d/go-sql-planner/sql"

// LogicalUnion returns the rows of both children without duplicates. Both
// children cover the same table sources.
type LogicalUnion struct {
	BinaryNode
}

// NewLogicalUnion creates a new LogicalUnion node.
func NewLogicalUnion(left, right sql.Node) *LogicalUnion {
	return &LogicalUnion{BinaryNode{left, right}}
}

// WithChildren implements the Node interface.
func (u *LogicalUnion) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(u, len(children), 2)
	}
	return NewLogicalUnion(children[0], children[1]), nil
}

func (u *LogicalUnion) String() string {
	return binaryString("LogicalUnion", u.Left, u.Right, "")
}

// CachePoint marks a sub-plan shared by several branches of the plan, so
// its result is computed once. Nodes with the same ID are the same sub-plan.
type CachePoint struct {
	UnaryNode
	ID int64
}

// NewCachePoint creates a new CachePoint node.
func NewCachePoint(id int64, child sql.Node) *CachePoint {
	return &CachePoint{UnaryNode{child}, id}
}

// WithChildren implements the Node interface.
func (c *CachePoint) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCachePoint(c.ID, children[0]), nil
}

func (c *CachePoint) String() string {
	return unaryString("CachePoint", c.Child, "%d", c.ID)
}
