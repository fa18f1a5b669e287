package plan

import (
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
)

// Join joins two plans where a column of the left one compares with an
// expression over the right one.
type Join struct {
	BinaryNode
	LeftColumn *expression.Variable
	Op         expression.Operator
	RightExpr  sql.Expression
}

// NewJoin creates a new Join node.
func NewJoin(
	left, right sql.Node,
	leftColumn *expression.Variable,
	op expression.Operator,
	rightExpr sql.Expression,
) *Join {
	return &Join{BinaryNode{left, right}, leftColumn, op, rightExpr}
}

// Resolved implements the Resolvable interface.
func (j *Join) Resolved() bool {
	return j.BinaryNode.Resolved() && j.RightExpr.Resolved()
}

// Expressions implements the Expressioner interface.
func (j *Join) Expressions() []sql.Expression {
	return []sql.Expression{j.LeftColumn, j.RightExpr}
}

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewJoin(children[0], children[1], j.LeftColumn, j.Op, j.RightExpr), nil
}

func (j *Join) String() string {
	return binaryString("Join", j.Left, j.Right, "%s %s %s", j.LeftColumn, j.Op, j.RightExpr)
}

// NaturalJoin is the cartesian product of two plans.
type NaturalJoin struct {
	BinaryNode
}

// NewNaturalJoin returns a new NaturalJoin node.
func NewNaturalJoin(left, right sql.Node) *NaturalJoin {
	return &NaturalJoin{BinaryNode{left, right}}
}

// WithChildren implements the Node interface.
func (j *NaturalJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewNaturalJoin(children[0], children[1]), nil
}

func (j *NaturalJoin) String() string {
	return binaryString("NaturalJoin", j.Left, j.Right, "")
}

// Marker tags the preserved side of an outer join so the LeftOuterJoin
// above it can complete the rows of that side that did not match.
type Marker struct {
	UnaryNode
	Name string
}

// NewMarker creates a new Marker node.
func NewMarker(name string, child sql.Node) *Marker {
	return &Marker{UnaryNode{child}, name}
}

// WithChildren implements the Node interface.
func (m *Marker) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMarker(m.Name, children[0]), nil
}

func (m *Marker) String() string {
	return unaryString("Marker", m.Child, "%s", m.Name)
}

// LeftOuterJoin adds to the result of its child the rows of the marked
// table that were filtered out, with NULL in the columns of the other side.
type LeftOuterJoin struct {
	UnaryNode
	MarkerName string
}

// NewLeftOuterJoin creates a new LeftOuterJoin node.
func NewLeftOuterJoin(markerName string, child sql.Node) *LeftOuterJoin {
	return &LeftOuterJoin{UnaryNode{child}, markerName}
}

// WithChildren implements the Node interface.
func (j *LeftOuterJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 1)
	}
	return NewLeftOuterJoin(j.MarkerName, children[0]), nil
}

func (j *LeftOuterJoin) String() string {
	return unaryString("LeftOuterJoin", j.Child, "%s", j.MarkerName)
}
