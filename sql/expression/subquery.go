package expression

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
)

// Subquery is an expression whose value is derived by executing a nested
// SELECT. Once planned, Plan holds its plan and Correlated the references
// it makes to enclosing query blocks, with levels relative to the block the
// sub-query expression appears in.
type Subquery struct {
	Select     *ast.Select
	Plan       sql.Node
	Correlated []*CorrelatedVariable
}

// NewSubquery returns a new unplanned sub-query expression.
func NewSubquery(s *ast.Select) *Subquery {
	return &Subquery{Select: s}
}

// WithPlan returns a copy of the sub-query with the given plan.
func (s *Subquery) WithPlan(n sql.Node, correlated []*CorrelatedVariable) *Subquery {
	return &Subquery{s.Select, n, correlated}
}

// Resolved implements the Expression interface.
func (s *Subquery) Resolved() bool {
	return s.Plan != nil && s.Plan.Resolved()
}

// Children implements the Expression interface.
func (*Subquery) Children() []sql.Expression {
	return nil
}

func (s *Subquery) String() string {
	return fmt.Sprintf("(%s)", s.Select)
}

// WithChildren implements the Expression interface.
func (s *Subquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

// ContainsSubquery reports whether the expression has a sub-query.
func ContainsSubquery(e sql.Expression) bool {
	var found bool
	Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(*Subquery); ok {
			found = true
		}
		return !found
	})
	return found
}

// Exists is true when its sub-query returns at least one row.
type Exists struct {
	UnaryExpression
}

// NewExists creates a new Exists expression.
func NewExists(s *Subquery) *Exists {
	return &Exists{UnaryExpression{s}}
}

func (e *Exists) String() string {
	return fmt.Sprintf("EXISTS%s", e.Child)
}

// WithChildren implements the Expression interface.
func (e *Exists) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return &Exists{UnaryExpression{children[0]}}, nil
}
