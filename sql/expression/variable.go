package expression

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
)

// Variable is a resolved reference to a column of a table source or to a
// computed column.
type Variable struct {
	Name *sql.QualifiedName
}

// NewVariable creates a new Variable expression.
func NewVariable(name *sql.QualifiedName) *Variable {
	return &Variable{name}
}

// Resolved implements the Expression interface.
func (*Variable) Resolved() bool { return true }

// Children implements the Expression interface.
func (*Variable) Children() []sql.Expression { return nil }

func (v *Variable) String() string { return v.Name.String() }

// WithChildren implements the Expression interface.
func (v *Variable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(v, len(children), 0)
	}
	return v, nil
}

// CorrelatedVariable is a reference from a sub-query to a column of an
// enclosing query block. Level is the number of blocks to go up to find the
// column, starting at 1 for the immediately enclosing block.
type CorrelatedVariable struct {
	Var   *Variable
	Level int
}

// NewCorrelatedVariable creates a new CorrelatedVariable expression.
func NewCorrelatedVariable(name *sql.QualifiedName, level int) *CorrelatedVariable {
	return &CorrelatedVariable{NewVariable(name), level}
}

// Resolved implements the Expression interface.
func (*CorrelatedVariable) Resolved() bool { return true }

// Children implements the Expression interface.
func (*CorrelatedVariable) Children() []sql.Expression { return nil }

func (c *CorrelatedVariable) String() string {
	return fmt.Sprintf("%s@%d", c.Var, c.Level)
}

// WithChildren implements the Expression interface.
func (c *CorrelatedVariable) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 0)
	}
	return c, nil
}

// Variables returns all the variables referenced by the expression, in order
// of appearance and without duplicates. Correlated variables and the
// contents of sub-queries are not included.
func Variables(e sql.Expression) []*sql.QualifiedName {
	var vars []*sql.QualifiedName
	Inspect(e, func(e sql.Expression) bool {
		if v, ok := e.(*Variable); ok {
			for _, n := range vars {
				if n.Equals(v.Name, false) {
					return true
				}
			}
			vars = append(vars, v.Name)
		}
		return true
	})
	return vars
}

// CorrelatedVariables returns all the correlated variables of the expression,
// including those used by its sub-queries.
func CorrelatedVariables(e sql.Expression) []*CorrelatedVariable {
	var vars []*CorrelatedVariable
	Inspect(e, func(e sql.Expression) bool {
		switch e := e.(type) {
		case *CorrelatedVariable:
			vars = append(vars, e)
		case *Subquery:
			vars = append(vars, e.Correlated...)
		}
		return true
	})
	return vars
}

// AsVariable returns the variable if the expression is a bare column
// reference.
func AsVariable(e sql.Expression) (*Variable, bool) {
	v, ok := e.(*Variable)
	return v, ok
}
