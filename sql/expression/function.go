package expression

import (
	"fmt"
	"strings"

	"github.com/src-d/go-sql-planner/sql"
)

// Function is a call to a scalar or aggregate function. Whether a function
// is an aggregate is decided by the sql.Resolver.
type Function struct {
	Name     string
	Args     []sql.Expression
	Distinct bool
}

// NewFunction creates a new Function expression.
func NewFunction(name string, distinct bool, args ...sql.Expression) *Function {
	return &Function{name, args, distinct}
}

// Resolved implements the Expression interface. A star argument, as in
// COUNT(*), does not make the function unresolved.
func (f *Function) Resolved() bool {
	for _, a := range f.Args {
		if _, ok := a.(*Star); ok {
			continue
		}
		if !a.Resolved() {
			return false
		}
	}
	return true
}

// Children implements the Expression interface.
func (f *Function) Children() []sql.Expression {
	return f.Args
}

func (f *Function) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}

	var distinct string
	if f.Distinct {
		distinct = "DISTINCT "
	}

	return fmt.Sprintf("%s(%s%s)", f.Name, distinct, strings.Join(args, ", "))
}

// WithChildren implements the Expression interface.
func (f *Function) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(f.Args) {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), len(f.Args))
	}
	return NewFunction(f.Name, f.Distinct, children...), nil
}

// ContainsAggregate reports whether the expression calls an aggregate
// function. Sub-queries are not inspected.
func ContainsAggregate(e sql.Expression, r sql.Resolver) bool {
	var found bool
	Inspect(e, func(e sql.Expression) bool {
		if f, ok := e.(*Function); ok && r.IsAggregate(f.Name) {
			found = true
		}
		return !found
	})
	return found
}
