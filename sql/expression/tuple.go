package expression

import (
	"fmt"
	"strings"

	"github.com/src-d/go-sql-planner/sql"
)

// Tuple is a fixed-size collection of expressions.
type Tuple struct {
	Exprs []sql.Expression
}

// NewTuple creates a new Tuple expression.
func NewTuple(exprs ...sql.Expression) *Tuple {
	return &Tuple{exprs}
}

// Resolved implements the Expression interface.
func (t *Tuple) Resolved() bool {
	for _, e := range t.Exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// Children implements the Expression interface.
func (t *Tuple) Children() []sql.Expression {
	return t.Exprs
}

func (t *Tuple) String() string {
	var exprs = make([]string, len(t.Exprs))
	for i, e := range t.Exprs {
		exprs[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(exprs, ", "))
}

// WithChildren implements the Expression interface.
func (t *Tuple) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(t.Exprs) {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), len(t.Exprs))
	}
	return NewTuple(children...), nil
}
