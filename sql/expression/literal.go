package expression

import (
	"fmt"
	"strconv"

	"github.com/src-d/go-sql-planner/sql"
)

// Literal represents a literal expression (string, number, bool, ...).
type Literal struct {
	value interface{}
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}) *Literal {
	return &Literal{value}
}

// Value returns the literal value.
func (p *Literal) Value() interface{} {
	return p.value
}

// Resolved implements the Expression interface.
func (*Literal) Resolved() bool {
	return true
}

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression {
	return nil
}

func (p *Literal) String() string {
	switch v := p.value.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(v)
	case []byte:
		return strconv.Quote(string(v))
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}

// WithChildren implements the Expression interface.
func (p *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

// IsConstant reports whether the expression references no column, no
// correlated variable and no sub-query.
func IsConstant(e sql.Expression) bool {
	constant := true
	Inspect(e, func(e sql.Expression) bool {
		switch e.(type) {
		case *Variable, *CorrelatedVariable, *Subquery, *UnresolvedColumn, *Star:
			constant = false
		}
		return constant
	})
	return constant
}
