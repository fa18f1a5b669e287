package expression

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
)

// Operator of a comparison.
type Operator byte

const (
	// Eq is the = operator.
	Eq Operator = iota
	// NotEq is the <> operator.
	NotEq
	// Lt is the < operator.
	Lt
	// LtEq is the <= operator.
	LtEq
	// Gt is the > operator.
	Gt
	// GtEq is the >= operator.
	GtEq
	// Like is the LIKE operator.
	Like
	// NotLike is the NOT LIKE operator.
	NotLike
	// In is the IN operator.
	In
	// NotIn is the NOT IN operator.
	NotIn
	// Is is the IS operator.
	Is
	// IsNot is the IS NOT operator.
	IsNot
)

var operatorNames = map[Operator]string{
	Eq:      "=",
	NotEq:   "<>",
	Lt:      "<",
	LtEq:    "<=",
	Gt:      ">",
	GtEq:    ">=",
	Like:    "LIKE",
	NotLike: "NOT LIKE",
	In:      "IN",
	NotIn:   "NOT IN",
	Is:      "IS",
	IsNot:   "IS NOT",
}

func (o Operator) String() string {
	if s, ok := operatorNames[o]; ok {
		return s
	}
	return "invalid Operator"
}

// IsPattern reports whether the operator is a pattern match.
func (o Operator) IsPattern() bool {
	return o == Like || o == NotLike
}

// Reversible reports whether the sides of the comparison can be swapped.
func (o Operator) Reversible() bool {
	return o <= GtEq
}

// Reverse returns the operator to use when both sides are swapped.
func (o Operator) Reverse() Operator {
	switch o {
	case Lt:
		return Gt
	case LtEq:
		return GtEq
	case Gt:
		return Lt
	case GtEq:
		return LtEq
	default:
		return o
	}
}

// Inverse returns the negated operator.
func (o Operator) Inverse() Operator {
	switch o {
	case Eq:
		return NotEq
	case NotEq:
		return Eq
	case Lt:
		return GtEq
	case LtEq:
		return Gt
	case Gt:
		return LtEq
	case GtEq:
		return Lt
	case Like:
		return NotLike
	case NotLike:
		return Like
	case In:
		return NotIn
	case NotIn:
		return In
	case Is:
		return IsNot
	default:
		return Is
	}
}

// Comparison is an expression that compares an expression against another.
type Comparison struct {
	BinaryExpression
	Op Operator
}

// NewComparison creates a new comparison between two expressions.
func NewComparison(op Operator, left, right sql.Expression) *Comparison {
	return &Comparison{BinaryExpression{left, right}, op}
}

// NewEquals returns a new = comparison.
func NewEquals(left, right sql.Expression) *Comparison {
	return NewComparison(Eq, left, right)
}

// NewLessThan returns a new < comparison.
func NewLessThan(left, right sql.Expression) *Comparison {
	return NewComparison(Lt, left, right)
}

// NewGreaterThan returns a new > comparison.
func NewGreaterThan(left, right sql.Expression) *Comparison {
	return NewComparison(Gt, left, right)
}

// NewLike returns a new LIKE comparison.
func NewLike(left, right sql.Expression) *Comparison {
	return NewComparison(Like, left, right)
}

// NewIn returns a new IN comparison.
func NewIn(left, right sql.Expression) *Comparison {
	return NewComparison(In, left, right)
}

// Reverse returns the same comparison with both sides swapped. It returns
// the comparison unchanged when it cannot be reversed.
func (c *Comparison) Reverse() *Comparison {
	if !c.Op.Reversible() {
		return c
	}
	return NewComparison(c.Op.Reverse(), c.Right, c.Left)
}

// Inverse returns the negation of the comparison.
func (c *Comparison) Inverse() *Comparison {
	return NewComparison(c.Op.Inverse(), c.Left, c.Right)
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// WithChildren implements the Expression interface.
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return NewComparison(c.Op, children[0], children[1]), nil
}
