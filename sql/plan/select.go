package plan

import (
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
)

// ConstantSelect filters all the rows of its child when a condition that
// does not depend on any row is false.
type ConstantSelect struct {
	UnaryNode
	Cond sql.Expression
}

// NewConstantSelect creates a new ConstantSelect node.
func NewConstantSelect(cond sql.Expression, child sql.Node) *ConstantSelect {
	return &ConstantSelect{UnaryNode{child}, cond}
}

// Resolved implements the Resolvable interface.
func (s *ConstantSelect) Resolved() bool {
	return s.Child.Resolved() && s.Cond.Resolved()
}

// Expressions implements the Expressioner interface.
func (s *ConstantSelect) Expressions() []sql.Expression {
	return []sql.Expression{s.Cond}
}

// WithChildren implements the Node interface.
func (s *ConstantSelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewConstantSelect(s.Cond, children[0]), nil
}

func (s *ConstantSelect) String() string {
	return unaryString("ConstantSelect", s.Child, "%s", s.Cond)
}

// SimpleSelect filters the rows of its child comparing a single column with
// an expression that only depends on constants or correlated variables.
type SimpleSelect struct {
	UnaryNode
	Column *expression.Variable
	Op     expression.Operator
	Value  sql.Expression
}

// NewSimpleSelect creates a new SimpleSelect node.
func NewSimpleSelect(
	column *expression.Variable,
	op expression.Operator,
	value sql.Expression,
	child sql.Node,
) *SimpleSelect {
	return &SimpleSelect{UnaryNode{child}, column, op, value}
}

// Resolved implements the Resolvable interface.
func (s *SimpleSelect) Resolved() bool {
	return s.Child.Resolved() && s.Value.Resolved()
}

// Expressions implements the Expressioner interface.
func (s *SimpleSelect) Expressions() []sql.Expression {
	return []sql.Expression{s.Column, s.Value}
}

// WithChildren implements the Node interface.
func (s *SimpleSelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSimpleSelect(s.Column, s.Op, s.Value, children[0]), nil
}

func (s *SimpleSelect) String() string {
	return unaryString("SimpleSelect", s.Child, "%s %s %s", s.Column, s.Op, s.Value)
}

// RangeSelect filters the rows of its child with several conditions over
// the same single column. Conditions are ANDed.
type RangeSelect struct {
	UnaryNode
	Column *expression.Variable
	Conds  []sql.Expression
}

// NewRangeSelect creates a new RangeSelect node.
func NewRangeSelect(column *expression.Variable, conds []sql.Expression, child sql.Node) *RangeSelect {
	return &RangeSelect{UnaryNode{child}, column, conds}
}

// Resolved implements the Resolvable interface.
func (s *RangeSelect) Resolved() bool {
	return s.Child.Resolved() && expressionsResolved(s.Conds...)
}

// Expressions implements the Expressioner interface.
func (s *RangeSelect) Expressions() []sql.Expression {
	return s.Conds
}

// WithChildren implements the Node interface.
func (s *RangeSelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewRangeSelect(s.Column, s.Conds, children[0]), nil
}

func (s *RangeSelect) String() string {
	return unaryString("RangeSelect", s.Child, "%s: %s", s.Column, joinExpressions(s.Conds))
}

// PatternSelect filters the rows of its child matching a column against a
// constant pattern.
type PatternSelect struct {
	UnaryNode
	Column  *expression.Variable
	Op      expression.Operator
	Pattern sql.Expression
}

// NewPatternSelect creates a new PatternSelect node.
func NewPatternSelect(
	column *expression.Variable,
	op expression.Operator,
	pattern sql.Expression,
	child sql.Node,
) *PatternSelect {
	return &PatternSelect{UnaryNode{child}, column, op, pattern}
}

// Resolved implements the Resolvable interface.
func (s *PatternSelect) Resolved() bool {
	return s.Child.Resolved() && s.Pattern.Resolved()
}

// Expressions implements the Expressioner interface.
func (s *PatternSelect) Expressions() []sql.Expression {
	return []sql.Expression{s.Column, s.Pattern}
}

// WithChildren implements the Node interface.
func (s *PatternSelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewPatternSelect(s.Column, s.Op, s.Pattern, children[0]), nil
}

func (s *PatternSelect) String() string {
	return unaryString("PatternSelect", s.Child, "%s %s %s", s.Column, s.Op, s.Pattern)
}

// SubquerySelect filters the rows of its child comparing a column with the
// result of an uncorrelated sub-query.
type SubquerySelect struct {
	UnaryNode
	Column   *expression.Variable
	Op       expression.Operator
	Subquery *expression.Subquery
}

// NewSubquerySelect creates a new SubquerySelect node.
func NewSubquerySelect(
	column *expression.Variable,
	op expression.Operator,
	subquery *expression.Subquery,
	child sql.Node,
) *SubquerySelect {
	return &SubquerySelect{UnaryNode{child}, column, op, subquery}
}

// Resolved implements the Resolvable interface.
func (s *SubquerySelect) Resolved() bool {
	return s.Child.Resolved() && s.Subquery.Resolved()
}

// Expressions implements the Expressioner interface.
func (s *SubquerySelect) Expressions() []sql.Expression {
	return []sql.Expression{s.Column, s.Subquery}
}

// WithChildren implements the Node interface.
func (s *SubquerySelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSubquerySelect(s.Column, s.Op, s.Subquery, children[0]), nil
}

func (s *SubquerySelect) String() string {
	return unaryString("SubquerySelect", s.Child, "%s %s %s", s.Column, s.Op, s.Subquery)
}

// ExhaustiveSelect filters the rows of its child evaluating an arbitrary
// condition on every row.
type ExhaustiveSelect struct {
	UnaryNode
	Cond sql.Expression
}

// NewExhaustiveSelect creates a new ExhaustiveSelect node.
func NewExhaustiveSelect(cond sql.Expression, child sql.Node) *ExhaustiveSelect {
	return &ExhaustiveSelect{UnaryNode{child}, cond}
}

// Resolved implements the Resolvable interface.
func (s *ExhaustiveSelect) Resolved() bool {
	return s.Child.Resolved() && s.Cond.Resolved()
}

// Expressions implements the Expressioner interface.
func (s *ExhaustiveSelect) Expressions() []sql.Expression {
	return []sql.Expression{s.Cond}
}

// WithChildren implements the Node interface.
func (s *ExhaustiveSelect) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewExhaustiveSelect(s.Cond, children[0]), nil
}

func (s *ExhaustiveSelect) String() string {
	return unaryString("ExhaustiveSelect", s.Child, "%s", s.Cond)
}
