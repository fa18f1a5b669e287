package planner

import (
	"fmt"
	"sort"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// PredicateClass is the classification of a WHERE or ON conjunct. The rank
// of a class decides the order in which predicates are applied to the plan:
// lower ranks are applied first.
type PredicateClass byte

const (
	// ConstantPredicate does not depend on any row.
	ConstantPredicate PredicateClass = iota
	// SimpleSingleVar compares a single column with a constant.
	SimpleSingleVar
	// SimplePattern matches a single column with a constant pattern.
	SimplePattern
	// SimpleSubquery compares a single column with an uncorrelated
	// sub-query.
	SimpleSubquery
	// SubLogicSingle is an OR whose columns are covered by one fragment.
	SubLogicSingle
	// StandardJoin compares two columns of different sources.
	StandardJoin
	// MixedJoin compares a column with an expression over other sources.
	MixedJoin
	// ExhaustiveJoin is any other predicate over several sources.
	ExhaustiveJoin
	// SubLogicMulti is an OR over several fragments.
	SubLogicMulti
	// ComplexSingleVar is any other predicate over a single column.
	ComplexSingleVar
	// ExhaustivePattern is any other pattern match.
	ExhaustivePattern
	// ExhaustiveSubquery is any other predicate with a sub-query.
	ExhaustiveSubquery
)

var predicateRanks = [...]float64{
	ConstantPredicate:  0.0,
	SimpleSingleVar:    0.2,
	SimplePattern:      0.25,
	SimpleSubquery:     0.3,
	SubLogicSingle:     0.58,
	StandardJoin:       0.60,
	MixedJoin:          0.64,
	ExhaustiveJoin:     0.68,
	SubLogicMulti:      0.70,
	ComplexSingleVar:   0.8,
	ExhaustivePattern:  0.82,
	ExhaustiveSubquery: 0.85,
}

var predicateNames = [...]string{
	ConstantPredicate:  "constant",
	SimpleSingleVar:    "simple single variable",
	SimplePattern:      "simple pattern",
	SimpleSubquery:     "simple subquery",
	SubLogicSingle:     "single fragment sub-logic",
	StandardJoin:       "standard join",
	MixedJoin:          "mixed join",
	ExhaustiveJoin:     "exhaustive join",
	SubLogicMulti:      "multiple fragment sub-logic",
	ComplexSingleVar:   "complex single variable",
	ExhaustivePattern:  "exhaustive pattern",
	ExhaustiveSubquery: "exhaustive subquery",
}

// Rank returns the optimizability rank of the class, 0 being the cheapest.
func (c PredicateClass) Rank() float64 {
	return predicateRanks[c]
}

func (c PredicateClass) String() string {
	if int(c) < len(predicateNames) {
		return predicateNames[c]
	}
	return "invalid PredicateClass"
}

// expressionPlan is a deferred action adding a predicate to the plan.
type expressionPlan struct {
	class PredicateClass
	expr  sql.Expression
	apply func(*joinPlanner) error
}

func (p *expressionPlan) String() string {
	return fmt.Sprintf("%s (%.2f): %s", p.class, p.class.Rank(), p.expr)
}

// sortPlans sorts the plans by rank, keeping the given order between plans
// of the same rank.
func sortPlans(plans []*expressionPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].class.Rank() < plans[j].class.Rank()
	})
}

// planPredicates classifies the conjuncts of the given predicate and applies
// them in rank order.
func (jp *joinPlanner) planPredicates(e sql.Expression) error {
	if e == nil {
		return nil
	}

	plans, err := jp.classify(e)
	if err != nil {
		return err
	}
	sortPlans(plans)

	for _, p := range plans {
		if err := jp.ctx.Err(); err != nil {
			return err
		}

		jp.c.Log("applying %s", p)
		if err := p.apply(jp); err != nil {
			return err
		}
	}
	return nil
}

// normalize pushes NOT down to comparisons, inverting them.
func normalize(e sql.Expression) sql.Expression {
	switch e := e.(type) {
	case *expression.And:
		return expression.NewAnd(normalize(e.Left), normalize(e.Right))
	case *expression.Or:
		return expression.NewOr(normalize(e.Left), normalize(e.Right))
	case *expression.Not:
		switch child := e.Child.(type) {
		case *expression.Not:
			return normalize(child.Child)
		case *expression.Comparison:
			return child.Inverse()
		case *expression.And:
			return expression.NewOr(
				normalize(expression.NewNot(child.Left)),
				normalize(expression.NewNot(child.Right)),
			)
		case *expression.Or:
			return expression.NewAnd(
				normalize(expression.NewNot(child.Left)),
				normalize(expression.NewNot(child.Right)),
			)
		default:
			return expression.NewNot(normalize(child))
		}
	}
	return e
}

// conjuncts returns the normalized top-level conjuncts of a predicate. Every
// conjunct that is not an OR or a comparison is compared with TRUE.
func conjuncts(e sql.Expression) []sql.Expression {
	parts := expression.SplitConjunction(normalize(e))
	for i, p := range parts {
		switch p.(type) {
		case *expression.Or, *expression.Comparison:
		default:
			parts[i] = expression.NewEquals(p, expression.NewLiteral(true))
		}
	}
	return parts
}

type singleVarGroup struct {
	column *expression.Variable
	conds  []*expression.Comparison
}

// classify turns every conjunct of the predicate into an expression plan.
// Simple predicates on the same column are grouped into a single plan.
func (jp *joinPlanner) classify(e sql.Expression) ([]*expressionPlan, error) {
	var (
		plans  []*expressionPlan
		groups []*singleVarGroup
	)

	for _, conj := range conjuncts(e) {
		if expression.ContainsAggregate(conj, jp.c.planner.Resolver) {
			return nil, sql.ErrInvalidGroupingExpression.New(conj)
		}

		vars := predicateVars(conj)

		if or, ok := conj.(*expression.Or); ok {
			class := SubLogicMulti
			if idx, err := jp.fragmentsOf(vars); err == nil && len(idx) <= 1 {
				class = SubLogicSingle
			}
			plans = append(plans, &expressionPlan{class, or, func(jp *joinPlanner) error {
				return jp.planOr(or)
			}})
			continue
		}

		cmp := conj.(*expression.Comparison)
		switch {
		case expression.ContainsSubquery(cmp):
			plans = append(plans, classifySubquery(cmp, vars))
		case cmp.Op.IsPattern():
			plans = append(plans, classifyPattern(cmp, vars))
		case len(vars) == 0:
			plans = append(plans, constantPlan(cmp))
		case len(vars) == 1:
			column, simple := simpleComparison(cmp)
			if simple == nil {
				plans = append(plans, exhaustivePlan(ComplexSingleVar, cmp, vars))
				continue
			}

			var group *singleVarGroup
			for _, g := range groups {
				if g.column.Name.Equals(column.Name, false) {
					group = g
				}
			}

			if group == nil {
				group = &singleVarGroup{column: column}
				groups = append(groups, group)
				plans = append(plans, singleVarPlan(group))
			}
			group.conds = append(group.conds, simple)
		default:
			plans = append(plans, classifyJoin(cmp, vars))
		}
	}

	return plans, nil
}

// simpleComparison returns the comparison as column op constant, reversing
// it if needed, or nil if it doesn't have that form.
func simpleComparison(cmp *expression.Comparison) (*expression.Variable, *expression.Comparison) {
	if v, ok := expression.AsVariable(cmp.Left); ok && isBlockConstant(cmp.Right) {
		return v, cmp
	}

	if v, ok := expression.AsVariable(cmp.Right); ok && cmp.Op.Reversible() && isBlockConstant(cmp.Left) {
		return v, cmp.Reverse()
	}

	return nil, nil
}

func classifySubquery(cmp *expression.Comparison, vars []*sql.QualifiedName) *expressionPlan {
	c := cmp
	if _, ok := c.Left.(*expression.Subquery); ok && c.Op.Reversible() {
		c = c.Reverse()
	}

	column, ok := expression.AsVariable(c.Left)
	sq, isSubquery := c.Right.(*expression.Subquery)
	if !ok || !isSubquery || isCorrelated(sq) {
		return exhaustivePlan(ExhaustiveSubquery, cmp, vars)
	}

	return &expressionPlan{SimpleSubquery, c, func(jp *joinPlanner) error {
		i, err := jp.fragmentOf(column.Name)
		if err != nil {
			return err
		}
		jp.setPlan(i, plan.NewSubquerySelect(column, c.Op, sq, jp.frags[i].plan))
		return nil
	}}
}

func classifyPattern(cmp *expression.Comparison, vars []*sql.QualifiedName) *expressionPlan {
	column, ok := expression.AsVariable(cmp.Left)
	if !ok || !isBlockConstant(cmp.Right) {
		return exhaustivePlan(ExhaustivePattern, cmp, vars)
	}

	return &expressionPlan{SimplePattern, cmp, func(jp *joinPlanner) error {
		i, err := jp.fragmentOf(column.Name)
		if err != nil {
			return err
		}
		jp.setPlan(i, plan.NewPatternSelect(column, cmp.Op, cmp.Right, jp.frags[i].plan))
		return nil
	}}
}

func classifyJoin(cmp *expression.Comparison, vars []*sql.QualifiedName) *expressionPlan {
	if cmp.Op.Reversible() {
		left, lok := expression.AsVariable(cmp.Left)
		right, rok := expression.AsVariable(cmp.Right)

		switch {
		case lok && rok:
			return joinPlan(StandardJoin, cmp)
		case lok && !containsVar(predicateVars(cmp.Right), left.Name):
			return joinPlan(MixedJoin, cmp)
		case rok && !containsVar(predicateVars(cmp.Left), right.Name):
			return joinPlan(MixedJoin, cmp.Reverse())
		}
	}

	return exhaustivePlan(ExhaustiveJoin, cmp, vars)
}

// constantPlan filters every fragment with a predicate that does not depend
// on any row.
func constantPlan(e sql.Expression) *expressionPlan {
	return &expressionPlan{ConstantPredicate, e, func(jp *joinPlanner) error {
		for _, i := range jp.live() {
			jp.setPlan(i, plan.NewConstantSelect(e, jp.frags[i].plan))
		}
		return nil
	}}
}

func singleVarPlan(g *singleVarGroup) *expressionPlan {
	return &expressionPlan{SimpleSingleVar, g.column, func(jp *joinPlanner) error {
		i, err := jp.fragmentOf(g.column.Name)
		if err != nil {
			return err
		}

		if len(g.conds) == 1 {
			c := g.conds[0]
			jp.setPlan(i, plan.NewSimpleSelect(g.column, c.Op, c.Right, jp.frags[i].plan))
			return nil
		}

		conds := make([]sql.Expression, len(g.conds))
		for j, c := range g.conds {
			conds[j] = c
		}
		jp.setPlan(i, plan.NewRangeSelect(g.column, conds, jp.frags[i].plan))
		return nil
	}}
}

// exhaustivePlan joins all the fragments the predicate depends on and
// filters the result evaluating it on every row.
func exhaustivePlan(class PredicateClass, e sql.Expression, vars []*sql.QualifiedName) *expressionPlan {
	if len(vars) == 0 {
		p := constantPlan(e)
		p.class = class
		return p
	}

	return &expressionPlan{class, e, func(jp *joinPlanner) error {
		i, err := jp.joinAllWithVariables(vars)
		if err != nil {
			return err
		}
		jp.setPlan(i, plan.NewExhaustiveSelect(e, jp.frags[i].plan))
		return nil
	}}
}

// joinPlan joins the fragment of the left column with the fragments the
// right side depends on.
func joinPlan(class PredicateClass, cmp *expression.Comparison) *expressionPlan {
	column := cmp.Left.(*expression.Variable)
	return &expressionPlan{class, cmp, func(jp *joinPlanner) error {
		r, err := jp.joinAllWithVariables(predicateVars(cmp.Right))
		if err != nil {
			return err
		}

		l, err := jp.fragmentOf(column.Name)
		if err != nil {
			return err
		}

		if l == r {
			jp.setPlan(l, plan.NewExhaustiveSelect(cmp, jp.frags[l].plan))
			return nil
		}

		n := plan.NewJoin(jp.frags[l].plan, jp.frags[r].plan, column, cmp.Op, cmp.Right)
		if l > r {
			l, r = r, l
		}

		jp.joined = true
		_, err = jp.merge(l, r, n)
		return err
	}}
}
