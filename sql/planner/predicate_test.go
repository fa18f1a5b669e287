package planner

import (
	"math/rand"
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/stretchr/testify/require"
)

func TestPredicateRanks(t *testing.T) {
	require := require.New(t)

	order := []PredicateClass{
		ConstantPredicate,
		SimpleSingleVar,
		SimplePattern,
		SimpleSubquery,
		SubLogicSingle,
		StandardJoin,
		MixedJoin,
		ExhaustiveJoin,
		SubLogicMulti,
		ComplexSingleVar,
		ExhaustivePattern,
		ExhaustiveSubquery,
	}

	for i := 1; i < len(order); i++ {
		require.True(order[i-1].Rank() < order[i].Rank(), "%s before %s", order[i-1], order[i])
	}

	require.Equal(0.60, StandardJoin.Rank())
	require.Equal("standard join", StandardJoin.String())
}

func testJoinPlanner(names ...string) *joinPlanner {
	p, ctx := testPlanner()
	c := newCompilation(p, ctx)
	jp := newJoinPlanner(c)
	catalog := p.Resolver.(*sql.Catalog)
	for i, n := range names {
		jp.add(fetch(catalog, n), allColumns(n), []string{"T" + string(rune('0'+i))})
	}
	return jp
}

func TestClassify(t *testing.T) {
	one := expression.NewLiteral(int64(1))

	testCases := []struct {
		name     string
		pred     sql.Expression
		expected []PredicateClass
	}{
		{
			"standard join",
			expression.NewEquals(v("a", "id"), v("b", "a_id")),
			[]PredicateClass{StandardJoin},
		},
		{
			"mixed join",
			expression.NewEquals(v("a", "id"), expression.NewPlus(v("b", "a_id"), one)),
			[]PredicateClass{MixedJoin},
		},
		{
			"reversed mixed join",
			expression.NewLessThan(expression.NewPlus(v("b", "a_id"), one), v("a", "id")),
			[]PredicateClass{MixedJoin},
		},
		{
			"exhaustive join",
			expression.NewEquals(expression.NewPlus(v("a", "id"), v("b", "x")), one),
			[]PredicateClass{ExhaustiveJoin},
		},
		{
			"single fragment or",
			expression.NewOr(
				expression.NewEquals(v("a", "x"), one),
				expression.NewEquals(v("a", "y"), one),
			),
			[]PredicateClass{SubLogicSingle},
		},
		{
			"multiple fragment or",
			expression.NewOr(
				expression.NewEquals(v("a", "x"), one),
				expression.NewEquals(v("b", "x"), one),
			),
			[]PredicateClass{SubLogicMulti},
		},
		{
			"exhaustive pattern",
			expression.NewLike(v("a", "x"), v("b", "x")),
			[]PredicateClass{ExhaustivePattern},
		},
		{
			"boolean column",
			v("a", "x"),
			[]PredicateClass{SimpleSingleVar},
		},
		{
			"grouped simple predicates",
			expression.JoinAnd(
				expression.NewGreaterThan(v("a", "x"), one),
				expression.NewEquals(v("a", "id"), v("b", "a_id")),
				expression.NewLessThan(v("a", "x"), one),
			),
			[]PredicateClass{SimpleSingleVar, StandardJoin},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			jp := testJoinPlanner("a", "b")
			plans, err := jp.classify(tt.pred)
			require.NoError(err)

			var classes []PredicateClass
			for _, p := range plans {
				classes = append(classes, p.class)
			}
			require.Equal(tt.expected, classes)
		})
	}
}

func TestNormalize(t *testing.T) {
	one := expression.NewLiteral(int64(1))
	x, y := v("a", "x"), v("a", "y")

	testCases := []struct {
		name     string
		input    sql.Expression
		expected string
	}{
		{
			"double negation",
			expression.NewNot(expression.NewNot(expression.NewEquals(x, one))),
			"a.x = 1",
		},
		{
			"inverted comparison",
			expression.NewNot(expression.NewLessThan(x, one)),
			"a.x >= 1",
		},
		{
			"negated conjunction",
			expression.NewNot(expression.NewAnd(
				expression.NewEquals(x, one),
				expression.NewEquals(y, one),
			)),
			"(a.x <> 1 OR a.y <> 1)",
		},
		{
			"negated disjunction",
			expression.NewNot(expression.NewOr(
				expression.NewEquals(x, one),
				expression.NewEquals(y, one),
			)),
			"(a.x <> 1 AND a.y <> 1)",
		},
		{
			"negated function",
			expression.NewNot(expression.NewFunction("isnull", false, x)),
			"NOT(isnull(a.x))",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, normalize(tt.input).String())
		})
	}
}

func TestSortPlansIsStable(t *testing.T) {
	require := require.New(t)

	var plans []*expressionPlan
	classes := []PredicateClass{StandardJoin, ConstantPredicate, SimpleSingleVar, ExhaustiveJoin}
	for i := 0; i < 20; i++ {
		class := classes[i%len(classes)]
		plans = append(plans, &expressionPlan{class: class, expr: expression.NewLiteral(int64(i))})
	}

	r := rand.New(rand.NewSource(42))
	for round := 0; round < 5; round++ {
		shuffled := make([]*expressionPlan, len(plans))
		copy(shuffled, plans)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		input := make([]*expressionPlan, len(shuffled))
		copy(input, shuffled)
		sortPlans(shuffled)

		for i := 1; i < len(shuffled); i++ {
			require.True(shuffled[i-1].class.Rank() <= shuffled[i].class.Rank())
		}

		// plans of the same class keep their input order
		for _, class := range classes {
			var before, after []*expressionPlan
			for _, p := range input {
				if p.class == class {
					before = append(before, p)
				}
			}
			for _, p := range shuffled {
				if p.class == class {
					after = append(after, p)
				}
			}
			require.Equal(before, after)
		}
	}
}
