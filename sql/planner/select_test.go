package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
	"github.com/stretchr/testify/require"
)

func TestOrderByAliasAndExpression(t *testing.T) {
	require := require.New(t)

	query := func(key sql.Expression) *ast.Select {
		return &ast.Select{
			Columns: []ast.SelectColumn{
				{Expr: expression.NewPlus(col("a", "x"), lit(int64(1))), Alias: "s"},
			},
			From:    tables("a"),
			OrderBy: []ast.OrderKey{{Expr: key, Descending: true}},
		}
	}

	byAlias := planSelect(t, query(col("", "s")))
	byExpression := planSelect(t, query(expression.NewPlus(col("", "x"), lit(int64(1)))))
	require.Equal(byAlias, byExpression)

	p, _ := testPlanner()
	catalog := p.Resolver.(*sql.Catalog)
	s := sql.FunctionTableName("s")
	expected := plan.NewSubset(
		[]*sql.QualifiedName{s},
		[]*sql.QualifiedName{qn("s")},
		plan.NewSort(
			[]plan.SortField{{Column: expression.NewVariable(s), Order: plan.Descending, NullOrdering: plan.NullsLast}},
			plan.NewCreateFunctions(
				[]sql.Expression{expression.NewPlus(v("a", "x"), lit(int64(1)))},
				[]*sql.QualifiedName{s},
				fetch(catalog, "a"),
			),
		),
	)
	require.Equal(expected, byAlias)
}

func TestOrderByComputedKeys(t *testing.T) {
	require := require.New(t)

	p, ctx := testPlanner()
	catalog := p.Resolver.(*sql.Catalog)

	sum := expression.NewFunction("sum", false, col("", "salary"))
	n, err := p.Plan(ctx, &ast.Select{
		Columns: columns(col("", "dept")),
		From:    tables("emp"),
		GroupBy: []sql.Expression{lit(int64(1))},
		OrderBy: []ast.OrderKey{
			{Expr: sum},
			{Expr: expression.NewMult(col("", "dept"), lit(int64(2)))},
		},
	})
	require.NoError(err)

	order0, order1 := sql.FunctionTableName("#order0"), sql.FunctionTableName("#order1")
	names := []*sql.QualifiedName{qn("emp", "dept")}
	expected := plan.NewSubset(names, names, plan.NewSort(
		[]plan.SortField{
			{Column: expression.NewVariable(order0), Order: plan.Ascending, NullOrdering: plan.NullsFirst},
			{Column: expression.NewVariable(order1), Order: plan.Ascending, NullOrdering: plan.NullsFirst},
		},
		plan.NewCreateFunctions(
			[]sql.Expression{expression.NewMult(v("emp", "dept"), lit(int64(2)))},
			[]*sql.QualifiedName{order1},
			plan.NewGroup(
				[]sql.Expression{v("emp", "dept")},
				[]sql.Expression{expression.NewFunction("sum", false, v("emp", "salary"))},
				[]*sql.QualifiedName{order0},
				fetch(catalog, "emp"),
			),
		),
	))
	require.Equal(expected, n)
}

func TestGroupByKeys(t *testing.T) {
	catalog := testCatalog()
	count := expression.NewFunction("count", false, expression.NewStar())

	testCases := []struct {
		name    string
		columns []ast.SelectColumn
		groupBy []sql.Expression
		keys    []sql.Expression
		created []sql.Expression
	}{
		{
			"column",
			[]ast.SelectColumn{{Expr: col("", "dept")}, {Expr: count}},
			[]sql.Expression{col("emp", "dept")},
			[]sql.Expression{v("emp", "dept")},
			nil,
		},
		{
			"alias",
			[]ast.SelectColumn{{Expr: col("", "dept"), Alias: "d"}, {Expr: count}},
			[]sql.Expression{col("", "d")},
			[]sql.Expression{v("emp", "dept")},
			nil,
		},
		{
			"expression",
			[]ast.SelectColumn{{Expr: count}},
			[]sql.Expression{expression.NewPlus(col("", "dept"), lit(int64(1)))},
			[]sql.Expression{expression.NewVariable(sql.FunctionTableName("#group0"))},
			[]sql.Expression{expression.NewPlus(v("emp", "dept"), lit(int64(1)))},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			p := NewDefault(catalog)
			n, err := p.Plan(sql.NewEmptyContext(), &ast.Select{
				Columns: tt.columns,
				From:    tables("emp"),
				GroupBy: tt.groupBy,
			})
			require.NoError(err)

			group, ok := n.(*plan.Subset).Child.(*plan.Group)
			require.True(ok)
			require.Equal(tt.keys, group.Keys)

			if tt.created == nil {
				require.IsType(&plan.Fetch{}, group.Child)
				return
			}

			cf, ok := group.Child.(*plan.CreateFunctions)
			require.True(ok)
			require.Equal(tt.created, cf.Functions)
		})
	}
}

func TestPlanWithoutGrouping(t *testing.T) {
	require := require.New(t)

	n := planSelect(t, &ast.Select{
		Distinct: true,
		Columns: []ast.SelectColumn{
			{Expr: col("", "x")},
			{Expr: lit("foo"), Alias: "k"},
		},
		From: tables("a"),
	})

	subset, ok := n.(*plan.Subset)
	require.True(ok)
	require.Equal([]*sql.QualifiedName{qn("a", "x"), qn("k")}, subset.Names)

	distinct, ok := subset.Child.(*plan.Distinct)
	require.True(ok)
	require.Equal([]*sql.QualifiedName{qn("a", "x"), sql.FunctionTableName("k")}, distinct.Columns)

	cf, ok := distinct.Child.(*plan.CreateFunctions)
	require.True(ok)
	require.Equal([]sql.Expression{lit("foo")}, cf.Functions)
}

func TestParallelDisjunction(t *testing.T) {
	require := require.New(t)

	one := lit(int64(1))
	query := &ast.Select{
		Columns: columns(col("a", "id")),
		From:    tables("a", "b"),
		Where: expression.NewOr(
			expression.NewAnd(
				expression.NewEquals(col("a", "id"), col("b", "a_id")),
				expression.NewEquals(col("b", "x"), one),
			),
			expression.NewOr(
				expression.NewEquals(col("a", "x"), one),
				expression.NewEquals(col("a", "y"), one),
			),
		),
	}

	sequential := planSelect(t, query)

	catalog := testCatalog()
	p := NewBuilder(catalog).WithParallelism(4).Build()
	parallel, err := p.Plan(sql.NewEmptyContext(), query)
	require.NoError(err)

	require.Equal(sequential.String(), parallel.String())
}

func TestCancelledPlanning(t *testing.T) {
	one := lit(int64(1))
	query := &ast.Select{
		Columns: columns(col("a", "id")),
		From:    tables("a", "b"),
		Where: expression.NewOr(
			expression.NewEquals(col("a", "id"), col("b", "a_id")),
			expression.NewEquals(col("a", "x"), one),
		),
	}

	for _, parallelism := range []int{1, 4} {
		t.Run(fmt.Sprintf("parallelism %d", parallelism), func(t *testing.T) {
			require := require.New(t)

			p := NewBuilder(testCatalog()).WithParallelism(parallelism).Build()

			n, err := p.Plan(sql.NewEmptyContext(), query)
			require.NoError(err)
			require.NotNil(n)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			n, err = p.Plan(sql.NewContext(ctx), query)
			require.ErrorIs(err, context.Canceled)
			require.Nil(n)
		})
	}
}

func TestCorrelationLevels(t *testing.T) {
	require := require.New(t)

	// a.id is referenced two blocks below a
	n := planSelect(t, &ast.Select{
		Columns: columns(col("a", "id")),
		From:    tables("a"),
		Where: expression.NewExists(expression.NewSubquery(&ast.Select{
			Columns: columns(col("b", "id")),
			From:    tables("b"),
			Where: expression.NewIn(col("b", "x"), expression.NewSubquery(&ast.Select{
				Columns: columns(col("c", "id")),
				From:    tables("c"),
				Where:   expression.NewEquals(col("c", "b_id"), col("a", "id")),
			})),
		})),
	})

	var levels []int
	plan.InspectExpressions(n, func(e sql.Expression) bool {
		if sq, ok := e.(*expression.Subquery); ok {
			for _, cv := range sq.Correlated {
				levels = append(levels, cv.Level)
			}
		}
		return true
	})
	require.Equal([]int{1}, levels)
}
