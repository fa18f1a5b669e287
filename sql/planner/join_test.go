package planner

import (
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
	"github.com/stretchr/testify/require"
)

func TestFromSetSourceCount(t *testing.T) {
	testCases := []struct {
		name  string
		items []*ast.FromItem
	}{
		{"single", tables("a")},
		{"implicit", tables("a", "b", "c")},
		{"aliases", []*ast.FromItem{ast.NewTable(qn("a"), "x"), ast.NewTable(qn("a"), "y")}},
		{"derived", []*ast.FromItem{
			ast.NewTable(qn("mydb", "a"), ""),
			ast.NewDerived(&ast.Select{
				Columns: columns(expression.NewStar()),
				From:    tables("b", "c"),
			}, "d"),
		}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			p, ctx := testPlanner()
			c := newCompilation(p, ctx)
			fs, err := c.buildFromSet(tt.items, nil)
			require.NoError(err)
			require.Len(fs.sources, len(tt.items))
		})
	}
}

func TestDerivedTableRepeatedColumns(t *testing.T) {
	derived := func() *ast.FromItem {
		return ast.NewDerived(&ast.Select{
			Columns: columns(expression.NewStar()),
			From:    tables("b", "c"),
		}, "d")
	}

	testCases := []struct {
		name    string
		columns []ast.SelectColumn
		from    []*ast.FromItem
		err     bool
	}{
		{"unreferenced", columns(col("a", "id")), []*ast.FromItem{ast.NewTable(qn("a"), ""), derived()}, false},
		{"unique column", columns(col("d", "b_id")), []*ast.FromItem{derived()}, false},
		{"repeated column", columns(col("d", "id")), []*ast.FromItem{derived()}, true},
		{"unqualified repeated column", columns(col("", "id")), []*ast.FromItem{derived()}, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			p, ctx := testPlanner()
			n, err := p.Plan(ctx, &ast.Select{Columns: tt.columns, From: tt.from})
			if tt.err {
				require.Error(err)
				require.True(sql.ErrAmbiguousReference.Is(err), "unexpected error: %s", err)
				require.Nil(n)
			} else {
				require.NoError(err)
				require.IsType(&plan.Subset{}, n)
			}
		})
	}
}

func TestJoinPlanningEndsWithOneFragment(t *testing.T) {
	one := lit(int64(1))

	testCases := []struct {
		name  string
		from  []*ast.FromItem
		where sql.Expression
	}{
		{"cartesian product", tables("a", "b", "c"), nil},
		{
			"chain",
			tables("a", "b", "c"),
			expression.JoinAnd(
				expression.NewEquals(col("a", "id"), col("b", "a_id")),
				expression.NewEquals(col("b", "id"), col("c", "b_id")),
			),
		},
		{
			"disjunction over sources",
			tables("a", "b", "c"),
			expression.NewOr(
				expression.NewEquals(col("a", "x"), one),
				expression.NewEquals(col("c", "id"), one),
			),
		},
		{
			"outer joins",
			[]*ast.FromItem{
				ast.NewTable(qn("a"), ""),
				ast.NewTable(qn("b"), "").Joined(
					ast.LeftOuterJoin,
					expression.NewEquals(col("a", "id"), col("b", "a_id")),
				),
				ast.NewTable(qn("c"), "").Joined(
					ast.RightOuterJoin,
					expression.NewEquals(col("b", "id"), col("c", "b_id")),
				),
			},
			expression.NewGreaterThan(col("a", "x"), one),
		},
		{
			"inner joins folded",
			[]*ast.FromItem{
				ast.NewTable(qn("a"), ""),
				ast.NewTable(qn("b"), "").Joined(
					ast.InnerJoin,
					expression.NewEquals(col("a", "id"), col("b", "a_id")),
				),
				ast.NewTable(qn("c"), ""),
			},
			nil,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			p, ctx := testPlanner()
			p.Debug = true
			c := newCompilation(p, ctx)

			fs, err := c.buildFromSet(tt.from, nil)
			require.NoError(err)
			_, err = c.prepareColumns(fs, columns(expression.NewStar()))
			require.NoError(err)

			where, err := c.qualify(fs, tt.where, noAliases)
			require.NoError(err)

			jp, folded, err := c.setupJoins(fs, tt.from)
			require.NoError(err)
			require.NoError(jp.planOuterJoins())
			require.NoError(jp.checkChain())

			preds := append([]sql.Expression{where}, folded...)
			preds = append(preds, jp.detachLinks()...)
			require.NoError(jp.planPredicates(expression.JoinAnd(preds...)))
			require.NoError(jp.naturalJoinAll())

			require.Len(jp.live(), 1)
			n, err := jp.single()
			require.NoError(err)
			require.Len(plan.Tables(n), len(tt.from))
		})
	}
}

func TestDisjunctionBranchesCoverTheSameSources(t *testing.T) {
	require := require.New(t)

	one := lit(int64(1))
	n := planSelect(t, &ast.Select{
		Columns: columns(col("a", "id")),
		From:    tables("a", "b", "c"),
		Where: expression.JoinAnd(
			expression.NewEquals(col("c", "id"), one),
			expression.NewOr(
				expression.NewEquals(col("a", "x"), col("b", "x")),
				expression.NewEquals(col("b", "id"), one),
			),
		),
	})

	var unions []*plan.LogicalUnion
	plan.Inspect(n, func(n sql.Node) bool {
		if u, ok := n.(*plan.LogicalUnion); ok {
			unions = append(unions, u)
		}
		return true
	})

	require.Len(unions, 1)
	require.Equal(plan.Tables(unions[0].Left), plan.Tables(unions[0].Right))
	require.Equal(
		[]*sql.QualifiedName{qn("mydb", "a"), qn("mydb", "b"), qn("mydb", "c")},
		plan.Tables(unions[0].Left),
	)
}

func TestCloneIsIndependent(t *testing.T) {
	require := require.New(t)

	jp := testJoinPlanner("a", "b", "c")
	jp.frags[0].updated = true

	clone := jp.clone()
	require.False(clone.frags[0].updated)

	_, err := clone.joinToSingle([]int{0, 1})
	require.NoError(err)
	require.Len(clone.live(), 2)
	require.True(clone.joined)

	require.Len(jp.live(), 3)
	require.False(jp.joined)
	require.True(jp.frags[0].updated)
	require.IsType(&plan.Fetch{}, jp.frags[0].plan)
}

func TestMergeKeepsNeighbors(t *testing.T) {
	require := require.New(t)

	jp := testJoinPlanner("a", "b", "c")
	jp.c.planner.Debug = true
	on := expression.NewEquals(v("a", "id"), v("b", "a_id"))
	jp.frags[0].right = link{to: 1, join: ast.InnerJoin, on: on}
	jp.frags[1].left = link{to: 0, join: ast.InnerJoin, on: on}
	jp.frags[1].right = link{to: 2, join: ast.LeftOuterJoin, on: on}
	jp.frags[2].left = link{to: 1, join: ast.LeftOuterJoin, on: on}

	idx, err := jp.merge(0, 1, plan.NewNaturalJoin(jp.frags[0].plan, jp.frags[1].plan))
	require.NoError(err)
	require.Equal(0, idx)
	require.Equal(2, jp.frags[0].right.to)
	require.Equal(ast.LeftOuterJoin, jp.frags[0].right.join)
	require.Equal(0, jp.frags[2].left.to)
	require.Equal(0, jp.resolve(1))
	require.Equal([]string{"T0", "T1"}, jp.frags[0].keys)
	require.NoError(jp.checkChain())
}
