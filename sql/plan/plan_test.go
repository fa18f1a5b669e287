package plan

import (
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/stretchr/testify/require"
)

func TestNodeString(t *testing.T) {
	require := require.New(t)

	id := expression.NewVariable(sql.NewQualifiedName("a", "id"))
	aid := expression.NewVariable(sql.NewQualifiedName("b", "a_id"))
	names := []*sql.QualifiedName{sql.NewQualifiedName("a", "id")}

	node := NewSubset(
		names,
		[]*sql.QualifiedName{sql.NewQualifiedName("id")},
		NewLeftOuterJoin("outer0", NewJoin(
			NewMarker("outer0", fetch("a")),
			fetch("b"),
			id, expression.Eq, aid,
		)),
	)

	expected := `Subset(a.id AS id)
 └─ LeftOuterJoin(outer0)
     └─ Join(a.id = b.a_id)
         ├─ Marker(outer0)
         │   └─ Fetch(mydb.a AS a)
         └─ Fetch(mydb.b AS b)
`
	require.Equal(expected, node.String())
}

func TestGroupString(t *testing.T) {
	require := require.New(t)

	dept := expression.NewVariable(sql.NewQualifiedName("emp", "dept"))
	count := expression.NewFunction("count", false, expression.NewStar())
	g := NewGroup(
		[]sql.Expression{dept},
		[]sql.Expression{count},
		[]*sql.QualifiedName{sql.FunctionTableName("#f0")},
		fetch("emp"),
	)

	expected := `Group
 ├─ Keys(emp.dept)
 ├─ Functions(count(*) AS FUNCTIONTABLE.#f0)
 └─ Fetch(mydb.emp AS emp)
`
	require.Equal(expected, g.String())
	require.Equal([]sql.Expression{dept, count}, g.Expressions())
}

func TestTables(t *testing.T) {
	require := require.New(t)

	sub := expression.NewSubquery(&ast.Select{}).WithPlan(
		NewSubset(nil, nil, fetch("c")), nil,
	)
	x := expression.NewVariable(sql.NewQualifiedName("a", "x"))

	node := NewComposite(ast.Union, true,
		NewSubquerySelect(x, expression.In, sub, NewNaturalJoin(fetch("a"), fetch("b"))),
		NewLogicalUnion(fetch("a"), fetch("a")),
	)

	require.Equal(
		[]*sql.QualifiedName{
			sql.NewQualifiedName("mydb", "a"),
			sql.NewQualifiedName("mydb", "b"),
			sql.NewQualifiedName("mydb", "c"),
		},
		Tables(node),
	)
}
