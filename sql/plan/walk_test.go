package plan

import (
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	t1 := fetch("foo")
	t2 := fetch("bar")
	join := NewNaturalJoin(t1, t2)
	filter := NewExhaustiveSelect(expression.NewLiteral(true), join)
	subset := NewSubset(nil, nil, filter)

	var f visitor
	var visited []sql.Node
	f = func(node sql.Node) Visitor {
		visited = append(visited, node)
		return f
	}

	Walk(f, subset)

	require.Equal(t,
		[]sql.Node{subset, filter, join, t1, nil, t2, nil, nil, nil, nil},
		visited,
	)

	visited = nil
	f = func(node sql.Node) Visitor {
		visited = append(visited, node)
		if _, ok := node.(*NaturalJoin); ok {
			return nil
		}
		return f
	}

	Walk(f, subset)

	require.Equal(t,
		[]sql.Node{subset, filter, join, nil, nil},
		visited,
	)
}

type visitor func(sql.Node) Visitor

func (f visitor) Visit(n sql.Node) Visitor {
	return f(n)
}

func TestInspect(t *testing.T) {
	t1 := fetch("foo")
	t2 := fetch("bar")
	join := NewNaturalJoin(t1, t2)
	filter := NewExhaustiveSelect(expression.NewLiteral(true), join)
	subset := NewSubset(nil, nil, filter)

	var visited []sql.Node
	Inspect(subset, func(node sql.Node) bool {
		visited = append(visited, node)
		_, ok := node.(*NaturalJoin)
		return !ok
	})

	require.Equal(t,
		[]sql.Node{subset, filter, join, nil, nil},
		visited,
	)
}

func TestInspectExpressions(t *testing.T) {
	require := require.New(t)

	a := expression.NewVariable(sql.NewQualifiedName("foo", "a"))
	b := expression.NewVariable(sql.NewQualifiedName("bar", "b"))
	node := NewJoin(
		fetch("foo"),
		NewSimpleSelect(b, expression.Eq, expression.NewLiteral(int64(1)), fetch("bar")),
		a, expression.Eq, b,
	)

	var vars []string
	InspectExpressions(node, func(e sql.Expression) bool {
		if v, ok := e.(*expression.Variable); ok {
			vars = append(vars, v.String())
		}
		return true
	})

	require.Equal([]string{"foo.a", "bar.b", "bar.b"}, vars)
}

func TestTransformUp(t *testing.T) {
	require := require.New(t)

	node := NewNaturalJoin(fetch("foo"), fetch("bar"))
	result, err := TransformUp(node, func(n sql.Node) (sql.Node, error) {
		if f, ok := n.(*Fetch); ok {
			return NewCachePoint(1, f), nil
		}
		return n, nil
	})
	require.NoError(err)
	require.Equal(
		NewNaturalJoin(
			NewCachePoint(1, fetch("foo")),
			NewCachePoint(1, fetch("bar")),
		),
		result,
	)
}

func fetch(name string) *Fetch {
	n := sql.NewQualifiedName("mydb", name)
	return NewFetch(n, sql.NewQualifiedName(name), nil)
}
