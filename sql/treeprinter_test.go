package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const expectedTree = `Subset(a.id, b.x)
 ├─ Join(a.id = b.a_id)
 │   ├─ Fetch(mydb.a)
 │   └─ Fetch(mydb.b)
 └─ LogicalUnion
     ├─ CachePoint(1)
     └─ CachePoint(1)
`

type printedNode string

func (n printedNode) Resolved() bool { return true }
func (n printedNode) String() string { return string(n) }
func (n printedNode) Children() []Node { return nil }
func (n printedNode) WithChildren(children ...Node) (Node, error) { return n, nil }

func TestTreePrinter(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.NoError(p.WriteNode("Subset(%s, %s)", "a.id", "b.x"))

	p2 := NewTreePrinter()
	require.NoError(p2.WriteNode("Join(a.id = b.a_id)"))
	require.NoError(p2.WriteNodes(
		printedNode("Fetch(mydb.a)"),
		printedNode("Fetch(mydb.b)"),
	))

	p3 := NewTreePrinter()
	require.NoError(p3.WriteNode("LogicalUnion"))
	require.NoError(p3.WriteChildren(
		"CachePoint(1)",
		"CachePoint(1)",
	))

	require.NoError(p.WriteChildren(
		p2.String(),
		p3.String(),
	))

	require.Equal(expectedTree, p.String())
}

func TestTreePrinterErrors(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	err := p.WriteChildren("Fetch(mydb.a)")
	require.True(ErrNodeNotWritten.Is(err))

	require.NoError(p.WriteNode("Distinct"))
	err = p.WriteNode("Distinct")
	require.True(ErrNodeAlreadyWritten.Is(err))

	require.NoError(p.WriteChildren("Fetch(mydb.a)"))
	err = p.WriteChildren("Fetch(mydb.b)")
	require.True(ErrChildrenAlreadyWritten.Is(err))
}
