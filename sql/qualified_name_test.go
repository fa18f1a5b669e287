package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQualifiedName(t *testing.T) {
	require := require.New(t)

	n := NewQualifiedName("mydb", "a", "id")
	require.Equal("mydb.a.id", n.String())
	require.Equal([]string{"mydb", "a", "id"}, n.Parts())
	require.Equal(3, n.Depth())
	require.False(n.IsFunction())

	require.Equal(NewQualifiedName("a"), NewQualifiedName("", "a"))
	require.Nil(NewQualifiedName())

	f := FunctionTableName("#f0")
	require.Equal("FUNCTIONTABLE.#f0", f.String())
	require.True(f.IsFunction())
}

func TestQualifiedNameComparison(t *testing.T) {
	full := NewQualifiedName("a", "id")

	testCases := []struct {
		name    string
		other   *QualifiedName
		ci      bool
		equals  bool
		matches bool
	}{
		{"same", NewQualifiedName("a", "id"), false, true, true},
		{"suffix", NewQualifiedName("id"), false, false, true},
		{"different case", NewQualifiedName("A", "ID"), false, false, false},
		{"case insensitive", NewQualifiedName("A", "ID"), true, true, true},
		{"other table", NewQualifiedName("b", "id"), false, false, false},
		{"longer", NewQualifiedName("mydb", "a", "id"), false, false, false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.equals, full.Equals(tt.other, tt.ci))
			require.Equal(tt.matches, full.Matches(tt.other, tt.ci))
		})
	}
}
