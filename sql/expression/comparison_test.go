package expression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOperatorInverse(t *testing.T) {
	for op := Eq; op <= IsNot; op++ {
		t.Run(op.String(), func(t *testing.T) {
			require.Equal(t, op, op.Inverse().Inverse())
			require.NotEqual(t, op, op.Inverse())
		})
	}
}

func TestComparisonReverse(t *testing.T) {
	var testCases = []struct {
		op       Operator
		expected Operator
	}{
		{Eq, Eq},
		{NotEq, NotEq},
		{Lt, Gt},
		{LtEq, GtEq},
		{Gt, Lt},
		{GtEq, LtEq},
	}

	for _, tt := range testCases {
		t.Run(tt.op.String(), func(t *testing.T) {
			require := require.New(t)
			c := NewComparison(tt.op, col("t", "a"), NewLiteral(int64(1)))
			r := c.Reverse()
			require.Equal(tt.expected, r.Op)
			require.Equal(c.Left, r.Right)
			require.Equal(c.Right, r.Left)
		})
	}
}

func TestComparisonNotReversible(t *testing.T) {
	require := require.New(t)
	c := NewLike(col("t", "a"), NewLiteral("a%"))
	require.True(c == c.Reverse())
	require.Equal(`t.a LIKE "a%"`, c.String())
	require.Equal(`t.a NOT LIKE "a%"`, c.Inverse().String())
}
