package sql_test

import (
	"fmt"
	"testing"

	"github.com/src-d/go-sql-planner/mem"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCatalog_Database(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	db, err := c.Database("foo")
	require.EqualError(err, "database not found: foo")
	require.Nil(db)

	mydb := mem.NewDatabase("foo")
	c.AddDatabase(mydb)

	db, err = c.Database("foo")
	require.NoError(err)
	require.Equal(mydb, db)

	_, err = c.Database("FOO")
	require.Error(err)

	c.SetCaseInsensitive(true)
	db, err = c.Database("FOO")
	require.NoError(err)
	require.Equal(mydb, db)
}

func TestCatalog_ResolveTable(t *testing.T) {
	foo := mem.NewDatabase("foo")
	bar := mem.NewDatabase("bar")
	fooTable := mem.NewTable("t", nil)
	barTable := mem.NewTable("t", nil)
	onlyFoo := mem.NewTable("only", nil)
	foo.AddTable("t", fooTable)
	foo.AddTable("only", onlyFoo)
	bar.AddTable("t", barTable)

	c := sql.NewCatalog()
	c.AddDatabase(foo)
	c.AddDatabase(bar)

	testCases := []struct {
		name      string
		current   string
		table     *sql.QualifiedName
		canonical *sql.QualifiedName
		expected  sql.Table
		err       interface{ Is(error) bool }
	}{
		{"qualified", "", sql.NewQualifiedName("bar", "t"), sql.NewQualifiedName("bar", "t"), barTable, nil},
		{"current database", "foo", sql.NewQualifiedName("t"), sql.NewQualifiedName("foo", "t"), fooTable, nil},
		{"any database", "", sql.NewQualifiedName("only"), sql.NewQualifiedName("foo", "only"), onlyFoo, nil},
		{"ambiguous", "", sql.NewQualifiedName("t"), nil, nil, sql.ErrAmbiguousReference},
		{"unknown table", "bar", sql.NewQualifiedName("only"), nil, nil, sql.ErrUnresolvedReference},
		{"unknown database", "", sql.NewQualifiedName("baz", "t"), nil, nil, sql.ErrUnresolvedReference},
		{"too many parts", "", sql.NewQualifiedName("a", "b", "c"), nil, nil, sql.ErrUnresolvedReference},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			ctx := sql.NewEmptyContext()
			if tt.current != "" {
				ctx = sql.NewContext(ctx, sql.WithCurrentDatabase(tt.current))
			}

			canonical, table, err := c.ResolveTable(ctx, tt.table)
			if tt.err != nil {
				require.Error(err)
				require.True(tt.err.Is(err), "unexpected error: %s", err)
				return
			}

			require.NoError(err)
			require.Equal(tt.canonical, canonical)
			require.Equal(tt.expected, table)
		})
	}
}

func TestFunctionRegistry(t *testing.T) {
	require := require.New(t)

	r := sql.NewFunctionRegistry()
	require.True(r.IsAggregate("count"))
	require.True(r.IsAggregate("COUNT"))
	require.False(r.IsAggregate("lower"))

	r.Register("Median", true)
	r.Register("lower", false)
	require.True(r.IsAggregate("median"))
	require.False(r.IsAggregate("lower"))
}

func TestCatalogFunctionsConcurrently(t *testing.T) {
	require := require.New(t)

	c := sql.NewCatalog()
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("agg%d", i)
		g.Go(func() error {
			c.RegisterFunction(name, true)
			return nil
		})
		g.Go(func() error {
			if !c.IsAggregate("count") {
				return fmt.Errorf("count is not an aggregate")
			}
			c.IsAggregate(name)
			return nil
		})
	}
	require.NoError(g.Wait())

	for i := 0; i < 8; i++ {
		require.True(c.IsAggregate(fmt.Sprintf("AGG%d", i)))
	}
	require.False(c.IsAggregate("lower"))
}
