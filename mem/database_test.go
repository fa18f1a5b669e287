package mem

import (
	"testing"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/stretchr/testify/require"
)

func TestDatabase_Name(t *testing.T) {
	require := require.New(t)
	db := NewDatabase("test")
	require.Equal("test", db.Name())
}

func TestDatabase_AddTable(t *testing.T) {
	require := require.New(t)

	db := NewDatabase("test")
	require.Len(db.Tables(), 0)

	db.AddTable("emp", NewTable("emp", sql.Schema{{Name: "id", Type: "INT64"}}))
	require.Len(db.Tables(), 1)

	emp, ok := db.Tables()["emp"]
	require.True(ok)
	require.Equal("emp", emp.Schema()[0].Source)

	catalog := sql.NewCatalog()
	catalog.AddDatabase(db)

	name, table, err := catalog.ResolveTable(sql.NewEmptyContext(), sql.NewQualifiedName("emp"))
	require.NoError(err)
	require.Equal(emp, table)
	require.Equal("test.emp", name.String())
}
