package main

import (
	"context"
	"fmt"

	"github.com/src-d/go-sql-planner"
	"github.com/src-d/go-sql-planner/mem"
	"github.com/src-d/go-sql-planner/sql"
)

// Example of how to compile a query with an Engine. The OR in the WHERE
// clause is planned as a LogicalUnion of both branches over a CachePoint
// of mytable:
//
// ```
// > go run ./_example
// ```
func main() {
	engine := sqle.NewDefault()
	engine.AddDatabase(createTestDatabase())

	ctx := sql.NewContext(context.Background(), sql.WithCurrentDatabase("test"))
	out, err := engine.Explain(ctx, `SELECT name, email FROM mytable
	WHERE name = 'John Doe' OR email LIKE '%@doe.com'`)
	if err != nil {
		panic(err)
	}

	fmt.Println(out)
}

func createTestDatabase() *mem.Database {
	db := mem.NewDatabase("test")
	db.AddTable("mytable", mem.NewTable("mytable", sql.Schema{
		{Name: "name", Type: "TEXT", Source: "mytable"},
		{Name: "email", Type: "TEXT", Source: "mytable"},
		{Name: "phone_numbers", Type: "JSON", Nullable: true, Source: "mytable"},
		{Name: "created_at", Type: "TIMESTAMP", Source: "mytable"},
	}))
	return db
}
