package mem

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
)

// Table represents an in-memory table. It only holds the metadata needed to
// plan queries over it.
type Table struct {
	name   string
	schema sql.Schema
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a new Table with the given name and schema. The source
// of every column is set to the table name.
func NewTable(name string, schema sql.Schema) *Table {
	for _, c := range schema {
		c.Source = name
	}

	return &Table{
		name:   name,
		schema: schema,
	}
}

// Name implements the sql.Nameable interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

func (t *Table) String() string {
	p := sql.NewTreePrinter()
	_ = p.WriteNode("Table(%s)", t.name)
	var schema = make([]string, len(t.schema))
	for i, col := range t.schema {
		schema[i] = fmt.Sprintf(
			"Column(%s, %s, nullable=%v)",
			col.Name,
			col.Type,
			col.Nullable,
		)
	}
	_ = p.WriteChildren(schema...)
	return p.String()
}
