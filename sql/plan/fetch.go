package plan

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
)

// Fetch reads all the rows of a base table. Its columns are exposed under
// Alias, which is the table name itself when the query gives no alias.
type Fetch struct {
	Name  *sql.QualifiedName
	Alias *sql.QualifiedName
	Table sql.Table
}

// NewFetch creates a new Fetch node.
func NewFetch(name, alias *sql.QualifiedName, table sql.Table) *Fetch {
	return &Fetch{name, alias, table}
}

// Resolved implements the Resolvable interface.
func (*Fetch) Resolved() bool { return true }

// Children implements the Node interface.
func (*Fetch) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (f *Fetch) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(f, len(children), 0)
	}
	return f, nil
}

func (f *Fetch) String() string {
	if f.Alias == nil || f.Alias.Equals(f.Name, false) {
		return fmt.Sprintf("Fetch(%s)", f.Name)
	}
	return fmt.Sprintf("Fetch(%s AS %s)", f.Name, f.Alias)
}
