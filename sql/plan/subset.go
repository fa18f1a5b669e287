package plan

import (
	"strings"

	"github.com/src-d/go-sql-planner/sql"
)

// Subset is the final projection of a query block. It keeps the given
// columns of its child, in order, and renames them to Names.
type Subset struct {
	UnaryNode
	Columns []*sql.QualifiedName
	Names   []*sql.QualifiedName
}

// NewSubset creates a new Subset node. Columns and Names must have the same
// length.
func NewSubset(columns, names []*sql.QualifiedName, child sql.Node) *Subset {
	return &Subset{UnaryNode{child}, columns, names}
}

// WithNames returns a copy of the node with the output columns renamed.
func (s *Subset) WithNames(names []*sql.QualifiedName) *Subset {
	return NewSubset(s.Columns, names, s.Child)
}

// WithChildren implements the Node interface.
func (s *Subset) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSubset(s.Columns, s.Names, children[0]), nil
}

func (s *Subset) String() string {
	var cols = make([]string, len(s.Columns))
	for i, c := range s.Columns {
		if c.Equals(s.Names[i], false) {
			cols[i] = c.String()
		} else {
			cols[i] = c.String() + " AS " + s.Names[i].String()
		}
	}
	return unaryString("Subset", s.Child, "%s", strings.Join(cols, ", "))
}
