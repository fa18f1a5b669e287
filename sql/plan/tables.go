package plan

import (
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
)

// Tables returns the canonical names of all the base tables the plan reads,
// including those read by sub-queries, without duplicates and in order of
// appearance.
func Tables(node sql.Node) []*sql.QualifiedName {
	var tables []*sql.QualifiedName
	add := func(n *sql.QualifiedName) {
		for _, t := range tables {
			if t.Equals(n, false) {
				return
			}
		}
		tables = append(tables, n)
	}

	// Children are listed before the sub-queries of the node's expressions.
	var visit func(sql.Node)
	visit = func(node sql.Node) {
		if f, ok := node.(*Fetch); ok {
			add(f.Name)
		}

		for _, child := range node.Children() {
			visit(child)
		}

		if n, ok := node.(sql.Expressioner); ok {
			for _, e := range n.Expressions() {
				expression.Inspect(e, func(e sql.Expression) bool {
					if sq, ok := e.(*expression.Subquery); ok && sq.Plan != nil {
						visit(sq.Plan)
					}
					return true
				})
			}
		}
	}
	visit(node)

	return tables
}
