package planner

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
)

// ColumnKind is the classification of a select column.
type ColumnKind byte

const (
	// DirectColumn is a bare reference to a column of a source.
	DirectColumn ColumnKind = iota
	// ConstantColumn does not depend on any row.
	ConstantColumn
	// ComplexColumn is computed from the columns of a row.
	ComplexColumn
	// AggregateColumn is computed from the rows of a group.
	AggregateColumn
)

func (k ColumnKind) String() string {
	switch k {
	case DirectColumn:
		return "direct"
	case ConstantColumn:
		return "constant"
	case ComplexColumn:
		return "complex"
	case AggregateColumn:
		return "aggregate"
	default:
		return "invalid ColumnKind"
	}
}

// selectColumn is a prepared element of the select list.
type selectColumn struct {
	expr  sql.Expression
	alias string
	kind  ColumnKind
	// internal is the variable holding the value in the plan: the column
	// itself for direct columns, a function column otherwise.
	internal *sql.QualifiedName
	// output is the user visible name.
	output *sql.QualifiedName
}

func (sc *selectColumn) String() string {
	return fmt.Sprintf("%s %s AS %s", sc.kind, sc.expr, sc.output)
}

// columnSet holds the prepared select list of a block, and the function
// columns it needs.
type columnSet struct {
	columns   []*selectColumn
	functions []*selectColumn
	seq       int
}

func (cs *columnSet) internalNames() []*sql.QualifiedName {
	names := make([]*sql.QualifiedName, len(cs.columns))
	for i, c := range cs.columns {
		names[i] = c.internal
	}
	return names
}

func (cs *columnSet) outputNames() []*sql.QualifiedName {
	names := make([]*sql.QualifiedName, len(cs.columns))
	for i, c := range cs.columns {
		names[i] = c.output
	}
	return names
}

// byAlias returns the select column with the given alias, if any.
func (cs *columnSet) byAlias(alias string, ci bool) *selectColumn {
	if cs == nil {
		return nil
	}
	for _, c := range cs.columns {
		if c.alias != "" && sql.EqualIdentifiers(c.alias, alias, ci) {
			return c
		}
	}
	return nil
}

// byExpression returns the function column computing the same expression,
// if any.
func (cs *columnSet) byExpression(e sql.Expression) *selectColumn {
	text := e.String()
	for _, c := range cs.functions {
		if c.expr.String() == text {
			return c
		}
	}
	return nil
}

// prepareColumns expands the globs of the select list, qualifies every
// expression and classifies it.
func (c *compilation) prepareColumns(fs *fromSet, columns []ast.SelectColumn) (*columnSet, error) {
	cs := new(columnSet)
	fs.columns = cs

	for _, col := range columns {
		if star, ok := col.Expr.(*expression.Star); ok {
			sources, err := fs.globSources(star.Table)
			if err != nil {
				return nil, err
			}

			for _, s := range sources {
				for _, name := range s.vars() {
					cs.columns = append(cs.columns, &selectColumn{
						expr:     expression.NewVariable(name),
						kind:     DirectColumn,
						internal: name,
						output:   name,
					})
				}
			}
			continue
		}

		if col.Alias != "" && cs.byAlias(col.Alias, c.ci()) != nil {
			return nil, sql.ErrDuplicateName.New(col.Alias)
		}

		e, err := c.qualify(fs, col.Expr, noAliases)
		if err != nil {
			return nil, err
		}

		sc := &selectColumn{expr: e, alias: col.Alias}
		switch {
		case isVariable(e):
			sc.kind = DirectColumn
		case expression.ContainsAggregate(e, c.planner.Resolver):
			sc.kind = AggregateColumn
		case isBlockConstant(e):
			sc.kind = ConstantColumn
		default:
			sc.kind = ComplexColumn
		}

		if sc.kind == DirectColumn {
			sc.internal = e.(*expression.Variable).Name
			sc.output = sc.internal
		} else {
			name := col.Alias
			if name == "" {
				name = fmt.Sprintf("#f%d", cs.seq)
				cs.seq++
			}
			sc.internal = sql.FunctionTableName(name)
			sc.output = sql.NewQualifiedName(e.String())
			cs.functions = append(cs.functions, sc)
		}

		if col.Alias != "" {
			sc.output = sql.NewQualifiedName(col.Alias)
		}

		c.Log("select column %s", sc)
		cs.columns = append(cs.columns, sc)
	}

	return cs, nil
}

func isVariable(e sql.Expression) bool {
	_, ok := e.(*expression.Variable)
	return ok
}
