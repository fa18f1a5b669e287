package planner

import (
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
)

// aliasMode tells how select aliases are resolved by qualify.
type aliasMode byte

const (
	// noAliases ignores select aliases, as in WHERE.
	noAliases aliasMode = iota
	// aliasesToVariables replaces an alias with the variable holding the
	// value of its column, as in HAVING and ORDER BY.
	aliasesToVariables
	// aliasesToExpressions replaces an alias with the expression of its
	// column, as in GROUP BY.
	aliasesToExpressions
)

// qualify resolves every column reference of the expression and plans its
// sub-queries. Columns are looked up in the block's sources, then in its
// select aliases when the mode allows it, then in the enclosing blocks.
func (c *compilation) qualify(fs *fromSet, e sql.Expression, mode aliasMode) (sql.Expression, error) {
	if e == nil {
		return nil, nil
	}
	return c.qualifyExpr(fs, e, mode, false)
}

func (c *compilation) qualifyExpr(
	fs *fromSet,
	e sql.Expression,
	mode aliasMode,
	argument bool,
) (sql.Expression, error) {
	switch e := e.(type) {
	case *expression.UnresolvedColumn:
		return c.resolveColumn(fs, e, mode)
	case *expression.Star:
		if !argument {
			return nil, sql.ErrUnsupportedConstruct.New(e.String() + " outside of the select list")
		}
		return e, nil
	case *expression.Subquery:
		if e.Plan != nil {
			return e, nil
		}

		n, correlated, err := c.planQuery(e.Select, fs)
		if err != nil {
			return nil, err
		}
		fs.propagate(correlated)

		return e.WithPlan(n, correlated), nil
	case *expression.Function:
		args := make([]sql.Expression, len(e.Args))
		for i, a := range e.Args {
			var err error
			args[i], err = c.qualifyExpr(fs, a, mode, true)
			if err != nil {
				return nil, err
			}
		}
		return expression.NewFunction(e.Name, e.Distinct, args...), nil
	default:
		children := e.Children()
		if len(children) == 0 {
			return e, nil
		}

		newChildren := make([]sql.Expression, len(children))
		for i, child := range children {
			var err error
			newChildren[i], err = c.qualifyExpr(fs, child, mode, false)
			if err != nil {
				return nil, err
			}
		}
		return e.WithChildren(newChildren...)
	}
}

func (c *compilation) resolveColumn(
	fs *fromSet,
	uc *expression.UnresolvedColumn,
	mode aliasMode,
) (sql.Expression, error) {
	e, err := fs.resolveLocal(uc)
	if err != nil || e != nil {
		return e, err
	}

	if mode != noAliases && uc.Table() == "" {
		if sc := fs.columns.byAlias(uc.Name(), c.ci()); sc != nil {
			if mode == aliasesToVariables {
				return expression.NewVariable(sc.internal), nil
			}
			return sc.expr, nil
		}
	}

	return fs.resolveOuter(uc)
}

// predicateVars returns the columns of the current block an expression
// depends on, including those referenced by its correlated sub-queries.
func predicateVars(e sql.Expression) []*sql.QualifiedName {
	vars := expression.Variables(e)
	expression.Inspect(e, func(e sql.Expression) bool {
		sq, ok := e.(*expression.Subquery)
		if !ok {
			return true
		}

		for _, cv := range sq.Correlated {
			if cv.Level != 1 {
				continue
			}
			vars = appendVar(vars, cv.Var.Name)
		}
		return true
	})
	return vars
}

// isBlockConstant reports whether the expression has the same value for
// every row of the current block.
func isBlockConstant(e sql.Expression) bool {
	if len(predicateVars(e)) > 0 {
		return false
	}

	constant := true
	expression.Inspect(e, func(e sql.Expression) bool {
		switch e.(type) {
		case *expression.UnresolvedColumn, *expression.Star:
			constant = false
		}
		return constant
	})
	return constant
}

// isCorrelated reports whether a sub-query depends on the rows of the
// current block.
func isCorrelated(sq *expression.Subquery) bool {
	for _, cv := range sq.Correlated {
		if cv.Level == 1 {
			return true
		}
	}
	return false
}

func appendVar(vars []*sql.QualifiedName, v *sql.QualifiedName) []*sql.QualifiedName {
	if containsVar(vars, v) {
		return vars
	}
	return append(vars, v)
}

func containsVar(vars []*sql.QualifiedName, v *sql.QualifiedName) bool {
	for _, n := range vars {
		if n.Equals(v, false) {
			return true
		}
	}
	return false
}

func containsAllVars(vars, subset []*sql.QualifiedName) bool {
	for _, v := range subset {
		if !containsVar(vars, v) {
			return false
		}
	}
	return true
}
