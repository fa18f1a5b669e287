package planner

import (
	"fmt"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// ordering is the analysis of the ORDER BY clause of a block.
type ordering struct {
	fields []plan.SortField
	// computed keys, created just below the Sort node.
	functions namedFunctions
}

func sortField(e sql.Expression, key ast.OrderKey) plan.SortField {
	if key.Descending {
		return plan.SortField{Column: e, Order: plan.Descending, NullOrdering: plan.NullsLast}
	}
	return plan.SortField{Column: e, Order: plan.Ascending, NullOrdering: plan.NullsFirst}
}

// prepareOrder resolves the ORDER BY keys of a block. Aggregates that the
// select list doesn't compute are added to the grouping.
func (c *compilation) prepareOrder(fs *fromSet, keys []ast.OrderKey, g *grouping) (*ordering, error) {
	o := new(ordering)
	for i, key := range keys {
		e, err := c.orderKey(fs, key.Expr)
		if err != nil {
			return nil, err
		}

		if !isVariable(e) {
			if sc := fs.columns.byExpression(e); sc != nil {
				e = expression.NewVariable(sc.internal)
			} else {
				name := sql.FunctionTableName(fmt.Sprintf("#order%d", i))
				if expression.ContainsAggregate(e, c.planner.Resolver) {
					e = g.orderFunctions.add(e, name)
				} else {
					e = o.functions.add(e, name)
				}
			}
		}

		o.fields = append(o.fields, sortField(e, key))
	}
	return o, nil
}

// orderKey resolves an ORDER BY key. Ordinals and aliases refer to the
// value of their select column.
func (c *compilation) orderKey(fs *fromSet, key sql.Expression) (sql.Expression, error) {
	if n, ok := ordinal(key); ok {
		if n < 1 || n > len(fs.columns.columns) {
			return nil, sql.ErrUnresolvedReference.New(fmt.Sprintf("column %d in ORDER BY", n))
		}
		return expression.NewVariable(fs.columns.columns[n-1].internal), nil
	}

	return c.qualify(fs, key, aliasesToVariables)
}

// planOrder sorts the plan. A root Subset is bypassed so the sort can use
// columns the projection drops, and applied again on top of the Sort.
func (c *compilation) planOrder(o *ordering, n sql.Node) sql.Node {
	if o == nil || len(o.fields) == 0 {
		return n
	}

	subset, ok := n.(*plan.Subset)
	if ok {
		n = subset.Child
	}

	if !o.functions.empty() {
		n = plan.NewCreateFunctions(o.functions.exprs, o.functions.names, n)
	}

	n = plan.NewSort(o.fields, n)

	if ok {
		return plan.NewSubset(subset.Columns, subset.Names, n)
	}
	return n
}

// compositeOrder resolves the ORDER BY keys of a composite against its
// output columns.
func (c *compilation) compositeOrder(names []*sql.QualifiedName, keys []ast.OrderKey) (*ordering, error) {
	o := new(ordering)
	for _, key := range keys {
		if n, ok := ordinal(key.Expr); ok {
			if n < 1 || n > len(names) {
				return nil, sql.ErrUnresolvedReference.New(fmt.Sprintf("column %d in ORDER BY", n))
			}
			o.fields = append(o.fields, sortField(expression.NewVariable(names[n-1]), key))
			continue
		}

		uc, ok := key.Expr.(*expression.UnresolvedColumn)
		if !ok {
			return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("ORDER BY %s on a composite query", key.Expr))
		}

		q := uc.QualifiedName()
		var found []*sql.QualifiedName
		for _, name := range names {
			if name.Matches(q, c.ci()) {
				found = append(found, name)
			}
		}

		switch len(found) {
		case 0:
			return nil, sql.ErrUnresolvedReference.New(uc.String())
		case 1:
			o.fields = append(o.fields, sortField(expression.NewVariable(found[0]), key))
		default:
			var candidates = make([]string, len(found))
			for i, f := range found {
				candidates[i] = f.String()
			}
			return nil, sql.ErrAmbiguousReference.New(uc.String(), candidates)
		}
	}
	return o, nil
}
