package planner

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// namedFunctions is a list of computed columns.
type namedFunctions struct {
	exprs []sql.Expression
	names []*sql.QualifiedName
}

func (nf *namedFunctions) add(e sql.Expression, name *sql.QualifiedName) *expression.Variable {
	nf.exprs = append(nf.exprs, e)
	nf.names = append(nf.names, name)
	return expression.NewVariable(name)
}

func (nf *namedFunctions) addAll(other namedFunctions) {
	nf.exprs = append(nf.exprs, other.exprs...)
	nf.names = append(nf.names, other.names...)
}

func (nf *namedFunctions) empty() bool {
	return len(nf.exprs) == 0
}

// grouping is the analysis of the GROUP BY and HAVING clauses of a block.
type grouping struct {
	keys []sql.Expression
	// computed keys, created below the Group node.
	keyFunctions namedFunctions
	// aggregates needed by HAVING.
	having          sql.Expression
	havingFunctions namedFunctions
	// aggregates needed by ORDER BY.
	orderFunctions namedFunctions
}

// grouped reports whether the block needs a Group node.
func (g *grouping) grouped(cs *columnSet) bool {
	if len(g.keys) > 0 || !g.havingFunctions.empty() || !g.orderFunctions.empty() {
		return true
	}

	for _, f := range cs.functions {
		if f.kind == AggregateColumn {
			return true
		}
	}
	return false
}

// analyzeGrouping qualifies the GROUP BY keys and the HAVING predicate,
// extracting the aggregates of the latter into computed columns.
func (c *compilation) analyzeGrouping(fs *fromSet, s *ast.Select) (*grouping, error) {
	g := new(grouping)

	for i, key := range s.GroupBy {
		e, err := c.groupingKey(fs, key)
		if err != nil {
			return nil, err
		}

		if expression.ContainsAggregate(e, c.planner.Resolver) {
			return nil, sql.ErrInvalidGroupingExpression.New(key)
		}

		if isVariable(e) {
			g.keys = append(g.keys, e)
			continue
		}

		name := sql.FunctionTableName(fmt.Sprintf("#group%d", i))
		g.keys = append(g.keys, g.keyFunctions.add(e, name))
	}

	if s.Having == nil {
		return g, nil
	}

	having, err := c.qualify(fs, s.Having, aliasesToVariables)
	if err != nil {
		return nil, err
	}

	g.having = c.extractAggregates(having, &g.havingFunctions)
	c.Log("having %s with aggregates %s", g.having, g.havingFunctions.exprs)
	return g, nil
}

// groupingKey qualifies a GROUP BY key. Integer literals are ordinals of
// the select list, and aliases stand for the expression of their column.
func (c *compilation) groupingKey(fs *fromSet, key sql.Expression) (sql.Expression, error) {
	if n, ok := ordinal(key); ok {
		if n < 1 || n > len(fs.columns.columns) {
			return nil, sql.ErrUnresolvedReference.New(fmt.Sprintf("column %d in GROUP BY", n))
		}
		return fs.columns.columns[n-1].expr, nil
	}

	return c.qualify(fs, key, aliasesToExpressions)
}

// extractAggregates replaces the operands containing aggregates with
// variables of new computed columns.
func (c *compilation) extractAggregates(e sql.Expression, fns *namedFunctions) sql.Expression {
	if !expression.ContainsAggregate(e, c.planner.Resolver) {
		return e
	}

	switch e := e.(type) {
	case *expression.And:
		return expression.NewAnd(c.extractAggregates(e.Left, fns), c.extractAggregates(e.Right, fns))
	case *expression.Or:
		return expression.NewOr(c.extractAggregates(e.Left, fns), c.extractAggregates(e.Right, fns))
	case *expression.Not:
		return expression.NewNot(c.extractAggregates(e.Child, fns))
	case *expression.Comparison:
		return expression.NewComparison(
			e.Op,
			c.extractAggregates(e.Left, fns),
			c.extractAggregates(e.Right, fns),
		)
	case *expression.Arithmetic:
		return expression.NewArithmetic(
			c.extractAggregates(e.Left, fns),
			c.extractAggregates(e.Right, fns),
			e.Op,
		)
	default:
		name := sql.FunctionTableName(fmt.Sprintf("#having%d", len(fns.exprs)))
		return fns.add(e, name)
	}
}

// planGrouping adds the Group node, or the computation of the select
// functions when the block is not grouped, and the HAVING filter.
func (c *compilation) planGrouping(fs *fromSet, g *grouping, child sql.Node) (sql.Node, error) {
	cs := fs.columns

	var fns namedFunctions
	for _, f := range cs.functions {
		fns.add(f.expr, f.internal)
	}

	n := child
	if g.grouped(cs) {
		if !g.keyFunctions.empty() {
			n = plan.NewCreateFunctions(g.keyFunctions.exprs, g.keyFunctions.names, n)
		}

		fns.addAll(g.havingFunctions)
		fns.addAll(g.orderFunctions)
		n = plan.NewGroup(g.keys, fns.exprs, fns.names, n)
	} else if !fns.empty() {
		n = plan.NewCreateFunctions(fns.exprs, fns.names, n)
	}

	if g.having == nil {
		return n, nil
	}

	vars := fs.allVars()
	vars = append(vars, fns.names...)
	vars = append(vars, g.keyFunctions.names...)

	jp := newJoinPlanner(c)
	jp.add(n, vars, []string{"HAVING"})
	if err := jp.planPredicates(g.having); err != nil {
		return nil, err
	}
	return jp.single()
}

// ordinal returns the position referenced by an integer literal.
func ordinal(e sql.Expression) (int, bool) {
	lit, ok := e.(*expression.Literal)
	if !ok {
		return 0, false
	}

	switch lit.Value().(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToIntE(lit.Value())
		return n, err == nil
	default:
		return 0, false
	}
}
