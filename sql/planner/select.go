package planner

import (
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// planQuery plans a select statement, with its composite chain if any, and
// returns its correlations to the enclosing blocks.
func (c *compilation) planQuery(
	s *ast.Select,
	parent *fromSet,
) (sql.Node, []*expression.CorrelatedVariable, error) {
	if s.Composite == nil {
		return c.planBlock(s, parent, s.OrderBy)
	}

	left, correlated, err := c.planBlock(s, parent, nil)
	if err != nil {
		return nil, nil, err
	}

	for comp := s.Composite; comp != nil; comp = comp.Right.Composite {
		if len(comp.Right.OrderBy) > 0 {
			return nil, nil, sql.ErrUnsupportedConstruct.New("ORDER BY inside a composite operand")
		}

		right, rc, err := c.planBlock(comp.Right, parent, nil)
		if err != nil {
			return nil, nil, err
		}
		correlated = mergeCorrelated(correlated, rc)

		ln, rn := outputNames(left), outputNames(right)
		if len(ln) != len(rn) {
			return nil, nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf(
				"%s of blocks with %d and %d columns", comp.Op, len(ln), len(rn),
			))
		}

		c.Log("%s of blocks with columns %v and %v", comp.Op, ln, rn)
		left = plan.NewSubset(ln, ln, plan.NewComposite(comp.Op, comp.All, left, right))
	}

	if len(s.OrderBy) == 0 {
		return left, correlated, nil
	}

	o, err := c.compositeOrder(outputNames(left), s.OrderBy)
	if err != nil {
		return nil, nil, err
	}

	return c.planOrder(o, left), correlated, nil
}

// planBlock plans a single select block. The ORDER BY keys are given apart
// because they belong to the whole composite chain the block starts.
func (c *compilation) planBlock(
	s *ast.Select,
	parent *fromSet,
	orderBy []ast.OrderKey,
) (sql.Node, []*expression.CorrelatedVariable, error) {
	span := c.span("planner.select", opentracing.Tags{"sources": len(s.From)})
	defer span.Finish()

	fs, err := c.buildFromSet(s.From, parent)
	if err != nil {
		return nil, nil, err
	}

	cs, err := c.prepareColumns(fs, s.Columns)
	if err != nil {
		return nil, nil, err
	}

	g, err := c.analyzeGrouping(fs, s)
	if err != nil {
		return nil, nil, err
	}

	o, err := c.prepareOrder(fs, orderBy, g)
	if err != nil {
		return nil, nil, err
	}

	where, err := c.qualify(fs, s.Where, noAliases)
	if err != nil {
		return nil, nil, err
	}

	n, err := c.planJoins(fs, s.From, where)
	if err != nil {
		return nil, nil, err
	}

	if n, err = c.planGrouping(fs, g, n); err != nil {
		return nil, nil, err
	}

	if s.Distinct {
		n = plan.NewDistinct(cs.internalNames(), n)
	}

	n = plan.NewSubset(cs.internalNames(), cs.outputNames(), n)
	return c.planOrder(o, n), fs.correlated, nil
}

func outputNames(n sql.Node) []*sql.QualifiedName {
	if s, ok := n.(*plan.Subset); ok {
		return s.Names
	}
	return nil
}

func mergeCorrelated(a, b []*expression.CorrelatedVariable) []*expression.CorrelatedVariable {
	for _, cv := range b {
		found := false
		for _, other := range a {
			if other.Level == cv.Level && other.Var.Name.Equals(cv.Var.Name, false) {
				found = true
				break
			}
		}
		if !found {
			a = append(a, cv)
		}
	}
	return a
}
