package planner

import (
	"fmt"
	"sort"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// planJoins builds the single plan covering every source of the from-set,
// applying the ON and WHERE predicates.
func (c *compilation) planJoins(
	fs *fromSet,
	items []*ast.FromItem,
	where sql.Expression,
) (sql.Node, error) {
	span := c.span("planner.joins", opentracing.Tags{"sources": len(fs.sources)})
	defer span.Finish()

	jp, folded, err := c.setupJoins(fs, items)
	if err != nil {
		return nil, err
	}

	if err := jp.planOuterJoins(); err != nil {
		return nil, err
	}

	var preds []sql.Expression
	preds = append(preds, where)
	preds = append(preds, folded...)
	preds = append(preds, jp.detachLinks()...)

	if err := jp.planPredicates(expression.JoinAnd(preds...)); err != nil {
		return nil, err
	}

	if err := jp.naturalJoinAll(); err != nil {
		return nil, err
	}

	return jp.single()
}

// setupJoins creates one fragment per source. When every join of the FROM
// chain is inner, their ON conditions are returned to be planned with the
// WHERE clause. Otherwise explicit joins are linked so outer joins can be
// resolved first.
func (c *compilation) setupJoins(fs *fromSet, items []*ast.FromItem) (*joinPlanner, []sql.Expression, error) {
	jp := newJoinPlanner(c)
	for _, s := range fs.sources {
		jp.add(s.plan, s.vars(), []string{s.key})
	}

	ons := make([]sql.Expression, len(items))
	var outer bool
	for i, item := range items {
		if i == 0 || item.Join == ast.ImplicitJoin {
			continue
		}

		if item.On == nil {
			return nil, nil, sql.ErrMissingJoinCondition.New(item.Join, items[i-1], item)
		}

		on, err := c.qualify(fs, item.On, noAliases)
		if err != nil {
			return nil, nil, err
		}
		ons[i] = on

		outer = outer || item.Join.IsOuter()
	}

	var folded []sql.Expression
	for i, item := range items {
		if ons[i] == nil {
			continue
		}

		if !outer {
			folded = append(folded, ons[i])
			continue
		}

		jp.frags[i-1].right = link{to: i, join: item.Join, on: ons[i]}
		jp.frags[i].left = link{to: i - 1, join: item.Join, on: ons[i]}
	}

	return jp, folded, nil
}

// planOuterJoins resolves the outer joins of the FROM chain from left to
// right. When the ON condition refers to sources on the left of the joined
// pair, the left side is first extended along its inner joins.
func (jp *joinPlanner) planOuterJoins() error {
	for {
		l := -1
		for _, i := range jp.live() {
			if r := jp.frags[i].right; r.to >= 0 && r.join.IsOuter() {
				l = i
				break
			}
		}

		if l < 0 {
			return nil
		}

		r := jp.frags[l].right.to
		vars := predicateVars(jp.frags[l].right.on)
		for !jp.covers(vars, l, r) {
			prev := jp.frags[l].left
			if prev.to < 0 {
				return sql.ErrUnsupportedConstruct.New(fmt.Sprintf(
					"ON condition %s references columns outside of the join",
					jp.frags[l].right.on,
				))
			}

			var err error
			if l, err = jp.joinLinked(prev.to, l); err != nil {
				return err
			}
		}

		if _, err := jp.joinLinked(l, r); err != nil {
			return err
		}
	}
}

func (jp *joinPlanner) covers(vars []*sql.QualifiedName, idx ...int) bool {
	var all []*sql.QualifiedName
	for _, i := range idx {
		all = append(all, jp.frags[i].vars...)
	}
	return containsAllVars(all, vars)
}

// detachLinks removes the remaining links between fragments and returns
// their ON conditions. Only inner joins remain once outer joins are
// resolved, and their conditions can be applied as any other predicate.
func (jp *joinPlanner) detachLinks() []sql.Expression {
	var preds []sql.Expression
	for _, i := range jp.live() {
		if r := jp.frags[i].right; r.to >= 0 {
			preds = append(preds, r.on)
		}
	}

	for i := range jp.frags {
		jp.frags[i].left, jp.frags[i].right = noLink, noLink
	}

	return preds
}

// joinLinked joins a fragment with its right neighbor using the declared
// join between them.
func (jp *joinPlanner) joinLinked(a, b int) (int, error) {
	l := jp.frags[a].right
	if l.to != b {
		return -1, ErrInPlanning.New(fmt.Sprintf("fragments %s and %s are not adjacent", &jp.frags[a], &jp.frags[b]))
	}

	np := jp.nested(a, b)

	var name string
	if l.join.IsOuter() {
		name = fmt.Sprintf("outer%d", jp.c.nextMarker())
		marked := 0
		if l.join == ast.RightOuterJoin {
			marked = 1
		}
		np.frags[marked].plan = plan.NewMarker(name, np.frags[marked].plan)
	}

	if err := np.planPredicates(l.on); err != nil {
		return -1, err
	}

	if err := np.naturalJoinAll(); err != nil {
		return -1, err
	}

	n, err := np.single()
	if err != nil {
		return -1, err
	}

	if name != "" {
		n = plan.NewLeftOuterJoin(name, n)
	}

	jp.joined = true
	jp.c.Log("%s of %s and %s on %s", l.join, &jp.frags[a], &jp.frags[b], l.on)
	return jp.merge(a, b, n)
}

// naturallyJoin merges two fragments. Adjacent fragments are joined with
// their declared join, others with a cartesian product.
func (jp *joinPlanner) naturallyJoin(a, b int) (int, error) {
	a, b = jp.resolve(a), jp.resolve(b)
	if a == b {
		return a, nil
	}

	if a > b {
		a, b = b, a
	}

	if jp.frags[a].right.to == b {
		return jp.joinLinked(a, b)
	}

	jp.joined = true
	return jp.merge(a, b, plan.NewNaturalJoin(jp.frags[a].plan, jp.frags[b].plan))
}

// joinToSingle merges the given fragments into one and returns its index.
func (jp *joinPlanner) joinToSingle(idx []int) (int, error) {
	if len(idx) == 0 {
		return -1, ErrInPlanning.New("nothing to join")
	}

	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Ints(sorted)

	var err error
	result := sorted[0]
	for _, i := range sorted[1:] {
		if result, err = jp.naturallyJoin(result, i); err != nil {
			return -1, err
		}
	}
	return jp.resolve(result), nil
}

// joinAllWithVariables merges every fragment covering the given variables
// into one and returns its index.
func (jp *joinPlanner) joinAllWithVariables(vars []*sql.QualifiedName) (int, error) {
	idx, err := jp.fragmentsOf(vars)
	if err != nil {
		return -1, err
	}
	return jp.joinToSingle(idx)
}

// naturalJoinAll merges every live fragment into one.
func (jp *joinPlanner) naturalJoinAll() error {
	live := jp.live()
	if len(live) <= 1 {
		return nil
	}
	_, err := jp.joinToSingle(live)
	return err
}
