package planner

import (
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// planOr plans each side of a disjunction on its own copy of the
// fragments and combines the fragments touched by either side with a
// LogicalUnion. Fragments are shared by both sides through cache points.
func (jp *joinPlanner) planOr(or *expression.Or) error {
	span := jp.c.span("planner.or", opentracing.Tags{"predicate": or.String()})
	defer span.Finish()

	jp.setCachePoints()

	left, right := jp.clone(), jp.clone()
	if err := jp.planBranches(left, right, or); err != nil {
		return err
	}

	if len(left.live()) != len(right.live()) || left.joined || right.joined {
		if err := left.naturalJoinAll(); err != nil {
			return err
		}
		if err := right.naturalJoinAll(); err != nil {
			return err
		}
	}

	var touched []int
	for _, i := range jp.live() {
		if left.touched(i) || right.touched(i) {
			touched = append(touched, i)
		}
	}

	if len(touched) == 0 {
		return ErrInPlanning.New(fmt.Sprintf("no fragment changed by %s", or))
	}

	li, err := left.joinToSingle(touched)
	if err != nil {
		return err
	}

	ri, err := right.joinToSingle(touched)
	if err != nil {
		return err
	}

	union := plan.NewLogicalUnion(left.frags[li].plan, right.frags[ri].plan)

	var (
		vars []*sql.QualifiedName
		keys []string
	)
	for _, i := range touched {
		vars = append(vars, jp.frags[i].vars...)
		keys = append(keys, jp.frags[i].keys...)
	}

	idx := jp.add(union, vars, keys)
	jp.frags[idx].updated = true
	for _, i := range touched {
		jp.frags[i].mergedInto = idx
	}

	jp.joined = jp.joined || left.joined || right.joined
	jp.c.Log("union of %s over fragment %s", or, &jp.frags[idx])
	return nil
}

// planBranches plans each side of the disjunction on its planner. Both sides
// are planned concurrently when the planner allows it.
func (jp *joinPlanner) planBranches(left, right *joinPlanner, or *expression.Or) error {
	if jp.c.planner.Parallelism <= 1 {
		if err := left.planPredicates(or.Left); err != nil {
			return err
		}
		return right.planPredicates(or.Right)
	}

	g, ctx := jp.ctx.NewErrgroup()
	left.ctx, right.ctx = ctx, ctx
	g.Go(func() error { return left.planPredicates(or.Left) })
	g.Go(func() error { return right.planPredicates(or.Right) })
	err := g.Wait()

	// The group's context is cancelled by Wait.
	left.ctx, right.ctx = jp.ctx, jp.ctx
	return err
}

// setCachePoints wraps every live fragment with a cache point, unless it
// already has one.
func (jp *joinPlanner) setCachePoints() {
	for _, i := range jp.live() {
		if _, ok := jp.frags[i].plan.(*plan.CachePoint); ok {
			continue
		}
		jp.frags[i].plan = plan.NewCachePoint(jp.c.nextCachePoint(), jp.frags[i].plan)
	}
}

// touched reports whether the fragment at the given index changed or was
// merged since the planner was cloned.
func (jp *joinPlanner) touched(i int) bool {
	return !jp.frags[i].alive() || jp.frags[i].updated
}
