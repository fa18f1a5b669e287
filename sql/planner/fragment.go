package planner

import (
	"fmt"
	"strings"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
)

// link is the declared join between two neighbor fragments of the FROM
// chain. to is the index of the neighbor, or -1.
type link struct {
	to   int
	join ast.JoinType
	on   sql.Expression
}

var noLink = link{to: -1}

func (l link) external(other int) link {
	if l.to == other {
		return noLink
	}
	return l
}

// fragment is a partial plan covering one or more table sources.
type fragment struct {
	plan  sql.Node
	vars  []*sql.QualifiedName
	keys  []string
	left  link
	right link
	// updated is set when the plan changed since the last OR fork.
	updated bool
	// mergedInto is the fragment this one was merged into, -1 while alive.
	mergedInto int
}

func (f *fragment) alive() bool {
	return f.mergedInto < 0
}

func (f *fragment) String() string {
	return fmt.Sprintf("[%s]", strings.Join(f.keys, " "))
}

// joinPlanner holds the fragments of a query block in an arena. Adjacency
// is kept as arena indexes, so copying the arena copies the whole state.
type joinPlanner struct {
	c *compilation
	// ctx is the context of the branch being planned. Predicates stop being
	// applied once it is done.
	ctx    *sql.Context
	frags  []fragment
	joined bool
}

func newJoinPlanner(c *compilation) *joinPlanner {
	return &joinPlanner{c: c, ctx: c.ctx}
}

func (jp *joinPlanner) add(plan sql.Node, vars []*sql.QualifiedName, keys []string) int {
	jp.frags = append(jp.frags, fragment{
		plan:       plan,
		vars:       vars,
		keys:       keys,
		left:       noLink,
		right:      noLink,
		mergedInto: -1,
	})
	return len(jp.frags) - 1
}

// clone returns an independent copy of the planner with every updated flag
// cleared. Fragment slices are never modified in place, so they can be
// shared between copies.
func (jp *joinPlanner) clone() *joinPlanner {
	frags := make([]fragment, len(jp.frags))
	copy(frags, jp.frags)
	for i := range frags {
		frags[i].updated = false
	}
	return &joinPlanner{c: jp.c, ctx: jp.ctx, frags: frags}
}

// nested returns a planner over copies of the given fragments, without
// their links.
func (jp *joinPlanner) nested(idx ...int) *joinPlanner {
	np := newJoinPlanner(jp.c)
	np.ctx = jp.ctx
	for _, i := range idx {
		f := jp.frags[i]
		np.add(f.plan, f.vars, f.keys)
	}
	return np
}

func (jp *joinPlanner) live() []int {
	var idx []int
	for i := range jp.frags {
		if jp.frags[i].alive() {
			idx = append(idx, i)
		}
	}
	return idx
}

func (jp *joinPlanner) resolve(i int) int {
	for jp.frags[i].mergedInto >= 0 {
		i = jp.frags[i].mergedInto
	}
	return i
}

func (jp *joinPlanner) setPlan(i int, n sql.Node) {
	jp.frags[i].plan = n
	jp.frags[i].updated = true
}

// fragmentOf returns the live fragment covering the given variable.
func (jp *joinPlanner) fragmentOf(v *sql.QualifiedName) (int, error) {
	for _, i := range jp.live() {
		if containsVar(jp.frags[i].vars, v) {
			return i, nil
		}
	}
	return -1, ErrInPlanning.New(fmt.Sprintf("no fragment covers %s", v))
}

// fragmentsOf returns the distinct live fragments covering the given
// variables, in arena order.
func (jp *joinPlanner) fragmentsOf(vars []*sql.QualifiedName) ([]int, error) {
	var idx []int
	for _, i := range jp.live() {
		for _, v := range vars {
			if containsVar(jp.frags[i].vars, v) {
				idx = append(idx, i)
				break
			}
		}
	}

	for _, v := range vars {
		if _, err := jp.fragmentOf(v); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// merge replaces fragments a and b with a single fragment at a with the
// given plan. The merged fragment keeps the links of both to their other
// neighbors.
func (jp *joinPlanner) merge(a, b int, n sql.Node) (int, error) {
	fa, fb := jp.frags[a], jp.frags[b]

	left, otherLeft := fa.left.external(b), fb.left.external(a)
	if left.to >= 0 && otherLeft.to >= 0 {
		return -1, ErrInPlanning.New(fmt.Sprintf("fragments %s and %s have two left neighbors", &fa, &fb))
	}
	if left.to < 0 {
		left = otherLeft
	}

	right, otherRight := fa.right.external(b), fb.right.external(a)
	if right.to >= 0 && otherRight.to >= 0 {
		return -1, ErrInPlanning.New(fmt.Sprintf("fragments %s and %s have two right neighbors", &fa, &fb))
	}
	if right.to < 0 {
		right = otherRight
	}

	vars := make([]*sql.QualifiedName, 0, len(fa.vars)+len(fb.vars))
	vars = append(append(vars, fa.vars...), fb.vars...)
	keys := make([]string, 0, len(fa.keys)+len(fb.keys))
	keys = append(append(keys, fa.keys...), fb.keys...)

	jp.frags[a] = fragment{
		plan:       n,
		vars:       vars,
		keys:       keys,
		left:       left,
		right:      right,
		updated:    true,
		mergedInto: -1,
	}
	jp.frags[b].mergedInto = a
	jp.frags[b].left, jp.frags[b].right = noLink, noLink

	if left.to >= 0 {
		jp.frags[left.to].right.to = a
	}
	if right.to >= 0 {
		jp.frags[right.to].left.to = a
	}

	jp.c.Log("merged fragment %s", &jp.frags[a])
	if jp.c.planner.Debug {
		return a, jp.checkChain()
	}
	return a, nil
}

// checkChain verifies that the links between live fragments form simple
// chains.
func (jp *joinPlanner) checkChain() error {
	for _, i := range jp.live() {
		f := jp.frags[i]
		if f.left.to >= 0 && f.left.to == f.right.to {
			return ErrInPlanning.New(fmt.Sprintf("fragment %s is linked twice to the same neighbor", &f))
		}

		if l := f.left.to; l >= 0 {
			if !jp.frags[l].alive() || jp.frags[l].right.to != i {
				return ErrInPlanning.New(fmt.Sprintf("broken left link of fragment %s", &f))
			}
		}

		if r := f.right.to; r >= 0 {
			if !jp.frags[r].alive() || jp.frags[r].left.to != i {
				return ErrInPlanning.New(fmt.Sprintf("broken right link of fragment %s", &f))
			}
		}

		if f.left.to < 0 {
			steps := 0
			for j := f.right.to; j >= 0; j = jp.frags[j].right.to {
				steps++
				if steps > len(jp.frags) {
					return ErrInPlanning.New(fmt.Sprintf("cycle in the chain of fragment %s", &f))
				}
			}
		}
	}
	return nil
}

// single returns the plan of the only live fragment.
func (jp *joinPlanner) single() (sql.Node, error) {
	live := jp.live()
	if len(live) != 1 {
		return nil, ErrInPlanning.New(fmt.Sprintf("expecting one fragment, got %d", len(live)))
	}
	return jp.frags[live[0]].plan, nil
}
