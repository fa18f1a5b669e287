// Package ast contains the parsed form of a SELECT statement that the
// planner compiles into a plan tree.
package ast

import (
	"fmt"
	"strings"

	"github.com/src-d/go-sql-planner/sql"
)

// JoinType is the way a FROM item is joined to the previous one.
type JoinType byte

const (
	// ImplicitJoin is a comma separated FROM item.
	ImplicitJoin JoinType = iota
	// InnerJoin is an explicit [INNER] JOIN.
	InnerJoin
	// LeftOuterJoin is a LEFT [OUTER] JOIN.
	LeftOuterJoin
	// RightOuterJoin is a RIGHT [OUTER] JOIN.
	RightOuterJoin
)

func (t JoinType) String() string {
	switch t {
	case ImplicitJoin:
		return "IMPLICIT JOIN"
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	default:
		return "invalid JoinType"
	}
}

// IsOuter reports whether the join preserves the rows of one side.
func (t JoinType) IsOuter() bool {
	return t == LeftOuterJoin || t == RightOuterJoin
}

// FromItem is an element of the FROM join chain. Join and On describe how
// the item is joined to the previous item of the chain, and are ignored for
// the first one.
type FromItem struct {
	// Table is the name of a base table. It is nil for derived tables.
	Table *sql.QualifiedName
	// Subquery is the SELECT of a derived table.
	Subquery *Select
	// Alias is the name the item is exposed as.
	Alias string
	Join  JoinType
	On    sql.Expression
}

// NewTable creates a base table item.
func NewTable(name *sql.QualifiedName, alias string) *FromItem {
	return &FromItem{Table: name, Alias: alias}
}

// NewDerived creates a derived table item.
func NewDerived(s *Select, alias string) *FromItem {
	return &FromItem{Subquery: s, Alias: alias}
}

// Joined returns a copy of the item joined to its predecessor.
func (f *FromItem) Joined(t JoinType, on sql.Expression) *FromItem {
	nf := *f
	nf.Join = t
	nf.On = on
	return &nf
}

func (f *FromItem) String() string {
	var s string
	if f.Table != nil {
		s = f.Table.String()
	} else {
		s = fmt.Sprintf("(%s)", f.Subquery)
	}
	if f.Alias != "" {
		s += " AS " + f.Alias
	}
	return s
}

// SelectColumn is an element of the SELECT list.
type SelectColumn struct {
	Expr  sql.Expression
	Alias string
}

func (c SelectColumn) String() string {
	if c.Alias == "" {
		return c.Expr.String()
	}
	return fmt.Sprintf("%s AS %s", c.Expr, c.Alias)
}

// OrderKey is an element of ORDER BY.
type OrderKey struct {
	Expr       sql.Expression
	Descending bool
}

// CompositeOp is the operator that combines two SELECT blocks.
type CompositeOp byte

const (
	// Union of both blocks.
	Union CompositeOp = iota
	// Intersect of both blocks.
	Intersect
	// Except returns the rows of the left block not in the right one.
	Except
)

func (o CompositeOp) String() string {
	switch o {
	case Union:
		return "UNION"
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "invalid CompositeOp"
	}
}

// Composite is the continuation of a SELECT block with another one.
type Composite struct {
	Op    CompositeOp
	All   bool
	Right *Select
}

// Select is a parsed table-select expression.
type Select struct {
	Distinct bool
	Columns  []SelectColumn
	From     []*FromItem
	Where    sql.Expression
	GroupBy  []sql.Expression
	Having   sql.Expression
	// Composite continues this block with another one. The chain is left
	// associative: a UNION b EXCEPT c is ((a UNION b) EXCEPT c).
	Composite *Composite
	// OrderBy applies to the whole composite chain.
	OrderBy []OrderKey
}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.String()
	}
	b.WriteString(strings.Join(cols, ", "))

	for i, f := range s.From {
		switch {
		case i == 0:
			b.WriteString(" FROM ")
		case f.Join == ImplicitJoin:
			b.WriteString(", ")
		default:
			fmt.Fprintf(&b, " %s ", f.Join)
		}
		b.WriteString(f.String())
		if i > 0 && f.On != nil {
			fmt.Fprintf(&b, " ON %s", f.On)
		}
	}

	if s.Where != nil {
		fmt.Fprintf(&b, " WHERE %s", s.Where)
	}
	if len(s.GroupBy) > 0 {
		keys := make([]string, len(s.GroupBy))
		for i, k := range s.GroupBy {
			keys[i] = k.String()
		}
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(keys, ", "))
	}
	if s.Having != nil {
		fmt.Fprintf(&b, " HAVING %s", s.Having)
	}
	if s.Composite != nil {
		fmt.Fprintf(&b, " %s ", s.Composite.Op)
		if s.Composite.All {
			b.WriteString("ALL ")
		}
		b.WriteString(s.Composite.Right.String())
	}
	if len(s.OrderBy) > 0 {
		keys := make([]string, len(s.OrderBy))
		for i, k := range s.OrderBy {
			keys[i] = k.Expr.String()
			if k.Descending {
				keys[i] += " DESC"
			}
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(keys, ", "))
	}
	return b.String()
}
