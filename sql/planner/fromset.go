package planner

import (
	"fmt"
	"strings"

	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"github.com/src-d/go-sql-planner/sql/plan"
)

// tableSource is a table referenced in a FROM clause, either a base table
// or a derived table.
type tableSource struct {
	// key is unique within a compilation.
	key string
	// name qualifies the columns of the source: the alias if any, the table
	// name otherwise.
	name string
	// canonical is the resolved database.table name of a base table.
	canonical *sql.QualifiedName
	alias     string
	columns   []string
	plan      sql.Node
}

func (s *tableSource) derived() bool {
	return s.canonical == nil
}

func (s *tableSource) matches(q *sql.QualifiedName, ci bool) bool {
	switch q.Depth() {
	case 1:
		return sql.EqualIdentifiers(s.name, q.Name, ci)
	case 2:
		return s.alias == "" && !s.derived() && s.canonical.Equals(q, ci)
	default:
		return false
	}
}

func (s *tableSource) vars() []*sql.QualifiedName {
	vars := make([]*sql.QualifiedName, len(s.columns))
	for i, c := range s.columns {
		vars[i] = sql.NewQualifiedName(s.name, c)
	}
	return vars
}

func (s *tableSource) String() string {
	if s.derived() {
		return fmt.Sprintf("%s(derived %s)", s.key, s.name)
	}
	return fmt.Sprintf("%s(%s AS %s)", s.key, s.canonical, s.name)
}

// fromSet holds the sources visible to a query block, and its select
// columns once they are prepared.
type fromSet struct {
	c       *compilation
	parent  *fromSet
	sources []*tableSource
	columns *columnSet
	// correlated are the references of this block to enclosing blocks.
	// Level 1 is the parent from-set.
	correlated []*expression.CorrelatedVariable
}

func newFromSet(c *compilation, parent *fromSet) *fromSet {
	return &fromSet{c: c, parent: parent}
}

// buildFromSet resolves every item of a FROM clause into a table source.
// Derived tables are planned with the enclosing block's parent as their
// parent, so they can't see the other sources of the same FROM clause.
func (c *compilation) buildFromSet(items []*ast.FromItem, parent *fromSet) (*fromSet, error) {
	fs := newFromSet(c, parent)
	if len(items) == 0 {
		return nil, sql.ErrUnsupportedConstruct.New("SELECT without FROM")
	}

	for _, item := range items {
		var (
			src *tableSource
			err error
		)
		if item.Subquery != nil {
			src, err = c.derivedSource(fs, item)
		} else {
			src, err = c.baseSource(item)
		}
		if err != nil {
			return nil, err
		}

		for _, s := range fs.sources {
			if sql.EqualIdentifiers(s.name, src.name, c.ci()) {
				return nil, sql.ErrDuplicateName.New(src.name)
			}
		}

		c.Log("from-set source %s", src)
		fs.sources = append(fs.sources, src)
	}

	return fs, nil
}

func (c *compilation) baseSource(item *ast.FromItem) (*tableSource, error) {
	canonical, table, err := c.planner.Resolver.ResolveTable(c.ctx, item.Table)
	if err != nil {
		return nil, err
	}

	name := item.Alias
	if name == "" {
		name = canonical.Name
	}

	schema := table.Schema()
	columns := make([]string, len(schema))
	for i, col := range schema {
		columns[i] = col.Name
	}

	return &tableSource{
		key:       fmt.Sprintf("T%d", c.nextKey()),
		name:      name,
		canonical: canonical,
		alias:     item.Alias,
		columns:   columns,
		plan:      plan.NewFetch(canonical, sql.NewQualifiedName(name), table),
	}, nil
}

func (c *compilation) derivedSource(fs *fromSet, item *ast.FromItem) (*tableSource, error) {
	if item.Alias == "" {
		return nil, sql.ErrUnsupportedConstruct.New("derived table without alias")
	}

	n, correlated, err := c.planQuery(item.Subquery, fs.parent)
	if err != nil {
		return nil, err
	}

	for _, cv := range correlated {
		fs.addCorrelated(cv.Var.Name, cv.Level)
	}

	subset, ok := n.(*plan.Subset)
	if !ok {
		return nil, ErrInPlanning.New(fmt.Sprintf("derived table %s is not projected", item.Alias))
	}

	columns := make([]string, len(subset.Names))
	names := make([]*sql.QualifiedName, len(subset.Names))
	// Repeated column names are kept: referencing one is ambiguous.
	for i, name := range subset.Names {
		columns[i] = name.Name
		names[i] = sql.NewQualifiedName(item.Alias, name.Name)
	}

	return &tableSource{
		key:     fmt.Sprintf("T%d", c.nextKey()),
		name:    item.Alias,
		alias:   item.Alias,
		columns: columns,
		plan:    subset.WithNames(names),
	}, nil
}

// source returns the source with the given key.
func (fs *fromSet) source(key string) *tableSource {
	for _, s := range fs.sources {
		if s.key == key {
			return s
		}
	}
	return nil
}

// allVars returns the variables of every column of every source.
func (fs *fromSet) allVars() []*sql.QualifiedName {
	var vars []*sql.QualifiedName
	for _, s := range fs.sources {
		vars = append(vars, s.vars()...)
	}
	return vars
}

// globSources returns the sources expanded by a star with the given table
// qualifier. An empty qualifier expands every source.
func (fs *fromSet) globSources(table string) ([]*tableSource, error) {
	if table == "" {
		return fs.sources, nil
	}

	q := sql.NewQualifiedName(strings.Split(table, ".")...)
	var found []*tableSource
	for _, s := range fs.sources {
		if s.matches(q, fs.c.ci()) {
			found = append(found, s)
		}
	}

	switch len(found) {
	case 0:
		return nil, sql.ErrUnresolvedReference.New(table + ".*")
	case 1:
		return found, nil
	default:
		var keys = make([]string, len(found))
		for i, s := range found {
			keys[i] = s.String()
		}
		return nil, sql.ErrAmbiguousReference.New(table+".*", keys)
	}
}

// findLocal returns the variables of the sources of this block matching the
// given column reference.
func (fs *fromSet) findLocal(uc *expression.UnresolvedColumn) []*sql.QualifiedName {
	var q *sql.QualifiedName
	if uc.Table() != "" {
		q = sql.NewQualifiedName(strings.Split(uc.Table(), ".")...)
	}

	var found []*sql.QualifiedName
	for _, s := range fs.sources {
		if q != nil && !s.matches(q, fs.c.ci()) {
			continue
		}
		for _, col := range s.columns {
			if sql.EqualIdentifiers(col, uc.Name(), fs.c.ci()) {
				found = append(found, sql.NewQualifiedName(s.name, col))
			}
		}
	}
	return found
}

// resolveLocal resolves a column reference among the sources of this block.
// It returns a nil expression when nothing matches.
func (fs *fromSet) resolveLocal(uc *expression.UnresolvedColumn) (sql.Expression, error) {
	found := fs.findLocal(uc)
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return expression.NewVariable(found[0]), nil
	default:
		var names = make([]string, len(found))
		for i, n := range found {
			names[i] = n.String()
		}
		return nil, sql.ErrAmbiguousReference.New(uc.String(), names)
	}
}

// resolveOuter resolves a column reference through the enclosing blocks and
// records the correlation.
func (fs *fromSet) resolveOuter(uc *expression.UnresolvedColumn) (sql.Expression, error) {
	level := 1
	for p := fs.parent; p != nil; p = p.parent {
		e, err := p.resolveLocal(uc)
		if err != nil {
			return nil, err
		}

		if v, ok := e.(*expression.Variable); ok {
			return fs.addCorrelated(v.Name, level), nil
		}
		level++
	}

	return nil, sql.ErrUnresolvedReference.New(uc.String())
}

func (fs *fromSet) addCorrelated(name *sql.QualifiedName, level int) *expression.CorrelatedVariable {
	for _, cv := range fs.correlated {
		if cv.Level == level && cv.Var.Name.Equals(name, false) {
			return cv
		}
	}

	cv := expression.NewCorrelatedVariable(name, level)
	fs.correlated = append(fs.correlated, cv)
	return cv
}

// propagate records the correlations of a sub-query of this block that
// refer to blocks above this one.
func (fs *fromSet) propagate(correlated []*expression.CorrelatedVariable) {
	for _, cv := range correlated {
		if cv.Level > 1 {
			fs.addCorrelated(cv.Var.Name, cv.Level-1)
		}
	}
}
