package sql

import (
	"strings"
	"sync"
)

// Catalog holds databases and functions. It implements the Resolver
// interface used to compile queries.
type Catalog struct {
	Databases

	mu              sync.RWMutex
	functions       FunctionRegistry
	caseInsensitive bool
}

var _ Resolver = (*Catalog)(nil)

// NewCatalog returns a new empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Databases: Databases{},
		functions: NewFunctionRegistry(),
	}
}

// SetCaseInsensitive sets whether identifiers are compared ignoring case.
func (c *Catalog) SetCaseInsensitive(ci bool) {
	c.mu.Lock()
	c.caseInsensitive = ci
	c.mu.Unlock()
}

// IsCaseInsensitive implements the Resolver interface.
func (c *Catalog) IsCaseInsensitive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caseInsensitive
}

// AddDatabase adds a new database to the catalog.
func (c *Catalog) AddDatabase(db Database) {
	c.mu.Lock()
	c.Databases = append(c.Databases, db)
	c.mu.Unlock()
}

// RegisterFunction adds a function to the registry of the catalog. It can be
// called while queries are being compiled.
func (c *Catalog) RegisterFunction(name string, aggregate bool) {
	c.mu.Lock()
	c.functions.Register(name, aggregate)
	c.mu.Unlock()
}

// IsAggregate implements the Resolver interface.
func (c *Catalog) IsAggregate(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.functions.IsAggregate(name)
}

// Database returns the database with the given name.
func (c *Catalog) Database(name string) (Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Databases.Database(name, c.caseInsensitive)
}

// ResolveTable implements the Resolver interface. A name with a parent is
// looked up in that database. An unqualified name is looked up in the
// current database of the context or, when there is none, in every
// database of the catalog.
func (c *Catalog) ResolveTable(ctx *Context, name *QualifiedName) (*QualifiedName, Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == nil || name.Depth() > 2 {
		return nil, nil, ErrUnresolvedReference.New(name)
	}

	var dbs Databases
	switch {
	case name.Parent != nil:
		db, err := c.Databases.Database(name.Parent.Name, c.caseInsensitive)
		if err != nil {
			return nil, nil, ErrUnresolvedReference.New(name)
		}
		dbs = Databases{db}
	case ctx != nil && ctx.CurrentDatabase() != "":
		db, err := c.Databases.Database(ctx.CurrentDatabase(), c.caseInsensitive)
		if err != nil {
			return nil, nil, ErrUnresolvedReference.New(name)
		}
		dbs = Databases{db}
	default:
		dbs = c.Databases
	}

	var (
		found   Table
		foundDB Database
		matches []string
	)
	for _, db := range dbs {
		t, ok := lookupTable(db, name.Name, c.caseInsensitive)
		if !ok {
			continue
		}
		found, foundDB = t, db
		matches = append(matches, db.Name()+"."+t.Name())
	}

	switch len(matches) {
	case 0:
		return nil, nil, ErrUnresolvedReference.New(name)
	case 1:
		return NewQualifiedName(foundDB.Name(), found.Name()), found, nil
	default:
		return nil, nil, ErrAmbiguousReference.New(name.String(), matches)
	}
}

func lookupTable(db Database, name string, caseInsensitive bool) (Table, bool) {
	tables := db.Tables()
	if t, ok := tables[name]; ok {
		return t, true
	}

	if caseInsensitive {
		for n, t := range tables {
			if strings.EqualFold(n, name) {
				return t, true
			}
		}
	}

	return nil, false
}

// Databases is a collection of Database.
type Databases []Database

// Database returns the Database with the given name if it exists.
func (d Databases) Database(name string, caseInsensitive bool) (Database, error) {
	for _, db := range d {
		if EqualIdentifiers(db.Name(), name, caseInsensitive) {
			return db, nil
		}
	}

	return nil, ErrDatabaseNotFound.New(name)
}

// FunctionRegistry is used to know which functions are aggregations. It is
// not safe for concurrent writes; the Catalog guards its own registry.
type FunctionRegistry map[string]bool

// DefaultAggregates are the aggregate functions known by every new registry.
var DefaultAggregates = []string{
	"count", "sum", "avg", "min", "max", "group_concat",
	"stddev", "variance", "bit_and", "bit_or",
}

// NewFunctionRegistry creates a new registry with the default aggregates.
func NewFunctionRegistry() FunctionRegistry {
	r := make(FunctionRegistry)
	for _, name := range DefaultAggregates {
		r.Register(name, true)
	}
	return r
}

// Register adds a function to the registry.
func (r FunctionRegistry) Register(name string, aggregate bool) {
	r[strings.ToLower(name)] = aggregate
}

// IsAggregate reports whether the function is an aggregation. Function names
// are always case insensitive.
func (r FunctionRegistry) IsAggregate(name string) bool {
	return r[strings.ToLower(name)]
}
