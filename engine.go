package sqle

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
	gocache "github.com/patrickmn/go-cache"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/parse"
	"github.com/src-d/go-sql-planner/sql/planner"
)

// Engine compiles SQL queries into plan trees.
type Engine struct {
	Catalog *sql.Catalog
	Planner *planner.Planner

	currentDB string
	cache     *gocache.Cache
}

// New creates a new Engine with the given configuration.
func New(cfg *Config) (*Engine, error) {
	c := sql.NewCatalog()
	c.SetCaseInsensitive(cfg.CaseInsensitive)

	b := planner.NewBuilder(c).WithParallelism(cfg.Parallelism)
	if cfg.Debug {
		b = b.WithDebug()
	}

	e := &Engine{
		Catalog:   c,
		Planner:   b.Build(),
		currentDB: cfg.CurrentDatabase,
	}

	if cfg.PlanCache.Enabled {
		expiration, cleanup, err := cfg.PlanCache.durations()
		if err != nil {
			return nil, err
		}
		e.cache = gocache.New(expiration, cleanup)
	}

	return e, nil
}

// NewDefault creates a new Engine with the default configuration and no
// plan cache.
func NewDefault() *Engine {
	e, _ := New(&Config{})
	return e
}

// AddDatabase adds the given database to the catalog. Cached plans are
// discarded because table resolution may change.
func (e *Engine) AddDatabase(db sql.Database) {
	e.Catalog.AddDatabase(db)
	if e.cache != nil {
		e.cache.Flush()
	}
}

type planKey struct {
	Query           string
	Database        string
	CaseInsensitive bool
}

// Plan parses and compiles the given query.
func (e *Engine) Plan(ctx *sql.Context, query string) (sql.Node, error) {
	span, ctx := ctx.Span("engine.Plan")
	defer span.Finish()

	if ctx.CurrentDatabase() == "" && e.currentDB != "" {
		ctx = ctx.WithCurrentDatabase(e.currentDB)
	}

	var key string
	if e.cache != nil {
		hash, err := hashstructure.Hash(planKey{
			Query:           query,
			Database:        ctx.CurrentDatabase(),
			CaseInsensitive: e.Catalog.IsCaseInsensitive(),
		}, nil)
		if err != nil {
			return nil, err
		}

		key = fmt.Sprint(hash)
		if n, ok := e.cache.Get(key); ok {
			ctx.Logger().WithField("query", query).Debug("plan found in cache")
			return n.(sql.Node), nil
		}
	}

	parsed, err := parse.Parse(ctx, query)
	if err != nil {
		return nil, err
	}

	n, err := e.Planner.Plan(ctx, parsed)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.SetDefault(key, n)
	}

	return n, nil
}

// Explain returns the printed plan of the given query.
func (e *Engine) Explain(ctx *sql.Context, query string) (string, error) {
	n, err := e.Plan(ctx, query)
	if err != nil {
		return "", err
	}

	return n.String(), nil
}
