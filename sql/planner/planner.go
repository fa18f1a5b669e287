// Package planner compiles parsed SELECT statements into plan trees.
//
// Compilation works one query block at a time. The FROM clause becomes a
// from-set of table sources and every source starts as its own plan
// fragment. WHERE and ON predicates are classified and applied in rank
// order, merging fragments when they join, until a single fragment remains.
// Grouping, HAVING, DISTINCT, the final projection, composite operators and
// ORDER BY are then built on top of it.
package planner

import (
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"gopkg.in/src-d/go-errors.v1"
)

const debugPlannerKey = "DEBUG_PLANNER"

// ErrInPlanning is returned when the planner reaches an inconsistent state.
var ErrInPlanning = errors.NewKind("error in planning: %s")

// Builder provides an easy way to generate Planner with custom options.
type Builder struct {
	resolver    sql.Resolver
	debug       bool
	parallelism int
}

// NewBuilder creates a new Builder from a specific resolver.
func NewBuilder(r sql.Resolver) *Builder {
	return &Builder{resolver: r}
}

// WithDebug activates debug on the Planner.
func (pb *Builder) WithDebug() *Builder {
	pb.debug = true

	return pb
}

// WithParallelism sets the parallelism level of the planner. With more than
// one, both branches of an OR are planned concurrently.
func (pb *Builder) WithParallelism(parallelism int) *Builder {
	pb.parallelism = parallelism
	return pb
}

// Build creates a new Planner using all previous data set to the Builder.
func (pb *Builder) Build() *Planner {
	_, debug := os.LookupEnv(debugPlannerKey)
	return &Planner{
		Debug:       debug || pb.debug,
		Parallelism: pb.parallelism,
		Resolver:    pb.resolver,
	}
}

// Planner compiles queries into plan trees. It holds no state between
// compilations and can be used concurrently.
type Planner struct {
	// Debug enables the logging of every planning step.
	Debug bool
	// Parallelism is the number of OR branches planned at the same time.
	Parallelism int
	// Resolver of tables and functions.
	Resolver sql.Resolver
}

// NewDefault creates a default Planner instance with all rules and
// configuration set.
func NewDefault(r sql.Resolver) *Planner {
	return NewBuilder(r).Build()
}

// Log prints an INFO message to stdout with the given message and args
// if the planner is in debug mode.
func (p *Planner) Log(msg string, args ...interface{}) {
	if p != nil && p.Debug {
		logrus.Infof(msg, args...)
	}
}

// Plan compiles the given select statement into a plan tree. The root of the
// tree is always a Subset node. No partial plan is returned on error.
func (p *Planner) Plan(ctx *sql.Context, s *ast.Select) (sql.Node, error) {
	span, ctx := ctx.Span("planner.Plan")
	defer span.Finish()

	c := newCompilation(p, ctx)
	c.Log("planning query: %s", s)

	n, _, err := c.planQuery(s, nil)
	if err != nil {
		c.Log("planning failed: %s", err)
		return nil, err
	}

	c.Log("plan:\n%s", n)
	return n, nil
}

// compilation holds the state of a single call to Plan. Counters are shared
// by OR branches planned concurrently.
type compilation struct {
	planner *Planner
	ctx     *sql.Context
	log     *logrus.Entry

	keySeq    int64
	cacheSeq  int64
	markerSeq int64
}

func newCompilation(p *Planner, ctx *sql.Context) *compilation {
	return &compilation{
		planner: p,
		ctx:     ctx,
		log:     ctx.Logger().WithField("compilation", uuid.New().String()),
	}
}

// Log prints an INFO message tagged with the compilation id if the planner
// is in debug mode.
func (c *compilation) Log(msg string, args ...interface{}) {
	if c.planner.Debug {
		c.log.Infof(msg, args...)
	}
}

func (c *compilation) span(name string, tags opentracing.Tags) opentracing.Span {
	span, _ := c.ctx.Span(name, tags)
	return span
}

func (c *compilation) ci() bool {
	return c.planner.Resolver.IsCaseInsensitive()
}

func (c *compilation) nextKey() int64 {
	return atomic.AddInt64(&c.keySeq, 1) - 1
}

func (c *compilation) nextCachePoint() int64 {
	return atomic.AddInt64(&c.cacheSeq, 1)
}

func (c *compilation) nextMarker() int64 {
	return atomic.AddInt64(&c.markerSeq, 1) - 1
}
