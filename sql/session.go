package sql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Context of the query compilation.
type Context struct {
	context.Context
	currentDB string
	query     string
	tracer    opentracing.Tracer
	logger    *logrus.Entry
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithCurrentDatabase sets the database used to resolve unqualified tables.
func WithCurrentDatabase(db string) ContextOption {
	return func(ctx *Context) {
		ctx.currentDB = db
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithQuery adds the given query to the context.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) {
		ctx.query = q
	}
}

// WithLogger sets the base log entry of the context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = l
	}
}

// NewContext creates a new query context. Options can be passed to configure
// the context. If some aspect of the context is not configured, the default
// value will be used.
// By default, the context will have no current database, a noop tracer and
// the standard logrus logger.
func NewContext(
	ctx context.Context,
	opts ...ContextOption,
) *Context {
	c := &Context{
		Context: ctx,
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// CurrentDatabase returns the database used to resolve unqualified tables.
func (c *Context) CurrentDatabase() string { return c.currentDB }

// Query returns the query string associated with this context.
func (c *Context) Query() string { return c.query }

// Logger returns the log entry of this context.
func (c *Context) Logger() *logrus.Entry { return c.logger }

// Span creates a new tracing span with the given context.
// It will return the span and a new context that should be passed to all
// children of this span.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

// WithCurrentDatabase returns a new context with the given current database.
func (c *Context) WithCurrentDatabase(db string) *Context {
	nc := *c
	nc.currentDB = db
	return &nc
}

// WithLogger returns a new context with the given log entry.
func (c *Context) WithLogger(l *logrus.Entry) *Context {
	nc := *c
	nc.logger = l
	return &nc
}

// NewErrgroup returns an errgroup bound to a child of this context.
func (c *Context) NewErrgroup() (*errgroup.Group, *Context) {
	eg, egCtx := errgroup.WithContext(c.Context)
	return eg, c.WithContext(egCtx)
}
