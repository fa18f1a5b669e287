package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUnresolvedReference is returned when a table, alias or column
	// cannot be found in any scope.
	ErrUnresolvedReference = errors.NewKind("unresolved reference: %s")

	// ErrAmbiguousReference is returned when a reference matches more than
	// one table source or column.
	ErrAmbiguousReference = errors.NewKind("ambiguous reference %q, it's present in all these sources: %v")

	// ErrDuplicateName is returned when a query contains a duplicate alias or
	// table name in the same scope.
	ErrDuplicateName = errors.NewKind("not unique table/alias: %s")

	// ErrMissingJoinCondition is returned when an explicit or outer join has
	// no ON condition.
	ErrMissingJoinCondition = errors.NewKind("%s between %s and %s requires an ON condition")

	// ErrInvalidGroupingExpression is returned when an expression cannot be
	// used for grouping, such as an aggregate inside GROUP BY.
	ErrInvalidGroupingExpression = errors.NewKind("invalid grouping expression: %s")

	// ErrUnsupportedConstruct is returned for valid SQL that the planner does
	// not support.
	ErrUnsupportedConstruct = errors.NewKind("unsupported construct: %s")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of a
	// node or expression is called with an invalid number of arguments.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")
)

var (
	// ErrNodeNotWritten is returned when the children are printed before the node.
	ErrNodeNotWritten = errors.NewKind("treeprinter: a child was written before the node")

	// ErrNodeAlreadyWritten is returned when the node has already been written.
	ErrNodeAlreadyWritten = errors.NewKind("treeprinter: node already written")

	// ErrChildrenAlreadyWritten is returned when the children have already been written.
	ErrChildrenAlreadyWritten = errors.NewKind("treeprinter: children already written")
)

// ErrDatabaseNotFound is returned when a database cannot be found.
var ErrDatabaseNotFound = errors.NewKind("database not found: %s")
