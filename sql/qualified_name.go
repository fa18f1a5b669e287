package sql

import "strings"

// FunctionTable is the parent name of every computed column created while
// planning a query.
const FunctionTable = "FUNCTIONTABLE"

// QualifiedName is a parent-chained name such as schema.table.column.
type QualifiedName struct {
	Parent *QualifiedName
	Name   string
}

// NewQualifiedName creates a new name from its parts, outermost first. Empty
// leading parts are skipped.
func NewQualifiedName(parts ...string) *QualifiedName {
	var n *QualifiedName
	for _, p := range parts {
		if p == "" && n == nil {
			continue
		}
		n = &QualifiedName{Parent: n, Name: p}
	}
	return n
}

// FunctionTableName returns the name of a computed column.
func FunctionTableName(name string) *QualifiedName {
	return NewQualifiedName(FunctionTable, name)
}

// Parts returns the name parts, outermost first.
func (n *QualifiedName) Parts() []string {
	if n == nil {
		return nil
	}
	return append(n.Parent.Parts(), n.Name)
}

// Depth returns the number of parts of the name.
func (n *QualifiedName) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + n.Parent.Depth()
}

// IsFunction reports whether the name belongs to a computed column.
func (n *QualifiedName) IsFunction() bool {
	return n != nil && n.Parent != nil && n.Parent.Parent == nil &&
		n.Parent.Name == FunctionTable
}

func (n *QualifiedName) String() string {
	return strings.Join(n.Parts(), ".")
}

// Equals checks whether both names are the same, comparing every part
// ignoring case if caseInsensitive is set.
func (n *QualifiedName) Equals(o *QualifiedName, caseInsensitive bool) bool {
	if n == nil || o == nil {
		return n == o
	}

	if !EqualIdentifiers(n.Name, o.Name, caseInsensitive) {
		return false
	}

	return n.Parent.Equals(o.Parent, caseInsensitive)
}

// Matches checks whether o is a suffix of the name, so an unqualified or
// partially qualified reference matches a fully qualified name.
func (n *QualifiedName) Matches(o *QualifiedName, caseInsensitive bool) bool {
	for o != nil {
		if n == nil || !EqualIdentifiers(n.Name, o.Name, caseInsensitive) {
			return false
		}
		n, o = n.Parent, o.Parent
	}
	return true
}

// WithParent returns a copy of the name with its parent replaced.
func (n *QualifiedName) WithParent(p *QualifiedName) *QualifiedName {
	return &QualifiedName{Parent: p, Name: n.Name}
}

// EqualIdentifiers compares two identifiers ignoring case if caseInsensitive
// is set.
func EqualIdentifiers(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}
