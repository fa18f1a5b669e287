package sql

// Column is the definition of a table column.
type Column struct {
	// Name is the name of the column.
	Name string
	// Type is the SQL type name of the column.
	Type string
	// Nullable is true if the column can contain NULL values.
	Nullable bool
	// Source is the name of the table this column came from.
	Source string
}

// Schema is the definition of a table.
type Schema []*Column

// Contains returns whether the schema contains a column with the given name.
func (s Schema) Contains(column string, source string) bool {
	return s.IndexOf(column, source) >= 0
}

// IndexOf returns the index of the given column in the schema or -1 if it's
// not present.
func (s Schema) IndexOf(column, source string) int {
	for i, col := range s {
		if col.Name == column && col.Source == source {
			return i
		}
	}
	return -1
}
