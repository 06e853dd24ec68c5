package query

// Column is the definition of a table column.
type Column struct {
	// Name is the name of the column.
	Name string
	// Type is the declared type of the column.
	Type Type
	// Nullable is true if the column can contain nil values.
	Nullable bool
	// Source is the name of the table this column came from, if any.
	Source string
}

// Equals checks whether two columns are equal.
func (c *Column) Equals(c2 *Column) bool {
	return c.Name == c2.Name &&
		c.Source == c2.Source &&
		c.Nullable == c2.Nullable &&
		c.Type == c2.Type
}

// Schema is an ordered list of columns.
type Schema []*Column

// IndexOf returns the position of the named column, or -1 if it is not
// part of the schema.
func (s Schema) IndexOf(name string) int {
	for i, col := range s {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Contains reports whether the schema has a column with the given name.
func (s Schema) Contains(name string) bool {
	return s.IndexOf(name) >= 0
}

// Equals checks whether the given schema is equal to this one.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}

	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}

	return true
}
