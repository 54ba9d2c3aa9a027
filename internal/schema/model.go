package schema

// Table is a node of the foreign-key dependency graph.
type Table struct {
	Name         string
	ForeignKeys  []*ForeignKey
	Dependencies []string // tables this one references, self excluded
}

type ForeignKey struct {
	Name      string
	Columns   string
	RefTable  string
	RefColumn string
}

// addDependency records fk and its referenced table once.
func (t *Table) addDependency(fk *ForeignKey) {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	if fk.RefTable == t.Name {
		return
	}
	for _, d := range t.Dependencies {
		if d == fk.RefTable {
			return
		}
	}
	t.Dependencies = append(t.Dependencies, fk.RefTable)
}

// Names returns the table names in slice order.
func Names(tables []*Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
