package schema

// Violation is a table listed before one of the tables it references.
type Violation struct {
	Table     string
	DependsOn string
}

// OrderAudit compares a configured table order with the dependency graph.
type OrderAudit struct {
	Missing    []string // tables with no position in the order; their rows are never emitted
	Unknown    []string // order entries that name no known table
	Violations []Violation
}

func (a OrderAudit) OK() bool {
	return len(a.Missing) == 0 && len(a.Violations) == 0
}

// AuditOrder checks order against tables. A dependency on a table that is
// itself missing from the order counts as missing, not as a violation.
func AuditOrder(order []string, tables []*Table) OrderAudit {
	var audit OrderAudit

	pos := make(map[string]int, len(order))
	for i, name := range order {
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
		if _, ok := pos[t.Name]; !ok {
			audit.Missing = append(audit.Missing, t.Name)
		}
	}
	for _, name := range order {
		if !known[name] {
			audit.Unknown = append(audit.Unknown, name)
		}
	}

	for _, t := range tables {
		tPos, ok := pos[t.Name]
		if !ok {
			continue
		}
		for _, dep := range t.Dependencies {
			depPos, ok := pos[dep]
			if ok && depPos > tPos {
				audit.Violations = append(audit.Violations, Violation{Table: t.Name, DependsOn: dep})
			}
		}
	}
	return audit
}
