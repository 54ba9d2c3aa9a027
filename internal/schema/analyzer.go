package schema

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"copy2insert/internal/dialect"
)

// Analyze reads tables and foreign keys from a live database and returns the
// tables in dependency order.
func Analyze(db *sql.DB, d dialect.Dialect, schemaName string) ([]*Table, error) {
	target := d.GetSchemaName(schemaName)

	// Keys are upper-cased so Oracle's catalog case does not matter.
	tableMap := make(map[string]*Table)
	var tables []*Table

	rows, err := db.Query(d.GetTablesQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		t := &Table{Name: name}
		tableMap[strings.ToUpper(name)] = t
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	fkRows, err := db.Query(d.GetForeignKeysQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cName, colName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cName, &colName, &rTable, &rCol); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !rTable.Valid {
			continue
		}
		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}
		ref, ok := tableMap[strings.ToUpper(rTable.String)]
		if !ok {
			// Reference outside the analyzed schema.
			continue
		}
		t.addDependency(&ForeignKey{
			Name:      cName.String,
			Columns:   colName.String,
			RefTable:  ref.Name,
			RefColumn: rCol.String,
		})
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}

	return SortByDependencies(tables), nil
}

// SortByDependencies orders tables so that every table comes after the
// tables it references. Cycles are broken one table at a time, preferring
// the table with the fewest unresolved references that takes part in a
// two-table cycle; ties go to the alphabetically greatest name.
func SortByDependencies(tables []*Table) []*Table {
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	sorted := make([]*Table, 0, len(tables))
	placed := make(map[string]bool, len(tables))

	for len(sorted) < len(tables) {
		progress := false
		for _, t := range tables {
			if placed[t.Name] || !resolved(t, placed, byName) {
				continue
			}
			sorted = append(sorted, t)
			placed[t.Name] = true
			progress = true
		}
		if progress {
			continue
		}

		breaker, score := pickCycleBreaker(tables, placed, byName)
		if breaker == nil {
			slog.Error("Dependency sort stalled", "remaining", len(tables)-len(sorted))
			break
		}
		slog.Warn("Breaking circular dependency", "table", breaker.Name, "score", score)
		sorted = append(sorted, breaker)
		placed[breaker.Name] = true
	}
	return sorted
}

// resolved reports whether all known dependencies of t are placed.
// Dependencies on tables outside the set never block t.
func resolved(t *Table, placed map[string]bool, byName map[string]*Table) bool {
	for _, dep := range t.Dependencies {
		if _, known := byName[dep]; known && !placed[dep] {
			return false
		}
	}
	return true
}

func pickCycleBreaker(tables []*Table, placed map[string]bool, byName map[string]*Table) (*Table, int) {
	var best *Table
	bestScore := 0
	for _, t := range tables {
		if placed[t.Name] {
			continue
		}
		score := 0
		for _, dep := range t.Dependencies {
			if !placed[dep] {
				score -= 100
			}
		}
		if inTwoCycle(t, placed, byName) {
			score += 500
		}
		if best == nil || score > bestScore || (score == bestScore && t.Name > best.Name) {
			best, bestScore = t, score
		}
	}
	return best, bestScore
}

// inTwoCycle reports whether an unplaced dependency of t references t back.
func inTwoCycle(t *Table, placed map[string]bool, byName map[string]*Table) bool {
	for _, dep := range t.Dependencies {
		if placed[dep] {
			continue
		}
		other, ok := byName[dep]
		if !ok {
			continue
		}
		for _, back := range other.Dependencies {
			if back == t.Name {
				return true
			}
		}
	}
	return false
}
