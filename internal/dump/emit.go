package dump

import (
	"bufio"
	"fmt"
	"io"
)

// Preamble opens every generated artifact.
const Preamble = "-- Restore script generated automatically from a COPY-based dump (ordered for foreign keys)\n" +
	"-- Replay it with any SQL client that accepts plain INSERT statements\n"

// Emitter writes the artifact: preamble, schema, constraints, then data in
// the configured table order. Tables missing from TableOrder are never written.
type Emitter struct {
	TableOrder []string
}

// Emit writes everything to w and returns the per-table statement counts in
// emission order.
func (e *Emitter) Emit(w io.Writer, ext Extracted, inserts *Inserts) ([]TableCount, error) {
	bw := bufio.NewWriter(w)

	bw.WriteString(Preamble)
	bw.WriteString("\n")
	for _, chunk := range ext.Schema {
		bw.WriteString(chunk)
	}
	for _, chunk := range ext.Constraints {
		bw.WriteString(chunk)
	}

	var counts []TableCount
	done := make(map[string]bool, len(e.TableOrder))
	for _, table := range e.TableOrder {
		if done[table] {
			continue
		}
		done[table] = true

		stmts, ok := inserts.Table(table)
		if !ok {
			continue
		}
		bw.WriteString("\n-- Data for " + table + "\n")
		for _, stmt := range stmts {
			bw.WriteString(stmt.String())
			bw.WriteString("\n")
		}
		counts = append(counts, TableCount{Table: table, Statements: len(stmts)})
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Unordered reports every decoded table that the emitter will skip because
// it is absent from TableOrder.
func (e *Emitter) Unordered(inserts *Inserts) []Issue {
	listed := make(map[string]bool, len(e.TableOrder))
	for _, table := range e.TableOrder {
		listed[table] = true
	}

	var issues []Issue
	for _, table := range inserts.Tables() {
		if listed[table] {
			continue
		}
		stmts, _ := inserts.Table(table)
		issues = append(issues, Issue{
			Kind:   IssueUnorderedTable,
			Table:  table,
			Detail: fmt.Sprintf("not listed in table_order; %d rows excluded", len(stmts)),
		})
	}
	return issues
}
