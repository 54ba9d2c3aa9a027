package dump

import (
	"fmt"
	"strings"
)

// NullMarker is how COPY text format spells NULL.
const NullMarker = `\N`

// Literal renders a raw COPY field as a SQL literal.
func Literal(raw string) string {
	if raw == NullMarker {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(raw, "'", "''") + "'"
}

// Decoder turns bulk data blocks into insert statements.
type Decoder struct {
	Schema string
	// OnBlock, when set, is called after each block is decoded.
	OnBlock func(Block)
}

// Decode synthesizes one InsertStatement per row, grouped by table. Rows whose
// field count differs from the header are kept as they are and reported.
func (d *Decoder) Decode(blocks []Block) (*Inserts, []Issue) {
	schema := d.Schema
	if schema == "" {
		schema = DefaultSchema
	}

	inserts := NewInserts()
	var issues []Issue
	for _, blk := range blocks {
		if blk.Kind != BulkData {
			continue
		}
		if blk.Identified {
			issues = append(issues, d.decodeBlock(schema, blk, inserts)...)
		}
		if d.OnBlock != nil {
			d.OnBlock(blk)
		}
	}
	return inserts, issues
}

func (d *Decoder) decodeBlock(schema string, blk Block, inserts *Inserts) []Issue {
	var issues []Issue
	inserts.Ensure(blk.Table)
	for _, row := range blk.Rows {
		if len(row.Fields) != len(blk.Columns) {
			issues = append(issues, Issue{
				Kind:   IssueFieldCountMismatch,
				Line:   row.Line,
				Table:  blk.Table,
				Detail: fmt.Sprintf("%d fields for %d columns", len(row.Fields), len(blk.Columns)),
			})
		}
		values := make([]string, len(row.Fields))
		for i, f := range row.Fields {
			values[i] = Literal(f)
		}
		inserts.Append(InsertStatement{
			Schema:     schema,
			Table:      blk.Table,
			Columns:    blk.Columns,
			ColumnList: blk.ColumnList,
			Values:     values,
		})
	}
	return issues
}
