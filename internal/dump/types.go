package dump

import (
	"fmt"
	"strings"
)

// Kind classifies a block found by the scanner.
type Kind int

const (
	SchemaDefinition Kind = iota
	ConstraintDefinition
	BulkData
)

func (k Kind) String() string {
	switch k {
	case SchemaDefinition:
		return "schema"
	case ConstraintDefinition:
		return "constraint"
	case BulkData:
		return "data"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Line is one line of the dump. Raw keeps the line terminator so that
// extracted blocks stay byte-for-byte identical to the source.
type Line struct {
	Number int
	Raw    string
}

// Content returns the line without its trailing "\n" or "\r\n".
func (l Line) Content() string {
	s := strings.TrimSuffix(l.Raw, "\n")
	return strings.TrimSuffix(s, "\r")
}

// Block is a contiguous run of lines of a single Kind.
type Block struct {
	Kind      Kind
	StartLine int
	EndLine   int

	// Schema and constraint blocks
	Text string

	// Bulk data blocks
	Table      string
	Columns    []string
	ColumnList string // header column list exactly as written
	Rows       []Row
	Identified bool // false when the COPY header did not match
}

// Row holds the raw, still-escaped field values of one COPY data line.
type Row struct {
	Line   int
	Fields []string
}

// InsertStatement is the replacement for one COPY row.
type InsertStatement struct {
	Schema  string
	Table   string
	Columns []string

	// ColumnList, when set, is rendered instead of joining Columns.
	ColumnList string
	Values     []string // rendered SQL literals
}

func (s InsertStatement) String() string {
	cols := s.ColumnList
	if cols == "" {
		cols = strings.Join(s.Columns, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s);",
		s.Schema, s.Table, cols, strings.Join(s.Values, ", "))
}

// Inserts groups statements per table. The sequence for a table is created
// on its first Append.
type Inserts struct {
	byTable map[string][]InsertStatement
	seen    []string
}

func NewInserts() *Inserts {
	return &Inserts{byTable: make(map[string][]InsertStatement)}
}

// Ensure registers a table with no statements yet. A table that is present
// but empty still gets its section header from the emitter.
func (in *Inserts) Ensure(table string) {
	if _, ok := in.byTable[table]; !ok {
		in.byTable[table] = []InsertStatement{}
		in.seen = append(in.seen, table)
	}
}

func (in *Inserts) Append(stmt InsertStatement) {
	in.Ensure(stmt.Table)
	in.byTable[stmt.Table] = append(in.byTable[stmt.Table], stmt)
}

// Table returns the statements of a table in row order.
func (in *Inserts) Table(name string) ([]InsertStatement, bool) {
	stmts, ok := in.byTable[name]
	return stmts, ok
}

// Tables lists tables in the order they were first seen.
func (in *Inserts) Tables() []string {
	out := make([]string, len(in.seen))
	copy(out, in.seen)
	return out
}

// Len is the total number of statements across all tables.
func (in *Inserts) Len() int {
	n := 0
	for _, stmts := range in.byTable {
		n += len(stmts)
	}
	return n
}
