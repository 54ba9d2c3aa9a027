package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DefaultSchema is the schema whose blocks are recognized when none is configured.
const DefaultSchema = "public"

const copyTerminator = `\.`

type scanState int

const (
	outside scanState = iota
	collecting
)

// ReadLines splits r into lines, keeping each line's terminator.
func ReadLines(r io.Reader) ([]Line, error) {
	br := bufio.NewReader(r)
	var lines []Line
	for n := 1; ; n++ {
		raw, err := br.ReadString('\n')
		if raw != "" {
			lines = append(lines, Line{Number: n, Raw: raw})
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", n, err)
		}
	}
}

// machine recognizes blocks of one kind. It is fed every line of the dump
// and moves between outside and collecting.
type machine struct {
	kind   Kind
	opens  func(l Line) bool
	closes func(l Line) bool

	// header is only set for bulk data; it parses the opening line.
	header func(l Line) (table, colList string, cols []string, ok bool)

	state scanState
	cur   Block
	text  strings.Builder
}

// feed advances the machine by one line and returns a block when one closes.
// The issue return is set when the line opened a bulk block with a header
// that did not match.
func (m *machine) feed(l Line) (blk *Block, issue *Issue) {
	if m.state == outside {
		if !m.opens(l) {
			return nil, nil
		}
		m.state = collecting
		m.cur = Block{Kind: m.kind, StartLine: l.Number}
		m.text.Reset()

		if m.header != nil {
			table, colList, cols, ok := m.header(l)
			m.cur.Table, m.cur.ColumnList, m.cur.Columns, m.cur.Identified = table, colList, cols, ok
			if !ok {
				issue = &Issue{
					Kind:   IssueMalformedHeader,
					Line:   l.Number,
					Detail: strings.TrimSpace(l.Content()),
				}
			}
			// The COPY header is never data, and never a terminator.
			return nil, issue
		}
		m.text.WriteString(l.Raw)
		if m.closes(l) {
			return m.finish(l), nil
		}
		return nil, nil
	}

	if m.kind == BulkData {
		if m.closes(l) {
			return m.finish(l), nil
		}
		if m.cur.Identified {
			m.cur.Rows = append(m.cur.Rows, Row{Line: l.Number, Fields: strings.Split(l.Content(), "\t")})
		}
		return nil, nil
	}

	m.text.WriteString(l.Raw)
	if m.closes(l) {
		return m.finish(l), nil
	}
	return nil, nil
}

func (m *machine) finish(l Line) *Block {
	blk := m.cur
	blk.EndLine = l.Number
	if m.kind != BulkData {
		blk.Text = m.text.String()
	}
	m.state = outside
	m.cur = Block{}
	m.text.Reset()
	return &blk
}

// abandon discards a block left open at end of input.
func (m *machine) abandon() *Issue {
	if m.state != collecting {
		return nil
	}
	issue := &Issue{
		Kind:   IssueUnterminatedBlock,
		Line:   m.cur.StartLine,
		Table:  m.cur.Table,
		Detail: fmt.Sprintf("%s block never closed; discarded", m.kind),
	}
	m.state = outside
	m.cur = Block{}
	m.text.Reset()
	return issue
}

// ScanResult holds the blocks of each kind in source order.
type ScanResult struct {
	Schemas     []Block
	Constraints []Block
	Data        []Block
	Issues      []Issue
	Lines       int
}

// Scanner finds schema, constraint and COPY blocks of a single schema.
type Scanner struct {
	schema string
	copyRe *regexp.Regexp
}

func NewScanner(schema string) *Scanner {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Scanner{
		schema: schema,
		copyRe: regexp.MustCompile(`^COPY ` + regexp.QuoteMeta(schema) + `\.(\w+) \((.+)\) FROM stdin;`),
	}
}

func (s *Scanner) Schema() string {
	return s.schema
}

func (s *Scanner) machines() []*machine {
	createPrefix := "CREATE TABLE " + s.schema + "."
	alterPrefix := "ALTER TABLE ONLY " + s.schema + "."
	copyPrefix := "COPY " + s.schema + "."

	return []*machine{
		{
			kind:   SchemaDefinition,
			opens:  func(l Line) bool { return strings.HasPrefix(l.Raw, createPrefix) },
			closes: func(l Line) bool { return strings.TrimSpace(l.Raw) == ");" },
		},
		{
			kind:   ConstraintDefinition,
			opens:  func(l Line) bool { return strings.HasPrefix(l.Raw, alterPrefix) },
			closes: func(l Line) bool { return strings.HasSuffix(strings.TrimSpace(l.Raw), ";") },
		},
		{
			kind:   BulkData,
			opens:  func(l Line) bool { return strings.HasPrefix(l.Raw, copyPrefix) },
			closes: func(l Line) bool { return strings.TrimSpace(l.Raw) == copyTerminator },
			header: s.parseCopyHeader,
		},
	}
}

// parseCopyHeader extracts the table and column list of a
// "COPY <schema>.<table> (<cols>) FROM stdin;" line. The column list is
// returned verbatim along with its split names.
func (s *Scanner) parseCopyHeader(l Line) (string, string, []string, bool) {
	m := s.copyRe.FindStringSubmatch(l.Content())
	if m == nil {
		return "", "", nil, false
	}
	return m[1], m[2], splitColumns(m[2]), true
}

// splitColumns splits a column list on commas outside double-quoted
// identifiers. Quotes are kept; "" inside a quoted name toggles twice.
func splitColumns(list string) []string {
	var cols []string
	quoted := false
	start := 0
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				cols = append(cols, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(cols, strings.TrimSpace(list[start:]))
}

// Scan walks lines once, feeding each line to the three block machines.
// Each machine sees every line, so the result equals three separate passes.
func (s *Scanner) Scan(lines []Line) *ScanResult {
	res := &ScanResult{Lines: len(lines)}
	ms := s.machines()

	for _, l := range lines {
		for _, m := range ms {
			blk, issue := m.feed(l)
			if issue != nil {
				res.Issues = append(res.Issues, *issue)
			}
			if blk == nil {
				continue
			}
			switch blk.Kind {
			case SchemaDefinition:
				res.Schemas = append(res.Schemas, *blk)
			case ConstraintDefinition:
				res.Constraints = append(res.Constraints, *blk)
			case BulkData:
				res.Data = append(res.Data, *blk)
			}
		}
	}

	for _, m := range ms {
		if issue := m.abandon(); issue != nil {
			res.Issues = append(res.Issues, *issue)
		}
	}
	return res
}
