package dump

import (
	"fmt"
	"strings"
)

// IssueKind names a non-fatal data-quality condition.
type IssueKind string

const (
	IssueMalformedHeader    IssueKind = "malformed_copy_header"
	IssueFieldCountMismatch IssueKind = "field_count_mismatch"
	IssueUnorderedTable     IssueKind = "unordered_table"
	IssueUnterminatedBlock  IssueKind = "unterminated_block"
)

// Issue is a condition the converter absorbed instead of failing on.
type Issue struct {
	Kind   IssueKind
	Line   int // 0 when not tied to a line
	Table  string
	Detail string
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Kind))
	if i.Line > 0 {
		fmt.Fprintf(&b, " at line %d", i.Line)
	}
	if i.Table != "" {
		fmt.Fprintf(&b, " (table %s)", i.Table)
	}
	if i.Detail != "" {
		b.WriteString(": ")
		b.WriteString(i.Detail)
	}
	return b.String()
}

// TableCount is the number of statements emitted for one table.
type TableCount struct {
	Table      string
	Statements int
}

// Report summarises one conversion.
type Report struct {
	SchemaBlocks     int
	ConstraintBlocks int
	DataBlocks       int
	RowsDecoded      int
	Emitted          []TableCount // in emission order
	Issues           []Issue
}

func (r *Report) addIssue(i Issue) {
	r.Issues = append(r.Issues, i)
}

// StatementsEmitted is the total over all emitted tables.
func (r *Report) StatementsEmitted() int {
	n := 0
	for _, tc := range r.Emitted {
		n += tc.Statements
	}
	return n
}

// IssuesOf filters the report's issues by kind.
func (r *Report) IssuesOf(kind IssueKind) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// StrictError is returned in strict mode when the conversion produced issues.
type StrictError struct {
	Issues []Issue
}

func (e *StrictError) Error() string {
	if len(e.Issues) == 1 {
		return "strict mode: " + e.Issues[0].String()
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("strict mode: %d issues: %s", len(e.Issues), strings.Join(msgs, "; "))
}
