package dump_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copy2insert/internal/dump"
)

func scan(t *testing.T, input string) *dump.ScanResult {
	t.Helper()
	lines, err := dump.ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	return dump.NewScanner("public").Scan(lines)
}

func TestReadLines_KeepsTerminators(t *testing.T) {
	lines, err := dump.ReadLines(strings.NewReader("a\r\nb\nc"))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "a\r\n", lines[0].Raw)
	assert.Equal(t, "a", lines[0].Content())
	assert.Equal(t, 2, lines[1].Number)
	assert.Equal(t, "c", lines[2].Raw)
	assert.Equal(t, "c", lines[2].Content())
}

func TestScanner_SchemaBlock(t *testing.T) {
	input := "SET x = 1;\n" +
		"CREATE TABLE public.usuarios (\n" +
		"    id uuid NOT NULL,\n" +
		"    nome text\n" +
		");\n" +
		"\n" +
		"CREATE TABLE other.skipped (\n" +
		"    id integer\n" +
		");\n"

	res := scan(t, input)
	require.Len(t, res.Schemas, 1)

	blk := res.Schemas[0]
	assert.Equal(t, dump.SchemaDefinition, blk.Kind)
	assert.Equal(t, 2, blk.StartLine)
	assert.Equal(t, 5, blk.EndLine)
	assert.Equal(t, "CREATE TABLE public.usuarios (\n    id uuid NOT NULL,\n    nome text\n);\n", blk.Text)
	assert.Empty(t, res.Issues)
}

func TestScanner_SchemaBlockNeedsExactTerminator(t *testing.T) {
	// ")" followed by options is not the terminator; the block runs on.
	input := "CREATE TABLE public.a (\n" +
		"    id integer\n" +
		") WITH (fillfactor=70);\n" +
		"  );  \n"

	res := scan(t, input)
	require.Len(t, res.Schemas, 1)
	assert.Equal(t, 4, res.Schemas[0].EndLine)
}

func TestScanner_UnterminatedSchemaBlockIsDropped(t *testing.T) {
	input := "CREATE TABLE public.x (\n" +
		"    id integer\n"

	res := scan(t, input)
	assert.Empty(t, res.Schemas)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, dump.IssueUnterminatedBlock, res.Issues[0].Kind)
	assert.Equal(t, 1, res.Issues[0].Line)
}

func TestScanner_ConstraintBlocks(t *testing.T) {
	input := "ALTER TABLE ONLY public.solicitacoes\n" +
		"    ADD CONSTRAINT solicitacoes_pkey PRIMARY KEY (id);\n" +
		"\n" +
		"ALTER TABLE ONLY public.usuarios ALTER COLUMN id SET DEFAULT 1;\n" +
		"ALTER TABLE public.usuarios OWNER TO postgres;\n"

	res := scan(t, input)
	require.Len(t, res.Constraints, 2)
	assert.Equal(t, "ALTER TABLE ONLY public.solicitacoes\n    ADD CONSTRAINT solicitacoes_pkey PRIMARY KEY (id);\n", res.Constraints[0].Text)
	// A single-line statement closes on its own line.
	assert.Equal(t, "ALTER TABLE ONLY public.usuarios ALTER COLUMN id SET DEFAULT 1;\n", res.Constraints[1].Text)
	assert.Equal(t, 4, res.Constraints[1].EndLine)
}

func TestScanner_CopyBlock(t *testing.T) {
	input := "COPY public.usuarios (id, nome, email) FROM stdin;\n" +
		"1\tAna\tana@example.com\n" +
		"2\t \t\\N\n" +
		"\\.\n" +
		"after\n"

	res := scan(t, input)
	require.Len(t, res.Data, 1)

	blk := res.Data[0]
	assert.True(t, blk.Identified)
	assert.Equal(t, "usuarios", blk.Table)
	assert.Equal(t, []string{"id", "nome", "email"}, blk.Columns)
	assert.Equal(t, "id, nome, email", blk.ColumnList)
	require.Len(t, blk.Rows, 2)
	assert.Equal(t, []string{"1", "Ana", "ana@example.com"}, blk.Rows[0].Fields)
	// Whitespace-only fields survive; only the line terminator is removed.
	assert.Equal(t, []string{"2", " ", `\N`}, blk.Rows[1].Fields)
	assert.Equal(t, 3, blk.Rows[1].Line)
	assert.Equal(t, 4, blk.EndLine)
}

func TestScanner_CopyRowsKeepTrailingEmptyField(t *testing.T) {
	input := "COPY public.t (a, b) FROM stdin;\r\n" +
		"x\t\r\n" +
		"\\.\r\n"

	res := scan(t, input)
	require.Len(t, res.Data, 1)
	require.Len(t, res.Data[0].Rows, 1)
	assert.Equal(t, []string{"x", ""}, res.Data[0].Rows[0].Fields)
}

func TestScanner_MalformedCopyHeaderSwallowsRows(t *testing.T) {
	input := "COPY public.\"Quoted\" (id) FROM stdin;\n" +
		"1\n" +
		"2\n" +
		"\\.\n" +
		"COPY public.ok (id) FROM stdin;\n" +
		"3\n" +
		"\\.\n"

	res := scan(t, input)
	require.Len(t, res.Data, 2)
	assert.False(t, res.Data[0].Identified)
	assert.Empty(t, res.Data[0].Rows)
	assert.True(t, res.Data[1].Identified)
	require.Len(t, res.Data[1].Rows, 1)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, dump.IssueMalformedHeader, res.Issues[0].Kind)
	assert.Equal(t, 1, res.Issues[0].Line)
}

func TestScanner_UnterminatedCopyBlockIsDropped(t *testing.T) {
	input := "COPY public.t (a) FROM stdin;\n" +
		"1\n"

	res := scan(t, input)
	assert.Empty(t, res.Data)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, dump.IssueUnterminatedBlock, res.Issues[0].Kind)
	assert.Equal(t, "t", res.Issues[0].Table)
}

func TestScanner_CategoriesAreIndependent(t *testing.T) {
	// A COPY row that happens to look like a CREATE TABLE opener is seen by the
	// schema machine too, exactly as a separate pass over the lines would.
	input := "COPY public.notes (body) FROM stdin;\n" +
		"CREATE TABLE public.fake (\n" +
		"\\.\n" +
		");\n"

	res := scan(t, input)
	require.Len(t, res.Data, 1)
	require.Len(t, res.Schemas, 1)
	assert.Equal(t, "CREATE TABLE public.fake (\n\\.\n);\n", res.Schemas[0].Text)
}

func TestScanner_CustomSchema(t *testing.T) {
	input := "CREATE TABLE app.a (\n);\n" +
		"COPY app.a (id) FROM stdin;\n1\n\\.\n" +
		"COPY public.a (id) FROM stdin;\n2\n\\.\n"

	lines, err := dump.ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	res := dump.NewScanner("app").Scan(lines)

	assert.Len(t, res.Schemas, 1)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "a", res.Data[0].Table)
	require.Len(t, res.Data[0].Rows, 1)
	assert.Equal(t, []string{"1"}, res.Data[0].Rows[0].Fields)
}

func TestScanner_CopyHeaderQuotedColumns(t *testing.T) {
	input := "COPY public.t (id, \"a,b\", \"say \"\"hi\"\"\") FROM stdin;\n" +
		"1\tx\ty\n" +
		"\\.\n"

	res := scan(t, input)
	require.Len(t, res.Data, 1)

	blk := res.Data[0]
	assert.True(t, blk.Identified)
	assert.Equal(t, `id, "a,b", "say ""hi"""`, blk.ColumnList)
	assert.Equal(t, []string{"id", `"a,b"`, `"say ""hi"""`}, blk.Columns)
}

func TestScanner_SchemaDefaultsToPublic(t *testing.T) {
	assert.Equal(t, dump.DefaultSchema, dump.NewScanner("").Schema())
	assert.Equal(t, "app", dump.NewScanner("app").Schema())
}
