package fixture

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"copy2insert/internal/dump"
	"copy2insert/internal/schema"
)

// Generator writes a plain-text pg_dump look-alike: CREATE TABLE blocks,
// COPY blocks in alphabetical table order (which breaks FK order on purpose),
// then ALTER TABLE ONLY constraints.
type Generator struct {
	Schema string
	Rows   int
	// NullRate is the chance, in percent, that a nullable column is NULL.
	NullRate int
	// OnTable is called after each table's rows are generated.
	OnTable func(table string, rows int)

	faker *gofakeit.Faker
	ids   map[string][]string
}

// NewGenerator returns a generator; seed 0 picks a random seed.
func NewGenerator(schemaName string, rows int, seed int64) *Generator {
	if schemaName == "" {
		schemaName = dump.DefaultSchema
	}
	return &Generator{
		Schema:   schemaName,
		Rows:     rows,
		NullRate: 15,
		faker:    gofakeit.New(seed),
		ids:      make(map[string][]string),
	}
}

// Write generates all tables and writes the dump to w.
func (g *Generator) Write(w io.Writer, tables []Table) error {
	if err := validate(tables); err != nil {
		return err
	}

	// Rows are generated parents first so references point at real ids.
	data := make(map[string][][]string, len(tables))
	for _, name := range generationOrder(tables) {
		t := find(tables, name)
		data[name] = g.generateRows(t)
		if g.OnTable != nil {
			g.OnTable(name, len(data[name]))
		}
	}

	written := make([]Table, len(tables))
	copy(written, tables)
	sort.Slice(written, func(i, j int) bool { return written[i].Name < written[j].Name })

	bw := bufio.NewWriter(w)
	g.writeHeader(bw)
	for _, t := range written {
		g.writeCreate(bw, t)
	}
	for _, t := range written {
		g.writeCopy(bw, t, data[t.Name])
	}
	for _, t := range written {
		g.writeConstraints(bw, t)
	}
	bw.WriteString("--\n-- PostgreSQL database dump complete\n--\n\n")
	return bw.Flush()
}

func validate(tables []Table) error {
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		if t.Name == "" {
			return fmt.Errorf("fixture table without a name")
		}
		if names[t.Name] {
			return fmt.Errorf("fixture table %s defined twice", t.Name)
		}
		names[t.Name] = true
	}
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.Ref != "" && !names[c.Ref] {
				return fmt.Errorf("fixture column %s.%s references unknown table %s", t.Name, c.Name, c.Ref)
			}
		}
	}
	return nil
}

func generationOrder(tables []Table) []string {
	nodes := make([]*schema.Table, 0, len(tables))
	for _, t := range tables {
		deps := []string{}
		for _, c := range t.Columns {
			if c.Ref != "" && c.Ref != t.Name {
				deps = append(deps, c.Ref)
			}
		}
		nodes = append(nodes, &schema.Table{Name: t.Name, Dependencies: deps})
	}
	return schema.Names(schema.SortByDependencies(nodes))
}

func find(tables []Table, name string) Table {
	for _, t := range tables {
		if t.Name == name {
			return t
		}
	}
	return Table{}
}

func (g *Generator) generateRows(t Table) [][]string {
	rows := make([][]string, 0, g.Rows)
	for i := 0; i < g.Rows; i++ {
		id := g.faker.UUID()
		row := []string{id}
		for _, c := range t.Columns {
			row = append(row, g.value(t, c))
		}
		rows = append(rows, row)
		g.ids[t.Name] = append(g.ids[t.Name], id)
	}
	return rows
}

// value returns the COPY text form of one generated field.
func (g *Generator) value(t Table, c Column) string {
	if c.Nullable && g.faker.Number(1, 100) <= g.NullRate {
		return dump.NullMarker
	}
	if c.Ref != "" {
		ids := g.ids[c.Ref]
		if len(ids) == 0 {
			// Self reference on the first row, or a cycle.
			return dump.NullMarker
		}
		return ids[g.faker.Number(0, len(ids)-1)]
	}
	if len(c.Values) > 0 {
		return escapeCopy(g.faker.RandomString(c.Values))
	}

	typ := strings.ToLower(c.Type)
	name := strings.ToLower(c.Name)
	switch {
	case typ == "uuid":
		return g.faker.UUID()
	case typ == "date":
		return g.date().Format("2006-01-02")
	case strings.Contains(typ, "timestamp"):
		return g.date().Format("2006-01-02 15:04:05.000000-07")
	case strings.Contains(typ, "int"):
		return fmt.Sprintf("%d", g.faker.Number(1, 50000))
	case strings.Contains(typ, "numeric"), strings.Contains(typ, "decimal"), strings.Contains(typ, "double"), strings.Contains(typ, "real"):
		return fmt.Sprintf("%.2f", g.faker.Price(10, 5000))
	case strings.Contains(typ, "bool"):
		if g.faker.Bool() {
			return "t"
		}
		return "f"
	}

	switch {
	case strings.Contains(name, "email"):
		return escapeCopy(g.faker.Email())
	case strings.Contains(name, "nome"), strings.Contains(name, "name"):
		return escapeCopy(g.personName())
	case strings.Contains(name, "documento"):
		return g.faker.Numerify("###.###.###-##")
	case strings.Contains(name, "numero"):
		return g.faker.Numerify("SOL-####")
	case strings.Contains(name, "empresa"), strings.Contains(name, "company"):
		return escapeCopy(g.faker.Company())
	case strings.Contains(name, "local"), strings.Contains(name, "city"):
		return escapeCopy(g.faker.City())
	case strings.Contains(name, "justificativa"), strings.Contains(name, "observacoes"):
		return escapeCopy(g.freeText())
	}
	return escapeCopy(g.faker.Word())
}

// personName sometimes returns names with an apostrophe so that converted
// output exercises quote doubling.
func (g *Generator) personName() string {
	if g.faker.Number(1, 5) == 1 {
		return g.faker.FirstName() + " D'" + g.faker.LastName()
	}
	return g.faker.Name()
}

// freeText sometimes embeds a tab, newline or backslash, which COPY escapes.
func (g *Generator) freeText() string {
	s := g.faker.Sentence(6)
	switch g.faker.Number(1, 6) {
	case 1:
		return s + "\t" + g.faker.Word()
	case 2:
		return s + "\n" + g.faker.Sentence(3)
	case 3:
		return `C:\temp\` + g.faker.Word()
	}
	return s
}

func (g *Generator) date() time.Time {
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return g.faker.DateRange(end.AddDate(-2, 0, 0), end).UTC()
}

var copyEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// escapeCopy applies COPY text-format escaping.
func escapeCopy(s string) string {
	return copyEscaper.Replace(s)
}

func (g *Generator) writeHeader(w *bufio.Writer) {
	w.WriteString("--\n-- PostgreSQL database dump\n--\n\n")
	w.WriteString("SET statement_timeout = 0;\n")
	w.WriteString("SET client_encoding = 'UTF8';\n")
	w.WriteString("SET standard_conforming_strings = on;\n")
	w.WriteString("SELECT pg_catalog.set_config('search_path', '', false);\n\n")
	w.WriteString("SET default_tablespace = '';\n\n")
}

func (g *Generator) writeCreate(w *bufio.Writer, t Table) {
	fmt.Fprintf(w, "--\n-- Name: %s; Type: TABLE; Schema: %s; Owner: postgres\n--\n\n", t.Name, g.Schema)
	fmt.Fprintf(w, "CREATE TABLE %s.%s (\n", g.Schema, t.Name)
	defs := []string{"    id uuid NOT NULL"}
	for _, c := range t.Columns {
		def := fmt.Sprintf("    %s %s", c.Name, c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	w.WriteString(strings.Join(defs, ",\n"))
	w.WriteString("\n);\n\n\n")
	fmt.Fprintf(w, "ALTER TABLE %s.%s OWNER TO postgres;\n\n", g.Schema, t.Name)
}

func (g *Generator) writeCopy(w *bufio.Writer, t Table, rows [][]string) {
	cols := []string{"id"}
	for _, c := range t.Columns {
		cols = append(cols, c.Name)
	}
	fmt.Fprintf(w, "--\n-- Data for Name: %s; Type: TABLE DATA; Schema: %s; Owner: postgres\n--\n\n", t.Name, g.Schema)
	fmt.Fprintf(w, "COPY %s.%s (%s) FROM stdin;\n", g.Schema, t.Name, strings.Join(cols, ", "))
	for _, row := range rows {
		w.WriteString(strings.Join(row, "\t"))
		w.WriteString("\n")
	}
	w.WriteString("\\.\n\n\n")
}

func (g *Generator) writeConstraints(w *bufio.Writer, t Table) {
	fmt.Fprintf(w, "ALTER TABLE ONLY %s.%s\n    ADD CONSTRAINT %s_pkey PRIMARY KEY (id);\n\n\n", g.Schema, t.Name, t.Name)
	for _, c := range t.Columns {
		if c.Ref == "" {
			continue
		}
		fmt.Fprintf(w, "ALTER TABLE ONLY %s.%s\n    ADD CONSTRAINT %s_%s_fkey FOREIGN KEY (%s) REFERENCES %s.%s(id);\n\n\n",
			g.Schema, t.Name, t.Name, c.Name, c.Name, g.Schema, c.Ref)
	}
}
