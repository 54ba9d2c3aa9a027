package schema

import (
	"regexp"
	"strings"

	"copy2insert/internal/dump"
)

// FromDump builds the dependency graph from a scanned dump: tables come from
// CREATE TABLE and COPY blocks, foreign keys from ALTER TABLE ONLY blocks.
// The result is in dependency order.
func FromDump(res *dump.ScanResult, schemaName string) []*Table {
	if schemaName == "" {
		schemaName = dump.DefaultSchema
	}
	qs := regexp.QuoteMeta(schemaName)
	createRe := regexp.MustCompile(`^CREATE TABLE ` + qs + `\.([\w"]+)`)
	fkRe := regexp.MustCompile(`(?s)^ALTER TABLE ONLY ` + qs + `\.([\w"]+)\s+ADD CONSTRAINT ([\w"]+) FOREIGN KEY \(([^)]+)\) REFERENCES ` + qs + `\.([\w"]+)\(([^)]+)\)`)

	tableMap := make(map[string]*Table)
	var tables []*Table
	add := func(name string) {
		if _, ok := tableMap[name]; ok {
			return
		}
		t := &Table{Name: name}
		tableMap[name] = t
		tables = append(tables, t)
	}

	for _, blk := range res.Schemas {
		if m := createRe.FindStringSubmatch(blk.Text); m != nil {
			add(m[1])
		}
	}
	for _, blk := range res.Data {
		if blk.Identified {
			add(blk.Table)
		}
	}

	for _, blk := range res.Constraints {
		m := fkRe.FindStringSubmatch(blk.Text)
		if m == nil {
			continue
		}
		t, ok := tableMap[m[1]]
		if !ok {
			continue
		}
		if _, ok := tableMap[m[4]]; !ok {
			continue
		}
		t.addDependency(&ForeignKey{
			Name:      m[2],
			Columns:   strings.TrimSpace(m[3]),
			RefTable:  m[4],
			RefColumn: strings.TrimSpace(m[5]),
		})
	}

	return SortByDependencies(tables)
}
