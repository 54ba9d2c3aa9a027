package dialect

// Dialect supplies the catalog queries used to read a live database's
// tables and foreign keys. Each query takes the schema as its only argument.
type Dialect interface {
	// GetTablesQuery returns base table names.
	GetTablesQuery(schema string) string
	// GetForeignKeysQuery returns rows of
	// (table, constraint, column, referenced table, referenced column).
	GetForeignKeysQuery(schema string) string

	// GetSchemaName resolves the schema to query when none was given.
	GetSchemaName(input string) string
}
