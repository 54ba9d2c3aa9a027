package cmd

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"copy2insert/internal/dialect"
	"copy2insert/internal/dump"
	"copy2insert/internal/fileio"
	"copy2insert/internal/schema"
)

var (
	fromDB   bool
	dsn      string
	driver   string
	audit    bool
	dbSchema string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Suggest a table_order from foreign keys, or audit the configured one",
	Long: `order reads foreign keys either from the dump's ALTER TABLE ONLY ... FOREIGN KEY
blocks or, with --from-db, from a live database catalog, and prints the tables in an
order where every table follows the tables it references. convert never computes this
order itself: copy the suggestion into convert.table_order.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("convert.source_path", cmd.Flags().Lookup("source"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var tables []*schema.Table
		var err error
		if fromDB {
			tables, err = tablesFromDB()
		} else {
			tables, err = tablesFromDump()
		}
		if err != nil {
			return err
		}

		if audit {
			return runAudit(tables)
		}
		return printSuggestion(tables)
	},
}

func init() {
	RootCmd.AddCommand(orderCmd)

	orderCmd.Flags().String("source", "", "Path of the dump to read foreign keys from")
	orderCmd.Flags().BoolVar(&fromDB, "from-db", false, "Read foreign keys from the active database in config (or --dsn)")
	orderCmd.Flags().StringVar(&dsn, "dsn", "", "Database Source Name, overrides the active database in config")
	orderCmd.Flags().StringVar(&driver, "driver", "", "database/sql driver: postgres, mysql, sqlserver, oracle (detected from --dsn when empty)")
	orderCmd.Flags().StringVar(&dbSchema, "db-schema", "", "Schema to introspect (default depends on the driver)")
	orderCmd.Flags().BoolVar(&audit, "audit", false, "Compare the configured convert.table_order against the foreign keys")
}

func tablesFromDump() ([]*schema.Table, error) {
	path := viper.GetString("convert.source_path")
	src, err := fileio.ReadSource(path)
	if err != nil {
		return nil, err
	}
	lines, err := dump.ReadLines(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to read dump %s: %w", path, err)
	}
	scanner := dump.NewScanner(viper.GetString("convert.schema"))
	res := scanner.Scan(lines)
	slog.Debug("Scanned dump for foreign keys", "path", path, "schema", scanner.Schema(), "tables", len(res.Schemas), "constraints", len(res.Constraints))
	return schema.FromDump(res, scanner.Schema()), nil
}

func tablesFromDB() ([]*schema.Table, error) {
	cfg := DBConfig{Name: "command line", DSN: dsn, Driver: driver}
	if cfg.DSN == "" {
		active, err := GetActiveDBConfig()
		if err != nil {
			return nil, fmt.Errorf("no --dsn given and %w", err)
		}
		cfg = *active
	}
	if cfg.Driver == "" {
		cfg.Driver = dialect.DetectDriver(cfg.DSN)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	target := dbSchema
	if target == "" && cfg.Driver == "mysql" {
		if err := db.QueryRow("SELECT DATABASE()").Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to get database name: %w", err)
		}
		if target == "" {
			return nil, fmt.Errorf("no database selected in DSN")
		}
	}

	slog.Info("Reading foreign keys", "database", cfg.Name, "driver", cfg.Driver, "schema", target)
	return schema.Analyze(db, dialect.GetDialect(cfg.Driver), target)
}

func printSuggestion(tables []*schema.Table) error {
	suggestion := map[string]map[string][]string{
		"convert": {"table_order": schema.Names(tables)},
	}
	out, err := yaml.Marshal(suggestion)
	if err != nil {
		return fmt.Errorf("failed to render table order: %w", err)
	}
	fmt.Print(string(out))

	for _, t := range tables {
		if len(t.Dependencies) > 0 {
			slog.Debug("Dependencies", "table", t.Name, "references", t.Dependencies)
		}
	}
	return nil
}

func runAudit(tables []*schema.Table) error {
	order := viper.GetStringSlice("convert.table_order")
	result := schema.AuditOrder(order, tables)

	fmt.Printf("🔍 Auditing table_order (%d entries) against %d tables\n", len(order), len(tables))
	for _, name := range result.Missing {
		fmt.Printf("[!] missing: %s (its rows would not be emitted)\n", name)
	}
	for _, name := range result.Unknown {
		fmt.Printf("[?] unknown: %s\n", name)
	}
	for _, v := range result.Violations {
		fmt.Printf("[!] %s is listed before %s, which it references\n", v.Table, v.DependsOn)
	}

	if !result.OK() {
		fmt.Fprintln(os.Stderr, "Suggested order:", schema.Names(tables))
		return fmt.Errorf("table_order audit failed: %d missing, %d out of order", len(result.Missing), len(result.Violations))
	}
	fmt.Println("[✓] table_order covers every table and respects every foreign key")
	return nil
}
