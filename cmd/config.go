package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConvertConfig is the "convert" section of the config file.
type ConvertConfig struct {
	SourcePath      string   `mapstructure:"source_path"`
	DestinationPath string   `mapstructure:"destination_path"`
	Schema          string   `mapstructure:"schema"`
	TableOrder      []string `mapstructure:"table_order"`
	Strict          bool     `mapstructure:"strict"`
}

// DBConfig is one entry of the "databases" list, used to read foreign keys
// from a live database.
type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

func init() {
	viper.SetDefault("convert.source_path", "backup.sql")
	viper.SetDefault("convert.destination_path", "restore.sql")
	viper.SetDefault("convert.schema", "public")
	viper.SetDefault("convert.strict", false)
	viper.SetDefault("seed.rows", 20)
}

// GetConvertConfig resolves the convert settings (flag > env > config > default).
func GetConvertConfig() (*ConvertConfig, error) {
	cfg := &ConvertConfig{
		SourcePath:      viper.GetString("convert.source_path"),
		DestinationPath: viper.GetString("convert.destination_path"),
		Schema:          viper.GetString("convert.schema"),
		TableOrder:      viper.GetStringSlice("convert.table_order"),
		Strict:          viper.GetBool("convert.strict"),
	}
	if cfg.SourcePath == "" {
		return nil, fmt.Errorf("convert.source_path is required (via --source or config)")
	}
	if cfg.DestinationPath == "" {
		return nil, fmt.Errorf("convert.destination_path is required (via --dest or config)")
	}
	if samePath(cfg.SourcePath, cfg.DestinationPath) {
		return nil, fmt.Errorf("source and destination are the same file: %s", cfg.SourcePath)
	}
	return cfg, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}
