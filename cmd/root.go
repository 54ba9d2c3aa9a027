package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

var RootCmd = &cobra.Command{
	Use:   "copy2insert",
	Short: "Rewrite COPY-based PostgreSQL dumps as ordered INSERT scripts",
	Long: `
  ___ ___  _ __  _   _  ____  _                     _
 / __/ _ \| '_ \| | | ||___ \(_)_ __  ___  ___ _ __| |_
| (_| (_) | |_) | |_| |  __) | | '_ \/ __|/ _ \ '__| __|
 \___\___/| .__/ \__, | / __/| | | | \__ \  __/ |  | |_
          |_|    |___/ |_____|_|_| |_|___/\___|_|   \__|

copy2insert turns the COPY ... FROM stdin blocks of a plain-text pg_dump into
one INSERT statement per row, ordered by a configured table order, so the dump
can be replayed where the COPY protocol is not available.
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: verbose,
		})
		slog.SetDefault(slog.New(handler))
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./copy2insert.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	RootCmd.PersistentFlags().String("schema", "public", "Schema whose CREATE TABLE, ALTER TABLE ONLY and COPY blocks are recognized")

	viper.BindPFlag("convert.schema", RootCmd.PersistentFlags().Lookup("schema"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the working directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("copy2insert")
		viper.SetConfigType("yaml")
	}

	// COPY2INSERT_CONVERT_SOURCE_PATH overrides convert.source_path, etc.
	viper.SetEnvPrefix("copy2insert")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
