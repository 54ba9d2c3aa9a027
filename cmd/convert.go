package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"copy2insert/internal/dump"
	"copy2insert/internal/fileio"
)

var (
	tableOrder   []string
	showProgress bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a COPY-based dump into an ordered INSERT script",
	// order binds its own --source to the same key, so bind at run time.
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("convert.source_path", cmd.Flags().Lookup("source"))
		viper.BindPFlag("convert.destination_path", cmd.Flags().Lookup("dest"))
		viper.BindPFlag("convert.strict", cmd.Flags().Lookup("strict"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConvertConfig()
		if err != nil {
			return err
		}

		// Flag > Config. Slice flags are resolved here rather than bound to viper.
		if len(tableOrder) > 0 {
			cfg.TableOrder = tableOrder
		}
		if len(cfg.TableOrder) == 0 {
			slog.Warn("table_order is empty: schema and constraints will be written, but no table data")
		}

		slog.Info("Starting conversion",
			"source", cfg.SourcePath,
			"destination", cfg.DestinationPath,
			"schema", cfg.Schema,
			"table_order", cfg.TableOrder,
			"strict", cfg.Strict,
		)
		start := time.Now()

		report, err := runConvert(cfg)
		if err != nil {
			var strictErr *dump.StrictError
			if errors.As(err, &strictErr) {
				return fmt.Errorf("%s was not written: %w", cfg.DestinationPath, err)
			}
			return err
		}

		printReport(cfg, report)
		slog.Info("Conversion done", "elapsed", time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("source", "", "Path of the dump to read (.sql, .gz, .zst, .xz)")
	convertCmd.Flags().String("dest", "", "Path of the script to write; overwritten")
	convertCmd.Flags().Bool("strict", false, "Fail without writing when the dump has malformed COPY headers, field count mismatches or tables missing from the order")
	convertCmd.Flags().StringSliceVarP(&tableOrder, "order", "o", []string{}, "Table order for data sections (comma-separated, overrides config)")
	convertCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar while decoding COPY blocks")
}

// runConvert reads the source in full, converts it in memory and writes the
// destination in one step.
func runConvert(cfg *ConvertConfig) (*dump.Report, error) {
	src, err := fileio.ReadSource(cfg.SourcePath)
	if err != nil {
		return nil, err
	}

	opts := dump.Options{
		Schema:     cfg.Schema,
		TableOrder: cfg.TableOrder,
		Strict:     cfg.Strict,
		Logger:     slog.Default(),
	}

	var bar *uiprogress.Bar
	if showProgress {
		uiprogress.Start()
		defer uiprogress.Stop()
		opts.OnScan = func(blocks int) {
			bar = uiprogress.AddBar(max(blocks, 1)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Decoding COPY blocks: "
			})
		}
		opts.OnBlock = func(dump.Block) {
			bar.Incr()
		}
	}

	var out bytes.Buffer
	report, err := dump.NewConverter(opts).Convert(bytes.NewReader(src), &out)
	if err != nil {
		return report, err
	}

	if err := fileio.WriteArtifact(cfg.DestinationPath, out.Bytes()); err != nil {
		return report, err
	}
	return report, nil
}

func printReport(cfg *ConvertConfig, r *dump.Report) {
	fmt.Println("\n📊 Summary Report (Table Order):")
	fmt.Printf("Schema blocks: %d, constraint blocks: %d, COPY blocks: %d, rows decoded: %d\n",
		r.SchemaBlocks, r.ConstraintBlocks, r.DataBlocks, r.RowsDecoded)
	for i, tc := range r.Emitted {
		fmt.Printf("[✓] [%02d/%02d] %-24s : %d statements\n", i+1, len(r.Emitted), tc.Table, tc.Statements)
	}
	for _, issue := range r.Issues {
		fmt.Printf("[!] %s\n", issue)
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Statements: %d\n", r.StatementsEmitted())
	fmt.Printf("Written to %s\n", cfg.DestinationPath)
}
