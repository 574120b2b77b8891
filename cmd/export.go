package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-profiler/internal/export"
	"github.com/sells-group/company-profiler/internal/store"
)

var (
	exportOutput     string
	exportFormat     string
	exportURL        string
	exportLimit      int
	exportWithMarket bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored company records to csv, xlsx or json",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		path, format, err := exportTarget(exportOutput, exportFormat)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stored, err := st.ListRecords(ctx, store.RecordFilter{
			SourceURL: exportURL,
			Limit:     exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "export: list records")
		}

		records := storedRecords(stored)
		if err := export.WriteFile(path, format, records, export.Options{WithMarket: exportWithMarket}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "export path (default from config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format: csv, xlsx or json (default from extension)")
	exportCmd.Flags().StringVar(&exportURL, "url", "", "only records looked up from this url")
	exportCmd.Flags().IntVar(&exportLimit, "limit", store.DefaultListLimit, "maximum records to export")
	exportCmd.Flags().BoolVar(&exportWithMarket, "with-market", false, "include ticker and market data columns")
	rootCmd.AddCommand(exportCmd)
}

