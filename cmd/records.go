package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/report"
	"github.com/sells-group/company-profiler/internal/store"
)

var (
	recordsURL        string
	recordsLimit      int
	recordsOffset     int
	recordsJSON       bool
	recordsWithMarket bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List stored company records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stored, err := st.ListRecords(ctx, store.RecordFilter{
			SourceURL: recordsURL,
			Limit:     recordsLimit,
			Offset:    recordsOffset,
		})
		if err != nil {
			return eris.Wrap(err, "records: list")
		}

		out := cmd.OutOrStdout()
		if recordsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stored)
		}

		if len(stored) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}
		fmt.Fprintln(out, report.Table(storedRecords(stored), report.Options{WithMarket: recordsWithMarket}))
		return nil
	},
}

func storedRecords(stored []store.StoredRecord) []model.Record {
	out := make([]model.Record, 0, len(stored))
	for _, sr := range stored {
		out = append(out, sr.Record)
	}
	return out
}

func init() {
	recordsCmd.Flags().StringVar(&recordsURL, "url", "", "only records looked up from this url")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", store.DefaultListLimit, "maximum records to list")
	recordsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "print records as json")
	recordsCmd.Flags().BoolVar(&recordsWithMarket, "with-market", false, "include ticker and market data columns")
	rootCmd.AddCommand(recordsCmd)
}
