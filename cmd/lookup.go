package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/config"
	"github.com/sells-group/company-profiler/internal/export"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/report"
)

var (
	lookupFile       string
	lookupOutput     string
	lookupFormat     string
	lookupNoExport   bool
	lookupOffline    bool
	lookupWithMarket bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [url...]",
	Short: "Look up company profiles for up to five websites",
	Long: "Fetches each website and the LinkedIn page it links to, extracts the company " +
		"profile from both, merges them, adds market data for listed companies, stores " +
		"each record and exports the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls, err := collectURLs(args, lookupFile)
		if err != nil {
			return err
		}

		env, err := initLookupEnv(ctx, "lookup", lookupOffline)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Processor.ProcessBatch(ctx, urls)
		if err != nil && len(results) == 0 {
			return err
		}
		if err != nil {
			zap.L().Warn("batch stopped early", zap.Int("completed", len(results)), zap.Error(err))
		}

		opts := report.Options{WithMarket: lookupWithMarket}
		if werr := report.Write(cmd.OutOrStdout(), results, opts); werr != nil {
			return eris.Wrap(werr, "lookup: print report")
		}

		if lookupNoExport {
			return nil
		}
		path, format, ferr := exportTarget(lookupOutput, lookupFormat)
		if ferr != nil {
			return ferr
		}
		records := pipeline.Records(results)
		if werr := export.WriteFile(path, format, records, export.Options{WithMarket: lookupWithMarket}); werr != nil {
			return werr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Data has been saved to %s\n", path)
		return nil
	},
}

// collectURLs merges positional URLs with those read from a file and
// enforces the batch limit.
func collectURLs(args []string, file string) ([]string, error) {
	urls := append([]string(nil), args...)
	if file != "" {
		fromFile, err := export.ReadURLs(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	urls = pipeline.CleanBatch(urls)
	if len(urls) == 0 {
		return nil, eris.New("lookup: at least one url is required")
	}
	if len(urls) > config.MaxURLs {
		return nil, eris.Errorf("lookup: %d urls given, at most %d are allowed", len(urls), config.MaxURLs)
	}
	return urls, nil
}

// exportTarget resolves the output path and format. An explicit format wins
// over the file extension.
func exportTarget(output, format string) (string, export.Format, error) {
	path := output
	if path == "" {
		path = cfg.Export.Path
	}
	if path == "" {
		path = export.DefaultPath
	}
	if format == "" {
		return path, export.FormatFromPath(path), nil
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", "", err
	}
	return path, f, nil
}

func init() {
	lookupCmd.Flags().StringVar(&lookupFile, "file", "", "read urls from the first column of a csv or xlsx file")
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "", "export path (default from config)")
	lookupCmd.Flags().StringVar(&lookupFormat, "format", "", "export format: csv, xlsx or json (default from extension)")
	lookupCmd.Flags().BoolVar(&lookupNoExport, "no-export", false, "skip writing the export file")
	lookupCmd.Flags().BoolVar(&lookupOffline, "offline", false, "use the offline stub extractor and skip enrichment")
	lookupCmd.Flags().BoolVar(&lookupWithMarket, "with-market", false, "include ticker and market data columns")
	rootCmd.AddCommand(lookupCmd)
}
