// Package generate provides the generate command.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/runner"
)

// shownErrors is how many batch failures are printed after an upload.
const shownErrors = 3

type flags struct {
	count           int
	output          string
	endpoint        string
	apiKey          string
	username        string
	password        string
	indexPrefix     string
	batchSize       int
	noVerify        bool
	seed            uint64
	referenceTime   string
	parallelTenants int
	export          []string
	history         bool
	metrics         string
}

// Command creates the generate command.
func Command(settings *conf.Settings) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate media records and optionally upload them to Elasticsearch",
		Long: `Generate synthetic camera media records for every configured device.
Records are written to --output when given and bulk indexed into one index per
tenant when an Elasticsearch endpoint is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyCount, err := applyFlags(cmd, f, settings)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), settings, legacyCount)
		},
	}

	setupFlags(cmd, f)
	return cmd
}

func setupFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.IntVar(&f.count, "count", 0, "Number of records per device (number of devices when no tenants are configured)")
	fl.StringVarP(&f.output, "output", "o", "", "Output file for generated data")
	fl.StringVar(&f.endpoint, "endpoint", "", "Elasticsearch endpoint URL")
	fl.StringVar(&f.apiKey, "api-key", "", "Elasticsearch API key")
	fl.StringVar(&f.username, "username", "", "Elasticsearch username (if not using API key)")
	fl.StringVar(&f.password, "password", "", "Elasticsearch password (if not using API key)")
	fl.StringVar(&f.indexPrefix, "index-prefix", conf.DefaultIndexPrefix, "Elasticsearch index prefix")
	fl.IntVar(&f.batchSize, "batch-size", conf.DefaultBatchSize, "Batch size for uploads")
	fl.BoolVar(&f.noVerify, "no-verify", false, "Disable SSL certificate verification")
	fl.Uint64Var(&f.seed, "seed", 0, "Random seed; 0 picks one and reports it")
	fl.StringVar(&f.referenceTime, "reference-time", "", "Reference time (RFC3339) the date range counts back from")
	fl.IntVar(&f.parallelTenants, "parallel-tenants", 1, "Number of tenants indexed concurrently")
	fl.StringSliceVar(&f.export, "export", nil, "Enable export targets: local, s3, ftp")
	fl.BoolVar(&f.history, "history", false, "Record the run in the history database")
	fl.StringVar(&f.metrics, "metrics", "", "Write Prometheus metrics to this textfile")
}

// applyFlags overrides settings with the flags given on the command line and
// returns the legacy device count.
func applyFlags(cmd *cobra.Command, f *flags, s *conf.Settings) (int, error) {
	changed := cmd.Flags().Changed
	legacyCount := conf.DefaultMediaCount

	if changed("count") {
		if f.count < 1 {
			return 0, fmt.Errorf("--count must be at least 1, got %d", f.count)
		}
		s.MediaCountPerDevice = conf.FixedCount(f.count)
		legacyCount = f.count
	}
	if changed("output") {
		s.Output.Path = f.output
	}

	es := &s.Elasticsearch
	if changed("endpoint") {
		es.Endpoint = f.endpoint
	}
	if changed("api-key") {
		es.APIKey = f.apiKey
		es.UseAPIKey = true
	}
	if f.username != "" && f.password != "" {
		es.Username = f.username
		es.Password = f.password
		es.UseAPIKey = false
	}
	if changed("index-prefix") {
		es.IndexPrefix = f.indexPrefix
	}
	if changed("batch-size") {
		if f.batchSize < 1 {
			return 0, fmt.Errorf("--batch-size must be at least 1, got %d", f.batchSize)
		}
		es.BatchSize = f.batchSize
	}
	if f.noVerify {
		es.VerifySSL = false
	}
	if changed("parallel-tenants") {
		es.ParallelTenants = max(f.parallelTenants, 1)
	}

	if changed("seed") {
		s.Generation.Seed = f.seed
	}
	if changed("reference-time") {
		s.Generation.ReferenceTime = f.referenceTime
	}

	for _, target := range f.export {
		switch target {
		case "local":
			s.Export.Local.Enabled = true
		case "s3":
			s.Export.S3.Enabled = true
		case "ftp":
			s.Export.FTP.Enabled = true
		default:
			return 0, fmt.Errorf("unknown export target %q", target)
		}
	}
	if f.history {
		s.History.Enabled = true
	}
	if changed("metrics") {
		s.Metrics.Enabled = f.metrics != ""
		s.Metrics.Textfile = f.metrics
	}

	if err := conf.ValidateSettings(s); err != nil {
		return 0, err
	}
	return legacyCount, nil
}

func run(ctx context.Context, w io.Writer, settings *conf.Settings, legacyCount int) error {
	fmt.Fprintln(w, "Generating media records...")
	sum, err := runner.New(settings, runner.WithLegacyCount(legacyCount)).Run(ctx)
	if sum != nil {
		printSummary(w, settings, sum)
	}
	if err != nil {
		return err
	}
	if sum.ExportErr != nil {
		fmt.Fprintf(w, "Export finished with errors: %v\n", sum.ExportErr)
	}
	fmt.Fprintln(w, "Done!")
	return nil
}

func printSummary(w io.Writer, settings *conf.Settings, sum *runner.Summary) {
	fmt.Fprintf(w, "Generated %d/%d records successfully (seed %d, reference time %s).\n",
		sum.Generated, sum.Requested, sum.Seed, sum.Reference.Format(time.RFC3339))
	if sum.Output != "" {
		fmt.Fprintf(w, "Saved records to %s\n", sum.Output)
	}
	if sum.Index == nil {
		return
	}

	fmt.Fprintf(w, "Upload to %s complete. Successfully indexed %d/%d records.\n",
		settings.Elasticsearch.Endpoint, sum.Index.Successful, sum.Index.Total)
	if len(sum.Index.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "Encountered %d errors during upload.\n", len(sum.Index.Failures))
	if sum.ReportPath != "" {
		fmt.Fprintf(w, "Saved error details to %s\n", sum.ReportPath)
	}
	fmt.Fprintln(w, "First few errors:")
	for i, failure := range sum.Index.Failures[:min(shownErrors, len(sum.Index.Failures))] {
		data, err := json.Marshal(failure)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  Error %d: %s\n", i+1, data)
	}
}
