package generate

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/indexer"
	"github.com/tphakala/mediaseed/internal/runner"
)

func baseSettings() *conf.Settings {
	return &conf.Settings{
		MediaCountPerDevice: conf.FixedCount(10),
		DateRange:           conf.DateRange{DaysBack: 30},
		Detection:           conf.DetectionSettings{WildlifeProbability: 1},
		Weather:             conf.WeatherSettings{SunTimes: "banded"},
		Elasticsearch: conf.ElasticsearchSettings{
			UseAPIKey:       true,
			VerifySSL:       true,
			IndexPrefix:     conf.DefaultIndexPrefix,
			BatchSize:       conf.DefaultBatchSize,
			ParallelTenants: 1,
		},
	}
}

func parse(t *testing.T, args ...string) (*cobra.Command, *flags) {
	t.Helper()
	f := &flags{}
	cmd := &cobra.Command{Use: "generate"}
	setupFlags(cmd, f)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, f
}

func TestApplyFlagsOverridesSettings(t *testing.T) {
	t.Parallel()

	cmd, f := parse(t,
		"--count", "20",
		"--output", "out.json",
		"--endpoint", "https://es.example.com:9200",
		"--username", "elastic",
		"--password", "changeme",
		"--index-prefix", "media",
		"--batch-size", "50",
		"--no-verify",
		"--seed", "99",
		"--reference-time", "2025-06-01T12:00:00Z",
		"--parallel-tenants", "4",
		"--export", "local,ftp",
		"--history",
	)
	s := baseSettings()
	s.Export.Local.Path = "exports"
	s.Export.FTP.Host = "ftp.example.com"
	s.History.Path = "history.db"

	legacy, err := applyFlags(cmd, f, s)
	require.NoError(t, err)

	assert.Equal(t, 20, legacy)
	assert.Equal(t, conf.FixedCount(20), s.MediaCountPerDevice)
	assert.Equal(t, "out.json", s.Output.Path)
	assert.Equal(t, "https://es.example.com:9200", s.Elasticsearch.Endpoint)
	assert.False(t, s.Elasticsearch.UseAPIKey)
	assert.Equal(t, "elastic", s.Elasticsearch.Username)
	assert.Equal(t, "media", s.Elasticsearch.IndexPrefix)
	assert.Equal(t, 50, s.Elasticsearch.BatchSize)
	assert.False(t, s.Elasticsearch.VerifySSL)
	assert.Equal(t, 4, s.Elasticsearch.ParallelTenants)
	assert.Equal(t, uint64(99), s.Generation.Seed)
	assert.Equal(t, "2025-06-01T12:00:00Z", s.Generation.ReferenceTime)
	assert.True(t, s.Export.Local.Enabled)
	assert.True(t, s.Export.FTP.Enabled)
	assert.False(t, s.Export.S3.Enabled)
	assert.True(t, s.History.Enabled)
}

func TestApplyFlagsKeepsConfigWhenUnset(t *testing.T) {
	t.Parallel()

	cmd, f := parse(t)
	s := baseSettings()
	s.Elasticsearch.IndexPrefix = "from-config"
	s.Elasticsearch.BatchSize = 250

	legacy, err := applyFlags(cmd, f, s)
	require.NoError(t, err)
	assert.Equal(t, conf.DefaultMediaCount, legacy)
	assert.Equal(t, "from-config", s.Elasticsearch.IndexPrefix)
	assert.Equal(t, 250, s.Elasticsearch.BatchSize)
	assert.True(t, s.Elasticsearch.UseAPIKey)
}

func TestApplyFlagsRejectsBadValues(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"--count", "0"},
		{"--batch-size", "0"},
		{"--export", "dropbox"},
		{"--reference-time", "yesterday"},
	} {
		cmd, f := parse(t, args...)
		_, err := applyFlags(cmd, f, baseSettings())
		assert.Error(t, err, "%v", args)
	}
}

func TestPrintSummaryShowsFirstErrors(t *testing.T) {
	t.Parallel()

	failures := make([]indexer.BatchFailure, 5)
	for i := range failures {
		failures[i] = indexer.BatchFailure{TenantID: "tenant-001", Index: "wisr-media-tenant001", Batch: i + 1, Size: 100, Error: "timeout"}
	}
	sum := &runner.Summary{
		Seed:       99,
		Reference:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Requested:  500,
		Generated:  500,
		Output:     "out.json",
		ReportPath: "out.json_errors.json",
		Index:      &indexer.Result{Successful: 0, Total: 500, Failures: failures},
	}
	s := baseSettings()
	s.Elasticsearch.Endpoint = "http://localhost:9200"

	var out bytes.Buffer
	printSummary(&out, s, sum)
	text := out.String()

	assert.Contains(t, text, "Generated 500/500 records successfully (seed 99, reference time 2025-06-01T00:00:00Z).")
	assert.Contains(t, text, "Successfully indexed 0/500 records.")
	assert.Contains(t, text, "Encountered 5 errors during upload.")
	assert.Contains(t, text, "Saved error details to out.json_errors.json")
	assert.Contains(t, text, "Error 3:")
	assert.NotContains(t, text, "Error 4:")
}
