// defaults.go: default values for every configuration key
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default index and generation values.
const (
	DefaultIndexPrefix     = "wisr-media"
	DefaultBatchSize       = 100
	DefaultMediaCount      = 10
	DefaultDaysBack        = 30
	DefaultESTimeout       = 30 * time.Second
	DefaultHistoryPath     = "mediaseed-history.db"
	DefaultMetricsTextfile = "mediaseed.prom"
)

// setDefaultConfig registers defaults for keys that may be missing from a
// user supplied file. Tenants have no default here; an empty tenant list
// selects the legacy single-property layout.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("logging.default_level", "info")
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", true)
	v.SetDefault("logging.console.level", "info")
	v.SetDefault("logging.file_output.enabled", false)
	v.SetDefault("logging.file_output.path", "logs/mediaseed.log")
	v.SetDefault("logging.file_output.level", "debug")

	v.SetDefault("generation.seed", 0)
	v.SetDefault("generation.reference_time", "")

	v.SetDefault("media_count_per_device", DefaultMediaCount)
	v.SetDefault("date_range.days_back", DefaultDaysBack)

	v.SetDefault("detection.wildlife_probability", 0.6)
	v.SetDefault("detection.people_probability", 0.2)
	v.SetDefault("detection.vehicle_probability", 0.15)
	v.SetDefault("detection.empty_probability", 0.05)

	v.SetDefault("weather.sun_times", "banded")

	v.SetDefault("output.path", "")
	v.SetDefault("output.pretty", true)

	v.SetDefault("elasticsearch.endpoint", "")
	v.SetDefault("elasticsearch.use_api_key", true)
	v.SetDefault("elasticsearch.api_key", "")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.verify_ssl", true)
	v.SetDefault("elasticsearch.index_prefix", DefaultIndexPrefix)
	v.SetDefault("elasticsearch.batch_size", DefaultBatchSize)
	v.SetDefault("elasticsearch.refresh", true)
	v.SetDefault("elasticsearch.parallel_tenants", 1)
	v.SetDefault("elasticsearch.rate_limit", 0)
	v.SetDefault("elasticsearch.timeout", DefaultESTimeout)

	v.SetDefault("export.local.enabled", false)
	v.SetDefault("export.local.path", "exports")
	v.SetDefault("export.s3.enabled", false)
	v.SetDefault("export.s3.prefix", "mediaseed")
	v.SetDefault("export.s3.region", "us-east-1")
	v.SetDefault("export.s3.use_path_style", false)
	v.SetDefault("export.ftp.enabled", false)
	v.SetDefault("export.ftp.port", 21)
	v.SetDefault("export.ftp.path", "/")
	v.SetDefault("export.ftp.timeout", 30*time.Second)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", DefaultHistoryPath)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", DefaultMetricsTextfile)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
}
