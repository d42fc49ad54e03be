// env.go - environment variable overrides for mediaseed settings
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "MEDIASEED_DEBUG", validateEnvBool},
		{"generation.seed", "MEDIASEED_SEED", validateEnvUint},
		{"generation.reference_time", "MEDIASEED_REFERENCE_TIME", validateEnvTimestamp},

		// Elasticsearch credentials are usually kept out of the config file
		{"elasticsearch.endpoint", "MEDIASEED_ES_ENDPOINT", validateEnvURL},
		{"elasticsearch.api_key", "MEDIASEED_ES_API_KEY", nil},
		{"elasticsearch.username", "MEDIASEED_ES_USERNAME", nil},
		{"elasticsearch.password", "MEDIASEED_ES_PASSWORD", nil},
		{"elasticsearch.use_api_key", "MEDIASEED_ES_USE_API_KEY", validateEnvBool},
		{"elasticsearch.verify_ssl", "MEDIASEED_ES_VERIFY_SSL", validateEnvBool},
		{"elasticsearch.index_prefix", "MEDIASEED_ES_INDEX_PREFIX", nil},
		{"elasticsearch.batch_size", "MEDIASEED_ES_BATCH_SIZE", validateEnvPositiveInt},
		{"elasticsearch.timeout", "MEDIASEED_ES_TIMEOUT", validateEnvDuration},

		// Export targets
		{"export.s3.bucket", "MEDIASEED_S3_BUCKET", nil},
		{"export.s3.region", "MEDIASEED_S3_REGION", nil},
		{"export.s3.endpoint", "MEDIASEED_S3_ENDPOINT", validateEnvURL},
		{"export.s3.access_key_id", "MEDIASEED_S3_ACCESS_KEY_ID", nil},
		{"export.s3.secret_access_key", "MEDIASEED_S3_SECRET_ACCESS_KEY", nil},
		{"export.ftp.host", "MEDIASEED_FTP_HOST", nil},
		{"export.ftp.username", "MEDIASEED_FTP_USERNAME", nil},
		{"export.ftp.password", "MEDIASEED_FTP_PASSWORD", nil},

		{"sentry.dsn", "MEDIASEED_SENTRY_DSN", validateEnvURL},
	}
}

// bindEnvVars binds every known environment variable to v and validates set values.
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value: %v", binding.EnvVar, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

// loadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvUint(value string) error {
	if _, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64); err != nil {
		return fmt.Errorf("invalid unsigned integer '%s'", value)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive integer, got '%s'", value)
	}
	return nil
}

func validateEnvDuration(value string) error {
	if _, err := time.ParseDuration(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid duration '%s': %w", value, err)
	}
	return nil
}

func validateEnvTimestamp(value string) error {
	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("must be an RFC3339 timestamp, got '%s'", value)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL, got '%s'", value)
	}
	return nil
}
