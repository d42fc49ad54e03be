// config.go: mediaseed configuration structures and loading
package conf

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Device is a camera installed on a property.
type Device struct {
	ID           string    `mapstructure:"id" yaml:"id"`
	Name         string    `mapstructure:"name" yaml:"name"`
	Make         string    `mapstructure:"make" yaml:"make,omitempty"`
	Model        string    `mapstructure:"model" yaml:"model,omitempty"`
	SerialNumber string    `mapstructure:"serial_number" yaml:"serial_number,omitempty"`
	Location     []float64 `mapstructure:"location" yaml:"location,flow"` // [lon, lat]
	BoundaryID   string    `mapstructure:"boundary_id" yaml:"boundary_id,omitempty"`
	AssetID      string    `mapstructure:"asset_id" yaml:"asset_id,omitempty"`
}

// Longitude returns the device longitude.
func (d *Device) Longitude() float64 { return d.Location[0] }

// Latitude returns the device latitude.
func (d *Device) Latitude() float64 { return d.Location[1] }

// Property is a monitored site with its own IANA timezone.
type Property struct {
	ID       string   `mapstructure:"id" yaml:"id" validate:"required"`
	Name     string   `mapstructure:"name" yaml:"name"`
	Timezone string   `mapstructure:"timezone" yaml:"timezone"` // IANA name, defaults to UTC
	Devices  []Device `mapstructure:"devices" yaml:"devices" validate:"dive"`
}

// Tenant owns properties and maps to one search index.
type Tenant struct {
	ID         string     `mapstructure:"id" yaml:"id" validate:"required"`
	Name       string     `mapstructure:"name" yaml:"name"`
	Properties []Property `mapstructure:"properties" yaml:"properties" validate:"dive"`
}

// GenerationSettings controls reproducibility.
type GenerationSettings struct {
	Seed          uint64 `mapstructure:"seed" yaml:"seed"`                     // 0 = random
	ReferenceTime string `mapstructure:"reference_time" yaml:"reference_time"` // RFC3339, empty = now
}

// DateRange bounds capture timestamps to the trailing window before the reference time.
type DateRange struct {
	DaysBack int `mapstructure:"days_back" yaml:"days_back" validate:"gte=1"`
}

// DetectionSettings holds relative category weights.
type DetectionSettings struct {
	WildlifeProbability float64 `mapstructure:"wildlife_probability" yaml:"wildlife_probability" validate:"gte=0"`
	PeopleProbability   float64 `mapstructure:"people_probability" yaml:"people_probability" validate:"gte=0"`
	VehicleProbability  float64 `mapstructure:"vehicle_probability" yaml:"vehicle_probability" validate:"gte=0"`
	EmptyProbability    float64 `mapstructure:"empty_probability" yaml:"empty_probability" validate:"gte=0"`
}

// WeatherSettings selects how sunrise and sunset are produced.
type WeatherSettings struct {
	SunTimes string `mapstructure:"sun_times" yaml:"sun_times" validate:"oneof=banded ephemeris"`
}

// OutputSettings controls the JSON output file.
type OutputSettings struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// ElasticsearchSettings configures the bulk index target.
type ElasticsearchSettings struct {
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	UseAPIKey       bool          `mapstructure:"use_api_key" yaml:"use_api_key"`
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	Username        string        `mapstructure:"username" yaml:"username"`
	Password        string        `mapstructure:"password" yaml:"password"`
	VerifySSL       bool          `mapstructure:"verify_ssl" yaml:"verify_ssl"`
	IndexPrefix     string        `mapstructure:"index_prefix" yaml:"index_prefix" validate:"required"`
	BatchSize       int           `mapstructure:"batch_size" yaml:"batch_size" validate:"gte=1"`
	Refresh         bool          `mapstructure:"refresh" yaml:"refresh"`
	ParallelTenants int           `mapstructure:"parallel_tenants" yaml:"parallel_tenants" validate:"gte=1"`
	RateLimit       float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // batches per second
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LocalExport writes artifacts to a directory.
type LocalExport struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"required_if=Enabled true"`
}

// S3Export uploads artifacts to an S3 compatible bucket.
type S3Export struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
	UsePathStyle    bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
}

// FTPExport uploads artifacts to an FTP server.
type FTPExport struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Host     string        `mapstructure:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port     int           `mapstructure:"port" yaml:"port"`
	Username string        `mapstructure:"username" yaml:"username"`
	Password string        `mapstructure:"password" yaml:"password"`
	Path     string        `mapstructure:"path" yaml:"path"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ExportSettings lists artifact destinations.
type ExportSettings struct {
	Local LocalExport `mapstructure:"local" yaml:"local"`
	S3    S3Export    `mapstructure:"s3" yaml:"s3"`
	FTP   FTPExport   `mapstructure:"ftp" yaml:"ftp"`
}

// HistorySettings configures the run history database.
type HistorySettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"required_if=Enabled true"`
}

// MetricsSettings configures the Prometheus textfile dump.
type MetricsSettings struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Textfile string `mapstructure:"textfile" yaml:"textfile" validate:"required_if=Enabled true"`
}

// SentrySettings configures error telemetry.
type SentrySettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn" validate:"required_if=Enabled true"`
}

// Settings is the root configuration. It is immutable for the duration of a run.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Logging logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`

	Generation          GenerationSettings    `mapstructure:"generation" yaml:"generation"`
	Tenants             []Tenant              `mapstructure:"tenants" yaml:"tenants" validate:"dive"`
	MediaCountPerDevice MediaCount            `mapstructure:"media_count_per_device" yaml:"media_count_per_device"`
	DateRange           DateRange             `mapstructure:"date_range" yaml:"date_range"`
	Detection           DetectionSettings     `mapstructure:"detection" yaml:"detection"`
	Weather             WeatherSettings       `mapstructure:"weather" yaml:"weather"`
	Output              OutputSettings        `mapstructure:"output" yaml:"output"`
	Elasticsearch       ElasticsearchSettings `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Export              ExportSettings        `mapstructure:"export" yaml:"export"`
	History             HistorySettings       `mapstructure:"history" yaml:"history"`
	Metrics             MetricsSettings       `mapstructure:"metrics" yaml:"metrics"`
	Sentry              SentrySettings        `mapstructure:"sentry" yaml:"sentry"`
}

// ReferenceTime returns the configured reference time. When unset it is now,
// or the start of the current UTC day for a seeded run so that repeated runs
// with the same seed agree.
func (s *Settings) ReferenceTime(now time.Time) (time.Time, error) {
	if s.Generation.ReferenceTime == "" {
		if s.Generation.Seed != 0 {
			return now.UTC().Truncate(24 * time.Hour), nil
		}
		return now.UTC().Truncate(time.Second), nil
	}
	t, err := time.Parse(time.RFC3339, s.Generation.ReferenceTime)
	if err != nil {
		return time.Time{}, errors.New(fmt.Errorf("invalid reference_time: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return t.UTC(), nil
}

// DeviceCount returns the number of configured devices across all tenants.
func (s *Settings) DeviceCount() int {
	n := 0
	for _, t := range s.Tenants {
		for _, p := range t.Properties {
			n += len(p.Devices)
		}
	}
	return n
}

// loadMutex serializes Load; viper and the .env loader touch process state.
var loadMutex sync.Mutex

// LoadResult reports where settings came from.
type LoadResult struct {
	Settings *Settings
	// Source is the config file used, or "" for the embedded default.
	Source string
	// FallbackReason is set when a requested file could not be used.
	FallbackReason error
}

// Load reads configuration from configPath. When configPath is empty the
// default search paths are tried. A file that is missing or cannot be parsed
// falls back to the embedded default configuration and the reason is reported
// in LoadResult. A file that parses but fails validation is an error; device
// entries are not validated here, the generator fails their records instead.
func Load(configPath string) (*LoadResult, error) {
	loadMutex.Lock()
	defer loadMutex.Unlock()

	if err := loadDotEnv(); err != nil {
		GetLogger().Warn("failed to load .env file", logger.Error(err))
	}

	result := &LoadResult{}
	v, source, err := initViper(configPath)
	if err != nil {
		result.FallbackReason = err
	}

	settings, err := decode(v)
	if err != nil && source != "" {
		// The file was read but does not decode; retry with the embedded default.
		result.FallbackReason = err
		source = ""
		if v, _, err = initViper(""); err == nil {
			settings, err = decode(v)
		}
	}
	if err == nil {
		err = ValidateSettings(settings)
	}
	if err != nil {
		return nil, errors.New(fmt.Errorf("error loading configuration: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("path", source).
			Build()
	}

	result.Settings = settings
	result.Source = source
	return result, nil
}

// initViper builds a viper instance with defaults and environment bindings,
// then reads configPath, the default search paths, or the embedded config.
func initViper(configPath string) (*viper.Viper, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaultConfig(v)
	if err := bindEnvVars(v); err != nil {
		GetLogger().Warn("environment variable issues", logger.Error(err))
	}

	var readErr error
	if configPath != "" {
		v.SetConfigFile(configPath)
		if readErr = v.ReadInConfig(); readErr == nil {
			return v, v.ConfigFileUsed(), nil
		}
	} else {
		v.SetConfigName("config")
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
		readErr = v.ReadInConfig()
		if readErr == nil {
			return v, v.ConfigFileUsed(), nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(readErr, &notFound) {
			// No file anywhere is the normal zero-config case.
			readErr = nil
		}
	}

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML())); err != nil {
		return nil, "", fmt.Errorf("error reading embedded config: %w", err)
	}
	if readErr != nil {
		readErr = fmt.Errorf("error reading config file: %w", readErr)
	}
	return v, "", readErr
}

func decode(v *viper.Viper) (*Settings, error) {
	settings := &Settings{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mediaCountHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(settings, hook); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	return settings, nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "mediaseed"))
	}
	return paths
}

// DefaultConfigYAML returns the embedded default configuration document.
func DefaultConfigYAML() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// WriteDefaultConfig writes the embedded default configuration to path,
// refusing to overwrite an existing file unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("config file %s already exists", path).
				Component("conf").
				Category(errors.CategoryFileIO).
				Build()
		}
	}
	return atomicWrite(path, DefaultConfigYAML())
}

// SaveYAMLConfig marshals settings and writes them atomically to configPath.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return atomicWrite(configPath, yamlData)
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Rename(tempFileName, path); err != nil {
		return fmt.Errorf("error moving temporary file into place: %w", err)
	}
	return nil
}
