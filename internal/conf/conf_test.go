package conf

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileFallsBackToEmbedded(t *testing.T) {
	t.Parallel()

	res, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Error(t, res.FallbackReason)
	assert.Empty(t, res.Source)

	s := res.Settings
	require.Len(t, s.Tenants, 1)
	assert.Equal(t, "tenant-001", s.Tenants[0].ID)
	prop := s.Tenants[0].Properties[0]
	assert.Equal(t, "Rain Creek Ranch", prop.Name)
	assert.Equal(t, "America/Chicago", prop.Timezone)
	dev := prop.Devices[0]
	assert.Equal(t, "Main Gate Camera", dev.Name)
	assert.InDelta(t, -99.607781, dev.Longitude(), 1e-9)
	assert.InDelta(t, 30.990075, dev.Latitude(), 1e-9)
	assert.Equal(t, FixedCount(10), s.MediaCountPerDevice)
	assert.Equal(t, DefaultIndexPrefix, s.Elasticsearch.IndexPrefix)
	assert.Equal(t, 30*time.Second, s.Elasticsearch.Timeout)
	assert.Equal(t, 1, s.DeviceCount())
}

func TestLoadFileWithCountRange(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tenants:
  - id: tenant-a
    properties:
      - id: p1
        timezone: Europe/Helsinki
        devices:
          - {id: d1, location: [24.9, 60.2]}
          - {id: d2, location: [25.0, 60.3]}
  - id: tenant-b
    properties:
      - id: p1
        devices:
          - {id: d1, location: [0, 0]}
media_count_per_device: {min: 5, max: 15}
elasticsearch:
  batch_size: 250
  timeout: 5s
`)
	res, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, res.FallbackReason)
	assert.Equal(t, path, res.Source)

	s := res.Settings
	assert.Len(t, s.Tenants, 2)
	assert.Equal(t, 3, s.DeviceCount())
	assert.Equal(t, MediaCount{Min: 5, Max: 15}, s.MediaCountPerDevice)
	assert.False(t, s.MediaCountPerDevice.IsFixed())
	assert.Equal(t, 250, s.Elasticsearch.BatchSize)
	assert.Equal(t, 5*time.Second, s.Elasticsearch.Timeout)
	// Keys missing from the file come from defaults.
	assert.Equal(t, DefaultIndexPrefix, s.Elasticsearch.IndexPrefix)
	assert.Equal(t, 30, s.DateRange.DaysBack)
	assert.InDelta(t, 0.6, s.Detection.WildlifeProbability, 1e-9)
}

func TestLoadUnparseableFileFallsBack(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "tenants: [ {id: broken\n")
	res, err := Load(path)
	require.NoError(t, err)
	require.Error(t, res.FallbackReason)
	assert.Empty(t, res.Source)
	assert.Equal(t, "tenant-001", res.Settings.Tenants[0].ID)
}

func TestLoadInvalidSettingsIsError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tenants:
  - id: dup
  - id: dup
`)
	res, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Contains(t, err.Error(), "duplicate tenant id")
}

func TestLoadKeepsTenantsWithMalformedDevice(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tenants:
  - id: tenant-a
    properties:
      - id: p1
        timezone: Mars/Olympus
        devices:
          - {id: good, location: [24.9, 60.2]}
          - {id: no-location}
          - {id: good, location: [24.9, 60.2]}
elasticsearch:
  endpoint: https://search.example.com:9200
  api_key: secret
`)
	res, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, res.FallbackReason)
	assert.Equal(t, path, res.Source)

	s := res.Settings
	require.Len(t, s.Tenants, 1)
	assert.Equal(t, "tenant-a", s.Tenants[0].ID)
	assert.Equal(t, 3, s.DeviceCount())
	assert.Equal(t, "https://search.example.com:9200", s.Elasticsearch.Endpoint)
}

func TestCheckDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		device  Device
		wantErr string
	}{
		{"valid", Device{ID: "d1", Location: []float64{-99, 31}}, ""},
		{"missing id", Device{Location: []float64{-99, 31}}, "id is required"},
		{"missing location", Device{ID: "d1"}, "got 0 values"},
		{"short location", Device{ID: "d1", Location: []float64{1}}, "got 1 values"},
		{"latitude out of range", Device{ID: "d1", Location: []float64{0, 91}}, "out of range"},
		{"longitude out of range", Device{ID: "d1", Location: []float64{-181, 0}}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckDevice(&tt.device)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func validSettings() *Settings {
	return &Settings{
		Tenants: []Tenant{{
			ID: "t1",
			Properties: []Property{{
				ID:       "p1",
				Timezone: "America/Chicago",
				Devices:  []Device{{ID: "d1", Location: []float64{-99, 31}}},
			}},
		}},
		MediaCountPerDevice: FixedCount(1),
		DateRange:           DateRange{DaysBack: 30},
		Detection:           DetectionSettings{WildlifeProbability: 1},
		Weather:             WeatherSettings{SunTimes: "banded"},
		Elasticsearch: ElasticsearchSettings{
			IndexPrefix:     DefaultIndexPrefix,
			BatchSize:       DefaultBatchSize,
			ParallelTenants: 1,
		},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"zero probabilities", func(s *Settings) { s.Detection = DetectionSettings{} }, "must not all be zero"},
		{"device problems are not fatal", func(s *Settings) {
			p := &s.Tenants[0].Properties[0]
			p.Timezone = "Mars/Olympus"
			p.Devices = append(p.Devices, Device{ID: "d1"})
		}, ""},
		{"duplicate property", func(s *Settings) {
			tn := &s.Tenants[0]
			tn.Properties = append(tn.Properties, tn.Properties[0])
		}, "duplicate property id"},
		{"inverted count", func(s *Settings) { s.MediaCountPerDevice = MediaCount{Min: 9, Max: 2} }, "exceeds max"},
		{"api key missing", func(s *Settings) {
			s.Elasticsearch.Endpoint = "https://localhost:9200"
			s.Elasticsearch.UseAPIKey = true
		}, "api_key is required"},
		{"basic auth missing", func(s *Settings) {
			s.Elasticsearch.Endpoint = "https://localhost:9200"
			s.Elasticsearch.Username = "elastic"
		}, "username and password"},
		{"bad endpoint", func(s *Settings) {
			s.Elasticsearch.Endpoint = "not a url"
			s.Elasticsearch.APIKey = "k"
			s.Elasticsearch.UseAPIKey = true
		}, "url"},
		{"zero batch", func(s *Settings) { s.Elasticsearch.BatchSize = 0 }, "BatchSize"},
		{"bad sun mode", func(s *Settings) { s.Weather.SunTimes = "guess" }, "oneof"},
		{"s3 without bucket", func(s *Settings) { s.Export.S3.Enabled = true }, "Bucket"},
		{"bad reference time", func(s *Settings) { s.Generation.ReferenceTime = "yesterday" }, "RFC3339"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMediaCountHook(t *testing.T) {
	t.Parallel()

	hook := mediaCountHookFunc()
	to := reflect.TypeFor[MediaCount]()

	got, err := hook(reflect.TypeFor[int](), to, 7)
	require.NoError(t, err)
	assert.Equal(t, FixedCount(7), got)

	got, err = hook(reflect.TypeFor[string](), to, " 3 ")
	require.NoError(t, err)
	assert.Equal(t, FixedCount(3), got)

	_, err = hook(reflect.TypeFor[float64](), to, 2.5)
	require.Error(t, err)

	got, err = hook(reflect.TypeFor[map[string]any](), to, map[string]any{"min": 4})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"min": 4, "max": 4}, got)

	// Other targets pass through untouched.
	got, err = hook(reflect.TypeFor[int](), reflect.TypeFor[int](), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestReferenceTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 30, 45, 999, time.UTC)
	s := &Settings{}
	got, err := s.ReferenceTime(now)
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Second), got)

	s.Generation.Seed = 42
	got, err = s.ReferenceTime(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
	later, err := s.ReferenceTime(now.Add(9 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, got, later)

	s.Generation.ReferenceTime = "2025-06-01T10:00:00-05:00"
	got, err = s.ReferenceTime(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), got)
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path, false))
	require.Error(t, WriteDefaultConfig(path, false))
	require.NoError(t, WriteDefaultConfig(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigYAML(), data)
}

func TestValidateEnvValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"bool ok", validateEnvBool, " true ", false},
		{"bool bad", validateEnvBool, "yes", true},
		{"uint ok", validateEnvUint, "42", false},
		{"uint negative", validateEnvUint, "-1", true},
		{"batch zero", validateEnvPositiveInt, "0", true},
		{"duration ok", validateEnvDuration, "45s", false},
		{"timestamp bad", validateEnvTimestamp, "2025-01-01", true},
		{"url ok", validateEnvURL, "https://es.example.com:9243", false},
		{"url relative", validateEnvURL, "/just/a/path", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
