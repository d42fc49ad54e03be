package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mediaseed/internal/conf"
)

func TestInitWritesDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := InitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, conf.DefaultConfigYAML(), data)

	again := InitCommand()
	again.SetOut(&bytes.Buffer{})
	again.SetArgs([]string{path})
	require.Error(t, again.Execute())

	forced := InitCommand()
	forced.SetOut(&bytes.Buffer{})
	forced.SetArgs([]string{path, "--force"})
	require.NoError(t, forced.Execute())
}

func TestShowMasksSecrets(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Elasticsearch.APIKey = "secret-key"
	settings.Elasticsearch.Username = "elastic"
	settings.Export.FTP.Password = ""

	var out bytes.Buffer
	cmd := showCommand(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var shown map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &shown))
	es, ok := shown["elasticsearch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, masked, es["api_key"])
	assert.Equal(t, "elastic", es["username"])
	assert.Equal(t, "secret-key", settings.Elasticsearch.APIKey, "settings must not be modified")
}

func TestShowWritesFile(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{MediaCountPerDevice: conf.FixedCount(10)}
	settings.Sentry.DSN = "https://key@sentry.example.com/1"
	path := filepath.Join(t.TempDir(), "effective", "config.yaml")

	var out bytes.Buffer
	cmd := showCommand(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "media_count_per_device: 10\n")
	assert.NotContains(t, string(data), "sentry.example.com")
	assert.Contains(t, string(data), masked)
}
