package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/buildinfo"
	"github.com/tphakala/mediaseed/internal/conf"
)

func TestExecuteFlushesLogsOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "mediaseed.log")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
logging:
  default_level: info
  timezone: UTC
  console: {enabled: false}
  file_output: {enabled: true, path: `+logPath+`, level: debug}
`), 0o600))

	err := Execute(&conf.Settings{}, buildinfo.New("test", ""),
		[]string{"generate", "--config", configPath, "--batch-size", "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--batch-size must be at least 1")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "configuration loaded")
}

func TestExecuteInitSkipsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Execute(&conf.Settings{}, buildinfo.New("test", ""), []string{"config", "init", path}))
	assert.FileExists(t, path)
}
