package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1536, cfg.Browser.ViewportWidth)
	assert.Equal(t, 960, cfg.Browser.ViewportHeight)
	assert.Equal(t, 2*time.Second, cfg.Browser.SettleDelay)
	assert.Equal(t, "fuel-invoices-receipt", cfg.Storage.Bucket)
	assert.Equal(t, "ap-southeast-2", cfg.Storage.Region)
	assert.Equal(t, "CALNS", cfg.Workflow.InterfaceCode)
	assert.Equal(t, DefaultTargetURL, cfg.Workflow.DefaultURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
browser:
  headless: false
  settle_delay: 1s
storage:
  bucket: test-invoices
  endpoint: http://localhost:9000
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

	cfg, err := Load(cfgFile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, time.Second, cfg.Browser.SettleDelay)
	assert.Equal(t, "test-invoices", cfg.Storage.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
	// Untouched sections keep their defaults.
	assert.Equal(t, "CALNS", cfg.Workflow.InterfaceCode)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Storage.Bucket = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Bucket = "b"
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8000
	cfg.Browser.ViewportWidth = 0
	assert.Error(t, cfg.Validate())
}
