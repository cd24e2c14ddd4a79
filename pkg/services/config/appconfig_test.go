package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./charts", cfg.ChartDir)
	assert.Equal(t, "./exports", cfg.ExportDir)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, 30*time.Second, cfg.InsightTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data-lens.yaml")
	content := "server:\n  port: \"9000\"\nchart_dir: /tmp/charts\ninsight_timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/charts", cfg.ChartDir)
	assert.Equal(t, 5*time.Second, cfg.InsightTimeout)
	// Untouched keys keep defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
