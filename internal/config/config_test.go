package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenDefaultFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 10, cfg.Viewer.CacheSize)
	assert.True(t, cfg.Satellite.Enabled)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/extracts
log_format: json
csv:
  encoding: cp874
satellite:
  enabled: true
  source_label: SAT
  descendants: [SAT-A, SAT-B]
  product_keys:
    SAT-A: ["1.0", "2"]
    SAT-B: ["3"]
bu_colors:
  "01.ภาคกลาง": "#123456"
viewer:
  rate_window: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/extracts", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cp874", cfg.CSV.Encoding)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "#123456", cfg.BUColors["01.ภาคกลาง"])
	assert.Equal(t, 30*time.Second, cfg.Viewer.RateWindow)
	assert.Equal(t, ":8090", cfg.Viewer.Addr)

	split := cfg.SplitConfig()
	assert.Equal(t, "SAT", split.SourceLabel)
	assert.Equal(t, []string{"SAT-A", "SAT-B"}, split.Descendants)
	assert.Equal(t, map[string]string{"1": "SAT-A", "2": "SAT-A", "3": "SAT-B"}, split.ProductKeys)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")
	t.Setenv("PNL_LOG_LEVEL", "debug")
	t.Setenv("PNL_OUTPUT_DIR", "/tmp/out")
	t.Setenv("PNL_VIEWER_CACHE_SIZE", "3")
	t.Setenv("PNL_SATELLITE_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Viewer.CacheSize)
	assert.False(t, cfg.SplitConfig().Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"log level":   "log_level: loud\n",
		"encoding":    "csv:\n  encoding: latin-1\n",
		"colour":      "bu_colors:\n  A: blue\n",
		"descendants": "satellite:\n  descendants: [ONLY-ONE]\n",
		"info box":    "sheet:\n  info_box: [a, b, c, d, e, f]\n",
		"delimiter":   "csv:\n  delimiter: tab\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSplitConfigDefaultsToBuiltInTable(t *testing.T) {
	split := DefaultConfig().SplitConfig()
	assert.Equal(t, mapping.DefaultSatellite(), split)
}
