package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultIDColumn, cfg.Input.IDColumn)
	require.Equal(t, DefaultBaseURL, cfg.Input.BaseURL)
	require.Equal(t, "gzip, deflate", cfg.Fetch.Headers["Accept-Encoding"])
	require.Equal(t, "www.sec.gov", cfg.Fetch.Headers["Host"])
	require.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filingmetrics.yml")
	content := `
input:
  file: cik_list.csv
  limit: 5
fetch:
  timeout: 5s
  rate_per_second: 2.5
workers: 3
output:
  sqlite: runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("FM_WORKERS", "8")
	t.Setenv("FM_OUTPUT_CSV", "metrics.csv")
	t.Setenv("FM_FETCH_CACHE_TTL", "10m")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "cik_list.csv", cfg.Input.File)
	require.Equal(t, 5, cfg.Input.Limit)
	require.Equal(t, DefaultIDColumn, cfg.Input.IDColumn)
	require.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	require.Equal(t, 2.5, cfg.Fetch.RatePerSecond)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, "metrics.csv", cfg.Output.CSV)
	require.Equal(t, "runs.db", cfg.Output.SQLite)
	require.Equal(t, 10*time.Minute, cfg.Fetch.CacheTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("FM_WORKERS", "many")
	_, err := Load("")
	require.ErrorContains(t, err, "FM_WORKERS")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.ErrorContains(t, err, "reading config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no input", func(c *Config) { c.Input.File = "" }, "input.file or input.glob"},
		{"both inputs", func(c *Config) { c.Input.Glob = "*.htm" }, "mutually exclusive"},
		{"no lexicon", func(c *Config) { c.Lexicons.Uncertainty = "" }, "lexicons"},
		{"attempts", func(c *Config) { c.Fetch.MaxAttempts = 0 }, "max_attempts"},
		{"sampling", func(c *Config) { c.Telemetry.SamplingRate = 2 }, "sampling_rate"},
		{"limit", func(c *Config) { c.Input.Limit = -1 }, "limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Input.File = "cik_list.csv"
			tc.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}
