package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olist/internal/order"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "olist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AnchorsOnConfigDir(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "abs.sqlite")
	path := writeConfig(t, dir, `
data_dir: csv
with_distance: true
geo_tiebreak: first
output:
  csv: out/training.csv
  sqlite: `+abs+`
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, dir, cfg.Anchor)
	assert.Equal(t, filepath.Join(dir, "csv"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "out", "training.csv"), cfg.Output.CSV)
	assert.Equal(t, abs, cfg.Output.SQLite)
	assert.True(t, cfg.WithDistance)
	assert.Equal(t, order.StatusDelivered, cfg.Status, "default kept")
	assert.Equal(t, "training_data", cfg.Output.Table)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, order.Options{GeoTieBreak: order.TieFirst}, cfg.OrderOptions())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "status: shipped\n")
	t.Setenv("OLIST_STATUS", "canceled")
	t.Setenv("OLIST_OUTPUT_TABLE", "features")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "canceled", cfg.Status)
	assert.Equal(t, "features", cfg.Output.Table)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OLIST_DISTINCT_SELLERS=true\n"), 0o644))
	_, had := os.LookupEnv("OLIST_DISTINCT_SELLERS")
	require.False(t, had)
	t.Cleanup(func() { os.Unsetenv("OLIST_DISTINCT_SELLERS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.DistinctSellers)
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.True(t, strings.HasSuffix(cfg.DataDir, filepath.Join("data", "csv")))
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{DataDir: "/data", GeoTieBreak: "lowest", Log: LogConfig{Format: "console"}}
	require.NoError(t, base.Validate())

	bad := base
	bad.DataDir = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.GeoTieBreak = "average"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Log.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Output.SQLite = "/tmp/x.sqlite"
	assert.Error(t, bad.Validate())
}
