package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Created)
	assert.FileExists(t, path)

	assert.Equal(t, "queries.sql", cfg.QueriesFile)
	assert.Equal(t, "./analysis-results", cfg.OutputDir)
	assert.Equal(t, "baseline", cfg.Label)
	assert.Equal(t, []string{"json", "csv"}, cfg.Formats)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.Analysis.IncludeTempTables)
	assert.False(t, cfg.Catalog.Enabled())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.Created)
	assert.Equal(t, cfg.Formats, reloaded.Formats)
	assert.Equal(t, cfg.QueryTimeout, reloaded.QueryTimeout)
	assert.Equal(t, cfg.Analysis, reloaded.Analysis)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
label: after
formats: [xlsx, JSON, json]
concurrency: 0
query_timeout: 2s
analysis:
  include_temp_tables: false
  detailed_join_analysis: true
  column_usage_tracking: true
catalog:
  driver: postgres
  dsn: postgres://localhost/app
  schema: public
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "after", cfg.Label)
	assert.Equal(t, []string{"xlsx", "json"}, cfg.Formats)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.Analysis.IncludeTempTables)
	assert.True(t, cfg.Analysis.DetailedJoinAnalysis)
	assert.True(t, cfg.Catalog.Enabled())
	assert.Equal(t, "public", cfg.Catalog.Schema)
	assert.True(t, cfg.HasFormat("xlsx"))
	assert.False(t, cfg.HasFormat("csv"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SQLA_LABEL", "from-env")
	t.Setenv("SQLA_FORMATS", "json, xlsx")

	path := writeConfig(t, "label: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Label)
	assert.Equal(t, []string{"json", "xlsx"}, cfg.Formats)
}

func TestLoad_UnknownFormat(t *testing.T) {
	path := writeConfig(t, "formats: [json, pdf]\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorContains(t, err, "pdf")
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{Concurrency: -1, QueryTimeout: -time.Second, Formats: []string{" CSV "}}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, []string{"csv"}, cfg.Formats)
}
