package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "authgraph.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Auth.BypassPermission)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authgraph.yaml")
	content := `
storage:
  driver: postgres
  postgres:
    dsn: postgres://localhost:5432/authgraph
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost:5432/authgraph", cfg.Storage.Postgres.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authgraph.yaml")
	content := `
storage:
  driver: sqlite
  sqlite:
    path: from-file.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("AUTHGRAPH_SQLITE_PATH", "from-env.db")
	t.Setenv("AUTHGRAPH_BYPASS_PERMISSION", "governance.override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, "governance.override", cfg.Auth.BypassPermission)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("AUTHGRAPH_DB_DRIVER", "oracle")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = DriverPostgres
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authgraph.yaml")

	cfg := Default()
	cfg.Storage.SQLite.Path = "/var/lib/authgraph/graph.db"
	require.NoError(t, Write(cfg, path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/authgraph/graph.db", loaded.Storage.SQLite.Path)
}
