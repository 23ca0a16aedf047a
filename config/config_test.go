package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "dmc_inventory.db", cfg.Database.Path)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.Enabled())
	assert.Zero(t, cfg.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/relief")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/relief", cfg.Database.URL)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestPostgresURL(t *testing.T) {
	d := Database{URL: "postgres://u:p@db:5432/relief"}
	assert.Equal(t, "postgres://u:p@db:5432/relief?sslmode=require&search_path=public", d.PostgresURL())

	d = Database{URL: "postgres://u:p@db/relief?sslmode=disable"}
	assert.Equal(t, "postgres://u:p@db/relief?sslmode=disable&search_path=public", d.PostgresURL())

	assert.Contains(t, Database{}.PostgresURL(), "dbname=dmc_inventory")
}

func TestOpenDBSQLite(t *testing.T) {
	db, err := OpenDB(Database{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db"), LogLevel: "silent"})
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	_, err = OpenDB(Database{Driver: "oracle"})
	assert.Error(t, err)
}
