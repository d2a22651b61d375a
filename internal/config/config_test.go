package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"), "")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "libmate.db", cfg.Database.Path)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 50, cfg.Seed.Books)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	file := writeFile(t, "config.yml", `
is_production: true
log_level: debug
database:
  path: from-file.db
  conn_max_lifetime: 5m
seed:
  authors: 3
`)
	t.Setenv("LIBMATE_DATABASE_PATH", "from-env.db")
	t.Setenv("LIBMATE_SEED_BOOKS", "7")

	cfg, err := Load(file, "")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 3, cfg.Seed.Authors)
	assert.Equal(t, 7, cfg.Seed.Books)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "LIBMATE_LOG_FILE=dotenv.log\n")
	t.Setenv("LIBMATE_LOG_FILE", "")
	os.Unsetenv("LIBMATE_LOG_FILE")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv.log", cfg.LogFile)
}

func TestInitConfig(t *testing.T) {
	t.Run("postgres requires dsn", func(t *testing.T) {
		cfg := Default()
		cfg.Database.Driver = DriverPostgres
		assert.Error(t, InitConfig(cfg))

		cfg.Database.DSN = "postgres://localhost/libmate"
		assert.NoError(t, InitConfig(cfg))
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := Default()
		cfg.Database.Driver = "mysql"
		assert.EqualError(t, InitConfig(cfg), `unsupported database driver "mysql"`)
	})

	t.Run("fills zero values", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, InitConfig(cfg))
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "libmate.db", cfg.Database.Path)
		assert.Equal(t, "libmate.log", cfg.LogFile)
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	})

	t.Run("negative seed counts", func(t *testing.T) {
		cfg := Default()
		cfg.Seed.Loans = -1
		assert.Error(t, InitConfig(cfg))
	})
}
