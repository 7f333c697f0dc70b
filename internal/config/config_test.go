package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads, restoring them afterwards.
// An empty value would count as set and override the file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "ENV", "DATABASE_DRIVER", "DATABASE_URL",
		"DATABASE_MAX_OPEN_CONNS", "DATABASE_MAX_IDLE_TIME", "HOST", "PORT",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"HTTP_SHUTDOWN_TIMEOUT", "FLASH_COOKIE_NAME", "FLASH_COOKIE_SECURE",
		"TEMPLATE_DIR", "STATIC_DIR",
	} {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
env: prod
storage:
  driver: sqlite
  dsn: /var/lib/catalog/catalog.db
http_server:
  host: 0.0.0.0
  port: "9000"
  read_timeout: 3s
flash:
  cookie_name: notice
  secure: true
template_dir: /srv/templates
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/catalog/catalog.db", cfg.Storage.DSN)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPServer.Addr())
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, "notice", cfg.Flash.CookieName)
	assert.True(t, cfg.Flash.Secure)
	assert.Equal(t, "/srv/templates", cfg.TemplateDir)
	assert.Equal(t, "web/static", cfg.StaticDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  dsn: file.db
`)
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Storage.DSN)
	assert.Equal(t, "localhost:7000", cfg.HTTPServer.Addr())
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("DATABASE_DRIVER", "pgx")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "_flash", cfg.Flash.CookieName)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  dsn: from-config-path.db
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-config-path.db", cfg.Storage.DSN)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "does not exist")
	})
	t.Run("missing dsn", func(t *testing.T) {
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  driver: oracle\n  dsn: x\n"))
		assert.ErrorContains(t, err, "unsupported storage driver")
	})
	t.Run("unknown env", func(t *testing.T) {
		_, err := Load(writeConfig(t, "env: qa\nstorage:\n  dsn: x\n"))
		assert.ErrorContains(t, err, "unsupported env")
	})
}
