package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")

	require.NoError(t, Load(nil))

	assert.Equal(t, ":5000", Cfg.ServerAddr)
	assert.Equal(t, "mysql", Cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, Cfg.TokenTTL)
	assert.Equal(t, Cfg.MysqlDSN, Cfg.DSN())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	require.NoError(t, Load(nil))

	assert.Equal(t, ":9090", Cfg.ServerAddr)
	assert.Equal(t, "/tmp/x.db", Cfg.DSN())
	assert.Equal(t, 2*time.Hour, Cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, Cfg.CORSOrigins)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "warn")

	require.NoError(t, Load([]string{"--addr", "127.0.0.1:7000", "--log-level=debug", "--db-driver", "sqlite3"}))

	assert.Equal(t, "127.0.0.1:7000", Cfg.ServerAddr)
	assert.Equal(t, "debug", Cfg.LogLevel)
	assert.Equal(t, "sqlite3", Cfg.DBDriver)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")

	require.NoError(t, Load(nil))
	assert.Equal(t, 7*24*time.Hour, Cfg.TokenTTL)
}

func TestLoadUnknownFlag(t *testing.T) {
	assert.Error(t, Load([]string{"--no-such-flag"}))
}
