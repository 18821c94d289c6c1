package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_MAX_OPEN_CONNS", "CORS_ALLOWED_ORIGINS", "REDIS_ADDR", "QUERY_HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "root", cfg.DBUser)
	assert.Empty(t, cfg.DBPassword)
	assert.Empty(t, cfg.DBName)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 100, cfg.QueryHistoryLimit)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DB_HOST=db.internal\nDB_PORT=3307\nDB_NAME=shop\nPORT=8080\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "3307", cfg.DBPort)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestProcessEnvironmentWinsOverEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "admin")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_USER=fromfile\n"), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.DBUser)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	assert.Equal(t, 42, GetEnvInt("TEST_ENV_INT", 10))

	t.Setenv("TEST_ENV_INT", "not-a-number")
	assert.Equal(t, 10, GetEnvInt("TEST_ENV_INT", 10))

	os.Unsetenv("TEST_ENV_INT")
	assert.Equal(t, 10, GetEnvInt("TEST_ENV_INT", 10))
}

func TestMySQLConfig(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     "3306",
		DBUser:     "root",
		DBPassword: "secret",
	}

	mc := cfg.MySQLConfig("shop")

	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "root", mc.User)
	assert.Equal(t, "secret", mc.Passwd)
	assert.Equal(t, "shop", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.True(t, mc.ClientFoundRows)
	assert.False(t, mc.MultiStatements)
}

func TestMySQLConfigAddr(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"localhost", "localhost:3306"},
		{"10.0.0.5", "10.0.0.5:3306"},
		{"::1", "[::1]:3306"},
		{"fe80::1%eth0", "[fe80::1%eth0]:3306"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			cfg := &Config{DBHost: tt.host, DBPort: "3306"}
			assert.Equal(t, tt.want, cfg.MySQLConfig("").Addr)
		})
	}
}
