package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 9000, cfg.ClickHouse.NativePort)
	assert.Empty(t, cfg.ClickHouse.Host)
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	// An empty signing secret must refuse to load; there is no fallback.
	_, err := New()
	require.Error(t, err)
}

func TestNew_ClickHousePrefix(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "9440")
	t.Setenv("CLICKHOUSE_DB_NAME", "taskloop")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
	assert.Equal(t, 9440, cfg.ClickHouse.NativePort)
	assert.Equal(t, "taskloop", cfg.ClickHouse.DBName)
}
