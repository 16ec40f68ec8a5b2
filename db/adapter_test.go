package db

import (
	"testing"

	"github.com/kasuganosora/modguard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{
		Backend: BackendSQLite,
		Path:    ":memory:",
		MaxOpen: 10,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	// SQLite is pinned to one connection regardless of config.
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, sqlDB.Ping())
}

func TestOpenH2Unsupported(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Backend: BackendH2})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Backend: "oracle"})
	assert.Error(t, err)
}
