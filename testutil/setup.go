package testutil

import (
	"testing"

	"github.com/kasuganosora/modguard/async"
	"github.com/kasuganosora/modguard/cache"
	"github.com/kasuganosora/modguard/config"
	dbadapter "github.com/kasuganosora/modguard/db"
	"github.com/kasuganosora/modguard/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB opens an in-memory SQLite database and creates the full
// canonical schema through the translator. It requires no external
// services.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Backend: dbadapter.BackendSQLite,
		Path:    ":memory:",
		// Keep the single pooled connection alive: closing it would
		// discard the in-memory database between operations.
		MinIdle: 1,
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, schema.CreateAll(db, schema.SQLite, ""), "SetupTestDB: CreateAll")
	return db
}

// CacheConfig returns cache bounds suitable for tests.
func CacheConfig() config.CacheConfig {
	return config.CacheConfig{
		PunishmentMax: 128,
		PunishmentTTL: 0, // no time eviction; validity checks still apply
		PlayerMax:     128,
		PlayerTTL:     0,
		CooldownMax:   32,
		CooldownTTL:   0,
	}
}

// SetupTestCache creates the cache tiers with test bounds.
func SetupTestCache(t *testing.T) *cache.Punishments {
	t.Helper()
	return cache.NewPunishments(CacheConfig())
}

// SetupTestPool creates a small worker pool and closes it with the test.
func SetupTestPool(t *testing.T) *async.Pool {
	t.Helper()
	pool := async.NewPool(2, 32, zap.NewNop())
	t.Cleanup(pool.Close)
	return pool
}
