package cache

import (
	"testing"
	"time"

	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPunishments() *Punishments {
	return NewPunishments(config.CacheConfig{
		PunishmentMax: 64,
		PlayerMax:     64,
		CooldownMax:   64,
		// Zero TTLs keep tests free of wall-clock races; eviction behavior
		// is covered by the Bounded tests.
	})
}

func ban(identity, address string) *model.Punishment {
	return &model.Punishment{
		ID:             1,
		Type:           model.TypeBan,
		TargetIdentity: identity,
		TargetAddress:  address,
		Active:         true,
	}
}

func TestPunishmentsPutIndexesBothKeys(t *testing.T) {
	c := newTestPunishments()
	c.Put(ban("uuid-1", "10.0.0.9"))

	got, ok := c.Get(model.CategoryBan, ByIdentity, "uuid-1")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	got, ok = c.Get(model.CategoryBan, ByAddress, "10.0.0.9")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	// Wrong category, wrong key kind, empty key: all misses.
	_, ok = c.Get(model.CategoryMute, ByIdentity, "uuid-1")
	assert.False(t, ok)
	_, ok = c.Get(model.CategoryBan, ByAddress, "uuid-1")
	assert.False(t, ok)
	_, ok = c.Get(model.CategoryBan, ByIdentity, "")
	assert.False(t, ok)
}

func TestPunishmentsPutWithoutAddress(t *testing.T) {
	c := newTestPunishments()
	c.Put(ban("uuid-2", ""))

	_, ok := c.Get(model.CategoryBan, ByIdentity, "uuid-2")
	assert.True(t, ok)
	_, ok = c.Get(model.CategoryBan, ByAddress, "")
	assert.False(t, ok)
}

func TestPunishmentsUncachedCategory(t *testing.T) {
	c := newTestPunishments()
	assert.False(t, c.Cached(model.CategoryKick))
	assert.False(t, c.Cached(model.CategoryNote))
	assert.True(t, c.Cached(model.CategoryBan))

	// Putting an uncached category is a silent no-op.
	c.Put(&model.Punishment{Type: model.TypeKick, TargetIdentity: "uuid-3", Active: true})
	_, ok := c.Get(model.CategoryKick, ByIdentity, "uuid-3")
	assert.False(t, ok)
}

func TestPunishmentsInvalidateDropsBothKeys(t *testing.T) {
	c := newTestPunishments()
	c.Put(ban("uuid-4", "10.0.0.4"))

	c.Invalidate(model.CategoryBan, "uuid-4", "10.0.0.4")

	_, ok := c.Get(model.CategoryBan, ByIdentity, "uuid-4")
	assert.False(t, ok)
	_, ok = c.Get(model.CategoryBan, ByAddress, "10.0.0.4")
	assert.False(t, ok)

	// Idempotent on already-absent entries.
	c.Invalidate(model.CategoryBan, "uuid-4", "10.0.0.4")
}

func TestPunishmentsCleanupEvictsIneffective(t *testing.T) {
	c := newTestPunishments()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	expired := &model.Punishment{ID: 10, Type: model.TypeTempBan, TargetIdentity: "gone", Active: true, ExpiresAt: &past}
	live := &model.Punishment{ID: 11, Type: model.TypeTempBan, TargetIdentity: "here", Active: true, ExpiresAt: &future}
	c.Put(expired)
	c.Put(live)

	evicted := c.Cleanup(now)
	assert.Equal(t, 1, evicted)

	_, ok := c.Get(model.CategoryBan, ByIdentity, "gone")
	assert.False(t, ok)
	_, ok = c.Get(model.CategoryBan, ByIdentity, "here")
	assert.True(t, ok)
}

func TestPunishmentsPlayerTier(t *testing.T) {
	c := newTestPunishments()
	c.PutPlayer(&model.Player{Identity: "uuid-5", LastName: "alice"})

	pl, ok := c.GetPlayer("uuid-5")
	require.True(t, ok)
	assert.Equal(t, "alice", pl.LastName)

	c.InvalidatePlayer("uuid-5")
	_, ok = c.GetPlayer("uuid-5")
	assert.False(t, ok)
}

func TestPunishmentsCooldown(t *testing.T) {
	c := newTestPunishments()

	_, ok := c.Cooldown("report", "uuid-6")
	assert.False(t, ok)

	c.SetCooldown("report", "uuid-6", time.Minute)
	until, ok := c.Cooldown("report", "uuid-6")
	require.True(t, ok)
	assert.True(t, until.After(time.Now()))

	// Same action, other player: independent.
	_, ok = c.Cooldown("report", "uuid-7")
	assert.False(t, ok)

	// Lapsed cooldowns read as absent even before eviction.
	c.SetCooldown("chat", "uuid-6", -time.Second)
	_, ok = c.Cooldown("chat", "uuid-6")
	assert.False(t, ok)
}

func TestPunishmentsFrozenState(t *testing.T) {
	c := newTestPunishments()
	assert.False(t, c.IsFrozen("uuid-8"))

	c.Freeze("uuid-8")
	assert.True(t, c.IsFrozen("uuid-8"))

	c.Unfreeze("uuid-8")
	assert.False(t, c.IsFrozen("uuid-8"))
}

func TestPunishmentsStaffToggles(t *testing.T) {
	c := newTestPunishments()
	assert.False(t, c.StaffToggle("staff-1", "vanish"))

	c.SetStaffToggle("staff-1", "vanish", true)
	c.SetStaffToggle("staff-1", "staff-chat", true)
	assert.True(t, c.StaffToggle("staff-1", "vanish"))
	assert.True(t, c.StaffToggle("staff-1", "staff-chat"))
	assert.False(t, c.StaffToggle("staff-2", "vanish"))

	c.SetStaffToggle("staff-1", "vanish", false)
	assert.False(t, c.StaffToggle("staff-1", "vanish"))
	assert.True(t, c.StaffToggle("staff-1", "staff-chat"))
}

func TestPunishmentsClearAllPreservesLiveState(t *testing.T) {
	c := newTestPunishments()
	c.Put(ban("uuid-9", "10.0.0.9"))
	c.PutPlayer(&model.Player{Identity: "uuid-9"})
	c.SetCooldown("report", "uuid-9", time.Minute)
	c.Freeze("uuid-9")
	c.SetStaffToggle("staff-1", "vanish", true)

	c.ClearAll()

	_, ok := c.Get(model.CategoryBan, ByIdentity, "uuid-9")
	assert.False(t, ok)
	_, ok = c.GetPlayer("uuid-9")
	assert.False(t, ok)
	_, ok = c.Cooldown("report", "uuid-9")
	assert.False(t, ok)

	// Frozen players and staff toggles track live state, not the store.
	assert.True(t, c.IsFrozen("uuid-9"))
	assert.True(t, c.StaffToggle("staff-1", "vanish"))
}
