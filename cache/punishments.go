package cache

import (
	"sync"
	"time"

	"github.com/kasuganosora/modguard/config"
	"github.com/kasuganosora/modguard/model"
)

// KeyKind distinguishes the two lookup keys a punishment tier is indexed
// by.
type KeyKind int

const (
	ByIdentity KeyKind = iota
	ByAddress
)

// cachedCategories are the punishment categories worth a cache tier: the
// ones checked on every chat message and login. Kick is instantaneous and
// notes never block, so neither earns a tier.
var cachedCategories = []model.Category{
	model.CategoryBan,
	model.CategoryMute,
	model.CategoryWarn,
	model.CategoryFreeze,
}

type tier struct {
	byIdentity *Bounded[string, *model.Punishment]
	byAddress  *Bounded[string, *model.Punishment]
}

// CooldownKey identifies one rate-limited action per player.
type CooldownKey struct {
	Action   string
	Identity string
}

// Punishments is the tiered in-memory projection of the punishment store.
// It is always best-effort: a hit must be re-validated against the
// time-derived effective check by the caller, and a miss says nothing (a
// confirmed miss is never cached).
type Punishments struct {
	tiers     map[model.Category]*tier
	players   *Bounded[string, *model.Player]
	cooldowns *Bounded[CooldownKey, time.Time]
	frozen    sync.Map // identity → struct{}
	staff     sync.Map // identity → toggle name set (*sync.Map)
}

// NewPunishments builds every cache tier from config. Punishment tiers
// expire after write; the player tier expires after access so active
// players stay resident.
func NewPunishments(cfg config.CacheConfig) *Punishments {
	p := &Punishments{
		tiers:     make(map[model.Category]*tier, len(cachedCategories)),
		players:   NewBounded[string, *model.Player](cfg.PlayerMax, cfg.PlayerTTL, ExpireAfterAccess),
		cooldowns: NewBounded[CooldownKey, time.Time](cfg.CooldownMax, cfg.CooldownTTL, ExpireAfterWrite),
	}
	for _, cat := range cachedCategories {
		p.tiers[cat] = &tier{
			byIdentity: NewBounded[string, *model.Punishment](cfg.PunishmentMax, cfg.PunishmentTTL, ExpireAfterWrite),
			byAddress:  NewBounded[string, *model.Punishment](cfg.PunishmentMax, cfg.PunishmentTTL, ExpireAfterWrite),
		}
	}
	return p
}

// Cached reports whether the category has a cache tier at all.
func (p *Punishments) Cached(cat model.Category) bool {
	_, ok := p.tiers[cat]
	return ok
}

// Get returns the cached punishment for the given category and key, or
// absent. It never reaches the store; that orchestration belongs to the
// service.
func (p *Punishments) Get(cat model.Category, kind KeyKind, key string) (*model.Punishment, bool) {
	t, ok := p.tiers[cat]
	if !ok || key == "" {
		return nil, false
	}
	if kind == ByAddress {
		return t.byAddress.Get(key)
	}
	return t.byIdentity.Get(key)
}

// Put populates the tier for the punishment's category under both its
// identity key and, when set, its address key.
func (p *Punishments) Put(pun *model.Punishment) {
	t, ok := p.tiers[pun.Type.Category()]
	if !ok {
		return
	}
	if pun.TargetIdentity != "" {
		t.byIdentity.Put(pun.TargetIdentity, pun)
	}
	if pun.TargetAddress != "" {
		t.byAddress.Put(pun.TargetAddress, pun)
	}
}

// Invalidate drops both the identity-keyed and address-keyed entries for
// the category. Called unconditionally on revocation, even when the entry
// is already stale, so a racing repopulation cannot leak a removed
// punishment back in.
func (p *Punishments) Invalidate(cat model.Category, identity, address string) {
	t, ok := p.tiers[cat]
	if !ok {
		return
	}
	if identity != "" {
		t.byIdentity.Invalidate(identity)
	}
	if address != "" {
		t.byAddress.Invalidate(address)
	}
}

// GetPlayer returns the cached player record, or absent.
func (p *Punishments) GetPlayer(identity string) (*model.Player, bool) {
	return p.players.Get(identity)
}

// PutPlayer caches a player record.
func (p *Punishments) PutPlayer(pl *model.Player) {
	p.players.Put(pl.Identity, pl)
}

// InvalidatePlayer drops a cached player record.
func (p *Punishments) InvalidatePlayer(identity string) {
	p.players.Invalidate(identity)
}

// Cooldown returns the expiry of an active cooldown for (action,
// identity), or absent when no cooldown applies.
func (p *Punishments) Cooldown(action, identity string) (time.Time, bool) {
	until, ok := p.cooldowns.Get(CooldownKey{Action: action, Identity: identity})
	if !ok || time.Now().After(until) {
		return time.Time{}, false
	}
	return until, true
}

// SetCooldown records a cooldown for (action, identity) lasting d.
func (p *Punishments) SetCooldown(action, identity string, d time.Duration) {
	p.cooldowns.Put(CooldownKey{Action: action, Identity: identity}, time.Now().Add(d))
}

// Freeze marks an online player as frozen. Frozen state is scoped to the
// online-player count, not time-evicted.
func (p *Punishments) Freeze(identity string) {
	p.frozen.Store(identity, struct{}{})
}

// Unfreeze clears frozen state for a player.
func (p *Punishments) Unfreeze(identity string) {
	p.frozen.Delete(identity)
}

// IsFrozen reports whether the player is currently frozen.
func (p *Punishments) IsFrozen(identity string) bool {
	_, ok := p.frozen.Load(identity)
	return ok
}

// SetStaffToggle flips a named staff toggle (vanish, staff-chat, ...) for
// the given staff identity.
func (p *Punishments) SetStaffToggle(identity, toggle string, on bool) {
	v, _ := p.staff.LoadOrStore(identity, &sync.Map{})
	set := v.(*sync.Map)
	if on {
		set.Store(toggle, struct{}{})
	} else {
		set.Delete(toggle)
	}
}

// StaffToggle reports whether the named toggle is on for the identity.
func (p *Punishments) StaffToggle(identity, toggle string) bool {
	v, ok := p.staff.Load(identity)
	if !ok {
		return false
	}
	_, on := v.(*sync.Map).Load(toggle)
	return on
}

// Cleanup evicts punishment entries that are no longer effective at the
// given instant. Purely memory hygiene: every read re-validates on the hit
// path regardless, so correctness never depends on this running.
func (p *Punishments) Cleanup(now time.Time) int {
	total := 0
	for _, t := range p.tiers {
		keep := func(pun *model.Punishment) bool { return pun.EffectiveAt(now) }
		total += t.byIdentity.EvictIf(keep)
		total += t.byAddress.EvictIf(keep)
	}
	return total
}

// ClearAll drops every bounded tier wholesale (full reconfiguration).
// Staff toggles and frozen state survive: they track live operator and
// gameplay state, not store projections.
func (p *Punishments) ClearAll() {
	for _, t := range p.tiers {
		t.byIdentity.Clear()
		t.byAddress.Clear()
	}
	p.players.Clear()
	p.cooldowns.Clear()
}
