package model

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies a punishment variant.
type Type string

const (
	TypeBan      Type = "ban"
	TypeTempBan  Type = "tempban"
	TypeIPBan    Type = "ipban"
	TypeMute     Type = "mute"
	TypeTempMute Type = "tempmute"
	TypeIPMute   Type = "ipmute"
	TypeKick     Type = "kick"
	TypeWarn     Type = "warn"
	TypeFreeze   Type = "freeze"
	TypeNote     Type = "note"
)

// Category groups punishment variants that share a uniqueness domain:
// at most one effective punishment per category per target.
type Category string

const (
	CategoryBan    Category = "ban"
	CategoryMute   Category = "mute"
	CategoryKick   Category = "kick"
	CategoryWarn   Category = "warn"
	CategoryFreeze Category = "freeze"
	CategoryNote   Category = "note"
)

// ConsoleIdentity is the sentinel issuer identity for punishments created
// by the server itself rather than a staff member.
var ConsoleIdentity = uuid.Nil.String()

// ConsoleName is the display name used with ConsoleIdentity.
const ConsoleName = "Console"

type typeInfo struct {
	category Category
	base     Type
	duration bool
}

var typeTable = map[Type]typeInfo{
	TypeBan:      {CategoryBan, TypeBan, false},
	TypeTempBan:  {CategoryBan, TypeBan, true},
	TypeIPBan:    {CategoryBan, TypeBan, false},
	TypeMute:     {CategoryMute, TypeMute, false},
	TypeTempMute: {CategoryMute, TypeMute, true},
	TypeIPMute:   {CategoryMute, TypeMute, false},
	TypeKick:     {CategoryKick, TypeKick, false},
	TypeWarn:     {CategoryWarn, TypeWarn, true},
	TypeFreeze:   {CategoryFreeze, TypeFreeze, false},
	TypeNote:     {CategoryNote, TypeNote, false},
}

// Valid reports whether t is a known punishment type.
func (t Type) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// Category returns the uniqueness category for t.
func (t Type) Category() Category {
	return typeTable[t].category
}

// Base collapses temporary and address variants onto their base type
// (tempban/ipban → ban, tempmute/ipmute → mute).
func (t Type) Base() Type {
	return typeTable[t].base
}

// HasDuration reports whether t accepts an expiry duration.
func (t Type) HasDuration() bool {
	return typeTable[t].duration
}

// TypesInCategory returns every variant belonging to the given category,
// in a fixed order suitable for IN clauses.
func TypesInCategory(c Category) []Type {
	var out []Type
	for _, t := range []Type{
		TypeBan, TypeTempBan, TypeIPBan,
		TypeMute, TypeTempMute, TypeIPMute,
		TypeKick, TypeWarn, TypeFreeze, TypeNote,
	} {
		if typeTable[t].category == c {
			out = append(out, t)
		}
	}
	return out
}

// Punishment is one moderation action against a player identity and/or a
// network address. Rows are append-only except for the single removal
// mutation: Active flips to false exactly once and never back. Reissuing a
// punishment always creates a new row.
type Punishment struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type              Type       `gorm:"size:16;not null;index:idx_punishments_type" json:"type"`
	TargetIdentity    string     `gorm:"size:36;index:idx_punishments_target" json:"target_identity"`
	TargetName        string     `gorm:"size:32" json:"target_name"`
	TargetAddress     string     `gorm:"size:45;index:idx_punishments_address" json:"target_address"`
	IssuerIdentity    string     `gorm:"size:36;not null;index:idx_punishments_issuer" json:"issuer_identity"`
	IssuerName        string     `gorm:"size:32;not null" json:"issuer_name"`
	Reason            string     `gorm:"size:255" json:"reason"`
	OriginServer      string     `gorm:"size:64" json:"origin_server"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	Active            bool       `gorm:"not null;index:idx_punishments_active" json:"active"`
	RemovedAt         *time.Time `json:"removed_at"`
	RemovedByIdentity string     `gorm:"size:36" json:"removed_by_identity"`
	RemovedByName     string     `gorm:"size:32" json:"removed_by_name"`
	RemoveReason      string     `gorm:"size:255" json:"remove_reason"`
	Silent            bool       `gorm:"not null" json:"silent"`
	AddressBased      bool       `gorm:"column:is_address_based;not null" json:"is_address_based"`
}

// Expired reports whether the punishment's expiry has passed at the given
// instant. Permanent punishments (nil ExpiresAt) never expire.
func (p *Punishment) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// EffectiveAt reports whether the punishment should block gameplay at the
// given instant: still active and not expired. This is derived state, never
// stored.
func (p *Punishment) EffectiveAt(now time.Time) bool {
	return p.Active && !p.Expired(now)
}

// Remaining returns the time left until expiry. For permanent punishments
// it returns bounded=false.
func (p *Punishment) Remaining(now time.Time) (d time.Duration, bounded bool) {
	if p.ExpiresAt == nil {
		return 0, false
	}
	d = p.ExpiresAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Permanent reports whether the punishment has no expiry.
func (p *Punishment) Permanent() bool {
	return p.ExpiresAt == nil
}
