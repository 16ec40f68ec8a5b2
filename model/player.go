package model

import "time"

// Player is the per-identity metadata record. Points is a decaying
// cumulative score accrued per punishment and reduced by the periodic
// decay sweep; it never goes below zero.
type Player struct {
	Identity         string    `gorm:"primaryKey;size:36" json:"identity"`
	LastName         string    `gorm:"size:32" json:"last_name"`
	LastAddress      string    `gorm:"size:45" json:"last_address"`
	FirstJoin        time.Time `gorm:"not null" json:"first_join"`
	LastSeen         time.Time `gorm:"not null" json:"last_seen"`
	Points           float64   `gorm:"not null" json:"points"`
	AddressBanExempt bool      `gorm:"not null" json:"address_ban_exempt"`
}

// PlayerAddress is one historically observed (identity, address) pair.
// Append-only and deduplicated by the unique key.
type PlayerAddress struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Identity  string    `gorm:"size:36;not null;uniqueIndex:uq_player_addresses" json:"identity"`
	Address   string    `gorm:"size:45;not null;uniqueIndex:uq_player_addresses" json:"address"`
	FirstSeen time.Time `gorm:"not null" json:"first_seen"`
	LastSeen  time.Time `gorm:"not null" json:"last_seen"`
}

// PlayerName is one historically observed (identity, name) pair.
type PlayerName struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Identity  string    `gorm:"size:36;not null;uniqueIndex:uq_player_names" json:"identity"`
	Name      string    `gorm:"size:32;not null;uniqueIndex:uq_player_names" json:"name"`
	FirstSeen time.Time `gorm:"not null" json:"first_seen"`
	LastSeen  time.Time `gorm:"not null" json:"last_seen"`
}
