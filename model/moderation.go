package model

import "time"

// Status is the review state of a report or appeal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDenied   Status = "denied"
	StatusResolved Status = "resolved"
)

// Note is a free-text staff annotation on a player. Notes never block
// gameplay; they only surface in staff tooling.
type Note struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TargetIdentity string    `gorm:"size:36;not null;index:idx_notes_target" json:"target_identity"`
	TargetName     string    `gorm:"size:32" json:"target_name"`
	IssuerIdentity string    `gorm:"size:36;not null" json:"issuer_identity"`
	IssuerName     string    `gorm:"size:32;not null" json:"issuer_name"`
	Body           string    `gorm:"size:255;not null" json:"body"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// Report is a player-filed complaint awaiting staff review.
type Report struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TargetIdentity   string     `gorm:"size:36;not null;index:idx_reports_target" json:"target_identity"`
	TargetName       string     `gorm:"size:32" json:"target_name"`
	ReporterIdentity string     `gorm:"size:36;not null" json:"reporter_identity"`
	ReporterName     string     `gorm:"size:32" json:"reporter_name"`
	Reason           string     `gorm:"size:255;not null" json:"reason"`
	Status           Status     `gorm:"size:16;not null;index:idx_reports_status" json:"status"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	ResolvedBy       string     `gorm:"size:36" json:"resolved_by"`
}

// Appeal is a request to overturn an existing punishment.
type Appeal struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PunishmentID      int64      `gorm:"not null;index:idx_appeals_punishment" json:"punishment_id"`
	AppellantIdentity string     `gorm:"size:36;not null" json:"appellant_identity"`
	AppellantName     string     `gorm:"size:32" json:"appellant_name"`
	Body              string     `gorm:"size:255;not null" json:"body"`
	Status            Status     `gorm:"size:16;not null;index:idx_appeals_status" json:"status"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	DecidedAt         *time.Time `json:"decided_at"`
	DecidedBy         string     `gorm:"size:36" json:"decided_by"`
	DecisionReason    string     `gorm:"size:255" json:"decision_reason"`
}
