package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one staff or system moderation action.
type AuditLog struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID        string         `gorm:"size:64;not null;index:idx_audit_trace" json:"trace_id"`
	ActorIdentity  string         `gorm:"size:36;not null;index:idx_audit_actor" json:"actor_identity"`
	ActorName      string         `gorm:"size:32" json:"actor_name"`
	Action         string         `gorm:"size:64;not null" json:"action"`
	TargetIdentity string         `gorm:"size:36" json:"target_identity"`
	Detail         datatypes.JSON `json:"detail"`
	Error          string         `gorm:"size:255" json:"error"`
	IP             string         `gorm:"size:45" json:"ip"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_audit_created" json:"created_at"`
}
