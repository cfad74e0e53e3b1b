package models

import "time"

// Audit actions recorded by the coordinator.
const (
	AuditActionCreate        = "CREATE"
	AuditActionJoinSession   = "JOIN_SESSION"
	AuditActionCancel        = "CANCEL"
	AuditActionExpireSession = "EXPIRE_SESSION"
	AuditActionConsume       = "CONSUME_PAIRING"
)

// AuditLog rows are written inside the same transaction as the mutation
// they describe, so an audit entry never exists for a change that did not
// commit.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActorID      *uint     `gorm:"index" json:"actor_id,omitempty"`
	ActorRole    string    `gorm:"type:varchar(50)" json:"actor_role"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(50);not null" json:"resource_type"`
	ResourceID   string    `gorm:"type:varchar(50);not null" json:"resource_id"`
	Meta         string    `gorm:"type:text" json:"meta"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
