package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only.
type AuditLog struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	AdminID     uint32            `gorm:"not null;index" json:"admin_id"`
	Action      string            `gorm:"size:64;not null;index" json:"action"`
	HackathonID *uint32           `gorm:"index" json:"hackathon_id"`
	Payload     datatypes.JSONMap `json:"payload"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
