package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

type TeamInvitation struct {
	ID          uint32           `gorm:"primarykey" json:"id"`
	Token       string           `gorm:"size:64;uniqueIndex;not null" json:"-"`
	TeamID      uint32           `gorm:"not null;index" json:"team_id"`
	HackathonID uint32           `gorm:"not null" json:"hackathon_id"`
	Email       string           `gorm:"size:100;not null;index" json:"email"`
	InvitedBy   uint32           `gorm:"not null" json:"invited_by"`
	Status      InvitationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time       `json:"accepted_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (TeamInvitation) TableName() string {
	return "team_invitations"
}

func (i TeamInvitation) Expired(now time.Time) bool {
	return i.Status == InvitationExpired || now.After(i.ExpiresAt)
}
