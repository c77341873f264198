package models

import (
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	return s == VerificationPending || s == VerificationVerified || s == VerificationRejected
}

type Team struct {
	ID                 uint32             `gorm:"primarykey" json:"id"`
	HackathonID        uint32             `gorm:"uniqueIndex:uniq_team_name;not null;index" json:"hackathon_id"`
	Name               string             `gorm:"uniqueIndex:uniq_team_name;size:100;not null" json:"name"`
	JoinCode           string             `gorm:"size:6;uniqueIndex;not null" json:"join_code"`
	LeaderID           uint32             `gorm:"not null" json:"leader_id"`
	Leader             User               `gorm:"foreignKey:LeaderID" json:"leader"`
	Description        string             `gorm:"type:text" json:"description"`
	IsFinalized        bool               `gorm:"not null;default:false" json:"is_finalized"`
	VerificationStatus VerificationStatus `gorm:"size:20;not null;default:'pending'" json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Members            []TeamMember       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members"`
}

func (Team) TableName() string {
	return "teams"
}
