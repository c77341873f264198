package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnnouncementStatus string

const (
	AnnouncementDraft     AnnouncementStatus = "draft"
	AnnouncementScheduled AnnouncementStatus = "scheduled"
	AnnouncementSent      AnnouncementStatus = "sent"
)

type Announcement struct {
	ID             uint32             `gorm:"primarykey" json:"id"`
	HackathonID    uint32             `gorm:"not null;index" json:"hackathon_id"`
	Title          string             `gorm:"size:200;not null" json:"title"`
	Content        string             `gorm:"type:text;not null" json:"content"`
	TargetCriteria datatypes.JSON     `json:"target_criteria"`
	Status         AnnouncementStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	ScheduledAt    *time.Time         `gorm:"index" json:"scheduled_at"`
	SentAt         *time.Time         `json:"sent_at"`
	CreatedBy      uint32             `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}

type UserNotificationRead struct {
	ID             uint64    `gorm:"primarykey" json:"-"`
	UserID         uint32    `gorm:"uniqueIndex:uniq_user_notification;not null" json:"user_id"`
	AnnouncementID uint32    `gorm:"uniqueIndex:uniq_user_notification;not null" json:"announcement_id"`
	ReadAt         time.Time `gorm:"not null" json:"read_at"`
}

func (UserNotificationRead) TableName() string {
	return "user_notification_reads"
}
