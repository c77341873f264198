package dto

import (
	"encoding/json"
	"strings"
	"time"
)

type AnnouncementReq struct {
	Title          string          `json:"title" binding:"required,max=200"`
	Content        string          `json:"content" binding:"required"`
	TargetCriteria json.RawMessage `json:"target_criteria"`
	ScheduledAt    *time.Time      `json:"scheduled_at"`
	SendNow        bool            `json:"send_now"`
}

func (r *AnnouncementReq) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
}

type ScheduleAnnouncementReq struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

type NotificationResp struct {
	ID          uint32     `json:"id"`
	HackathonID uint32     `json:"hackathon_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	SentAt      *time.Time `json:"sent_at"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}
