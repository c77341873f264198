package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionDraft       SubmissionStatus = "draft"
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionUnderReview SubmissionStatus = "under_review"
	SubmissionShortlisted SubmissionStatus = "shortlisted"
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
)

// AdminSubmissionStatuses is the set an admin may move a submission into.
var AdminSubmissionStatuses = []SubmissionStatus{
	SubmissionSubmitted,
	SubmissionUnderReview,
	SubmissionShortlisted,
	SubmissionAccepted,
	SubmissionRejected,
}

func IsAdminSubmissionStatus(s SubmissionStatus) bool {
	for _, allowed := range AdminSubmissionStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

type Submission struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	TeamID         uint32           `gorm:"uniqueIndex:uniq_team_hackathon;not null" json:"team_id"`
	HackathonID    uint32           `gorm:"uniqueIndex:uniq_team_hackathon;not null;index" json:"hackathon_id"`
	Team           Team             `gorm:"foreignKey:TeamID" json:"-"`
	Title          string           `gorm:"size:200" json:"title"`
	Description    string           `gorm:"type:text" json:"description"`
	RepoURL        string           `gorm:"size:512" json:"repo_url"`
	DemoURL        string           `gorm:"size:512" json:"demo_url"`
	ZipStoragePath string           `gorm:"size:512" json:"-"`
	ZipFileName    string           `gorm:"size:255" json:"zip_file_name"`
	ZipSize        int64            `gorm:"default:0" json:"zip_size"`
	ZipSHA256      string           `gorm:"size:64" json:"zip_sha256"`
	Status         SubmissionStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`
	SubmittedAt    *time.Time       `json:"submitted_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
