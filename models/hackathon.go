package models

import (
	"time"

	"gorm.io/datatypes"
)

type HackathonStatus string

const (
	HackathonStatusDraft  HackathonStatus = "draft"
	HackathonStatusActive HackathonStatus = "active"
	HackathonStatusClosed HackathonStatus = "closed"
)

func (s HackathonStatus) Valid() bool {
	return s == HackathonStatusDraft || s == HackathonStatusActive || s == HackathonStatusClosed
}

// ScoringWeights weighs the four evaluation criteria in the composite score.
type ScoringWeights struct {
	Innovation   float64 `json:"innovation"`
	Feasibility  float64 `json:"feasibility"`
	Execution    float64 `json:"execution"`
	Presentation float64 `json:"presentation"`
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Innovation: 1, Feasibility: 1, Execution: 1, Presentation: 1}
}

type Hackathon struct {
	ID                 uint32                             `gorm:"primarykey" json:"id"`
	Name               string                             `gorm:"size:150;not null" json:"name"`
	Slug               string                             `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description        string                             `gorm:"type:text" json:"description"`
	Status             HackathonStatus                    `gorm:"size:20;not null;default:'draft'" json:"status"`
	StartsAt           *time.Time                         `json:"starts_at"`
	EndsAt             *time.Time                         `json:"ends_at"`
	SubmissionDeadline *time.Time                         `json:"submission_deadline"`
	MaxTeamSize        int                                `gorm:"not null;default:4" json:"max_team_size"`
	EventInfo          datatypes.JSON                     `json:"event_info"`
	ScoringWeights     datatypes.JSONType[ScoringWeights] `json:"scoring_weights"`
	BannerPath         string                             `gorm:"size:512" json:"banner_path"`
	CreatedBy          uint32                             `gorm:"not null" json:"created_by"`
	CreatedAt          time.Time                          `json:"created_at"`
	UpdatedAt          time.Time                          `json:"updated_at"`
}

func (Hackathon) TableName() string {
	return "hackathons"
}

// DeadlinePassed reports whether submissions are closed at now.
func (h Hackathon) DeadlinePassed(now time.Time) bool {
	return h.SubmissionDeadline != nil && now.After(*h.SubmissionDeadline)
}

// HackathonAdmin is the ownership link between an admin and a hackathon.
type HackathonAdmin struct {
	ID          uint32    `gorm:"primarykey" json:"id"`
	HackathonID uint32    `gorm:"uniqueIndex:uniq_hackathon_admin;not null" json:"hackathon_id"`
	AdminID     uint32    `gorm:"uniqueIndex:uniq_hackathon_admin;not null;index" json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (HackathonAdmin) TableName() string {
	return "hackathon_admins"
}

// HackathonJudge registers a judge on a hackathon's roster.
type HackathonJudge struct {
	ID          uint32    `gorm:"primarykey" json:"id"`
	HackathonID uint32    `gorm:"uniqueIndex:uniq_hackathon_judge;not null" json:"hackathon_id"`
	JudgeID     uint32    `gorm:"uniqueIndex:uniq_hackathon_judge;not null;index" json:"judge_id"`
	Judge       User      `gorm:"foreignKey:JudgeID" json:"judge"`
	CreatedAt   time.Time `json:"created_at"`
}

func (HackathonJudge) TableName() string {
	return "hackathon_judges"
}
