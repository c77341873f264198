package models

import (
	"time"
)

// TeamScore caches the aggregated judge scores of one team.
type TeamScore struct {
	ID               uint64    `gorm:"primarykey" json:"-"`
	HackathonID      uint32    `gorm:"uniqueIndex:uniq_score_team;not null" json:"hackathon_id"`
	TeamID           uint32    `gorm:"uniqueIndex:uniq_score_team;not null" json:"team_id"`
	AvgInnovation    float64   `json:"avg_innovation"`
	AvgFeasibility   float64   `json:"avg_feasibility"`
	AvgExecution     float64   `json:"avg_execution"`
	AvgPresentation  float64   `json:"avg_presentation"`
	CompositeScore   float64   `json:"composite_score"`
	EvaluationsCount int       `json:"evaluations_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (TeamScore) TableName() string {
	return "team_scores"
}

// LeaderboardEntry is one ranked row of a computed leaderboard.
type LeaderboardEntry struct {
	ID             uint64     `gorm:"primarykey" json:"-"`
	HackathonID    uint32     `gorm:"not null;index" json:"hackathon_id"`
	TeamID         uint32     `gorm:"not null" json:"team_id"`
	TeamName       string     `gorm:"size:100;not null" json:"team_name"`
	CompositeScore float64    `json:"composite_score"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	Rank           uint       `gorm:"not null" json:"rank"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}

// LeaderboardSetting gates the public leaderboard of a hackathon.
type LeaderboardSetting struct {
	HackathonID uint32     `gorm:"primaryKey;autoIncrement:false" json:"hackathon_id"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedBy *uint32    `json:"published_by"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LeaderboardSetting) TableName() string {
	return "leaderboard_settings"
}
