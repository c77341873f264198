package models

import "time"

type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "draft"
	EvaluationSubmitted EvaluationStatus = "submitted"
)

const (
	MinSubScore = 0.0
	MaxSubScore = 10.0
)

type Evaluation struct {
	ID              uint64           `gorm:"primarykey" json:"id"`
	JudgeID         uint32           `gorm:"uniqueIndex:uniq_eval_judge_team;not null" json:"judge_id"`
	TeamID          uint32           `gorm:"uniqueIndex:uniq_eval_judge_team;not null;index" json:"team_id"`
	HackathonID     uint32           `gorm:"not null;index" json:"hackathon_id"`
	Innovation      float64          `gorm:"not null;default:0" json:"innovation"`
	Feasibility     float64          `gorm:"not null;default:0" json:"feasibility"`
	Execution       float64          `gorm:"not null;default:0" json:"execution"`
	Presentation    float64          `gorm:"not null;default:0" json:"presentation"`
	Comments        string           `gorm:"type:text" json:"comments"`
	Status          EvaluationStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	IsLockedByAdmin bool             `gorm:"not null;default:false" json:"is_locked_by_admin"`
	SubmittedAt     *time.Time       `json:"submitted_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
