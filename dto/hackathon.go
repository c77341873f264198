package dto

import (
	"encoding/json"
	"strings"
	"time"
)

type HackathonWeights struct {
	Innovation   float64 `json:"innovation"`
	Feasibility  float64 `json:"feasibility"`
	Execution    float64 `json:"execution"`
	Presentation float64 `json:"presentation"`
}

type CreateHackathonReq struct {
	Name               string            `json:"name" form:"name"`
	Slug               string            `json:"slug" form:"slug"`
	Description        string            `json:"description" form:"description"`
	Status             string            `json:"status" form:"status"`
	StartsAt           *time.Time        `json:"starts_at" form:"starts_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndsAt             *time.Time        `json:"ends_at" form:"ends_at" time_format:"2006-01-02T15:04:05Z07:00"`
	SubmissionDeadline *time.Time        `json:"submission_deadline" form:"submission_deadline" time_format:"2006-01-02T15:04:05Z07:00"`
	MaxTeamSize        int               `json:"max_team_size" form:"max_team_size"`
	EventInfo          json.RawMessage   `json:"event_info" form:"-"`
	ScoringWeights     *HackathonWeights `json:"scoring_weights" form:"-"`
}

func (r *CreateHackathonReq) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = "draft"
	}
	if r.MaxTeamSize == 0 {
		r.MaxTeamSize = 4
	}
}

type UpdateHackathonReq struct {
	Name               *string           `json:"name"`
	Description        *string           `json:"description"`
	Status             *string           `json:"status"`
	StartsAt           *time.Time        `json:"starts_at"`
	EndsAt             *time.Time        `json:"ends_at"`
	SubmissionDeadline *time.Time        `json:"submission_deadline"`
	MaxTeamSize        *int              `json:"max_team_size"`
	EventInfo          json.RawMessage   `json:"event_info"`
	ScoringWeights     *HackathonWeights `json:"scoring_weights"`
}

type AddOwnerReq struct {
	Email string `json:"email" binding:"required,email"`
}
