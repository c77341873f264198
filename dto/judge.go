package dto

import "time"

type CreateJudgeReq struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

type AssignmentPair struct {
	JudgeID uint32 `json:"judge_id" binding:"required"`
	TeamID  uint32 `json:"team_id" binding:"required"`
}

type AssignReq struct {
	Assignments []AssignmentPair `json:"assignments" binding:"required,dive"`
}

type ReassignReq struct {
	TeamID     uint32 `json:"team_id" binding:"required"`
	OldJudgeID uint32 `json:"old_judge_id" binding:"required"`
	NewJudgeID uint32 `json:"new_judge_id" binding:"required"`
}

type EvaluationReq struct {
	Innovation   *float64 `json:"innovation"`
	Feasibility  *float64 `json:"feasibility"`
	Execution    *float64 `json:"execution"`
	Presentation *float64 `json:"presentation"`
	Comments     string   `json:"comments"`
}

type LockEvaluationReq struct {
	Locked bool `json:"locked"`
}

type PublishLeaderboardReq struct {
	Published bool `json:"published"`
}

type JudgeResp struct {
	ID              uint32    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AssignmentCount int64     `json:"assignment_count"`
	AddedAt         time.Time `json:"added_at"`
}

type AssignedTeamResp struct {
	TeamID           uint32     `json:"team_id"`
	TeamName         string     `json:"team_name"`
	HackathonID      uint32     `json:"hackathon_id"`
	SubmissionID     *uint64    `json:"submission_id"`
	SubmissionTitle  string     `json:"submission_title"`
	SubmissionStatus string     `json:"submission_status"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	EvaluationStatus string     `json:"evaluation_status"`
	AssignedAt       time.Time  `json:"assigned_at"`
}

type JudgeDashboardResp struct {
	Assigned  int `json:"assigned"`
	Submitted int `json:"submitted"`
	Drafts    int `json:"drafts"`
	Pending   int `json:"pending"`
	Locked    int `json:"locked"`
}

type LeaderboardResp struct {
	HackathonID uint32                 `json:"hackathon_id"`
	Published   bool                   `json:"published"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	Entries     []LeaderboardEntryResp `json:"entries"`
}

type LeaderboardEntryResp struct {
	Rank           uint       `json:"rank"`
	TeamID         uint32     `json:"team_id"`
	TeamName       string     `json:"team_name"`
	CompositeScore float64    `json:"composite_score"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}

type AssignmentResp struct {
	ID        uint64    `json:"id"`
	JudgeID   uint32    `json:"judge_id"`
	JudgeName string    `json:"judge_name"`
	TeamID    uint32    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

type AutoBalanceResp struct {
	Assignments int `json:"assignments"`
	Added       int `json:"added"`
	Removed     int `json:"removed"`
}
