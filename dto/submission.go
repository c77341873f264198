package dto

import (
	"strings"
	"time"
)

// SubmissionDraftForm is bound from the multipart draft upload or a JSON body.
type SubmissionDraftForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	RepoURL     string `form:"repo_url" json:"repo_url"`
	DemoURL     string `form:"demo_url" json:"demo_url"`
}

func (f *SubmissionDraftForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.RepoURL = strings.TrimSpace(f.RepoURL)
	f.DemoURL = strings.TrimSpace(f.DemoURL)
}

type UpdateSubmissionReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	RepoURL     *string `json:"repo_url"`
	DemoURL     *string `json:"demo_url"`
}

type SubmissionStatusReq struct {
	Status string `json:"status" binding:"required"`
}

type SubmissionResp struct {
	ID          uint64     `json:"id"`
	TeamID      uint32     `json:"team_id"`
	TeamName    string     `json:"team_name,omitempty"`
	HackathonID uint32     `json:"hackathon_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	RepoURL     string     `json:"repo_url"`
	DemoURL     string     `json:"demo_url"`
	ZipFileName string     `json:"zip_file_name,omitempty"`
	ZipSize     int64      `json:"zip_size,omitempty"`
	ZipSHA256   string     `json:"zip_sha256,omitempty"`
	ZipURL      string     `json:"zip_url,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
