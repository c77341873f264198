package mappers

import (
	"Hacknox/dto"
	"Hacknox/models"
)

// MapSubmissionToResp fills zipURL (a signed link) only when the caller may download.
func MapSubmissionToResp(s models.Submission, zipURL string) dto.SubmissionResp {
	return dto.SubmissionResp{
		ID:          s.ID,
		TeamID:      s.TeamID,
		TeamName:    s.Team.Name,
		HackathonID: s.HackathonID,
		Title:       s.Title,
		Description: s.Description,
		RepoURL:     s.RepoURL,
		DemoURL:     s.DemoURL,
		ZipFileName: s.ZipFileName,
		ZipSize:     s.ZipSize,
		ZipSHA256:   s.ZipSHA256,
		ZipURL:      zipURL,
		Status:      string(s.Status),
		SubmittedAt: s.SubmittedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
