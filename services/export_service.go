package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"Hacknox/utils"
)

var exporters = map[string]func(ctx context.Context, hackathonID uint32) ([]*utils.Record, error){
	"teams":       exportTeams,
	"submissions": exportSubmissions,
	"evaluations": exportEvaluations,
	"leaderboard": exportLeaderboard,
}

// ExportCSV renders one resource of the hackathon as CSV.
func ExportCSV(ctx context.Context, hackathonID uint32, resource string) ([]byte, string, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	export, ok := exporters[resource]
	if !ok {
		return nil, "", utils.NewValidation("resource must be one of teams, submissions, evaluations, leaderboard")
	}
	records, err := export(ctx, hackathonID)
	if err != nil {
		return nil, "", err
	}
	data, err := utils.EncodeCSV(records)
	if err != nil {
		return nil, "", utils.Wrap(err, "encode csv")
	}
	return data, fmt.Sprintf("hackathon-%d-%s.csv", hackathonID, resource), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func exportTeams(ctx context.Context, hackathonID uint32) ([]*utils.Record, error) {
	teams, err := ListTeams(ctx, hackathonID, "")
	if err != nil {
		return nil, err
	}
	records := make([]*utils.Record, 0, len(teams))
	for _, t := range teams {
		names := make([]string, 0, len(t.Members))
		emails := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			names = append(names, m.User.Name)
			emails = append(emails, m.User.Email)
		}
		created := t.CreatedAt
		records = append(records, utils.NewRecord().
			Set("team_id", strconv.FormatUint(uint64(t.ID), 10)).
			Set("name", t.Name).
			Set("leader_id", strconv.FormatUint(uint64(t.LeaderID), 10)).
			Set("member_count", strconv.Itoa(len(t.Members))).
			Set("members", strings.Join(names, "; ")).
			Set("member_emails", strings.Join(emails, "; ")).
			Set("is_finalized", strconv.FormatBool(t.IsFinalized)).
			Set("verification_status", string(t.VerificationStatus)).
			Set("created_at", formatTime(&created)))
	}
	return records, nil
}

func exportSubmissions(ctx context.Context, hackathonID uint32) ([]*utils.Record, error) {
	submissions, err := ListSubmissions(ctx, hackathonID, "")
	if err != nil {
		return nil, err
	}
	records := make([]*utils.Record, 0, len(submissions))
	for _, s := range submissions {
		records = append(records, utils.NewRecord().
			Set("submission_id", strconv.FormatUint(s.ID, 10)).
			Set("team_id", strconv.FormatUint(uint64(s.TeamID), 10)).
			Set("team_name", s.Team.Name).
			Set("title", s.Title).
			Set("repo_url", s.RepoURL).
			Set("demo_url", s.DemoURL).
			Set("zip_file_name", s.ZipFileName).
			Set("zip_sha256", s.ZipSHA256).
			Set("status", string(s.Status)).
			Set("submitted_at", formatTime(s.SubmittedAt)))
	}
	return records, nil
}

func exportEvaluations(ctx context.Context, hackathonID uint32) ([]*utils.Record, error) {
	evaluations, err := ListEvaluations(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	records := make([]*utils.Record, 0, len(evaluations))
	for _, e := range evaluations {
		records = append(records, utils.NewRecord().
			Set("evaluation_id", strconv.FormatUint(e.ID, 10)).
			Set("team_id", strconv.FormatUint(uint64(e.TeamID), 10)).
			Set("judge_id", strconv.FormatUint(uint64(e.JudgeID), 10)).
			Set("innovation", formatScore(e.Innovation)).
			Set("feasibility", formatScore(e.Feasibility)).
			Set("execution", formatScore(e.Execution)).
			Set("presentation", formatScore(e.Presentation)).
			Set("comments", e.Comments).
			Set("status", string(e.Status)).
			Set("locked", strconv.FormatBool(e.IsLockedByAdmin)).
			Set("submitted_at", formatTime(e.SubmittedAt)))
	}
	return records, nil
}

func exportLeaderboard(ctx context.Context, hackathonID uint32) ([]*utils.Record, error) {
	board, err := GetLeaderboard(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	records := make([]*utils.Record, 0, len(board.Entries))
	for _, e := range board.Entries {
		records = append(records, utils.NewRecord().
			Set("rank", strconv.FormatUint(uint64(e.Rank), 10)).
			Set("team_id", strconv.FormatUint(uint64(e.TeamID), 10)).
			Set("team_name", e.TeamName).
			Set("composite_score", formatScore(e.CompositeScore)).
			Set("submitted_at", formatTime(e.SubmittedAt)))
	}
	return records, nil
}
