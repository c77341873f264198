package services

import (
	"context"

	"Hacknox/models"
	"Hacknox/utils"

	"gorm.io/gorm"
)

type HackathonAnalytics struct {
	HackathonID           uint32           `json:"hackathon_id"`
	Teams                 int64            `json:"teams"`
	TeamsByVerification   map[string]int64 `json:"teams_by_verification"`
	FinalizedTeams        int64            `json:"finalized_teams"`
	Participants          int64            `json:"participants"`
	Submissions           int64            `json:"submissions"`
	SubmissionsByStatus   map[string]int64 `json:"submissions_by_status"`
	Judges                int64            `json:"judges"`
	Assignments           int64            `json:"assignments"`
	EvaluationsByStatus   map[string]int64 `json:"evaluations_by_status"`
	AnnouncementsByStatus map[string]int64 `json:"announcements_by_status"`
	LeaderboardPublished  bool             `json:"leaderboard_published"`
}

func groupCount(q *gorm.DB, column string) (map[string]int64, error) {
	type row struct {
		Bucket string
		N   int64
	}
	var rows []row
	if err := q.Select(column + " AS bucket, COUNT(*) AS n").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Bucket] = r.N
	}
	return out, nil
}

func sumCounts(m map[string]int64) int64 {
	var total int64
	for _, n := range m {
		total += n
	}
	return total
}

// GetHackathonAnalytics gathers the admin dashboard counters.
func GetHackathonAnalytics(ctx context.Context, hackathonID uint32) (*HackathonAnalytics, error) {
	a := &HackathonAnalytics{HackathonID: hackathonID}
	scoped := func(model interface{}) *gorm.DB {
		return db(ctx).Model(model).Where("hackathon_id = ?", hackathonID)
	}

	var err error
	if a.TeamsByVerification, err = groupCount(scoped(&models.Team{}), "verification_status"); err != nil {
		return nil, utils.Wrap(err, "count teams")
	}
	a.Teams = sumCounts(a.TeamsByVerification)
	if err := scoped(&models.Team{}).Where("is_finalized = ?", true).Count(&a.FinalizedTeams).Error; err != nil {
		return nil, utils.Wrap(err, "count finalized teams")
	}
	if err := scoped(&models.TeamMember{}).Count(&a.Participants).Error; err != nil {
		return nil, utils.Wrap(err, "count participants")
	}
	if a.SubmissionsByStatus, err = groupCount(scoped(&models.Submission{}), "status"); err != nil {
		return nil, utils.Wrap(err, "count submissions")
	}
	a.Submissions = sumCounts(a.SubmissionsByStatus)
	if err := scoped(&models.HackathonJudge{}).Count(&a.Judges).Error; err != nil {
		return nil, utils.Wrap(err, "count judges")
	}
	if err := scoped(&models.JudgeAssignment{}).Count(&a.Assignments).Error; err != nil {
		return nil, utils.Wrap(err, "count assignments")
	}
	if a.EvaluationsByStatus, err = groupCount(scoped(&models.Evaluation{}), "status"); err != nil {
		return nil, utils.Wrap(err, "count evaluations")
	}
	if a.AnnouncementsByStatus, err = groupCount(scoped(&models.Announcement{}), "status"); err != nil {
		return nil, utils.Wrap(err, "count announcements")
	}
	setting, err := leaderboardSetting(ctx, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load leaderboard setting")
	}
	a.LeaderboardPublished = setting.IsPublished
	return a, nil
}
