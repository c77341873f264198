package services

import (
	"context"

	"Hacknox/models"
)

func IsHackathonOwner(ctx context.Context, adminID, hackathonID uint32) (bool, error) {
	var count int64
	err := db(ctx).Model(&models.HackathonAdmin{}).
		Where("hackathon_id = ? AND admin_id = ?", hackathonID, adminID).
		Count(&count).Error
	return count > 0, err
}

func HasJudgeAssignment(ctx context.Context, judgeID, hackathonID uint32) (bool, error) {
	var count int64
	err := db(ctx).Model(&models.JudgeAssignment{}).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).
		Count(&count).Error
	return count > 0, err
}

// FindParticipantTeamID returns the team the user belongs to in the hackathon.
func FindParticipantTeamID(ctx context.Context, userID, hackathonID uint32) (uint32, bool, error) {
	var teamIDs []uint32
	err := db(ctx).Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND teams.hackathon_id = ?", userID, hackathonID).
		Limit(1).
		Pluck("team_members.team_id", &teamIDs).Error
	if err != nil || len(teamIDs) == 0 {
		return 0, false, err
	}
	return teamIDs[0], true, nil
}
