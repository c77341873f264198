package mappers

import (
	"Hacknox/dto"
	"Hacknox/models"
)

func MapUserToResp(u models.User) dto.UserResp {
	return dto.UserResp{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Role:                string(u.Role),
		City:                u.City,
		College:             u.College,
		Category:            u.Category,
		EmailVerified:       u.EmailVerified,
		NotifyAnnouncements: u.NotifyAnnouncements,
		NotifyTeamUpdates:   u.NotifyTeamUpdates,
	}
}

// MapTeamToResp includes the join code only when withCode is set (members and admins).
func MapTeamToResp(t models.Team, withCode bool) dto.TeamResp {
	resp := dto.TeamResp{
		ID:                 t.ID,
		HackathonID:        t.HackathonID,
		Name:               t.Name,
		LeaderID:           t.LeaderID,
		Description:        t.Description,
		IsFinalized:        t.IsFinalized,
		VerificationStatus: string(t.VerificationStatus),
		MemberCount:        len(t.Members),
		CreatedAt:          t.CreatedAt,
	}
	if withCode {
		resp.JoinCode = t.JoinCode
	}
	if len(t.Members) > 0 {
		resp.Members = make([]dto.TeamMemberResp, 0, len(t.Members))
		for _, m := range t.Members {
			resp.Members = append(resp.Members, dto.TeamMemberResp{
				UserID:   m.UserID,
				Name:     m.User.Name,
				Email:    m.User.Email,
				Role:     string(m.Role),
				JoinedAt: m.JoinedAt,
			})
		}
	}
	return resp
}

func MapTeamsToResp(teams []models.Team, withCode bool) []dto.TeamResp {
	out := make([]dto.TeamResp, 0, len(teams))
	for _, t := range teams {
		out = append(out, MapTeamToResp(t, withCode))
	}
	return out
}

func MapInvitationToResp(inv models.TeamInvitation) dto.InvitationResp {
	return dto.InvitationResp{
		ID:        inv.ID,
		TeamID:    inv.TeamID,
		Email:     inv.Email,
		Status:    string(inv.Status),
		ExpiresAt: inv.ExpiresAt,
	}
}
