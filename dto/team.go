package dto

import (
	"strings"
	"time"
)

type CreateTeamReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type JoinTeamReq struct {
	JoinCode      string `json:"join_code"`
	JoinCodeCamel string `json:"joinCode"`
}

func (r *JoinTeamReq) Normalize() {
	if r.JoinCode == "" && r.JoinCodeCamel != "" {
		r.JoinCode = r.JoinCodeCamel
	}
	r.JoinCode = strings.ToUpper(strings.TrimSpace(r.JoinCode))
}

type InviteMemberReq struct {
	Email string `json:"email" binding:"required,email"`
}

type AcceptInviteReq struct {
	Token string `json:"token" binding:"required"`
}

type UpdateTeamReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RemoveMemberReq struct {
	UserID      uint32 `json:"user_id"`
	UserIDCamel uint32 `json:"userId"`
}

func (r *RemoveMemberReq) Normalize() {
	if r.UserID == 0 {
		r.UserID = r.UserIDCamel
	}
}

type VerifyTeamReq struct {
	Status string `json:"status" binding:"required"`
}

type TeamMemberResp struct {
	UserID   uint32    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type TeamResp struct {
	ID                 uint32           `json:"id"`
	HackathonID        uint32           `json:"hackathon_id"`
	Name               string           `json:"name"`
	JoinCode           string           `json:"join_code,omitempty"`
	LeaderID           uint32           `json:"leader_id"`
	Description        string           `json:"description"`
	IsFinalized        bool             `json:"is_finalized"`
	VerificationStatus string           `json:"verification_status"`
	MemberCount        int              `json:"member_count"`
	Members            []TeamMemberResp `json:"members,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

type InvitationResp struct {
	ID        uint32    `json:"id"`
	TeamID    uint32    `json:"team_id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}
