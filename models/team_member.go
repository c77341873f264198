package models

import "time"

type TeamMemberRole string

const (
	TeamRoleLeader TeamMemberRole = "leader"
	TeamRoleMember TeamMemberRole = "member"
)

// TeamMember rows are unique per (team, user) and per (hackathon, user): a user
// belongs to at most one team in a given hackathon.
type TeamMember struct {
	ID          uint32         `gorm:"primarykey" json:"id"`
	TeamID      uint32         `gorm:"uniqueIndex:uniq_team_user;not null" json:"team_id"`
	UserID      uint32         `gorm:"uniqueIndex:uniq_team_user;uniqueIndex:uniq_hackathon_user;not null" json:"user_id"`
	HackathonID uint32         `gorm:"uniqueIndex:uniq_hackathon_user;not null" json:"hackathon_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	Role        TeamMemberRole `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt    time.Time      `json:"joined_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
