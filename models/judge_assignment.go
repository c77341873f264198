package models

import "time"

type JudgeAssignment struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	JudgeID     uint32    `gorm:"uniqueIndex:uniq_judge_team;not null" json:"judge_id"`
	TeamID      uint32    `gorm:"uniqueIndex:uniq_judge_team;not null;index" json:"team_id"`
	HackathonID uint32    `gorm:"not null;index" json:"hackathon_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (JudgeAssignment) TableName() string {
	return "judge_assignments"
}
