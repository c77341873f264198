package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleJudge       UserRole = "judge"
	RoleAdmin       UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleParticipant || r == RoleJudge || r == RoleAdmin
}

type User struct {
	ID                  uint32    `gorm:"primarykey" json:"id"`
	Name                string    `gorm:"size:100;not null" json:"name"`
	Email               string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password            string    `gorm:"size:255;not null" json:"-"`
	Role                UserRole  `gorm:"size:20;not null;default:'participant'" json:"role"`
	City                string    `gorm:"size:100" json:"city"`
	College             string    `gorm:"size:150" json:"college"`
	Category            string    `gorm:"size:50" json:"category"`
	EmailVerified       bool      `gorm:"not null;default:false" json:"email_verified"`
	NotifyAnnouncements bool      `gorm:"not null;default:true" json:"notify_announcements"`
	NotifyTeamUpdates   bool      `gorm:"not null;default:true" json:"notify_team_updates"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave hashes the password on create and whenever it changes.
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.Password == "" {
		return nil
	}
	if u.ID == 0 || tx.Statement.Changed("Password") {
		u.Password, err = HashPassword(u.Password)
	}
	return
}

// HashPassword is for writes that skip hooks (UpdateColumn).
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
