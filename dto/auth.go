package dto

import "strings"

type SignupReq struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	City     string `json:"city"`
	College  string `json:"college"`
	Category string `json:"category"`
}

func (r *SignupReq) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.City = strings.TrimSpace(r.City)
	r.College = strings.TrimSpace(r.College)
	r.Category = strings.TrimSpace(r.Category)
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailReq struct {
	Token string `json:"token" binding:"required"`
}

type ResendVerificationReq struct {
	Email string `json:"email" binding:"required,email"`
}

type EditProfileReq struct {
	Name     *string `json:"name"`
	City     *string `json:"city"`
	College  *string `json:"college"`
	Category *string `json:"category"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type EmailPreferencesReq struct {
	Announcements *bool `json:"announcements"`
	TeamUpdates   *bool `json:"team_updates"`
}

type UserResp struct {
	ID                  uint32 `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	City                string `json:"city"`
	College             string `json:"college"`
	Category            string `json:"category"`
	EmailVerified       bool   `json:"email_verified"`
	NotifyAnnouncements bool   `json:"notify_announcements"`
	NotifyTeamUpdates   bool   `json:"notify_team_updates"`
}
