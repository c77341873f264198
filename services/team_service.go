package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	joinCodeAttempts = 5
	minTeamMembers   = 2
)

func loadTeam(tx *gorm.DB, teamID uint32) (*models.Team, error) {
	var team models.Team
	if err := tx.First(&team, teamID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewNotFound("team not found")
		}
		return nil, utils.Wrap(err, "load team")
	}
	return &team, nil
}

// lockTeam re-reads the team under a row lock.
func lockTeam(tx *gorm.DB, teamID uint32) (*models.Team, error) {
	return loadTeam(tx.Clauses(clause.Locking{Strength: "UPDATE"}), teamID)
}

func isUserInHackathon(tx *gorm.DB, userID, hackathonID uint32) (bool, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).
		Where("user_id = ? AND hackathon_id = ?", userID, hackathonID).
		Count(&count).Error
	return count > 0, err
}

func countMembers(tx *gorm.DB, teamID uint32) (int64, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func uniqueJoinCode(tx *gorm.DB) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := utils.GenerateJoinCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Team{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free join code after %d attempts", joinCodeAttempts)
}

// CreateTeam creates a team in an active hackathon with the caller as leader.
func CreateTeam(ctx context.Context, userID, hackathonID uint32, req dto.CreateTeamReq) (*models.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewValidation("team name is required")
	}
	hackathon, err := GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status != models.HackathonStatusActive {
		return nil, utils.NewInvalidStatus("hackathon is not accepting teams")
	}

	var team models.Team
	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		inTeam, err := isUserInHackathon(tx, userID, hackathonID)
		if err != nil {
			return err
		}
		if inTeam {
			return utils.NewConflict("you are already in a team for this hackathon")
		}
		var sameName int64
		if err := tx.Model(&models.Team{}).Where("hackathon_id = ? AND name = ?", hackathonID, name).Count(&sameName).Error; err != nil {
			return err
		}
		if sameName > 0 {
			return utils.NewConflict("team name already exists")
		}
		code, err := uniqueJoinCode(tx)
		if err != nil {
			return err
		}
		team = models.Team{
			HackathonID:        hackathonID,
			Name:               name,
			JoinCode:           code,
			LeaderID:           userID,
			Description:        strings.TrimSpace(req.Description),
			VerificationStatus: models.VerificationPending,
		}
		if err := tx.Omit("Leader", "Members").Create(&team).Error; err != nil {
			return err
		}
		return tx.Create(&models.TeamMember{
			TeamID:      team.ID,
			UserID:      userID,
			HackathonID: hackathonID,
			Role:        models.TeamRoleLeader,
			JoinedAt:    now(),
		}).Error
	})
	if err != nil {
		return nil, teamWriteError(err, "create team")
	}
	return &team, nil
}

func teamWriteError(err error, msg string) error {
	if utils.KindOf(err) != utils.KindServer {
		return err
	}
	if utils.IsDuplicateKey(err) {
		return utils.NewConflict("team name or membership already exists")
	}
	return utils.Wrap(err, msg)
}

// addMember inserts the user under the team lock and finalizes the team when it
// reaches the hackathon's max size.
func addMember(tx *gorm.DB, teamID, userID uint32) (*models.Team, error) {
	team, err := lockTeam(tx, teamID)
	if err != nil {
		return nil, err
	}
	if team.IsFinalized {
		return nil, utils.NewConflict("team is full")
	}
	hackathon, err := loadHackathon(tx, team.HackathonID)
	if err != nil {
		return nil, err
	}
	inTeam, err := isUserInHackathon(tx, userID, team.HackathonID)
	if err != nil {
		return nil, err
	}
	if inTeam {
		return nil, utils.NewConflict("you are already in a team for this hackathon")
	}
	count, err := countMembers(tx, team.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(hackathon.MaxTeamSize) {
		return nil, utils.NewConflict("team is full")
	}
	member := models.TeamMember{
		TeamID:      team.ID,
		UserID:      userID,
		HackathonID: team.HackathonID,
		Role:        models.TeamRoleMember,
		JoinedAt:    now(),
	}
	if err := tx.Create(&member).Error; err != nil {
		return nil, err
	}
	if count+1 >= int64(hackathon.MaxTeamSize) {
		if err := tx.Model(team).Update("is_finalized", true).Error; err != nil {
			return nil, err
		}
		team.IsFinalized = true
	}
	return team, nil
}

// JoinTeam redeems a join code. contextHackathonID is the hackathon the caller
// is acting in, zero when none was sent.
func JoinTeam(ctx context.Context, userID uint32, code string, contextHackathonID uint32) (*models.Team, error) {
	if code == "" {
		return nil, utils.NewValidation("join_code is required")
	}
	var found models.Team
	err := db(ctx).Where("join_code = ?", code).First(&found).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("invalid join code")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load team")
	}
	if contextHackathonID != 0 && contextHackathonID != found.HackathonID {
		return nil, utils.NewForbidden("this team belongs to a different hackathon")
	}
	hackathon, err := GetHackathon(ctx, found.HackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status != models.HackathonStatusActive {
		return nil, utils.NewInvalidStatus("hackathon is not accepting teams")
	}

	var team *models.Team
	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		team, err = addMember(tx, found.ID, userID)
		return err
	})
	if err != nil {
		return nil, teamWriteError(err, "join team")
	}
	return team, nil
}

// InviteMember creates a pending invitation and emails its token.
func InviteMember(ctx context.Context, userID, teamID uint32, email string) (*models.TeamInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	team, err := loadTeam(db(ctx), teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != userID {
		return nil, utils.NewForbidden("only the team leader can invite members")
	}
	if team.IsFinalized {
		return nil, utils.NewConflict("team is full")
	}
	var alreadyMember int64
	err = db(ctx).Model(&models.TeamMember{}).
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.hackathon_id = ? AND users.email = ?", team.HackathonID, email).
		Count(&alreadyMember).Error
	if err != nil {
		return nil, utils.Wrap(err, "check invitee")
	}
	if alreadyMember > 0 {
		return nil, utils.NewConflict("this person is already in a team for this hackathon")
	}

	invitation := models.TeamInvitation{
		Token:       utils.GenerateSecret(),
		TeamID:      team.ID,
		HackathonID: team.HackathonID,
		Email:       email,
		InvitedBy:   userID,
		Status:      models.InvitationPending,
		ExpiresAt:   now().Add(opts.InviteTTL),
	}
	if err := db(ctx).Create(&invitation).Error; err != nil {
		return nil, utils.Wrap(err, "create invitation")
	}
	link := fmt.Sprintf("%s/teams/accept-invite?token=%s", strings.TrimRight(opts.BaseURL, "/"), invitation.Token)
	sendMail(ctx, email, "You have been invited to join "+team.Name,
		fmt.Sprintf("Accept the invitation before %s: %s", invitation.ExpiresAt.Format(time.RFC1123), link))
	return &invitation, nil
}

// AcceptInvite adds the caller to the invitation's team. The invitation moves
// pending -> accepted at most once.
func AcceptInvite(ctx context.Context, userID uint32, token string, contextHackathonID uint32) (*models.Team, error) {
	var invitation models.TeamInvitation
	err := db(ctx).Where("token = ?", strings.TrimSpace(token)).First(&invitation).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("invitation not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load invitation")
	}
	switch invitation.Status {
	case models.InvitationAccepted:
		return nil, utils.NewConflict("invitation has already been accepted")
	case models.InvitationExpired:
		return nil, utils.NewExpired("invitation has expired")
	}
	if invitation.Expired(now()) {
		if err := db(ctx).Model(&models.TeamInvitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Update("status", models.InvitationExpired).Error; err != nil {
			return nil, utils.Wrap(err, "expire invitation")
		}
		return nil, utils.NewExpired("invitation has expired")
	}
	if contextHackathonID != 0 && contextHackathonID != invitation.HackathonID {
		return nil, utils.NewForbidden("invitation belongs to a different hackathon")
	}
	user, err := GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, utils.NewForbidden("invitation was sent to a different email address")
	}

	var team *models.Team
	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TeamInvitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Updates(map[string]interface{}{"status": models.InvitationAccepted, "accepted_at": now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewConflict("invitation has already been accepted")
		}
		var err error
		team, err = addMember(tx, invitation.TeamID, userID)
		return err
	})
	if err != nil {
		return nil, teamWriteError(err, "accept invitation")
	}
	return team, nil
}

// RemoveMember lets the leader drop a member. The leader cannot leave this way
// and a team never drops below two members.
func RemoveMember(ctx context.Context, leaderID, teamID, targetUserID uint32) error {
	if targetUserID == 0 {
		return utils.NewValidation("user_id is required")
	}
	team, err := loadTeam(db(ctx), teamID)
	if err != nil {
		return err
	}
	if team.LeaderID != leaderID {
		return utils.NewForbidden("only the team leader can remove members")
	}
	if targetUserID == leaderID {
		return utils.NewValidation("the leader cannot leave the team; transfer leadership first")
	}
	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTeam(tx, teamID); err != nil {
			return err
		}
		count, err := countMembers(tx, teamID)
		if err != nil {
			return err
		}
		if count <= minTeamMembers {
			return utils.NewValidation("a team must keep at least 2 members")
		}
		res := tx.Where("team_id = ? AND user_id = ?", teamID, targetUserID).Delete(&models.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("member not found in this team")
		}
		return nil
	})
	if err != nil {
		return teamWriteError(err, "remove member")
	}
	return nil
}

func UpdateTeam(ctx context.Context, userID, teamID uint32, req dto.UpdateTeamReq) (*models.Team, error) {
	team, err := loadTeam(db(ctx), teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != userID {
		return nil, utils.NewForbidden("only the team leader can update the team")
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.NewValidation("team name cannot be empty")
		}
		if name != team.Name {
			var sameName int64
			if err := db(ctx).Model(&models.Team{}).Where("hackathon_id = ? AND name = ? AND id <> ?", team.HackathonID, name, team.ID).Count(&sameName).Error; err != nil {
				return nil, utils.Wrap(err, "check team name")
			}
			if sameName > 0 {
				return nil, utils.NewConflict("team name already exists")
			}
			updates["name"] = name
		}
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if len(updates) > 0 {
		if err := db(ctx).Model(team).Updates(updates).Error; err != nil {
			return nil, teamWriteError(err, "update team")
		}
	}
	return GetTeamWithMembers(ctx, teamID)
}

func GetTeamWithMembers(ctx context.Context, teamID uint32) (*models.Team, error) {
	var team models.Team
	err := db(ctx).
		Preload("Members", func(tx *gorm.DB) *gorm.DB { return tx.Order("joined_at asc, id asc") }).
		Preload("Members.User").
		First(&team, teamID).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("team not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load team")
	}
	return &team, nil
}

// ListTeams is the admin listing, optionally filtered by verification status.
func ListTeams(ctx context.Context, hackathonID uint32, status string) ([]models.Team, error) {
	q := db(ctx).Where("hackathon_id = ?", hackathonID)
	if status != "" {
		if !models.VerificationStatus(status).Valid() {
			return nil, utils.NewInvalidStatus("unknown verification status")
		}
		q = q.Where("verification_status = ?", status)
	}
	var teams []models.Team
	err := q.Preload("Members.User").Order("created_at asc, id asc").Find(&teams).Error
	if err != nil {
		return nil, utils.Wrap(err, "list teams")
	}
	return teams, nil
}

func teamInHackathon(tx *gorm.DB, hackathonID, teamID uint32) (*models.Team, error) {
	team, err := loadTeam(tx, teamID)
	if err != nil {
		return nil, err
	}
	if team.HackathonID != hackathonID {
		return nil, utils.NewNotFound("team not found")
	}
	return team, nil
}

func VerifyTeam(ctx context.Context, hackathonID, teamID uint32, status string) (*models.Team, error) {
	vs := models.VerificationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !vs.Valid() {
		return nil, utils.NewInvalidStatus("status must be pending, verified or rejected")
	}
	team, err := teamInHackathon(db(ctx), hackathonID, teamID)
	if err != nil {
		return nil, err
	}
	if err := db(ctx).Model(team).Update("verification_status", vs).Error; err != nil {
		return nil, utils.Wrap(err, "verify team")
	}
	team.VerificationStatus = vs
	return team, nil
}

// DeleteTeam removes the team with its members, invitations, submission,
// assignments, evaluations and score rows.
func DeleteTeam(ctx context.Context, hackathonID, teamID uint32) error {
	if _, err := teamInHackathon(db(ctx), hackathonID, teamID); err != nil {
		return err
	}
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := []interface{}{
			&models.Evaluation{},
			&models.JudgeAssignment{},
			&models.Submission{},
			&models.TeamInvitation{},
			&models.TeamMember{},
			&models.TeamScore{},
			&models.LeaderboardEntry{},
		}
		for _, model := range scoped {
			if err := tx.Where("team_id = ?", teamID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		return utils.Wrap(err, "delete team")
	}
	return nil
}
