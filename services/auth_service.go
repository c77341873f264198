package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"Hacknox/database"
	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	verifyKeyPrefix  = "verify:"
	revokedKeyPrefix = "revoked:"
)

func Signup(ctx context.Context, req dto.SignupReq) (*models.User, error) {
	req.Normalize()
	var count int64
	if err := db(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, utils.Wrap(err, "check email")
	}
	if count > 0 {
		return nil, utils.NewConflict("email is already registered")
	}

	user := models.User{
		Name:                req.Name,
		Email:               req.Email,
		Password:            req.Password,
		Role:                models.RoleParticipant,
		City:                req.City,
		College:             req.College,
		Category:            req.Category,
		NotifyAnnouncements: true,
		NotifyTeamUpdates:   true,
	}
	if err := db(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("email is already registered")
		}
		return nil, utils.Wrap(err, "create user")
	}

	if err := issueVerification(ctx, &user); err != nil {
		log.Warn().Err(err).Uint32("user_id", user.ID).Msg("issue verification token")
	}
	return &user, nil
}

func issueVerification(ctx context.Context, user *models.User) error {
	token := utils.GenerateSecret()
	if err := database.RDB.Set(ctx, verifyKeyPrefix+token, user.ID, opts.VerifyTTL).Err(); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(opts.BaseURL, "/"), token)
	sendMail(ctx, user.Email, "Verify your email", "Confirm your account: "+link)
	return nil
}

// VerifyEmail consumes a verification token.
func VerifyEmail(ctx context.Context, token string) error {
	raw, err := database.RDB.GetDel(ctx, verifyKeyPrefix+strings.TrimSpace(token)).Result()
	if errors.Is(err, redis.Nil) {
		return utils.NewExpired("verification link is invalid or has expired")
	}
	if err != nil {
		return utils.Wrap(err, "read verification token")
	}
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return utils.Wrap(err, "decode verification token")
	}
	res := db(ctx).Model(&models.User{}).Where("id = ?", userID).Update("email_verified", true)
	if res.Error != nil {
		return utils.Wrap(res.Error, "mark email verified")
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFound("user not found")
	}
	return nil
}

// ResendVerification answers the same way whether or not the address is known.
func ResendVerification(ctx context.Context, email string) error {
	var user models.User
	err := db(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if utils.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return utils.Wrap(err, "load user")
	}
	if user.EmailVerified {
		return nil
	}
	if err := issueVerification(ctx, &user); err != nil {
		return utils.Wrap(err, "issue verification token")
	}
	return nil
}

func Login(ctx context.Context, req dto.LoginReq) (string, *models.User, error) {
	var user models.User
	err := db(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if utils.IsNotFound(err) {
		return "", nil, utils.NewUnauthorized("invalid email or password")
	}
	if err != nil {
		return "", nil, utils.Wrap(err, "load user")
	}
	if !user.CheckPassword(req.Password) {
		return "", nil, utils.NewUnauthorized("invalid email or password")
	}
	if !user.EmailVerified {
		return "", nil, utils.NewForbidden("email address has not been verified")
	}
	token, err := utils.GenerateToken(user)
	if err != nil {
		return "", nil, utils.Wrap(err, "sign session token")
	}
	return token, &user, nil
}

// Logout denylists the token id until the token would have expired anyway.
func Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := database.RDB.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return utils.Wrap(err, "revoke session")
	}
	return nil
}

func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := database.RDB.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	return n > 0, err
}

func GetUser(ctx context.Context, userID uint32) (*models.User, error) {
	var user models.User
	if err := db(ctx).First(&user, userID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewNotFound("user not found")
		}
		return nil, utils.Wrap(err, "load user")
	}
	return &user, nil
}

func UpdateProfile(ctx context.Context, userID uint32, req dto.EditProfileReq) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, utils.NewValidation("name cannot be empty")
		}
		updates["name"] = name
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.College != nil {
		updates["college"] = strings.TrimSpace(*req.College)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if len(updates) > 0 {
		if err := db(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, utils.Wrap(err, "update profile")
		}
	}
	return GetUser(ctx, userID)
}

func ChangePassword(ctx context.Context, userID uint32, req dto.ChangePasswordReq) error {
	user, err := GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return utils.NewValidation("current password is incorrect")
	}
	hashed, err := models.HashPassword(req.NewPassword)
	if err != nil {
		return utils.Wrap(err, "hash password")
	}
	if err := db(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumn("password", hashed).Error; err != nil {
		return utils.Wrap(err, "update password")
	}
	return nil
}

func UpdateEmailPreferences(ctx context.Context, userID uint32, req dto.EmailPreferencesReq) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Announcements != nil {
		updates["notify_announcements"] = *req.Announcements
	}
	if req.TeamUpdates != nil {
		updates["notify_team_updates"] = *req.TeamUpdates
	}
	if len(updates) == 0 {
		return nil, utils.NewValidation("no preferences supplied")
	}
	if err := db(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, utils.Wrap(err, "update email preferences")
	}
	return GetUser(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	err := db(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role != models.RoleAdmin {
			log.Warn().Str("email", email).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return nil
	}
	if !utils.IsNotFound(err) {
		return err
	}
	admin := models.User{
		Name:          "Administrator",
		Email:         email,
		Password:      password,
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	if err := db(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}
