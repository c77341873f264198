package services

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"path/filepath"
	"strings"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	minTeamSize = 2
	maxTeamSize = 20
)

func weightsFromDTO(w *dto.HackathonWeights) (models.ScoringWeights, error) {
	if w == nil {
		return models.DefaultScoringWeights(), nil
	}
	weights := models.ScoringWeights{
		Innovation:   w.Innovation,
		Feasibility:  w.Feasibility,
		Execution:    w.Execution,
		Presentation: w.Presentation,
	}
	if weights.Innovation < 0 || weights.Feasibility < 0 || weights.Execution < 0 || weights.Presentation < 0 {
		return weights, utils.NewValidation("scoring weights must not be negative")
	}
	if weights.Innovation+weights.Feasibility+weights.Execution+weights.Presentation == 0 {
		return weights, utils.NewValidation("scoring weights must not all be zero")
	}
	return weights, nil
}

func eventInfoJSON(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, utils.NewValidation("event_info must be valid JSON")
	}
	return datatypes.JSON(raw), nil
}

func validateHackathon(h *models.Hackathon) error {
	if h.Name == "" {
		return utils.NewValidation("name is required")
	}
	if !h.Status.Valid() {
		return utils.NewInvalidStatus("status must be draft, active or closed")
	}
	if h.MaxTeamSize < minTeamSize || h.MaxTeamSize > maxTeamSize {
		return utils.NewValidation("max_team_size must be between 2 and 20")
	}
	if h.StartsAt != nil && h.EndsAt != nil && h.EndsAt.Before(*h.StartsAt) {
		return utils.NewValidation("ends_at must be after starts_at")
	}
	return nil
}

// CreateHackathon creates the hackathon and makes the caller its first owner.
func CreateHackathon(ctx context.Context, adminID uint32, req dto.CreateHackathonReq) (*models.Hackathon, error) {
	req.Normalize()
	weights, err := weightsFromDTO(req.ScoringWeights)
	if err != nil {
		return nil, err
	}
	info, err := eventInfoJSON(req.EventInfo)
	if err != nil {
		return nil, err
	}
	slug := utils.Slugify(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	if slug == "" {
		return nil, utils.NewValidation("name or slug must contain letters or digits")
	}

	hackathon := models.Hackathon{
		Name:               req.Name,
		Slug:               slug,
		Description:        req.Description,
		Status:             models.HackathonStatus(req.Status),
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		SubmissionDeadline: req.SubmissionDeadline,
		MaxTeamSize:        req.MaxTeamSize,
		EventInfo:          info,
		ScoringWeights:     datatypes.NewJSONType(weights),
		CreatedBy:          adminID,
	}
	if err := validateHackathon(&hackathon); err != nil {
		return nil, err
	}

	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hackathon).Error; err != nil {
			return err
		}
		return tx.Create(&models.HackathonAdmin{HackathonID: hackathon.ID, AdminID: adminID}).Error
	})
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("a hackathon with this slug already exists")
		}
		return nil, utils.Wrap(err, "create hackathon")
	}
	return &hackathon, nil
}

// AttachBanner stores the banner and records its path. Failures are logged only.
func AttachBanner(ctx context.Context, hackathonID uint32, file *multipart.FileHeader) {
	key := "banners/" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	src, err := file.Open()
	if err != nil {
		log.Warn().Err(err).Uint32("hackathon_id", hackathonID).Msg("open banner upload")
		return
	}
	defer src.Close()

	if err := Storage.Put(ctx, key, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		log.Warn().Err(err).Uint32("hackathon_id", hackathonID).Msg("store banner")
		return
	}
	if err := db(ctx).Model(&models.Hackathon{}).Where("id = ?", hackathonID).Update("banner_path", key).Error; err != nil {
		log.Warn().Err(err).Uint32("hackathon_id", hackathonID).Msg("record banner path")
	}
}

func ListOwnedHackathons(ctx context.Context, adminID uint32) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	err := db(ctx).
		Joins("JOIN hackathon_admins ON hackathon_admins.hackathon_id = hackathons.id").
		Where("hackathon_admins.admin_id = ?", adminID).
		Order("hackathons.created_at desc, hackathons.id desc").
		Find(&hackathons).Error
	if err != nil {
		return nil, utils.Wrap(err, "list hackathons")
	}
	return hackathons, nil
}

func GetHackathon(ctx context.Context, hackathonID uint32) (*models.Hackathon, error) {
	return loadHackathon(db(ctx), hackathonID)
}

func loadHackathon(tx *gorm.DB, hackathonID uint32) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := tx.First(&hackathon, hackathonID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewNotFound("hackathon not found")
		}
		return nil, utils.Wrap(err, "load hackathon")
	}
	return &hackathon, nil
}

func UpdateHackathon(ctx context.Context, hackathonID uint32, req dto.UpdateHackathonReq) (*models.Hackathon, error) {
	hackathon, err := GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		hackathon.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		hackathon.Description = *req.Description
	}
	if req.Status != nil {
		hackathon.Status = models.HackathonStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
	}
	if req.StartsAt != nil {
		hackathon.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		hackathon.EndsAt = req.EndsAt
	}
	if req.SubmissionDeadline != nil {
		hackathon.SubmissionDeadline = req.SubmissionDeadline
	}
	if req.MaxTeamSize != nil {
		hackathon.MaxTeamSize = *req.MaxTeamSize
	}
	if len(req.EventInfo) > 0 {
		info, err := eventInfoJSON(req.EventInfo)
		if err != nil {
			return nil, err
		}
		hackathon.EventInfo = info
	}
	if req.ScoringWeights != nil {
		weights, err := weightsFromDTO(req.ScoringWeights)
		if err != nil {
			return nil, err
		}
		hackathon.ScoringWeights = datatypes.NewJSONType(weights)
	}
	if err := validateHackathon(hackathon); err != nil {
		return nil, err
	}
	if err := db(ctx).Save(hackathon).Error; err != nil {
		return nil, utils.Wrap(err, "update hackathon")
	}
	return hackathon, nil
}

// DeleteHackathon removes the hackathon and everything scoped to it. Audit
// logs are kept.
func DeleteHackathon(ctx context.Context, hackathonID uint32) error {
	if _, err := GetHackathon(ctx, hackathonID); err != nil {
		return err
	}
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		announcementIDs := tx.Model(&models.Announcement{}).Select("id").Where("hackathon_id = ?", hackathonID)
		if err := tx.Where("announcement_id IN (?)", announcementIDs).Delete(&models.UserNotificationRead{}).Error; err != nil {
			return err
		}
		scoped := []interface{}{
			&models.Announcement{},
			&models.LeaderboardEntry{},
			&models.TeamScore{},
			&models.Evaluation{},
			&models.JudgeAssignment{},
			&models.Submission{},
			&models.TeamInvitation{},
			&models.TeamMember{},
			&models.Team{},
			&models.HackathonJudge{},
			&models.HackathonAdmin{},
			&models.LeaderboardSetting{},
		}
		for _, model := range scoped {
			if err := tx.Where("hackathon_id = ?", hackathonID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Hackathon{}, hackathonID).Error
	})
	if err != nil {
		return utils.Wrap(err, "delete hackathon")
	}
	return nil
}

// AddHackathonOwner links another admin account to the hackathon.
func AddHackathonOwner(ctx context.Context, hackathonID uint32, email string) (*models.User, error) {
	var admin models.User
	err := db(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("no account with this email")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load admin")
	}
	if admin.Role != models.RoleAdmin {
		return nil, utils.NewValidation("only admin accounts can own a hackathon")
	}
	if err := db(ctx).Create(&models.HackathonAdmin{HackathonID: hackathonID, AdminID: admin.ID}).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("admin already owns this hackathon")
		}
		return nil, utils.Wrap(err, "add owner")
	}
	return &admin, nil
}

// ListPublicHackathons hides drafts. activeOnly narrows to running events.
func ListPublicHackathons(ctx context.Context, activeOnly bool) ([]models.Hackathon, error) {
	q := db(ctx).Model(&models.Hackathon{})
	if activeOnly {
		q = q.Where("status = ?", models.HackathonStatusActive)
	} else {
		q = q.Where("status <> ?", models.HackathonStatusDraft)
	}
	var hackathons []models.Hackathon
	if err := q.Order("starts_at desc, id desc").Find(&hackathons).Error; err != nil {
		return nil, utils.Wrap(err, "list hackathons")
	}
	return hackathons, nil
}

func GetPublicHackathon(ctx context.Context, hackathonID uint32) (*models.Hackathon, error) {
	hackathon, err := GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.Status == models.HackathonStatusDraft {
		return nil, utils.NewNotFound("hackathon not found")
	}
	return hackathon, nil
}
