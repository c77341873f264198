package services

import (
	"context"
	"strings"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"gorm.io/gorm"
)

// AddJudge puts a judge on the hackathon roster, creating the account when the
// email is unknown. tempPassword is only set for new accounts.
func AddJudge(ctx context.Context, hackathonID uint32, req dto.CreateJudgeReq) (judge *models.User, tempPassword string, err error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", email).First(&user).Error
		switch {
		case findErr == nil:
			if user.Role != models.RoleJudge {
				return utils.NewConflict("this email belongs to a non-judge account")
			}
		case utils.IsNotFound(findErr):
			tempPassword = utils.GenerateTempPassword()
			user = models.User{
				Name:          strings.TrimSpace(req.Name),
				Email:         email,
				Password:      tempPassword,
				Role:          models.RoleJudge,
				EmailVerified: true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		default:
			return findErr
		}
		return tx.Create(&models.HackathonJudge{HackathonID: hackathonID, JudgeID: user.ID}).Error
	})
	if err != nil {
		if utils.KindOf(err) == utils.KindServer && utils.IsDuplicateKey(err) {
			return nil, "", utils.NewConflict("judge is already on this hackathon's roster")
		}
		if utils.KindOf(err) != utils.KindServer {
			return nil, "", err
		}
		return nil, "", utils.Wrap(err, "add judge")
	}

	body := "You have been added as a judge."
	if tempPassword != "" {
		body += " Sign in with this email and the temporary password: " + tempPassword
	}
	sendMail(ctx, user.Email, "Judging invitation", body)
	return &user, tempPassword, nil
}

func ListJudges(ctx context.Context, hackathonID uint32) ([]dto.JudgeResp, error) {
	var roster []models.HackathonJudge
	if err := db(ctx).Preload("Judge").
		Where("hackathon_id = ?", hackathonID).
		Order("created_at asc, id asc").
		Find(&roster).Error; err != nil {
		return nil, utils.Wrap(err, "list judges")
	}

	type countRow struct {
		JudgeID uint32
		N       int64
	}
	var counts []countRow
	if err := db(ctx).Model(&models.JudgeAssignment{}).
		Select("judge_id, COUNT(*) AS n").
		Where("hackathon_id = ?", hackathonID).
		Group("judge_id").
		Scan(&counts).Error; err != nil {
		return nil, utils.Wrap(err, "count assignments")
	}
	byJudge := make(map[uint32]int64, len(counts))
	for _, c := range counts {
		byJudge[c.JudgeID] = c.N
	}

	out := make([]dto.JudgeResp, 0, len(roster))
	for _, r := range roster {
		out = append(out, dto.JudgeResp{
			ID:              r.JudgeID,
			Name:            r.Judge.Name,
			Email:           r.Judge.Email,
			AssignmentCount: byJudge[r.JudgeID],
			AddedAt:         r.CreatedAt,
		})
	}
	return out, nil
}

// RemoveJudge drops the judge from the roster together with their assignments
// in this hackathon. Their evaluations are kept.
func RemoveJudge(ctx context.Context, hackathonID, judgeID uint32) error {
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).Delete(&models.HackathonJudge{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("judge is not on this hackathon's roster")
		}
		return tx.Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).Delete(&models.JudgeAssignment{}).Error
	})
	if err != nil {
		if utils.KindOf(err) != utils.KindServer {
			return err
		}
		return utils.Wrap(err, "remove judge")
	}
	return nil
}
