package services

import (
	"context"
	"fmt"
	"strings"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scoreSet struct {
	Innovation, Feasibility, Execution, Presentation float64
}

// readScores checks ranges. complete requires all four scores.
func readScores(req dto.EvaluationReq, complete bool) (scoreSet, error) {
	var s scoreSet
	fields := []struct {
		name string
		in   *float64
		out  *float64
	}{
		{"innovation", req.Innovation, &s.Innovation},
		{"feasibility", req.Feasibility, &s.Feasibility},
		{"execution", req.Execution, &s.Execution},
		{"presentation", req.Presentation, &s.Presentation},
	}
	for _, f := range fields {
		if f.in == nil {
			if complete {
				return s, utils.NewValidation(f.name + " score is required")
			}
			continue
		}
		if *f.in < models.MinSubScore || *f.in > models.MaxSubScore {
			return s, utils.NewValidation(fmt.Sprintf("%s score must be between %g and %g", f.name, models.MinSubScore, models.MaxSubScore))
		}
		*f.out = *f.in
	}
	return s, nil
}

func findEvaluation(tx *gorm.DB, judgeID, teamID uint32) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := tx.Where("judge_id = ? AND team_id = ?", judgeID, teamID).First(&evaluation).Error
	if utils.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(err, "load evaluation")
	}
	return &evaluation, nil
}

func evaluationGuard(ctx context.Context, judgeID, hackathonID, teamID uint32) (*models.Evaluation, error) {
	if err := requireAssignment(db(ctx), judgeID, teamID, hackathonID); err != nil {
		return nil, err
	}
	existing, err := findEvaluation(db(ctx), judgeID, teamID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsLockedByAdmin {
		return nil, utils.NewForbidden("evaluation has been locked by an admin")
	}
	return existing, nil
}

// writeEvaluation stores the (judge, team) row while it is an unlocked draft
// or absent. The lock and status guards are part of each statement, so a lock
// or submit landing concurrently is never overwritten.
func writeEvaluation(ctx context.Context, row *models.Evaluation, updates map[string]interface{}, op string) error {
	res := db(ctx).Model(&models.Evaluation{}).
		Where("judge_id = ? AND team_id = ? AND is_locked_by_admin = ? AND status = ?",
			row.JudgeID, row.TeamID, false, models.EvaluationDraft).
		Updates(updates)
	if res.Error != nil {
		return utils.Wrap(res.Error, op)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	res = db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "judge_id"}, {Name: "team_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return utils.Wrap(res.Error, op)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// the row exists and the guarded update did not touch it
	existing, err := findEvaluation(db(ctx), row.JudgeID, row.TeamID)
	if err != nil || existing == nil {
		return err
	}
	switch {
	case existing.IsLockedByAdmin:
		return utils.NewForbidden("evaluation has been locked by an admin")
	case existing.Status == models.EvaluationSubmitted:
		return utils.NewConflict("evaluation has already been submitted")
	}
	// unchanged values on drivers that report matched rows as unaffected
	return nil
}

func scoreColumns(scores scoreSet, comments string) map[string]interface{} {
	return map[string]interface{}{
		"innovation":   scores.Innovation,
		"feasibility":  scores.Feasibility,
		"execution":    scores.Execution,
		"presentation": scores.Presentation,
		"comments":     strings.TrimSpace(comments),
	}
}

// SaveEvaluationDraft stores a partial evaluation. Missing scores are zero.
func SaveEvaluationDraft(ctx context.Context, judgeID, hackathonID, teamID uint32, req dto.EvaluationReq) (*models.Evaluation, error) {
	scores, err := readScores(req, false)
	if err != nil {
		return nil, err
	}
	if err := requireAssignment(db(ctx), judgeID, teamID, hackathonID); err != nil {
		return nil, err
	}
	row := models.Evaluation{
		JudgeID:      judgeID,
		TeamID:       teamID,
		HackathonID:  hackathonID,
		Innovation:   scores.Innovation,
		Feasibility:  scores.Feasibility,
		Execution:    scores.Execution,
		Presentation: scores.Presentation,
		Comments:     strings.TrimSpace(req.Comments),
		Status:       models.EvaluationDraft,
	}
	if err := writeEvaluation(ctx, &row, scoreColumns(scores, req.Comments), "save evaluation draft"); err != nil {
		return nil, err
	}
	return findEvaluation(db(ctx), judgeID, teamID)
}

// SubmitEvaluation records a complete evaluation; only submitted evaluations count.
func SubmitEvaluation(ctx context.Context, judgeID, hackathonID, teamID uint32, req dto.EvaluationReq) (*models.Evaluation, error) {
	scores, err := readScores(req, true)
	if err != nil {
		return nil, err
	}
	if err := requireAssignment(db(ctx), judgeID, teamID, hackathonID); err != nil {
		return nil, err
	}
	submittedAt := now()
	row := models.Evaluation{
		JudgeID:      judgeID,
		TeamID:       teamID,
		HackathonID:  hackathonID,
		Innovation:   scores.Innovation,
		Feasibility:  scores.Feasibility,
		Execution:    scores.Execution,
		Presentation: scores.Presentation,
		Comments:     strings.TrimSpace(req.Comments),
		Status:       models.EvaluationSubmitted,
		SubmittedAt:  &submittedAt,
	}
	updates := scoreColumns(scores, req.Comments)
	updates["status"] = models.EvaluationSubmitted
	updates["submitted_at"] = submittedAt
	if err := writeEvaluation(ctx, &row, updates, "submit evaluation"); err != nil {
		return nil, err
	}
	return findEvaluation(db(ctx), judgeID, teamID)
}

// UpdateEvaluation edits a submitted evaluation that is not locked.
func UpdateEvaluation(ctx context.Context, judgeID, hackathonID, teamID uint32, req dto.EvaluationReq) (*models.Evaluation, error) {
	scores, err := readScores(req, true)
	if err != nil {
		return nil, err
	}
	existing, err := evaluationGuard(ctx, judgeID, hackathonID, teamID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, utils.NewNotFound("evaluation not found")
	}
	if existing.Status != models.EvaluationSubmitted {
		return nil, utils.NewConflict("submit the evaluation before updating it")
	}
	res := db(ctx).Model(&models.Evaluation{}).
		Where("id = ? AND is_locked_by_admin = ?", existing.ID, false).
		Updates(scoreColumns(scores, req.Comments))
	if res.Error != nil {
		return nil, utils.Wrap(res.Error, "update evaluation")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewForbidden("evaluation has been locked by an admin")
	}
	return findEvaluation(db(ctx), judgeID, teamID)
}

// GetJudgeEvaluation returns the judge's evaluation of the team, nil when none exists.
func GetJudgeEvaluation(ctx context.Context, judgeID, teamID uint32) (*models.Evaluation, error) {
	return findEvaluation(db(ctx), judgeID, teamID)
}

// SetEvaluationLock locks or unlocks an evaluation against judge edits.
func SetEvaluationLock(ctx context.Context, hackathonID uint32, evaluationID uint64, locked bool) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := db(ctx).Where("id = ? AND hackathon_id = ?", evaluationID, hackathonID).First(&evaluation).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("evaluation not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load evaluation")
	}
	if err := db(ctx).Model(&evaluation).Update("is_locked_by_admin", locked).Error; err != nil {
		return nil, utils.Wrap(err, "lock evaluation")
	}
	evaluation.IsLockedByAdmin = locked
	return &evaluation, nil
}

func ListEvaluations(ctx context.Context, hackathonID uint32) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := db(ctx).Where("hackathon_id = ?", hackathonID).Order("team_id asc, judge_id asc").Find(&evaluations).Error; err != nil {
		return nil, utils.Wrap(err, "list evaluations")
	}
	return evaluations, nil
}
