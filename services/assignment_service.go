package services

import (
	"context"
	"sync"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"gorm.io/gorm"
)

// hackathonLocks serializes operations that rewrite a hackathon's assignment matrix.
type hackathonLocks struct {
	mu    sync.Mutex
	locks map[uint32]*sync.Mutex
}

func (h *hackathonLocks) lock(hackathonID uint32) func() {
	h.mu.Lock()
	if h.locks == nil {
		h.locks = make(map[uint32]*sync.Mutex)
	}
	m, ok := h.locks[hackathonID]
	if !ok {
		m = &sync.Mutex{}
		h.locks[hackathonID] = m
	}
	h.mu.Unlock()

	m.Lock()
	return m.Unlock
}

var balanceLocks hackathonLocks

func requireAssignment(tx *gorm.DB, judgeID, teamID, hackathonID uint32) error {
	var count int64
	err := tx.Model(&models.JudgeAssignment{}).
		Where("judge_id = ? AND team_id = ? AND hackathon_id = ?", judgeID, teamID, hackathonID).
		Count(&count).Error
	if err != nil {
		return utils.Wrap(err, "check assignment")
	}
	if count == 0 {
		return utils.NewForbidden("you are not assigned to this team")
	}
	return nil
}

func rosterJudgeIDs(tx *gorm.DB, hackathonID uint32) ([]uint32, error) {
	var ids []uint32
	err := tx.Model(&models.HackathonJudge{}).
		Where("hackathon_id = ?", hackathonID).
		Order("created_at asc, id asc").
		Pluck("judge_id", &ids).Error
	return ids, err
}

func hackathonTeamIDs(tx *gorm.DB, hackathonID uint32) ([]uint32, error) {
	var ids []uint32
	err := tx.Model(&models.Team{}).
		Where("hackathon_id = ?", hackathonID).
		Order("created_at asc, id asc").
		Pluck("id", &ids).Error
	return ids, err
}

func currentAssignments(tx *gorm.DB, hackathonID uint32) ([]AssignmentPair, error) {
	var rows []models.JudgeAssignment
	if err := tx.Where("hackathon_id = ?", hackathonID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	pairs := make([]AssignmentPair, len(rows))
	for i, r := range rows {
		pairs[i] = AssignmentPair{JudgeID: r.JudgeID, TeamID: r.TeamID}
	}
	return pairs, nil
}

func idSet(ids []uint32) map[uint32]bool {
	set := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ListAssignments is the admin view of the matrix.
func ListAssignments(ctx context.Context, hackathonID uint32) ([]dto.AssignmentResp, error) {
	var rows []dto.AssignmentResp
	err := db(ctx).Table("judge_assignments").
		Select("judge_assignments.id, judge_assignments.judge_id, users.name AS judge_name, judge_assignments.team_id, teams.name AS team_name, judge_assignments.created_at").
		Joins("JOIN users ON users.id = judge_assignments.judge_id").
		Joins("JOIN teams ON teams.id = judge_assignments.team_id").
		Where("judge_assignments.hackathon_id = ?", hackathonID).
		Order("judge_assignments.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Wrap(err, "list assignments")
	}
	return rows, nil
}

// AssignJudges inserts every pair or none. Judges must be on the hackathon's
// roster and teams must belong to it.
func AssignJudges(ctx context.Context, hackathonID uint32, pairs []dto.AssignmentPair) ([]models.JudgeAssignment, error) {
	if len(pairs) == 0 {
		return nil, utils.NewValidation("assignments must not be empty")
	}
	var created []models.JudgeAssignment
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		judges, err := rosterJudgeIDs(tx, hackathonID)
		if err != nil {
			return err
		}
		teams, err := hackathonTeamIDs(tx, hackathonID)
		if err != nil {
			return err
		}
		onRoster, inHackathon := idSet(judges), idSet(teams)

		existing, err := currentAssignments(tx, hackathonID)
		if err != nil {
			return err
		}
		taken := make(map[AssignmentPair]bool, len(existing)+len(pairs))
		for _, p := range existing {
			taken[p] = true
		}

		created = make([]models.JudgeAssignment, 0, len(pairs))
		for _, p := range pairs {
			if !onRoster[p.JudgeID] {
				return utils.NewNotFound("judge is not on this hackathon's roster")
			}
			if !inHackathon[p.TeamID] {
				return utils.NewNotFound("team not found in this hackathon")
			}
			key := AssignmentPair{JudgeID: p.JudgeID, TeamID: p.TeamID}
			if taken[key] {
				return utils.NewConflict("judge is already assigned to this team")
			}
			taken[key] = true
			created = append(created, models.JudgeAssignment{JudgeID: p.JudgeID, TeamID: p.TeamID, HackathonID: hackathonID})
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, assignmentWriteError(err, "assign judges")
	}
	return created, nil
}

func assignmentWriteError(err error, msg string) error {
	if utils.KindOf(err) != utils.KindServer {
		return err
	}
	if utils.IsDuplicateKey(err) {
		return utils.NewConflict("judge is already assigned to this team")
	}
	return utils.Wrap(err, msg)
}

// Reassign moves a team from one judge to another in a single transaction.
func Reassign(ctx context.Context, hackathonID uint32, req dto.ReassignReq) (*models.JudgeAssignment, error) {
	if req.OldJudgeID == req.NewJudgeID {
		return nil, utils.NewValidation("old and new judge must differ")
	}
	var assignment models.JudgeAssignment
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		var onRoster int64
		if err := tx.Model(&models.HackathonJudge{}).
			Where("hackathon_id = ? AND judge_id = ?", hackathonID, req.NewJudgeID).
			Count(&onRoster).Error; err != nil {
			return err
		}
		if onRoster == 0 {
			return utils.NewNotFound("new judge is not on this hackathon's roster")
		}
		res := tx.Where("hackathon_id = ? AND team_id = ? AND judge_id = ?", hackathonID, req.TeamID, req.OldJudgeID).
			Delete(&models.JudgeAssignment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewNotFound("assignment not found")
		}
		assignment = models.JudgeAssignment{JudgeID: req.NewJudgeID, TeamID: req.TeamID, HackathonID: hackathonID}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, assignmentWriteError(err, "reassign judge")
	}
	return &assignment, nil
}

// AutoBalance rewrites the matrix so every team has one judge and loads differ
// by at most one. Concurrent calls for one hackathon run one after the other.
func AutoBalance(ctx context.Context, hackathonID uint32) (*dto.AutoBalanceResp, error) {
	unlock := balanceLocks.lock(hackathonID)
	defer unlock()

	var result dto.AutoBalanceResp
	err := db(ctx).Transaction(func(tx *gorm.DB) error {
		judges, err := rosterJudgeIDs(tx, hackathonID)
		if err != nil {
			return err
		}
		if len(judges) == 0 {
			return utils.NewValidation("add judges to the hackathon before balancing")
		}
		teams, err := hackathonTeamIDs(tx, hackathonID)
		if err != nil {
			return err
		}
		current, err := currentAssignments(tx, hackathonID)
		if err != nil {
			return err
		}
		target, err := BalanceAssignments(judges, teams, current)
		if err != nil {
			return utils.NewValidation(err.Error())
		}
		remove, add := DiffAssignments(current, target)
		for _, p := range remove {
			if err := tx.Where("hackathon_id = ? AND judge_id = ? AND team_id = ?", hackathonID, p.JudgeID, p.TeamID).
				Delete(&models.JudgeAssignment{}).Error; err != nil {
				return err
			}
		}
		if len(add) > 0 {
			rows := make([]models.JudgeAssignment, len(add))
			for i, p := range add {
				rows[i] = models.JudgeAssignment{JudgeID: p.JudgeID, TeamID: p.TeamID, HackathonID: hackathonID}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		result = dto.AutoBalanceResp{Assignments: len(target), Added: len(add), Removed: len(remove)}
		return nil
	})
	if err != nil {
		return nil, assignmentWriteError(err, "balance assignments")
	}
	return &result, nil
}

// ListJudgeAssignments returns the judge's teams with submission and
// evaluation progress. hackathonID zero lists every hackathon.
func ListJudgeAssignments(ctx context.Context, judgeID, hackathonID uint32) ([]dto.AssignedTeamResp, error) {
	var assignments []models.JudgeAssignment
	q := db(ctx).Where("judge_id = ?", judgeID)
	if hackathonID != 0 {
		q = q.Where("hackathon_id = ?", hackathonID)
	}
	if err := q.Order("id asc").Find(&assignments).Error; err != nil {
		return nil, utils.Wrap(err, "list assignments")
	}
	if len(assignments) == 0 {
		return []dto.AssignedTeamResp{}, nil
	}

	teamIDs := make([]uint32, len(assignments))
	for i, a := range assignments {
		teamIDs[i] = a.TeamID
	}
	var teams []models.Team
	if err := db(ctx).Where("id IN ?", teamIDs).Find(&teams).Error; err != nil {
		return nil, utils.Wrap(err, "load teams")
	}
	var submissions []models.Submission
	if err := db(ctx).Where("team_id IN ?", teamIDs).Find(&submissions).Error; err != nil {
		return nil, utils.Wrap(err, "load submissions")
	}
	var evaluations []models.Evaluation
	if err := db(ctx).Where("judge_id = ? AND team_id IN ?", judgeID, teamIDs).Find(&evaluations).Error; err != nil {
		return nil, utils.Wrap(err, "load evaluations")
	}

	teamByID := make(map[uint32]models.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}
	subByTeam := make(map[uint32]models.Submission, len(submissions))
	for _, s := range submissions {
		subByTeam[s.TeamID] = s
	}
	evalByTeam := make(map[uint32]models.Evaluation, len(evaluations))
	for _, e := range evaluations {
		evalByTeam[e.TeamID] = e
	}

	out := make([]dto.AssignedTeamResp, 0, len(assignments))
	for _, a := range assignments {
		row := dto.AssignedTeamResp{
			TeamID:           a.TeamID,
			TeamName:         teamByID[a.TeamID].Name,
			HackathonID:      a.HackathonID,
			EvaluationStatus: "pending",
			AssignedAt:       a.CreatedAt,
		}
		if s, ok := subByTeam[a.TeamID]; ok {
			id := s.ID
			row.SubmissionID = &id
			row.SubmissionTitle = s.Title
			row.SubmissionStatus = string(s.Status)
			row.SubmittedAt = s.SubmittedAt
		}
		if e, ok := evalByTeam[a.TeamID]; ok {
			row.EvaluationStatus = string(e.Status)
		}
		out = append(out, row)
	}
	return out, nil
}

// JudgeDashboard summarizes evaluation progress for one judge.
func JudgeDashboard(ctx context.Context, judgeID, hackathonID uint32) (*dto.JudgeDashboardResp, error) {
	rows, err := ListJudgeAssignments(ctx, judgeID, hackathonID)
	if err != nil {
		return nil, err
	}
	var locked int64
	if err := db(ctx).Model(&models.Evaluation{}).
		Where("judge_id = ? AND hackathon_id = ? AND is_locked_by_admin = ?", judgeID, hackathonID, true).
		Count(&locked).Error; err != nil {
		return nil, utils.Wrap(err, "count locked evaluations")
	}
	resp := &dto.JudgeDashboardResp{Assigned: len(rows), Locked: int(locked)}
	for _, r := range rows {
		switch r.EvaluationStatus {
		case string(models.EvaluationSubmitted):
			resp.Submitted++
		case string(models.EvaluationDraft):
			resp.Drafts++
		default:
			resp.Pending++
		}
	}
	return resp, nil
}
