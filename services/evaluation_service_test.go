package services

import (
	"context"
	"testing"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"
)

func score(v float64) *float64 { return &v }

func fullScores(v float64) dto.EvaluationReq {
	return dto.EvaluationReq{Innovation: score(v), Feasibility: score(v), Execution: score(v), Presentation: score(v)}
}

func TestEvaluationLifecycle(t *testing.T) {
	f := setupJudging(t, 1, 1)
	ctx := context.Background()
	judge, team, hid := f.judges[0].ID, f.teams[0].ID, f.hackathon.ID

	_, err := SaveEvaluationDraft(ctx, judge, hid, team, fullScores(5))
	if !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("Expected forbidden without an assignment, got %v", err)
	}
	if _, err := AssignJudges(ctx, hid, []dto.AssignmentPair{{JudgeID: judge, TeamID: team}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	draft, err := SaveEvaluationDraft(ctx, judge, hid, team, dto.EvaluationReq{Innovation: score(7), Comments: " first pass "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if draft.Status != models.EvaluationDraft || draft.Innovation != 7 || draft.Comments != "first pass" {
		t.Errorf("Unexpected draft: %+v", draft)
	}

	draft, err = SaveEvaluationDraft(ctx, judge, hid, team, dto.EvaluationReq{Innovation: score(8)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if draft.Innovation != 8 {
		t.Errorf("Expected draft upsert to update innovation to 8, got %v", draft.Innovation)
	}
	var rows int64
	f.db.Model(&models.Evaluation{}).Count(&rows)
	if rows != 1 {
		t.Errorf("Expected one evaluation row after two drafts, got %d", rows)
	}

	if _, err := UpdateEvaluation(ctx, judge, hid, team, fullScores(6)); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict updating a draft, got %v", err)
	}
	if _, err := SubmitEvaluation(ctx, judge, hid, team, dto.EvaluationReq{Innovation: score(8)}); !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("Expected validation error for an incomplete submit, got %v", err)
	}

	submitted, err := SubmitEvaluation(ctx, judge, hid, team, fullScores(9))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if submitted.Status != models.EvaluationSubmitted || submitted.SubmittedAt == nil {
		t.Errorf("Expected a submitted evaluation, got %+v", submitted)
	}
	if _, err := SaveEvaluationDraft(ctx, judge, hid, team, fullScores(1)); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict drafting after submit, got %v", err)
	}

	updated, err := UpdateEvaluation(ctx, judge, hid, team, fullScores(4))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Presentation != 4 {
		t.Errorf("Expected presentation 4, got %v", updated.Presentation)
	}

	if _, err := SetEvaluationLock(ctx, hid, updated.ID, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := UpdateEvaluation(ctx, judge, hid, team, fullScores(10)); !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("Expected forbidden on a locked evaluation, got %v", err)
	}
}

func TestEvaluationScoreRange(t *testing.T) {
	f := setupJudging(t, 1, 1)
	ctx := context.Background()
	if _, err := AssignJudges(ctx, f.hackathon.ID, []dto.AssignmentPair{{JudgeID: f.judges[0].ID, TeamID: f.teams[0].ID}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, v := range []float64{-0.5, 10.01} {
		_, err := SaveEvaluationDraft(ctx, f.judges[0].ID, f.hackathon.ID, f.teams[0].ID, dto.EvaluationReq{Execution: score(v)})
		if !utils.IsKind(err, utils.KindValidation) {
			t.Errorf("Expected validation error for %v, got %v", v, err)
		}
	}
}

func TestLockedDraftIsNotOverwritten(t *testing.T) {
	f := setupJudging(t, 1, 1)
	ctx := context.Background()
	judge, team, hid := f.judges[0].ID, f.teams[0].ID, f.hackathon.ID
	if _, err := AssignJudges(ctx, hid, []dto.AssignmentPair{{JudgeID: judge, TeamID: team}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	draft, err := SaveEvaluationDraft(ctx, judge, hid, team, dto.EvaluationReq{Innovation: score(3)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := SetEvaluationLock(ctx, hid, draft.ID, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		write func() error
	}{
		{"draft", func() error {
			_, err := SaveEvaluationDraft(ctx, judge, hid, team, dto.EvaluationReq{Innovation: score(9)})
			return err
		}},
		{"submit", func() error {
			_, err := SubmitEvaluation(ctx, judge, hid, team, fullScores(9))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.write(); !utils.IsKind(err, utils.KindForbidden) {
				t.Errorf("Expected forbidden, got %v", err)
			}
		})
	}

	var stored models.Evaluation
	if err := f.db.First(&stored, draft.ID).Error; err != nil {
		t.Fatalf("Failed to load evaluation: %v", err)
	}
	if stored.Innovation != 3 || stored.Status != models.EvaluationDraft {
		t.Errorf("Expected the locked draft untouched, got innovation %v status %s", stored.Innovation, stored.Status)
	}
}
