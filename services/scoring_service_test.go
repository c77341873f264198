package services

import (
	"context"
	"testing"
	"time"

	"Hacknox/dto"
	"Hacknox/models"
)

func submitFor(t *testing.T, f *judgingFixture, judgeIdx, teamIdx int, v float64) {
	t.Helper()
	ctx := context.Background()
	judge, team := f.judges[judgeIdx].ID, f.teams[teamIdx].ID
	if _, err := SubmitEvaluation(ctx, judge, f.hackathon.ID, team, fullScores(v)); err != nil {
		t.Fatalf("Failed to submit evaluation: %v", err)
	}
}

func storeSubmission(t *testing.T, f *judgingFixture, teamIdx int, at time.Time) {
	t.Helper()
	s := models.Submission{
		TeamID:      f.teams[teamIdx].ID,
		HackathonID: f.hackathon.ID,
		Title:       "project",
		Status:      models.SubmissionSubmitted,
		SubmittedAt: &at,
	}
	if err := f.db.Omit("Team").Create(&s).Error; err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}
}

func TestAggregateScores(t *testing.T) {
	f := setupJudging(t, 2, 2)
	ctx := context.Background()
	var pairs []dto.AssignmentPair
	for _, j := range f.judges {
		for _, tm := range f.teams {
			pairs = append(pairs, dto.AssignmentPair{JudgeID: j.ID, TeamID: tm.ID})
		}
	}
	if _, err := AssignJudges(ctx, f.hackathon.ID, pairs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	submitFor(t, f, 0, 0, 6)
	submitFor(t, f, 1, 0, 9)
	// a draft on team 1 must not produce a score row
	if _, err := SaveEvaluationDraft(ctx, f.judges[0].ID, f.hackathon.ID, f.teams[1].ID, fullScores(10)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	scores, err := AggregateScores(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("Expected 1 team score, got %d", len(scores))
	}
	if scores[0].TeamID != f.teams[0].ID || scores[0].CompositeScore != 7.5 || scores[0].EvaluationsCount != 2 {
		t.Errorf("Unexpected score: %+v", scores[0])
	}

	// rerunning replaces rather than duplicates
	if _, err := AggregateScores(ctx, f.hackathon.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var n int64
	f.db.Model(&models.TeamScore{}).Count(&n)
	if n != 1 {
		t.Errorf("Expected 1 stored team score, got %d", n)
	}
}

func TestComputeLeaderboardTieBreak(t *testing.T) {
	f := setupJudging(t, 1, 3)
	ctx := context.Background()
	var pairs []dto.AssignmentPair
	for _, tm := range f.teams {
		pairs = append(pairs, dto.AssignmentPair{JudgeID: f.judges[0].ID, TeamID: tm.ID})
	}
	if _, err := AssignJudges(ctx, f.hackathon.ID, pairs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	submitFor(t, f, 0, 0, 7)
	submitFor(t, f, 0, 1, 7)
	submitFor(t, f, 0, 2, 9)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	storeSubmission(t, f, 0, base.Add(2*time.Hour))
	storeSubmission(t, f, 1, base)

	if _, err := AggregateScores(ctx, f.hackathon.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	entries, err := ComputeLeaderboard(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []uint32{f.teams[2].ID, f.teams[1].ID, f.teams[0].ID}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, id := range want {
		if entries[i].TeamID != id || entries[i].Rank != uint(i+1) {
			t.Errorf("Expected team %d at rank %d, got team %d rank %d", id, i+1, entries[i].TeamID, entries[i].Rank)
		}
	}
}

func TestPublicLeaderboardVisibility(t *testing.T) {
	f := setupJudging(t, 1, 1)
	ctx := context.Background()
	if _, err := AssignJudges(ctx, f.hackathon.ID, []dto.AssignmentPair{{JudgeID: f.judges[0].ID, TeamID: f.teams[0].ID}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	submitFor(t, f, 0, 0, 8)
	if _, err := AggregateScores(ctx, f.hackathon.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := ComputeLeaderboard(ctx, f.hackathon.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	board, err := PublicLeaderboard(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if board.Published || len(board.Entries) != 0 {
		t.Errorf("Expected an empty unpublished board, got %+v", board)
	}

	// publishing purges the cached unpublished view
	if _, err := SetLeaderboardPublished(ctx, f.hackathon.ID, 1, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	board, err = PublicLeaderboard(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !board.Published || len(board.Entries) != 1 {
		t.Errorf("Expected one published entry, got %+v", board)
	}

	admin, err := GetLeaderboard(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(admin.Entries) != 1 || admin.Entries[0].Rank != 1 {
		t.Errorf("Unexpected admin leaderboard: %+v", admin)
	}
}
