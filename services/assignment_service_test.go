package services

import (
	"context"
	"fmt"
	"testing"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/testutil"
	"Hacknox/utils"

	"gorm.io/gorm"
)

type judgingFixture struct {
	db        *gorm.DB
	hackathon *models.Hackathon
	judges    []*models.User
	teams     []*models.Team
}

func setupJudging(t *testing.T, judgeCount, teamCount int) *judgingFixture {
	t.Helper()
	db, _ := testutil.Setup(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "spring-hack", 4)

	f := &judgingFixture{db: db, hackathon: h}
	for i := 0; i < judgeCount; i++ {
		j := testutil.CreateUser(t, db, models.RoleJudge, fmt.Sprintf("judge%d@example.com", i))
		testutil.AddJudge(t, db, h.ID, j)
		f.judges = append(f.judges, j)
	}
	for i := 0; i < teamCount; i++ {
		leader := testutil.CreateUser(t, db, models.RoleParticipant, fmt.Sprintf("lead%d@example.com", i))
		f.teams = append(f.teams, testutil.CreateTeam(t, db, h.ID, fmt.Sprintf("team-%d", i), leader))
	}
	return f
}

func countAssignments(t *testing.T, db *gorm.DB, hackathonID uint32) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.JudgeAssignment{}).Where("hackathon_id = ?", hackathonID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count assignments: %v", err)
	}
	return n
}

func TestAssignJudgesAllOrNothing(t *testing.T) {
	f := setupJudging(t, 2, 3)
	ctx := context.Background()

	batch := []dto.AssignmentPair{
		{JudgeID: f.judges[0].ID, TeamID: f.teams[0].ID},
		{JudgeID: f.judges[1].ID, TeamID: f.teams[1].ID},
	}
	created, err := AssignJudges(ctx, f.hackathon.ID, batch)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("Expected 2 assignments, got %d", len(created))
	}

	// a repeated pair aborts the whole batch, including the new pair
	again := append([]dto.AssignmentPair{{JudgeID: f.judges[0].ID, TeamID: f.teams[2].ID}}, batch...)
	_, err = AssignJudges(ctx, f.hackathon.ID, again)
	if !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("Expected conflict, got %v", err)
	}
	if n := countAssignments(t, f.db, f.hackathon.ID); n != 2 {
		t.Errorf("Expected 2 assignments after failed batch, got %d", n)
	}
}

func TestAssignJudgesValidation(t *testing.T) {
	f := setupJudging(t, 1, 1)
	ctx := context.Background()
	outsider := testutil.CreateUser(t, f.db, models.RoleJudge, "outsider@example.com")

	tests := []struct {
		name  string
		pairs []dto.AssignmentPair
		kind  utils.ErrorKind
	}{
		{"empty batch", nil, utils.KindValidation},
		{"judge not on roster", []dto.AssignmentPair{{JudgeID: outsider.ID, TeamID: f.teams[0].ID}}, utils.KindNotFound},
		{"unknown team", []dto.AssignmentPair{{JudgeID: f.judges[0].ID, TeamID: 9999}}, utils.KindNotFound},
		{"duplicate in batch", []dto.AssignmentPair{
			{JudgeID: f.judges[0].ID, TeamID: f.teams[0].ID},
			{JudgeID: f.judges[0].ID, TeamID: f.teams[0].ID},
		}, utils.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignJudges(ctx, f.hackathon.ID, tt.pairs)
			if !utils.IsKind(err, tt.kind) {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
	if n := countAssignments(t, f.db, f.hackathon.ID); n != 0 {
		t.Errorf("Expected no assignments, got %d", n)
	}
}

func TestReassign(t *testing.T) {
	f := setupJudging(t, 2, 1)
	ctx := context.Background()
	team := f.teams[0].ID
	oldJudge, newJudge := f.judges[0].ID, f.judges[1].ID

	if _, err := AssignJudges(ctx, f.hackathon.ID, []dto.AssignmentPair{{JudgeID: oldJudge, TeamID: team}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := Reassign(ctx, f.hackathon.ID, dto.ReassignReq{TeamID: team, OldJudgeID: oldJudge, NewJudgeID: newJudge}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows, err := ListAssignments(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].JudgeID != newJudge {
		t.Errorf("Expected the team to move to judge %d, got %+v", newJudge, rows)
	}

	_, err = Reassign(ctx, f.hackathon.ID, dto.ReassignReq{TeamID: team, OldJudgeID: oldJudge, NewJudgeID: newJudge})
	if !utils.IsKind(err, utils.KindNotFound) {
		t.Errorf("Expected not_found for a missing old assignment, got %v", err)
	}
}

func TestAutoBalance(t *testing.T) {
	f := setupJudging(t, 3, 7)
	ctx := context.Background()

	// pile everything on the first judge
	var pairs []dto.AssignmentPair
	for _, team := range f.teams {
		pairs = append(pairs, dto.AssignmentPair{JudgeID: f.judges[0].ID, TeamID: team.ID})
	}
	if _, err := AssignJudges(ctx, f.hackathon.ID, pairs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	res, err := AutoBalance(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Assignments != 7 {
		t.Errorf("Expected 7 assignments, got %d", res.Assignments)
	}

	current, err := currentAssignments(f.db, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	judgeIDs := []uint32{f.judges[0].ID, f.judges[1].ID, f.judges[2].ID}
	if s := spread(judgeIDs, current); s > 1 {
		t.Errorf("Expected spread <= 1, got %d", s)
	}
	if len(current) != 7 {
		t.Errorf("Expected 7 stored assignments, got %d", len(current))
	}

	res, err = AutoBalance(ctx, f.hackathon.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Added != 0 || res.Removed != 0 {
		t.Errorf("Expected second run to change nothing, got %+v", res)
	}
}

func TestAutoBalanceWithoutJudges(t *testing.T) {
	f := setupJudging(t, 0, 2)
	_, err := AutoBalance(context.Background(), f.hackathon.ID)
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
