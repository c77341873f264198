package services

import (
	"context"
	"testing"
	"time"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/testutil"
	"Hacknox/utils"
)

func TestCreateTeam(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 3)
	alice := testutil.CreateUser(t, db, models.RoleParticipant, "alice@example.com")

	team, err := CreateTeam(ctx, alice.ID, h.ID, dto.CreateTeamReq{Name: "  Rockets  "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if team.Name != "Rockets" || team.LeaderID != alice.ID || len(team.JoinCode) != 6 {
		t.Errorf("Unexpected team: %+v", team)
	}

	_, err = CreateTeam(ctx, alice.ID, h.ID, dto.CreateTeamReq{Name: "Second"})
	if !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict for a second team, got %v", err)
	}

	bob := testutil.CreateUser(t, db, models.RoleParticipant, "bob@example.com")
	_, err = CreateTeam(ctx, bob.ID, h.ID, dto.CreateTeamReq{Name: "Rockets"})
	if !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict for a duplicate name, got %v", err)
	}

	if err := db.Model(h).Update("status", models.HackathonStatusClosed).Error; err != nil {
		t.Fatalf("Failed to close hackathon: %v", err)
	}
	_, err = CreateTeam(ctx, bob.ID, h.ID, dto.CreateTeamReq{Name: "Late"})
	if !utils.IsKind(err, utils.KindInvalidStatus) {
		t.Errorf("Expected invalid_status for a closed hackathon, got %v", err)
	}
}

func TestJoinTeamFinalizesAtMax(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 3)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)

	second := testutil.CreateUser(t, db, models.RoleParticipant, "second@example.com")
	joined, err := JoinTeam(ctx, second.ID, team.JoinCode, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if joined.IsFinalized {
		t.Errorf("Expected team to stay open at 2 of 3")
	}

	third := testutil.CreateUser(t, db, models.RoleParticipant, "third@example.com")
	joined, err = JoinTeam(ctx, third.ID, team.JoinCode, h.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !joined.IsFinalized {
		t.Errorf("Expected team to be finalized at 3 of 3")
	}

	fourth := testutil.CreateUser(t, db, models.RoleParticipant, "fourth@example.com")
	_, err = JoinTeam(ctx, fourth.ID, team.JoinCode, 0)
	if !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict for a full team, got %v", err)
	}

	var members int64
	db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&members)
	if members != 3 {
		t.Errorf("Expected 3 members, got %d", members)
	}
}

func TestJoinTeamErrors(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 4)
	other := testutil.CreateHackathon(t, db, admin.ID, "other", 4)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)
	user := testutil.CreateUser(t, db, models.RoleParticipant, "user@example.com")

	tests := []struct {
		name   string
		userID uint32
		code   string
		ctxHID uint32
		kind   utils.ErrorKind
	}{
		{"unknown code", user.ID, "ZZZZZZ", 0, utils.KindNotFound},
		{"empty code", user.ID, "", 0, utils.KindValidation},
		{"other hackathon context", user.ID, team.JoinCode, other.ID, utils.KindForbidden},
		{"already a member", leader.ID, team.JoinCode, 0, utils.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JoinTeam(ctx, tt.userID, tt.code, tt.ctxHID)
			if !utils.IsKind(err, tt.kind) {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestInviteAndAccept(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 4)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)
	guest := testutil.CreateUser(t, db, models.RoleParticipant, "guest@example.com")
	stranger := testutil.CreateUser(t, db, models.RoleParticipant, "stranger@example.com")

	if _, err := InviteMember(ctx, guest.ID, team.ID, "x@example.com"); !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("Expected forbidden for a non-leader invite, got %v", err)
	}

	inv, err := InviteMember(ctx, leader.ID, team.ID, "Guest@Example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inv.Email != "guest@example.com" {
		t.Errorf("Expected normalized email, got %s", inv.Email)
	}

	if _, err := AcceptInvite(ctx, stranger.ID, inv.Token, 0); !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("Expected forbidden for a different email, got %v", err)
	}
	if _, err := AcceptInvite(ctx, guest.ID, inv.Token, h.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := AcceptInvite(ctx, guest.ID, inv.Token, 0); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict for a second accept, got %v", err)
	}
}

func TestAcceptExpiredInvite(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 4)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)
	guest := testutil.CreateUser(t, db, models.RoleParticipant, "guest@example.com")

	inv, err := InviteMember(ctx, leader.ID, team.ID, guest.Email)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	realNow := now
	now = func() time.Time { return realNow().Add(opts.InviteTTL + time.Minute) }
	defer func() { now = realNow }()

	if _, err := AcceptInvite(ctx, guest.ID, inv.Token, 0); !utils.IsKind(err, utils.KindExpired) {
		t.Errorf("Expected expired, got %v", err)
	}
	var stored models.TeamInvitation
	db.First(&stored, inv.ID)
	if stored.Status != models.InvitationExpired {
		t.Errorf("Expected invitation to be marked expired, got %s", stored.Status)
	}
}

func TestRemoveMember(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 4)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	m1 := testutil.CreateUser(t, db, models.RoleParticipant, "m1@example.com")
	m2 := testutil.CreateUser(t, db, models.RoleParticipant, "m2@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader, m1, m2)

	if err := RemoveMember(ctx, leader.ID, team.ID, leader.ID); !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("Expected validation error for leader self-removal, got %v", err)
	}
	if err := RemoveMember(ctx, m1.ID, team.ID, m2.ID); !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("Expected forbidden for a non-leader, got %v", err)
	}
	if err := RemoveMember(ctx, leader.ID, team.ID, m2.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := RemoveMember(ctx, leader.ID, team.ID, m1.ID); !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("Expected validation error below two members, got %v", err)
	}
}
