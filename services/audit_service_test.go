package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Hacknox/metrics"
	"Hacknox/models"
	"Hacknox/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAuditLoggerDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var written []string
	logger := newAuditLogger(func(ctx context.Context, entry *models.AuditLog) error {
		<-release
		mu.Lock()
		written = append(written, entry.Action)
		mu.Unlock()
		return nil
	}, 1)

	dropped := promtest.ToFloat64(metrics.AuditDropped)

	// the worker holds the first entry, the queue holds the second
	logger.Log(1, "first", 1, nil)
	deadline := time.Now().Add(time.Second)
	for len(logger.queue) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	logger.Log(1, "second", 1, nil)
	logger.Log(1, "third", 1, nil)

	if got := promtest.ToFloat64(metrics.AuditDropped) - dropped; got != 1 {
		t.Errorf("Expected 1 dropped entry, got %v", got)
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := logger.Close(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(written) != 2 || written[0] != "first" || written[1] != "second" {
		t.Errorf("Expected [first second], got %v", written)
	}

	logger.Log(1, "after-close", 1, nil)
	if got := promtest.ToFloat64(metrics.AuditDropped) - dropped; got != 2 {
		t.Errorf("Expected the post-close entry to be dropped, got %v drops", got)
	}
}

func TestAuditLoggerCountsFailures(t *testing.T) {
	failed := promtest.ToFloat64(metrics.AuditFailed)
	logger := newAuditLogger(func(ctx context.Context, entry *models.AuditLog) error {
		return errors.New("database unavailable")
	}, 4)
	logger.Log(1, "team.verify", 2, map[string]interface{}{"team_id": 3})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := logger.Close(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := promtest.ToFloat64(metrics.AuditFailed) - failed; got != 1 {
		t.Errorf("Expected 1 failed write, got %v", got)
	}
}

func TestListAuditLogs(t *testing.T) {
	db, _ := testutil.Setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	mine := testutil.CreateHackathon(t, db, admin.ID, "mine", 4)
	rival := testutil.CreateUser(t, db, models.RoleAdmin, "rival@example.com")
	theirs := testutil.CreateHackathon(t, db, rival.ID, "theirs", 4)

	logger := NewAuditLogger(db, 16)
	logger.Log(admin.ID, "team.verify", mine.ID, nil)
	logger.Log(admin.ID, "judge.add", mine.ID, nil)
	logger.Log(rival.ID, "team.verify", theirs.ID, nil)
	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := logger.Close(closeCtx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	owned, err := OwnedHackathonIDs(ctx, admin.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	page, err := ListAuditLogs(ctx, AuditFilter{HackathonIDs: owned})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected 2 entries for owned hackathons, got %d", page.Total)
	}

	page, err = ListAuditLogs(ctx, AuditFilter{HackathonIDs: owned, Action: "judge.add"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if page.Total != 1 || page.Items[0].Action != "judge.add" {
		t.Errorf("Expected only judge.add, got %+v", page.Items)
	}

	page, err = ListAuditLogs(ctx, AuditFilter{HackathonIDs: []uint32{}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("Expected an empty page with no owned hackathons, got %+v", page)
	}
}
