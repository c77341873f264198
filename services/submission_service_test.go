package services

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"testing"
	"time"

	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/testutil"
	"Hacknox/utils"

	"gorm.io/gorm"
)

type scanFunc func(ctx context.Context, path string) error

func (f scanFunc) Scan(ctx context.Context, path string) error { return f(ctx, path) }

type submissionFixture struct {
	db        *gorm.DB
	hackathon *models.Hackathon
	team      *models.Team
	dir       string
}

// setupSubmissions points Storage at a temp dir and Scanner at scan.
func setupSubmissions(t *testing.T, scan scanFunc) *submissionFixture {
	t.Helper()
	db, _ := testutil.Setup(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "spring-hack", 4)
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)

	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost", testutil.TestJWTSecret)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	prevStorage, prevScanner := Storage, Scanner
	Storage, Scanner = storage, scan
	t.Cleanup(func() { Storage, Scanner = prevStorage, prevScanner })

	return &submissionFixture{db: db, hackathon: h, team: team, dir: dir}
}

func cleanScan(context.Context, string) error { return nil }

func zipUpload(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("archive", name)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write(content)
	mw.Close()

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("Failed to read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["archive"][0]
}

func zipBytes(payload string) []byte {
	return append([]byte("PK\x03\x04"), payload...)
}

func (f *submissionFixture) counts(t *testing.T) (rows int64, files int) {
	t.Helper()
	f.db.Model(&models.Submission{}).Count(&rows)
	err := filepath.WalkDir(f.dir, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files++
		}
		return err
	})
	if err != nil {
		t.Fatalf("Failed to walk storage dir: %v", err)
	}
	return rows, files
}

func TestSubmissionDraftLifecycle(t *testing.T) {
	f := setupSubmissions(t, cleanScan)
	ctx := context.Background()
	teamID, hid := f.team.ID, f.hackathon.ID

	first, err := SaveSubmissionDraft(ctx, teamID, hid, dto.SubmissionDraftForm{Title: " Rocket "}, zipUpload(t, "v1.zip", zipBytes("one")))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.Title != "Rocket" || first.ZipSHA256 == "" || first.Status != models.SubmissionDraft {
		t.Errorf("Unexpected draft: %+v", first)
	}

	second, err := SaveSubmissionDraft(ctx, teamID, hid, dto.SubmissionDraftForm{Title: "Rocket v2"}, zipUpload(t, "v2.zip", zipBytes("two")))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected re-save to update submission %d, got %d", first.ID, second.ID)
	}
	if second.ZipSHA256 == first.ZipSHA256 {
		t.Errorf("Expected the new archive hash to replace the old one")
	}
	if rows, files := f.counts(t); rows != 1 || files != 1 {
		t.Errorf("Expected 1 row and 1 stored archive, got %d rows and %d files", rows, files)
	}

	finalized, err := FinalizeSubmission(ctx, teamID, first.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if finalized.Status != models.SubmissionSubmitted || finalized.SubmittedAt == nil {
		t.Errorf("Expected a submitted submission, got %+v", finalized)
	}

	if _, err := FinalizeSubmission(ctx, teamID, first.ID); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict finalizing twice, got %v", err)
	}
	if _, err := SaveSubmissionDraft(ctx, teamID, hid, dto.SubmissionDraftForm{Title: "late"}, nil); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict saving after finalize, got %v", err)
	}
	title := "edited"
	if _, err := UpdateSubmission(ctx, teamID, first.ID, dto.UpdateSubmissionReq{Title: &title}); !utils.IsKind(err, utils.KindConflict) {
		t.Errorf("Expected conflict editing after finalize, got %v", err)
	}
}

func TestSubmissionArchiveRejectedBeforeStorage(t *testing.T) {
	tests := []struct {
		name    string
		scan    scanFunc
		file    string
		content []byte
		kind    utils.ErrorKind
	}{
		{"infected", func(context.Context, string) error { return ErrInfected }, "code.zip", zipBytes("x"), utils.KindValidation},
		{"scanner down", func(context.Context, string) error { return errors.New("daemon unreachable") }, "code.zip", zipBytes("x"), utils.KindServer},
		{"wrong extension", cleanScan, "code.tar", zipBytes("x"), utils.KindValidation},
		{"not a zip", cleanScan, "code.zip", []byte("plain text"), utils.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupSubmissions(t, tt.scan)
			_, err := SaveSubmissionDraft(context.Background(), f.team.ID, f.hackathon.ID,
				dto.SubmissionDraftForm{Title: "Rocket"}, zipUpload(t, tt.file, tt.content))
			if !utils.IsKind(err, tt.kind) {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
			if rows, files := f.counts(t); rows != 0 || files != 0 {
				t.Errorf("Expected nothing persisted, got %d rows and %d files", rows, files)
			}
		})
	}
}

func TestSubmissionDeadline(t *testing.T) {
	f := setupSubmissions(t, cleanScan)
	ctx := context.Background()
	draft, err := SaveSubmissionDraft(ctx, f.team.ID, f.hackathon.ID, dto.SubmissionDraftForm{Title: "Rocket", RepoURL: "https://example.com/r"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	deadline := time.Now().Add(-time.Hour)
	if err := f.db.Model(f.hackathon).Update("submission_deadline", deadline).Error; err != nil {
		t.Fatalf("Failed to set deadline: %v", err)
	}
	if _, err := SaveSubmissionDraft(ctx, f.team.ID, f.hackathon.ID, dto.SubmissionDraftForm{Title: "late"}, nil); !utils.IsKind(err, utils.KindExpired) {
		t.Errorf("Expected expired saving after the deadline, got %v", err)
	}
	if _, err := FinalizeSubmission(ctx, f.team.ID, draft.ID); !utils.IsKind(err, utils.KindExpired) {
		t.Errorf("Expected expired finalizing after the deadline, got %v", err)
	}
}

func TestFinalizeRequiresContent(t *testing.T) {
	f := setupSubmissions(t, cleanScan)
	ctx := context.Background()
	draft, err := SaveSubmissionDraft(ctx, f.team.ID, f.hackathon.ID, dto.SubmissionDraftForm{Title: "Rocket"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := FinalizeSubmission(ctx, f.team.ID, draft.ID); !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("Expected validation without a repo or archive, got %v", err)
	}
}

func TestSetSubmissionStatus(t *testing.T) {
	f := setupSubmissions(t, cleanScan)
	ctx := context.Background()
	draft, err := SaveSubmissionDraft(ctx, f.team.ID, f.hackathon.ID, dto.SubmissionDraftForm{Title: "Rocket", RepoURL: "https://example.com/r"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		id     uint64
		status string
		kind   utils.ErrorKind
		want   models.SubmissionStatus
	}{
		{"shortlisted", draft.ID, "shortlisted", "", models.SubmissionShortlisted},
		{"normalized", draft.ID, " Accepted ", "", models.SubmissionAccepted},
		{"draft not allowed", draft.ID, "draft", utils.KindInvalidStatus, ""},
		{"unknown", draft.ID, "approved", utils.KindInvalidStatus, ""},
		{"missing", draft.ID + 100, "rejected", utils.KindNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetSubmissionStatus(ctx, f.hackathon.ID, tt.id, tt.status)
			if tt.kind != "" {
				if !utils.IsKind(err, tt.kind) {
					t.Errorf("Expected %s, got %v", tt.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Status != tt.want || got.SubmittedAt == nil {
				t.Errorf("Expected status %s with submitted_at, got %s %v", tt.want, got.Status, got.SubmittedAt)
			}
		})
	}
}
