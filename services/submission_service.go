package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"Hacknox/dto"
	"Hacknox/metrics"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var zipMagic = []byte("PK\x03\x04")

// storedArchive describes an archive that passed checks and now lives in storage.
type storedArchive struct {
	Key      string
	FileName string
	Size     int64
	SHA256   string
}

func validateLink(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return utils.NewValidation(field + " must be an http(s) URL")
	}
	return nil
}

func rejectUpload(reason string, err *utils.AppError) error {
	metrics.UploadsRejected.WithLabelValues(reason).Inc()
	return err
}

// storeArchive copies the upload to a temp file, hashes and scans it, then moves
// it to object storage. Nothing is stored when any check fails.
func storeArchive(ctx context.Context, hackathonID, teamID uint32, file *multipart.FileHeader) (*storedArchive, error) {
	if !strings.EqualFold(filepath.Ext(file.Filename), ".zip") {
		return nil, rejectUpload("extension", utils.NewValidation("archive must be a .zip file"))
	}
	if file.Size > opts.MaxUploadBytes {
		return nil, rejectUpload("size", utils.NewValidation(fmt.Sprintf("archive exceeds the %d MB limit", opts.MaxUploadBytes>>20)))
	}

	src, err := file.Open()
	if err != nil {
		return nil, utils.Wrap(err, "open upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "submission-*.zip")
	if err != nil {
		return nil, utils.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(src, opts.MaxUploadBytes+1))
	if err != nil {
		return nil, utils.Wrap(err, "buffer upload")
	}
	if written > opts.MaxUploadBytes {
		return nil, rejectUpload("size", utils.NewValidation(fmt.Sprintf("archive exceeds the %d MB limit", opts.MaxUploadBytes>>20)))
	}
	header := make([]byte, len(zipMagic))
	if _, err := tmp.ReadAt(header, 0); err != nil || !bytes.Equal(header, zipMagic) {
		return nil, rejectUpload("format", utils.NewValidation("archive is not a valid zip file"))
	}

	if err := Scanner.Scan(ctx, tmp.Name()); err != nil {
		if errors.Is(err, ErrInfected) {
			return nil, rejectUpload("malware", utils.NewValidation("archive was rejected by the malware scan"))
		}
		metrics.UploadsRejected.WithLabelValues("scan_error").Inc()
		return nil, utils.Wrap(err, "scan archive")
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, utils.Wrap(err, "rewind upload")
	}
	key := fmt.Sprintf("submissions/%d/%d/%s.zip", hackathonID, teamID, uuid.NewString())
	if err := Storage.Put(ctx, key, tmp, written, "application/zip"); err != nil {
		return nil, utils.Wrap(err, "store archive")
	}
	return &storedArchive{
		Key:      key,
		FileName: filepath.Base(file.Filename),
		Size:     written,
		SHA256:   hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func discardObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := Storage.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("delete stored object")
	}
}

func submissionDeadlineCheck(ctx context.Context, hackathonID uint32) error {
	hackathon, err := GetHackathon(ctx, hackathonID)
	if err != nil {
		return err
	}
	if hackathon.DeadlinePassed(now()) {
		return utils.NewExpired("the submission deadline has passed")
	}
	return nil
}

func findTeamSubmission(tx *gorm.DB, teamID, hackathonID uint32) (*models.Submission, error) {
	var submission models.Submission
	err := tx.Where("team_id = ? AND hackathon_id = ?", teamID, hackathonID).First(&submission).Error
	if utils.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// SaveSubmissionDraft creates or updates the team's single draft. archive may be nil.
func SaveSubmissionDraft(ctx context.Context, teamID, hackathonID uint32, form dto.SubmissionDraftForm, archive *multipart.FileHeader) (*models.Submission, error) {
	form.Normalize()
	if err := validateLink("repo_url", form.RepoURL); err != nil {
		return nil, err
	}
	if err := validateLink("demo_url", form.DemoURL); err != nil {
		return nil, err
	}
	if err := submissionDeadlineCheck(ctx, hackathonID); err != nil {
		return nil, err
	}
	existing, err := findTeamSubmission(db(ctx), teamID, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load submission")
	}
	if existing != nil && existing.Status != models.SubmissionDraft {
		return nil, utils.NewConflict("submission has already been finalized")
	}

	var stored *storedArchive
	if archive != nil {
		if stored, err = storeArchive(ctx, hackathonID, teamID, archive); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{
		"title":       form.Title,
		"description": form.Description,
		"repo_url":    form.RepoURL,
		"demo_url":    form.DemoURL,
	}
	if stored != nil {
		fields["zip_storage_path"] = stored.Key
		fields["zip_file_name"] = stored.FileName
		fields["zip_size"] = stored.Size
		fields["zip_sha256"] = stored.SHA256
	}

	var submission models.Submission
	if existing != nil {
		res := db(ctx).Model(&models.Submission{}).
			Where("id = ? AND status = ?", existing.ID, models.SubmissionDraft).
			Updates(fields)
		if res.Error != nil || res.RowsAffected == 0 {
			if stored != nil {
				discardObject(ctx, stored.Key)
			}
			if res.Error != nil {
				return nil, utils.Wrap(res.Error, "update submission")
			}
			return nil, utils.NewConflict("submission has already been finalized")
		}
		if stored != nil {
			discardObject(ctx, existing.ZipStoragePath)
		}
		if err := db(ctx).First(&submission, existing.ID).Error; err != nil {
			return nil, utils.Wrap(err, "reload submission")
		}
		return &submission, nil
	}

	submission = models.Submission{
		TeamID:      teamID,
		HackathonID: hackathonID,
		Title:       form.Title,
		Description: form.Description,
		RepoURL:     form.RepoURL,
		DemoURL:     form.DemoURL,
		Status:      models.SubmissionDraft,
	}
	if stored != nil {
		submission.ZipStoragePath = stored.Key
		submission.ZipFileName = stored.FileName
		submission.ZipSize = stored.Size
		submission.ZipSHA256 = stored.SHA256
	}
	if err := db(ctx).Omit("Team").Create(&submission).Error; err != nil {
		if stored != nil {
			discardObject(ctx, stored.Key)
		}
		if utils.IsDuplicateKey(err) {
			return nil, utils.NewConflict("a submission for this team already exists")
		}
		return nil, utils.Wrap(err, "create submission")
	}
	return &submission, nil
}

func loadTeamSubmission(ctx context.Context, teamID uint32, submissionID uint64) (*models.Submission, error) {
	var submission models.Submission
	err := db(ctx).First(&submission, submissionID).Error
	if utils.IsNotFound(err) || (err == nil && submission.TeamID != teamID) {
		return nil, utils.NewNotFound("submission not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load submission")
	}
	return &submission, nil
}

// FinalizeSubmission moves the draft to submitted exactly once.
func FinalizeSubmission(ctx context.Context, teamID uint32, submissionID uint64) (*models.Submission, error) {
	submission, err := loadTeamSubmission(ctx, teamID, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.Status != models.SubmissionDraft {
		return nil, utils.NewConflict("submission has already been finalized")
	}
	if err := submissionDeadlineCheck(ctx, submission.HackathonID); err != nil {
		return nil, err
	}
	if submission.Title == "" {
		return nil, utils.NewValidation("a title is required before finalizing")
	}
	if submission.RepoURL == "" && submission.ZipStoragePath == "" {
		return nil, utils.NewValidation("a repository URL or an archive is required before finalizing")
	}

	submittedAt := now()
	res := db(ctx).Model(&models.Submission{}).
		Where("id = ? AND status = ?", submission.ID, models.SubmissionDraft).
		Updates(map[string]interface{}{"status": models.SubmissionSubmitted, "submitted_at": submittedAt})
	if res.Error != nil {
		return nil, utils.Wrap(res.Error, "finalize submission")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflict("submission has already been finalized")
	}
	submission.Status = models.SubmissionSubmitted
	submission.SubmittedAt = &submittedAt
	return submission, nil
}

// UpdateSubmission edits the text fields of a draft.
func UpdateSubmission(ctx context.Context, teamID uint32, submissionID uint64, req dto.UpdateSubmissionReq) (*models.Submission, error) {
	submission, err := loadTeamSubmission(ctx, teamID, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.Status != models.SubmissionDraft {
		return nil, utils.NewConflict("only draft submissions can be edited")
	}
	if err := submissionDeadlineCheck(ctx, submission.HackathonID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.RepoURL != nil {
		v := strings.TrimSpace(*req.RepoURL)
		if err := validateLink("repo_url", v); err != nil {
			return nil, err
		}
		updates["repo_url"] = v
	}
	if req.DemoURL != nil {
		v := strings.TrimSpace(*req.DemoURL)
		if err := validateLink("demo_url", v); err != nil {
			return nil, err
		}
		updates["demo_url"] = v
	}
	if len(updates) == 0 {
		return submission, nil
	}
	res := db(ctx).Model(&models.Submission{}).
		Where("id = ? AND status = ?", submission.ID, models.SubmissionDraft).
		Updates(updates)
	if res.Error != nil {
		return nil, utils.Wrap(res.Error, "update submission")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflict("only draft submissions can be edited")
	}
	return loadTeamSubmission(ctx, teamID, submissionID)
}

// GetTeamSubmission returns the team's submission, or not-found when none exists yet.
func GetTeamSubmission(ctx context.Context, teamID, hackathonID uint32) (*models.Submission, error) {
	submission, err := findTeamSubmission(db(ctx), teamID, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load submission")
	}
	if submission == nil {
		return nil, utils.NewNotFound("no submission yet")
	}
	return submission, nil
}

// GetSubmissionForJudge returns a team's submitted project to one of its judges.
func GetSubmissionForJudge(ctx context.Context, judgeID, hackathonID, teamID uint32) (*models.Submission, error) {
	if err := requireAssignment(db(ctx), judgeID, teamID, hackathonID); err != nil {
		return nil, err
	}
	var submission models.Submission
	err := db(ctx).Preload("Team").
		Where("team_id = ? AND hackathon_id = ? AND status <> ?", teamID, hackathonID, models.SubmissionDraft).
		First(&submission).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("team has not submitted yet")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load submission")
	}
	return &submission, nil
}

// ArchiveURL signs a download link for the submission archive, empty when it has none.
func ArchiveURL(ctx context.Context, submission *models.Submission) string {
	if submission.ZipStoragePath == "" || Storage == nil {
		return ""
	}
	link, err := Storage.SignedURL(ctx, submission.ZipStoragePath, opts.SignedURLTTL)
	if err != nil {
		log.Warn().Err(err).Uint64("submission_id", submission.ID).Msg("sign archive url")
		return ""
	}
	return link
}

func ListSubmissions(ctx context.Context, hackathonID uint32, status string) ([]models.Submission, error) {
	q := db(ctx).Preload("Team").Where("hackathon_id = ?", hackathonID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var submissions []models.Submission
	if err := q.Order("submitted_at asc, id asc").Find(&submissions).Error; err != nil {
		return nil, utils.Wrap(err, "list submissions")
	}
	return submissions, nil
}

// SetSubmissionStatus is the admin review transition.
func SetSubmissionStatus(ctx context.Context, hackathonID uint32, submissionID uint64, status string) (*models.Submission, error) {
	target := models.SubmissionStatus(strings.ToLower(strings.TrimSpace(status)))
	if !models.IsAdminSubmissionStatus(target) {
		return nil, utils.NewInvalidStatus("status must be one of submitted, under_review, shortlisted, accepted, rejected")
	}
	var submission models.Submission
	err := db(ctx).Where("id = ? AND hackathon_id = ?", submissionID, hackathonID).First(&submission).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("submission not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load submission")
	}
	updates := map[string]interface{}{"status": target}
	if submission.SubmittedAt == nil {
		t := now()
		updates["submitted_at"] = t
		submission.SubmittedAt = &t
	}
	if err := db(ctx).Model(&submission).Updates(updates).Error; err != nil {
		return nil, utils.Wrap(err, "update submission status")
	}
	submission.Status = target
	return &submission, nil
}
