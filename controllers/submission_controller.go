package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"Hacknox/dto"
	"Hacknox/mappers"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

// SaveSubmission creates or updates the team's draft. The optional archive
// goes in the "archive" multipart field.
func SaveSubmission(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var form dto.SubmissionDraftForm
	if err := c.ShouldBind(&form); err != nil {
		utils.Fail(c, utils.NewValidation("invalid submission form"))
		return
	}
	var archive *multipart.FileHeader
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		file, err := c.FormFile("archive")
		switch {
		case err == nil:
			archive = file
		case errors.Is(err, http.ErrMissingFile):
		default:
			utils.Fail(c, utils.NewValidation("could not read the uploaded archive"))
			return
		}
	}
	submission, err := services.SaveSubmissionDraft(c.Request.Context(), middlewares.TeamID(c), hid, form, archive)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Submission draft saved", mappers.MapSubmissionToResp(*submission, ""))
}

func FinalizeSubmission(c *gin.Context) {
	id, ok := pathID64(c, "id")
	if !ok {
		return
	}
	submission, err := services.FinalizeSubmission(c.Request.Context(), middlewares.TeamID(c), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Submission finalized", mappers.MapSubmissionToResp(*submission, ""))
}

func UpdateSubmission(c *gin.Context) {
	id, ok := pathID64(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSubmissionReq
	if !bindJSON(c, &req) {
		return
	}
	submission, err := services.UpdateSubmission(c.Request.Context(), middlewares.TeamID(c), id, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Submission updated", mappers.MapSubmissionToResp(*submission, ""))
}

func GetMySubmission(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	submission, err := services.GetTeamSubmission(c.Request.Context(), middlewares.TeamID(c), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched submission", mappers.MapSubmissionToResp(*submission, ""))
}

func AdminListSubmissions(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	submissions, err := services.ListSubmissions(c.Request.Context(), hid, c.Query("status"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	out := make([]dto.SubmissionResp, 0, len(submissions))
	for i := range submissions {
		out = append(out, mappers.MapSubmissionToResp(submissions[i], services.ArchiveURL(c.Request.Context(), &submissions[i])))
	}
	utils.Success(c, "Fetched submissions", out)
}

func AdminUpdateSubmissionStatus(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID64(c, "submissionId")
	if !ok {
		return
	}
	var req dto.SubmissionStatusReq
	if !bindJSON(c, &req) {
		return
	}
	submission, err := services.SetSubmissionStatus(c.Request.Context(), hid, id, req.Status)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "submission.status", hid, map[string]interface{}{
		"submission_id": id,
		"status":        submission.Status,
	})
	utils.Success(c, "Submission status updated", mappers.MapSubmissionToResp(*submission, ""))
}

// DownloadFile serves objects of the local storage driver behind signed links.
func DownloadFile(c *gin.Context) {
	local, ok := services.Storage.(*services.LocalStorage)
	if !ok {
		utils.Fail(c, utils.NewNotFound("file not found"))
		return
	}
	key := c.Query("key")
	path, err := local.Open(key, c.Query("expires"), c.Query("sig"))
	if err != nil {
		utils.Fail(c, utils.NewForbidden("download link is invalid or has expired"))
		return
	}
	c.FileAttachment(path, filepath.Base(key))
}
