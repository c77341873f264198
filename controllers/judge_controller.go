package controllers

import (
	"context"

	"Hacknox/dto"
	"Hacknox/mappers"
	"Hacknox/middlewares"
	"Hacknox/models"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

// JudgeAssignments lists the caller's teams, across all hackathons when none is given.
func JudgeAssignments(c *gin.Context) {
	hid, _ := middlewares.HackathonID(c)
	rows, err := services.ListJudgeAssignments(c.Request.Context(), middlewares.CurrentUserID(c), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched assignments", rows)
}

func JudgeDashboard(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	resp, err := services.JudgeDashboard(c.Request.Context(), middlewares.CurrentUserID(c), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched dashboard", resp)
}

// JudgeSubmission shows an assigned team's submission with a signed archive
// link and the judge's own evaluation so far.
func JudgeSubmission(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}
	judgeID := middlewares.CurrentUserID(c)
	submission, err := services.GetSubmissionForJudge(c.Request.Context(), judgeID, hid, teamID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	evaluation, err := services.GetJudgeEvaluation(c.Request.Context(), judgeID, teamID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched submission", gin.H{
		"submission": mappers.MapSubmissionToResp(*submission, services.ArchiveURL(c.Request.Context(), submission)),
		"evaluation": evaluation,
	})
}

type evaluationWriter func(ctx context.Context, judgeID, hackathonID, teamID uint32, req dto.EvaluationReq) (*models.Evaluation, error)

func handleEvaluation(c *gin.Context, msg string, write evaluationWriter) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}
	var req dto.EvaluationReq
	if !bindJSON(c, &req) {
		return
	}
	evaluation, err := write(c.Request.Context(), middlewares.CurrentUserID(c), hid, teamID, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, msg, evaluation)
}

func SaveEvaluationDraft(c *gin.Context) {
	handleEvaluation(c, "Evaluation draft saved", services.SaveEvaluationDraft)
}

func SubmitEvaluation(c *gin.Context) {
	handleEvaluation(c, "Evaluation submitted", services.SubmitEvaluation)
}

func UpdateEvaluation(c *gin.Context) {
	handleEvaluation(c, "Evaluation updated", services.UpdateEvaluation)
}
