package controllers

import (
	"Hacknox/dto"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func AdminAggregateScores(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	scores, err := services.AggregateScores(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "scoring.aggregate", hid, map[string]interface{}{"teams": len(scores)})
	utils.Success(c, "Scores aggregated", scores)
}

func AdminComputeLeaderboard(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	entries, err := services.ComputeLeaderboard(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "scoring.compute", hid, map[string]interface{}{"entries": len(entries)})
	utils.Success(c, "Leaderboard computed", entries)
}

func AdminGetLeaderboard(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	board, err := services.GetLeaderboard(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched leaderboard", board)
}

func AdminPublishLeaderboard(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.PublishLeaderboardReq
	if !bindJSON(c, &req) {
		return
	}
	adminID := middlewares.CurrentUserID(c)
	setting, err := services.SetLeaderboardPublished(c.Request.Context(), hid, adminID, req.Published)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(adminID, "leaderboard.publish", hid, map[string]interface{}{"published": req.Published})
	utils.Success(c, "Leaderboard visibility updated", setting)
}

func AdminListEvaluations(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	list, err := services.ListEvaluations(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched evaluations", list)
}

func AdminLockEvaluation(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID64(c, "evaluationId")
	if !ok {
		return
	}
	var req dto.LockEvaluationReq
	if !bindJSON(c, &req) {
		return
	}
	evaluation, err := services.SetEvaluationLock(c.Request.Context(), hid, id, req.Locked)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "evaluation.lock", hid, map[string]interface{}{
		"evaluation_id": id,
		"locked":        req.Locked,
	})
	utils.Success(c, "Evaluation updated", evaluation)
}

// PublicLeaderboard needs no session. Unpublished boards come back empty.
func PublicLeaderboard(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	board, err := services.PublicLeaderboard(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched leaderboard", board)
}
