package controllers

import (
	"Hacknox/dto"
	"Hacknox/mappers"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func AdminListTeams(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	teams, err := services.ListTeams(c.Request.Context(), hid, c.Query("status"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched teams", mappers.MapTeamsToResp(teams, true))
}

func AdminVerifyTeam(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}
	var req dto.VerifyTeamReq
	if !bindJSON(c, &req) {
		return
	}
	team, err := services.VerifyTeam(c.Request.Context(), hid, teamID, req.Status)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "team.verify", hid, map[string]interface{}{
		"team_id": teamID,
		"status":  team.VerificationStatus,
	})
	utils.Success(c, "Team verification updated", mappers.MapTeamToResp(*team, true))
}

func AdminDeleteTeam(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}
	if err := services.DeleteTeam(c.Request.Context(), hid, teamID); err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "team.delete", hid, map[string]interface{}{"team_id": teamID})
	utils.Success(c, "Team deleted", nil)
}
