package controllers

import (
	"Hacknox/dto"
	"Hacknox/mappers"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func CreateTeam(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.CreateTeamReq
	if !bindJSON(c, &req) {
		return
	}
	team, err := services.CreateTeam(c.Request.Context(), middlewares.CurrentUserID(c), hid, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, "Team created successfully", mappers.MapTeamToResp(*team, true))
}

func JoinTeam(c *gin.Context) {
	var req dto.JoinTeamReq
	if !bindJSON(c, &req) {
		return
	}
	req.Normalize()
	contextHID, _ := middlewares.HackathonID(c)
	team, err := services.JoinTeam(c.Request.Context(), middlewares.CurrentUserID(c), req.JoinCode, contextHID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Joined team successfully", gin.H{
		"team_id":      team.ID,
		"team_name":    team.Name,
		"is_finalized": team.IsFinalized,
	})
}

func InviteMember(c *gin.Context) {
	var req dto.InviteMemberReq
	if !bindJSON(c, &req) {
		return
	}
	inv, err := services.InviteMember(c.Request.Context(), middlewares.CurrentUserID(c), middlewares.TeamID(c), req.Email)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, "Invitation sent", mappers.MapInvitationToResp(*inv))
}

func AcceptInvite(c *gin.Context) {
	var req dto.AcceptInviteReq
	if !bindJSON(c, &req) {
		return
	}
	contextHID, _ := middlewares.HackathonID(c)
	team, err := services.AcceptInvite(c.Request.Context(), middlewares.CurrentUserID(c), req.Token, contextHID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Invitation accepted", gin.H{
		"team_id":      team.ID,
		"team_name":    team.Name,
		"is_finalized": team.IsFinalized,
	})
}

func UpdateTeam(c *gin.Context) {
	var req dto.UpdateTeamReq
	if !bindJSON(c, &req) {
		return
	}
	team, err := services.UpdateTeam(c.Request.Context(), middlewares.CurrentUserID(c), middlewares.TeamID(c), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Team updated", mappers.MapTeamToResp(*team, true))
}

// RemoveMember only acts on the caller's own team in the scoped hackathon.
func RemoveMember(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if teamID != middlewares.TeamID(c) {
		utils.Fail(c, utils.NewForbidden("you can only manage your own team"))
		return
	}
	var req dto.RemoveMemberReq
	if !bindJSON(c, &req) {
		return
	}
	req.Normalize()
	if err := services.RemoveMember(c.Request.Context(), middlewares.CurrentUserID(c), teamID, req.UserID); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Member removed", nil)
}

func GetMyTeam(c *gin.Context) {
	team, err := services.GetTeamWithMembers(c.Request.Context(), middlewares.TeamID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched team", mappers.MapTeamToResp(*team, true))
}
