package controllers

import (
	"Hacknox/dto"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func AdminCreateJudge(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.CreateJudgeReq
	if !bindJSON(c, &req) {
		return
	}
	judge, tempPassword, err := services.AddJudge(c.Request.Context(), hid, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "judge.add", hid, map[string]interface{}{
		"judge_id": judge.ID,
		"created":  tempPassword != "",
	})
	data := gin.H{"id": judge.ID, "name": judge.Name, "email": judge.Email}
	if tempPassword != "" {
		data["temp_password"] = tempPassword
	}
	utils.Created(c, "Judge added", data)
}

func AdminListJudges(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	judges, err := services.ListJudges(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched judges", judges)
}

func AdminRemoveJudge(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	judgeID, ok := pathID(c, "judgeId")
	if !ok {
		return
	}
	if err := services.RemoveJudge(c.Request.Context(), hid, judgeID); err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "judge.remove", hid, map[string]interface{}{"judge_id": judgeID})
	utils.Success(c, "Judge removed", nil)
}

func AdminListAssignments(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	rows, err := services.ListAssignments(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched assignments", rows)
}

func AdminAssignJudges(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.AssignReq
	if !bindJSON(c, &req) {
		return
	}
	created, err := services.AssignJudges(c.Request.Context(), hid, req.Assignments)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "assignment.assign", hid, map[string]interface{}{"count": len(created)})
	utils.Created(c, "Judges assigned", created)
}

func AdminReassignJudge(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.ReassignReq
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := services.Reassign(c.Request.Context(), hid, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "assignment.reassign", hid, map[string]interface{}{
		"team_id":      req.TeamID,
		"old_judge_id": req.OldJudgeID,
		"new_judge_id": req.NewJudgeID,
	})
	utils.Success(c, "Team reassigned", assignment)
}

func AdminAutoBalance(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	result, err := services.AutoBalance(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "assignment.auto_balance", hid, map[string]interface{}{
		"added":   result.Added,
		"removed": result.Removed,
	})
	utils.Success(c, "Assignments balanced", result)
}
