package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"Hacknox/dto"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

// bindHackathonForm accepts JSON, or a multipart form where event_info and
// scoring_weights arrive as JSON strings next to an optional "banner" file.
func bindHackathonForm(c *gin.Context, req *dto.CreateHackathonReq) bool {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return bindJSON(c, req)
	}
	if err := c.ShouldBind(req); err != nil {
		utils.Fail(c, utils.NewValidation("invalid request parameters: "+err.Error()))
		return false
	}
	if raw := c.PostForm("event_info"); raw != "" {
		req.EventInfo = json.RawMessage(raw)
	}
	if raw := c.PostForm("scoring_weights"); raw != "" {
		var w dto.HackathonWeights
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			utils.Fail(c, utils.NewValidation("scoring_weights must be a JSON object"))
			return false
		}
		req.ScoringWeights = &w
	}
	return true
}

func CreateHackathon(c *gin.Context) {
	var req dto.CreateHackathonReq
	if !bindHackathonForm(c, &req) {
		return
	}
	adminID := middlewares.CurrentUserID(c)
	hackathon, err := services.CreateHackathon(c.Request.Context(), adminID, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		banner, err := c.FormFile("banner")
		switch {
		case err == nil:
			services.AttachBanner(c.Request.Context(), hackathon.ID, banner)
			if fresh, err := services.GetHackathon(c.Request.Context(), hackathon.ID); err == nil {
				hackathon = fresh
			}
		case !errors.Is(err, http.ErrMissingFile):
			utils.Fail(c, utils.NewValidation("could not read the banner upload"))
			return
		}
	}
	services.RecordAudit(adminID, "hackathon.create", hackathon.ID, map[string]interface{}{"slug": hackathon.Slug})
	utils.Created(c, "Hackathon created", hackathon)
}

func ListMyHackathons(c *gin.Context) {
	list, err := services.ListOwnedHackathons(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched hackathons", list)
}

func GetHackathon(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	hackathon, err := services.GetHackathon(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched hackathon", hackathon)
}

func UpdateHackathon(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.UpdateHackathonReq
	if !bindJSON(c, &req) {
		return
	}
	hackathon, err := services.UpdateHackathon(c.Request.Context(), hid, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "hackathon.update", hid, nil)
	utils.Success(c, "Hackathon updated", hackathon)
}

func DeleteHackathon(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	if err := services.DeleteHackathon(c.Request.Context(), hid); err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "hackathon.delete", hid, nil)
	utils.Success(c, "Hackathon deleted", nil)
}

func AddHackathonOwner(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.AddOwnerReq
	if !bindJSON(c, &req) {
		return
	}
	owner, err := services.AddHackathonOwner(c.Request.Context(), hid, req.Email)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "hackathon.add_owner", hid, map[string]interface{}{"admin_id": owner.ID})
	utils.Created(c, "Owner added", gin.H{"id": owner.ID, "name": owner.Name, "email": owner.Email})
}

func ListPublicHackathons(c *gin.Context) {
	list, err := services.ListPublicHackathons(c.Request.Context(), false)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched hackathons", list)
}

func ListActiveHackathons(c *gin.Context) {
	list, err := services.ListPublicHackathons(c.Request.Context(), true)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched hackathons", list)
}

func GetPublicHackathon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	hackathon, err := services.GetPublicHackathon(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched hackathon", hackathon)
}
