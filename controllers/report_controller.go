package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func AdminAnalytics(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	stats, err := services.GetHackathonAnalytics(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched analytics", stats)
}

// AdminAuditLogs is scoped to one hackathon when given, otherwise to every
// hackathon the caller owns.
func AdminAuditLogs(c *gin.Context) {
	adminID := middlewares.CurrentUserID(c)
	filter := services.AuditFilter{Action: c.Query("action")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if raw := c.Query("admin_id"); raw != "" {
		id, err := middlewares.ParseID(raw)
		if err != nil {
			utils.Fail(c, utils.NewValidation("invalid admin_id"))
			return
		}
		filter.AdminID = id
	}

	if hid, ok := middlewares.HackathonID(c); ok {
		filter.HackathonIDs = []uint32{hid}
	} else {
		owned, err := services.OwnedHackathonIDs(c.Request.Context(), adminID)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		filter.HackathonIDs = owned
	}

	page, err := services.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched audit logs", page)
}

func AdminExport(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	data, filename, err := services.ExportCSV(c.Request.Context(), hid, c.Param("resource"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "export."+c.Param("resource"), hid, nil)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func Healthz(c *gin.Context) {
	status := services.Health(c.Request.Context())
	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
