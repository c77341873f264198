package controllers

import (
	"Hacknox/dto"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

func AdminCreateAnnouncement(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	var req dto.AnnouncementReq
	if !bindJSON(c, &req) {
		return
	}
	adminID := middlewares.CurrentUserID(c)
	announcement, err := services.CreateAnnouncement(c.Request.Context(), hid, adminID, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(adminID, "announcement.create", hid, map[string]interface{}{
		"announcement_id": announcement.ID,
		"status":          announcement.Status,
	})
	utils.Created(c, "Announcement created", announcement)
}

func AdminListAnnouncements(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	list, err := services.ListAnnouncements(c.Request.Context(), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched announcements", list)
}

func AdminUpdateAnnouncement(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "announcementId")
	if !ok {
		return
	}
	var req dto.AnnouncementReq
	if !bindJSON(c, &req) {
		return
	}
	announcement, err := services.UpdateAnnouncement(c.Request.Context(), hid, id, req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "announcement.update", hid, map[string]interface{}{"announcement_id": id})
	utils.Success(c, "Announcement updated", announcement)
}

func AdminDeleteAnnouncement(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "announcementId")
	if !ok {
		return
	}
	if err := services.DeleteAnnouncement(c.Request.Context(), hid, id); err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "announcement.delete", hid, map[string]interface{}{"announcement_id": id})
	utils.Success(c, "Announcement deleted", nil)
}

func AdminSendAnnouncement(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "announcementId")
	if !ok {
		return
	}
	announcement, err := services.SendAnnouncement(c.Request.Context(), hid, id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "announcement.send", hid, map[string]interface{}{"announcement_id": id})
	utils.Success(c, "Announcement sent", announcement)
}

func AdminScheduleAnnouncement(c *gin.Context) {
	hid, ok := hackathonID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "announcementId")
	if !ok {
		return
	}
	var req dto.ScheduleAnnouncementReq
	if !bindJSON(c, &req) {
		return
	}
	announcement, err := services.ScheduleAnnouncement(c.Request.Context(), hid, id, req.ScheduledAt)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	services.RecordAudit(middlewares.CurrentUserID(c), "announcement.schedule", hid, map[string]interface{}{
		"announcement_id": id,
		"scheduled_at":    req.ScheduledAt,
	})
	utils.Success(c, "Announcement scheduled", announcement)
}

// ListNotifications covers every hackathon the participant is in unless one is given.
func ListNotifications(c *gin.Context) {
	hid, _ := middlewares.HackathonID(c)
	list, err := services.ListNotifications(c.Request.Context(), middlewares.CurrentUserID(c), hid)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched notifications", list)
}

func MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	marker, err := services.MarkNotificationRead(c.Request.Context(), middlewares.CurrentUserID(c), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Notification marked as read", marker)
}
