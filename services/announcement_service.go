package services

import (
	"context"
	"time"

	"Hacknox/dto"
	"Hacknox/metrics"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var unsentStatuses = []models.AnnouncementStatus{models.AnnouncementDraft, models.AnnouncementScheduled}

func criteriaColumn(raw []byte) (datatypes.JSON, error) {
	c, err := ParseCriteria(raw)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return datatypes.JSON(raw), nil
}

func announcementCriteria(a *models.Announcement) Criteria {
	c, err := ParseCriteria(a.TargetCriteria)
	if err != nil {
		// unreadable criteria match nobody
		log.Warn().Err(err).Uint32("announcement_id", a.ID).Msg("unreadable target criteria")
		return Criteria{"": ""}
	}
	return c
}

func loadAnnouncement(ctx context.Context, hackathonID, announcementID uint32) (*models.Announcement, error) {
	var a models.Announcement
	err := db(ctx).Where("id = ? AND hackathon_id = ?", announcementID, hackathonID).First(&a).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("announcement not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load announcement")
	}
	return &a, nil
}

func requireFuture(t *time.Time) error {
	if t == nil || !t.After(now()) {
		return utils.NewValidation("scheduled_at must be in the future")
	}
	return nil
}

// CreateAnnouncement stores a draft, a scheduled announcement when scheduled_at
// is given, or sends it right away with send_now.
func CreateAnnouncement(ctx context.Context, hackathonID, adminID uint32, req dto.AnnouncementReq) (*models.Announcement, error) {
	req.Normalize()
	if req.Title == "" || req.Content == "" {
		return nil, utils.NewValidation("title and content are required")
	}
	criteria, err := criteriaColumn(req.TargetCriteria)
	if err != nil {
		return nil, err
	}
	a := models.Announcement{
		HackathonID:    hackathonID,
		Title:          req.Title,
		Content:        req.Content,
		TargetCriteria: criteria,
		Status:         models.AnnouncementDraft,
		CreatedBy:      adminID,
	}
	if req.ScheduledAt != nil && !req.SendNow {
		if err := requireFuture(req.ScheduledAt); err != nil {
			return nil, err
		}
		a.Status = models.AnnouncementScheduled
		a.ScheduledAt = req.ScheduledAt
	}
	if req.SendNow {
		sentAt := now()
		a.Status = models.AnnouncementSent
		a.SentAt = &sentAt
	}
	if err := db(ctx).Create(&a).Error; err != nil {
		return nil, utils.Wrap(err, "create announcement")
	}
	if req.SendNow {
		metrics.AnnouncementsSent.WithLabelValues("manual").Inc()
		emailRecipients(ctx, db(ctx), &a)
	}
	return &a, nil
}

func ListAnnouncements(ctx context.Context, hackathonID uint32) ([]models.Announcement, error) {
	var list []models.Announcement
	if err := db(ctx).Where("hackathon_id = ?", hackathonID).Order("created_at desc, id desc").Find(&list).Error; err != nil {
		return nil, utils.Wrap(err, "list announcements")
	}
	return list, nil
}

func UpdateAnnouncement(ctx context.Context, hackathonID, announcementID uint32, req dto.AnnouncementReq) (*models.Announcement, error) {
	req.Normalize()
	a, err := loadAnnouncement(ctx, hackathonID, announcementID)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AnnouncementSent {
		return nil, utils.NewConflict("sent announcements cannot be edited")
	}
	criteria, err := criteriaColumn(req.TargetCriteria)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"title":           req.Title,
		"content":         req.Content,
		"target_criteria": criteria,
	}
	if req.ScheduledAt != nil {
		if err := requireFuture(req.ScheduledAt); err != nil {
			return nil, err
		}
		updates["status"] = models.AnnouncementScheduled
		updates["scheduled_at"] = *req.ScheduledAt
	}
	res := db(ctx).Model(&models.Announcement{}).
		Where("id = ? AND status IN ?", a.ID, unsentStatuses).
		Updates(updates)
	if res.Error != nil {
		return nil, utils.Wrap(res.Error, "update announcement")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflict("sent announcements cannot be edited")
	}
	return loadAnnouncement(ctx, hackathonID, announcementID)
}

func DeleteAnnouncement(ctx context.Context, hackathonID, announcementID uint32) error {
	a, err := loadAnnouncement(ctx, hackathonID, announcementID)
	if err != nil {
		return err
	}
	res := db(ctx).Where("id = ? AND status IN ?", a.ID, unsentStatuses).Delete(&models.Announcement{})
	if res.Error != nil {
		return utils.Wrap(res.Error, "delete announcement")
	}
	if res.RowsAffected == 0 {
		return utils.NewConflict("sent announcements cannot be deleted")
	}
	return nil
}

// ScheduleAnnouncement sets a future delivery time on an unsent announcement.
func ScheduleAnnouncement(ctx context.Context, hackathonID, announcementID uint32, at time.Time) (*models.Announcement, error) {
	if err := requireFuture(&at); err != nil {
		return nil, err
	}
	a, err := loadAnnouncement(ctx, hackathonID, announcementID)
	if err != nil {
		return nil, err
	}
	res := db(ctx).Model(&models.Announcement{}).
		Where("id = ? AND status IN ?", a.ID, unsentStatuses).
		Updates(map[string]interface{}{"status": models.AnnouncementScheduled, "scheduled_at": at})
	if res.Error != nil {
		return nil, utils.Wrap(res.Error, "schedule announcement")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflict("announcement has already been sent")
	}
	return loadAnnouncement(ctx, hackathonID, announcementID)
}

// markSent moves one announcement to sent if it is still unsent. It reports
// whether this call did the transition.
func markSent(tx *gorm.DB, announcementID uint32, from []models.AnnouncementStatus, at time.Time) (bool, error) {
	res := tx.Model(&models.Announcement{}).
		Where("id = ? AND status IN ?", announcementID, from).
		Updates(map[string]interface{}{"status": models.AnnouncementSent, "sent_at": at})
	return res.RowsAffected == 1, res.Error
}

// SendAnnouncement delivers an announcement now.
func SendAnnouncement(ctx context.Context, hackathonID, announcementID uint32) (*models.Announcement, error) {
	a, err := loadAnnouncement(ctx, hackathonID, announcementID)
	if err != nil {
		return nil, err
	}
	sent, err := markSent(db(ctx), a.ID, unsentStatuses, now())
	if err != nil {
		return nil, utils.Wrap(err, "send announcement")
	}
	if !sent {
		return nil, utils.NewConflict("announcement has already been sent")
	}
	metrics.AnnouncementsSent.WithLabelValues("manual").Inc()
	if a, err = loadAnnouncement(ctx, hackathonID, announcementID); err != nil {
		return nil, err
	}
	emailRecipients(ctx, db(ctx), a)
	return a, nil
}

type recipientRow struct {
	UserID              uint32
	Email               string
	Role                models.UserRole
	City                string
	College             string
	Category            string
	NotifyAnnouncements bool
	TeamID              uint32
}

func (r recipientRow) context() UserContext {
	return NewUserContext(string(r.Role), r.City, r.College, r.Category, r.TeamID)
}

const recipientColumns = "users.id AS user_id, users.email, users.role, users.city, users.college, users.category, users.notify_announcements"

// hackathonAudience lists team members and rostered judges of a hackathon.
// Judges carry no team id.
func hackathonAudience(tx *gorm.DB, hackathonID uint32) ([]recipientRow, error) {
	var members []recipientRow
	err := tx.Table("team_members").
		Select(recipientColumns+", team_members.team_id").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.hackathon_id = ?", hackathonID).
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	var judges []recipientRow
	err = tx.Table("hackathon_judges").
		Select(recipientColumns).
		Joins("JOIN users ON users.id = hackathon_judges.judge_id").
		Where("hackathon_judges.hackathon_id = ?", hackathonID).
		Scan(&judges).Error
	if err != nil {
		return nil, err
	}
	return append(members, judges...), nil
}

// emailRecipients mails matching audience members who opted in. Best effort.
func emailRecipients(ctx context.Context, tx *gorm.DB, a *models.Announcement) {
	rows, err := hackathonAudience(tx, a.HackathonID)
	if err != nil {
		log.Warn().Err(err).Uint32("announcement_id", a.ID).Msg("load announcement recipients")
		return
	}
	criteria := announcementCriteria(a)
	for _, r := range rows {
		if !r.NotifyAnnouncements {
			continue
		}
		if !criteria.Matches(r.context()) {
			continue
		}
		sendMail(ctx, r.Email, a.Title, a.Content)
	}
}

// audienceContexts maps each hackathon the user belongs to, as team member or
// rostered judge, to the user's targeting context there. A non-zero
// hackathonID limits the lookup to that hackathon.
func audienceContexts(ctx context.Context, user *models.User, hackathonID uint32) (map[uint32]UserContext, error) {
	var memberships []models.TeamMember
	q := db(ctx).Where("user_id = ?", user.ID)
	if hackathonID != 0 {
		q = q.Where("hackathon_id = ?", hackathonID)
	}
	if err := q.Find(&memberships).Error; err != nil {
		return nil, utils.Wrap(err, "load memberships")
	}
	var roster []models.HackathonJudge
	q = db(ctx).Where("judge_id = ?", user.ID)
	if hackathonID != 0 {
		q = q.Where("hackathon_id = ?", hackathonID)
	}
	if err := q.Find(&roster).Error; err != nil {
		return nil, utils.Wrap(err, "load judge roster")
	}

	contexts := make(map[uint32]UserContext, len(memberships)+len(roster))
	for _, m := range memberships {
		contexts[m.HackathonID] = NewUserContext(string(user.Role), user.City, user.College, user.Category, m.TeamID)
	}
	for _, j := range roster {
		if _, ok := contexts[j.HackathonID]; !ok {
			contexts[j.HackathonID] = NewUserContext(string(user.Role), user.City, user.College, user.Category, 0)
		}
	}
	return contexts, nil
}

// InHackathonAudience reports whether the user receives the hackathon's
// announcements. Participants get their team id back.
func InHackathonAudience(ctx context.Context, userID, hackathonID uint32) (uint32, bool, error) {
	teamID, ok, err := FindParticipantTeamID(ctx, userID, hackathonID)
	if err != nil || ok {
		return teamID, ok, err
	}
	var count int64
	err = db(ctx).Model(&models.HackathonJudge{}).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, userID).
		Count(&count).Error
	return 0, count > 0, err
}

// ListNotifications returns sent announcements visible to the user,
// limited to one hackathon when hackathonID is non-zero.
func ListNotifications(ctx context.Context, userID, hackathonID uint32) ([]dto.NotificationResp, error) {
	user, err := GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	contexts, err := audienceContexts(ctx, user, hackathonID)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return []dto.NotificationResp{}, nil
	}
	hackathonIDs := make([]uint32, 0, len(contexts))
	for id := range contexts {
		hackathonIDs = append(hackathonIDs, id)
	}

	var announcements []models.Announcement
	if err := db(ctx).
		Where("hackathon_id IN ? AND status = ?", hackathonIDs, models.AnnouncementSent).
		Order("sent_at desc, id desc").
		Find(&announcements).Error; err != nil {
		return nil, utils.Wrap(err, "list announcements")
	}
	var reads []models.UserNotificationRead
	if err := db(ctx).Where("user_id = ?", userID).Find(&reads).Error; err != nil {
		return nil, utils.Wrap(err, "load read markers")
	}
	readAt := make(map[uint32]time.Time, len(reads))
	for _, r := range reads {
		readAt[r.AnnouncementID] = r.ReadAt
	}

	out := make([]dto.NotificationResp, 0, len(announcements))
	for i := range announcements {
		a := &announcements[i]
		if !announcementCriteria(a).Matches(contexts[a.HackathonID]) {
			continue
		}
		n := dto.NotificationResp{
			ID:          a.ID,
			HackathonID: a.HackathonID,
			Title:       a.Title,
			Content:     a.Content,
			SentAt:      a.SentAt,
		}
		if t, ok := readAt[a.ID]; ok {
			t := t
			n.Read = true
			n.ReadAt = &t
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkNotificationRead upserts the read marker; marking twice keeps one row
// with the latest read_at.
func MarkNotificationRead(ctx context.Context, userID, announcementID uint32) (*models.UserNotificationRead, error) {
	var a models.Announcement
	err := db(ctx).Where("id = ? AND status = ?", announcementID, models.AnnouncementSent).First(&a).Error
	if utils.IsNotFound(err) {
		return nil, utils.NewNotFound("notification not found")
	}
	if err != nil {
		return nil, utils.Wrap(err, "load notification")
	}
	user, err := GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	contexts, err := audienceContexts(ctx, user, a.HackathonID)
	if err != nil {
		return nil, err
	}
	uc, ok := contexts[a.HackathonID]
	if !ok || !announcementCriteria(&a).Matches(uc) {
		return nil, utils.NewNotFound("notification not found")
	}

	read := models.UserNotificationRead{UserID: userID, AnnouncementID: announcementID, ReadAt: now()}
	err = db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "announcement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at"}),
	}).Create(&read).Error
	if err != nil {
		return nil, utils.Wrap(err, "mark notification read")
	}
	return &read, nil
}
