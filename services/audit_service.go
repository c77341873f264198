package services

import (
	"context"
	"sync"
	"time"

	"Hacknox/metrics"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLogger persists audit entries from a bounded queue on a single worker.
// Log never blocks and never fails the caller.
type AuditLogger struct {
	write func(ctx context.Context, entry *models.AuditLog) error
	queue chan models.AuditLog

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAuditLogger(db *gorm.DB, size int) *AuditLogger {
	return newAuditLogger(func(ctx context.Context, entry *models.AuditLog) error {
		return db.WithContext(ctx).Create(entry).Error
	}, size)
}

func newAuditLogger(write func(ctx context.Context, entry *models.AuditLog) error, size int) *AuditLogger {
	if size <= 0 {
		size = 1024
	}
	a := &AuditLogger{
		write: write,
		queue: make(chan models.AuditLog, size),
		done:  make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *AuditLogger) drain() {
	defer close(a.done)
	for entry := range a.queue {
		entry := entry
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.write(ctx, &entry)
		cancel()
		if err != nil {
			metrics.AuditFailed.Inc()
			log.Error().Err(err).Str("action", entry.Action).Uint32("admin_id", entry.AdminID).Msg("write audit log")
			continue
		}
		metrics.AuditWritten.Inc()
	}
}

// Log enqueues an entry, dropping it with a warning when the queue is full.
func (a *AuditLogger) Log(adminID uint32, action string, hackathonID uint32, payload map[string]interface{}) {
	entry := models.AuditLog{
		AdminID:   adminID,
		Action:    action,
		Payload:   datatypes.JSONMap(payload),
		CreatedAt: now(),
	}
	if hackathonID != 0 {
		hid := hackathonID
		entry.HackathonID = &hid
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		metrics.AuditDropped.Inc()
		log.Warn().Str("action", action).Msg("audit logger closed, entry dropped")
		return
	}
	select {
	case a.queue <- entry:
	default:
		metrics.AuditDropped.Inc()
		log.Warn().Str("action", action).Uint32("admin_id", adminID).Msg("audit queue full, entry dropped")
	}
}

// Close stops accepting entries and waits until the queue is drained or ctx ends.
func (a *AuditLogger) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Audit is the process-wide logger installed by main.
var Audit *AuditLogger

// RecordAudit logs through Audit when one is installed.
func RecordAudit(adminID uint32, action string, hackathonID uint32, payload map[string]interface{}) {
	if Audit == nil {
		return
	}
	Audit.Log(adminID, action, hackathonID, payload)
}

// AuditFilter narrows ListAuditLogs. Zero values mean no filter.
type AuditFilter struct {
	HackathonIDs []uint32
	AdminID      uint32
	Action       string
	Page         int
	PageSize     int
}

type AuditPage struct {
	Items    []models.AuditLog `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ListAuditLogs pages through audit entries, newest first.
func ListAuditLogs(ctx context.Context, f AuditFilter) (*AuditPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 50
	}
	q := db(ctx).Model(&models.AuditLog{})
	if f.HackathonIDs != nil {
		if len(f.HackathonIDs) == 0 {
			return &AuditPage{Items: []models.AuditLog{}, Page: f.Page, PageSize: f.PageSize}, nil
		}
		q = q.Where("hackathon_id IN ?", f.HackathonIDs)
	}
	if f.AdminID != 0 {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	page := &AuditPage{Page: f.Page, PageSize: f.PageSize}
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, utils.Wrap(err, "count audit logs")
	}
	if err := q.Order("created_at desc, id desc").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&page.Items).Error; err != nil {
		return nil, utils.Wrap(err, "list audit logs")
	}
	return page, nil
}

// OwnedHackathonIDs lists the hackathons the admin owns.
func OwnedHackathonIDs(ctx context.Context, adminID uint32) ([]uint32, error) {
	ids := []uint32{}
	err := db(ctx).Model(&models.HackathonAdmin{}).Where("admin_id = ?", adminID).Pluck("hackathon_id", &ids).Error
	return ids, err
}
