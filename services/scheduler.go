package services

import (
	"context"
	"sync"
	"time"

	"Hacknox/metrics"
	"Hacknox/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnnouncementScheduler periodically sends scheduled announcements that are due.
type AnnouncementScheduler struct {
	DB       *gorm.DB
	Interval time.Duration
	Clock    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAnnouncementScheduler(db *gorm.DB, interval time.Duration) *AnnouncementScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AnnouncementScheduler{DB: db, Interval: interval, Clock: time.Now}
}

// Start launches the poll loop. Calling Start twice is a no-op.
func (s *AnnouncementScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	log.Info().Str("component", "scheduler").Dur("interval", s.Interval).Msg("announcement scheduler started")
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *AnnouncementScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info().Str("component", "scheduler").Msg("announcement scheduler stopped")
}

func (s *AnnouncementScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Str("component", "scheduler").Msg("announcement sweep failed")
			}
		}
	}
}

// RunOnce sends every scheduled announcement whose time has come and returns
// how many this call sent. A row is only sent by the call that flips its status.
func (s *AnnouncementScheduler) RunOnce(ctx context.Context) (int, error) {
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	t := clock()
	tx := s.DB.WithContext(ctx)

	var due []models.Announcement
	if err := tx.Where("status = ? AND scheduled_at <= ?", models.AnnouncementScheduled, t).
		Order("scheduled_at asc, id asc").
		Find(&due).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		a := &due[i]
		ok, err := markSent(tx, a.ID, []models.AnnouncementStatus{models.AnnouncementScheduled}, t)
		if err != nil {
			log.Error().Err(err).Uint32("announcement_id", a.ID).Msg("promote scheduled announcement")
			continue
		}
		if !ok {
			continue
		}
		sent++
		metrics.AnnouncementsSent.WithLabelValues("scheduled").Inc()
		a.Status = models.AnnouncementSent
		a.SentAt = &t
		emailRecipients(ctx, tx, a)
		log.Info().Uint32("announcement_id", a.ID).Uint32("hackathon_id", a.HackathonID).Msg("scheduled announcement sent")
	}
	return sent, nil
}
