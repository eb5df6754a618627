package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/neurobank/internal/logger"
)

// Scheduler triggers Maintenance passes on a timetable.
type Scheduler struct {
	cron           *gocron.Scheduler
	maintenance    *Maintenance
	maintenanceAt  string
	refreshMinutes int
	log            *logger.Logger
}

// NewScheduler builds a scheduler running in loc. maintenanceAt is a daily
// "HH:MM" time; refreshMinutes <= 0 disables the review refresh.
func NewScheduler(m *Maintenance, loc *time.Location, maintenanceAt string, refreshMinutes int) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:           cron,
		maintenance:    m,
		maintenanceAt:  maintenanceAt,
		refreshMinutes: refreshMinutes,
		log:            logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx = logger.NewContext(ctx, s.log)

	if _, err := s.cron.Every(1).Day().At(s.maintenanceAt).Do(func() {
		if _, err := s.maintenance.MaintainAll(ctx); err != nil {
			s.log.Error("stats maintenance pass failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule stats maintenance at %q: %w", s.maintenanceAt, err)
	}

	if s.refreshMinutes > 0 {
		if _, err := s.cron.Every(s.refreshMinutes).Minutes().Do(func() {
			if _, err := s.maintenance.RefreshAll(ctx); err != nil {
				s.log.Error("review refresh pass failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule review refresh: %w", err)
		}
	}

	s.cron.StartAsync()
	s.log.Info("scheduler started: maintenance_at=%s, refresh_every=%dm, jobs=%d", s.maintenanceAt, s.refreshMinutes, s.cron.Len())
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return s.cron.Len()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
