package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/lock"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/metrics"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
	"github.com/vytor/neurobank/internal/stats"
)

const (
	calculatedSource = "calculated"
	calculatedNote   = "Calculated directly from notes and flashcards. flashcards_studied counts unique cards by last review date, not study sessions."
)

// StatsService maintains per-user daily counters and the views derived from them.
type StatsService interface {
	GetUserStats(ctx context.Context, userID string) (*models.UserStatistics, error)
	GetTodayStats(ctx context.Context, userID string) (models.DailyStats, error)
	RecordNoteCreated(ctx context.Context, userID string) (models.DailyStats, error)
	RecordFlashcardsCreated(ctx context.Context, userID string, count int) (models.DailyStats, error)
	RecordFlashcardStudied(ctx context.Context, userID string, count int) (models.DailyStats, error)
	GetWeeklyStats(ctx context.Context, userID string) ([]models.DailyStats, error)
	GetTotalStats(ctx context.Context, userID string) (models.TotalStats, error)
	CalculateStreaks(ctx context.Context, userID string) (models.Streaks, error)
	GetDashboard(ctx context.Context, userID string) (*models.DashboardStats, error)
	CleanOldStats(ctx context.Context, userID string) (*models.UserStatistics, error)

	CalculateActualStats(ctx context.Context, userID string) ([]models.DailyStats, error)
	CalculateFlashcardsStudiedFromSource(ctx context.Context, userID string) ([]models.DailyStats, error)
	GetCalculatedStats(ctx context.Context, userID string) (*models.CalculatedStats, error)
	VerifyAndRepairStats(ctx context.Context, userID string) (*models.RepairResult, error)
	GetVerifiedStats(ctx context.Context, userID string) (*models.VerificationResult, error)
}

type statsService struct {
	statsRepo     repository.StatsRepository
	noteRepo      repository.NoteRepository
	flashcardRepo repository.FlashcardRepository
	userRepo      repository.UserRepository
	cal           *clock.Calendar
	locks         *lock.Keyed
}

// NewStatsService creates a new StatsService
func NewStatsService(
	statsRepo repository.StatsRepository,
	noteRepo repository.NoteRepository,
	flashcardRepo repository.FlashcardRepository,
	userRepo repository.UserRepository,
	cal *clock.Calendar,
) StatsService {
	return &statsService{
		statsRepo:     statsRepo,
		noteRepo:      noteRepo,
		flashcardRepo: flashcardRepo,
		userRepo:      userRepo,
		cal:           cal,
		locks:         lock.NewKeyed(),
	}
}

// loadOrCreate must be called with the user's lock held.
func (s *statsService) loadOrCreate(ctx context.Context, userID string) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx)

	existing, err := s.statsRepo.FindByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to load statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil {
		return existing, nil
	}

	if err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	now := s.cal.Now()
	created := models.UserStatistics{
		ID:         uuid.NewString(),
		UserID:     userID,
		DailyStats: []models.DailyStats{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.statsRepo.Create(ctx, created); err != nil {
		log.Error("failed to create statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created statistics record: user_id=%s", userID)
	return &created, nil
}

func (s *statsService) GetUserStats(ctx context.Context, userID string) (*models.UserStatistics, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.loadOrCreate(ctx, userID)
}

func (s *statsService) GetTodayStats(ctx context.Context, userID string) (models.DailyStats, error) {
	us, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return models.DailyStats{}, err
	}
	today := s.cal.Today()
	if d, ok := us.Day(today); ok {
		return d, nil
	}
	return models.DailyStats{Date: today, CreatedAt: s.cal.Now()}, nil
}

func (s *statsService) record(ctx context.Context, userID, kind string, count int, apply func(*models.DailyStats)) (models.DailyStats, error) {
	log := logger.FromContext(ctx)
	if count < 0 {
		return models.DailyStats{}, errors.NewValidationError("count", "must not be negative")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	us, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return models.DailyStats{}, err
	}

	now := s.cal.Now()
	var day models.DailyStats
	us.DailyStats, day = stats.Increment(us.DailyStats, s.cal.DateKey(now), now, apply)
	us.UpdatedAt = now

	if err := s.statsRepo.Update(ctx, *us); err != nil {
		log.Error("failed to record %s: %v", kind, err)
		return models.DailyStats{}, errors.NewInternalError(err)
	}
	metrics.StatsRecorded.WithLabelValues(kind).Add(float64(count))
	log.Debug("recorded %s: user_id=%s, count=%d, date=%s", kind, userID, count, day.Date)
	return day, nil
}

func (s *statsService) RecordNoteCreated(ctx context.Context, userID string) (models.DailyStats, error) {
	return s.record(ctx, userID, "note_created", 1, func(d *models.DailyStats) { d.NotesCreated++ })
}

func (s *statsService) RecordFlashcardsCreated(ctx context.Context, userID string, count int) (models.DailyStats, error) {
	return s.record(ctx, userID, "flashcard_created", count, func(d *models.DailyStats) { d.FlashcardsCreated += count })
}

func (s *statsService) RecordFlashcardStudied(ctx context.Context, userID string, count int) (models.DailyStats, error) {
	return s.record(ctx, userID, "flashcard_studied", count, func(d *models.DailyStats) { d.FlashcardsStudied += count })
}

func (s *statsService) GetWeeklyStats(ctx context.Context, userID string) ([]models.DailyStats, error) {
	us, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats.Weekly(us.DailyStats, s.cal.LastNDays(stats.WeekDays)), nil
}

func (s *statsService) GetTotalStats(ctx context.Context, userID string) (models.TotalStats, error) {
	us, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return models.TotalStats{}, err
	}
	return stats.Totals(us.DailyStats), nil
}

func (s *statsService) CalculateStreaks(ctx context.Context, userID string) (models.Streaks, error) {
	us, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return models.Streaks{}, err
	}
	return stats.CalculateStreaks(us.DailyStats, s.cal.Today()), nil
}

func (s *statsService) GetDashboard(ctx context.Context, userID string) (*models.DashboardStats, error) {
	var dash models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		weekly, err := s.GetWeeklyStats(gctx, userID)
		dash.Weekly = weekly
		return err
	})
	g.Go(func() error {
		total, err := s.GetTotalStats(gctx, userID)
		dash.Total = total
		return err
	})
	g.Go(func() error {
		streaks, err := s.CalculateStreaks(gctx, userID)
		dash.Streaks = streaks
		return err
	})
	g.Go(func() error {
		today, err := s.GetTodayStats(gctx, userID)
		dash.Today = today
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (s *statsService) CleanOldStats(ctx context.Context, userID string) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx)

	unlock := s.locks.Lock(userID)
	defer unlock()

	us, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	cutoff := clock.ShiftDays(s.cal.Today(), -stats.RetentionDays)
	before := len(us.DailyStats)
	us.DailyStats = stats.Prune(us.DailyStats, cutoff)
	us.UpdatedAt = s.cal.Now()

	if err := s.statsRepo.Update(ctx, *us); err != nil {
		log.Error("failed to clean statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("cleaned statistics: user_id=%s, removed=%d, cutoff=%s", userID, before-len(us.DailyStats), cutoff)
	return us, nil
}

func (s *statsService) loadSources(ctx context.Context, userID string, withNotes bool) ([]models.Note, []models.Flashcard, error) {
	if err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, nil, err
	}

	var notes []models.Note
	var cards []models.Flashcard
	g, gctx := errgroup.WithContext(ctx)
	if withNotes {
		g.Go(func() error {
			var err error
			notes, err = s.noteRepo.FindByUserID(gctx, userID)
			return err
		})
	}
	g.Go(func() error {
		var err error
		cards, err = s.flashcardRepo.FindByUserID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("failed to load source records: %v", err)
		return nil, nil, internal(err)
	}
	return notes, cards, nil
}

func (s *statsService) CalculateActualStats(ctx context.Context, userID string) ([]models.DailyStats, error) {
	notes, cards, err := s.loadSources(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return stats.ActualFromSource(s.cal, notes, cards), nil
}

func (s *statsService) CalculateFlashcardsStudiedFromSource(ctx context.Context, userID string) ([]models.DailyStats, error) {
	_, cards, err := s.loadSources(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return stats.StudiedFromSource(s.cal, cards), nil
}

// calculated rebuilds the window from source, approximating studied counts.
func (s *statsService) calculated(ctx context.Context, userID string) ([]models.DailyStats, []models.DailyStats, error) {
	notes, cards, err := s.loadSources(ctx, userID, true)
	if err != nil {
		return nil, nil, err
	}
	actual := stats.ActualFromSource(s.cal, notes, cards)
	return actual, stats.MergeStudied(actual, stats.StudiedFromSource(s.cal, cards)), nil
}

func (s *statsService) GetCalculatedStats(ctx context.Context, userID string) (*models.CalculatedStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("calculating statistics from source: user_id=%s", userID)

	_, full, err := s.calculated(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := full[len(full)-1]
	return &models.CalculatedStats{
		DashboardStats: models.DashboardStats{
			Weekly:  append([]models.DailyStats(nil), full[len(full)-stats.WeekDays:]...),
			Total:   stats.Totals(full),
			Streaks: stats.StreaksFromData(full),
			Today:   today,
		},
		Source: calculatedSource,
		Note:   calculatedNote,
	}, nil
}

func (s *statsService) VerifyAndRepairStats(ctx context.Context, userID string) (*models.RepairResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	result, _, err := s.verifyLocked(ctx, userID)
	return result, err
}

// verifyLocked must be called with the user's lock held. It returns the
// verification result and the record as it stands afterwards.
func (s *statsService) verifyLocked(ctx context.Context, userID string) (*models.RepairResult, *models.UserStatistics, error) {
	log := logger.FromContext(ctx)

	actual, full, err := s.calculated(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	us, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	saved := us.DailyStats
	repaired := stats.Repair(saved, actual)
	result := &models.RepairResult{
		RepairedStats: repaired,
		Discrepancies: stats.FindDiscrepancies(saved, full),
	}

	if !stats.NeedsRepair(saved, actual) {
		metrics.StatsVerifications.WithLabelValues("clean").Inc()
		return result, us, nil
	}

	updated := *us
	updated.DailyStats = repaired
	updated.UpdatedAt = s.cal.Now()
	if err := s.statsRepo.Update(ctx, updated); err != nil {
		log.Error("failed to write repaired statistics: %v", err)
		metrics.StatsVerifications.WithLabelValues("failed").Inc()
		return nil, nil, errors.NewInternalError(err)
	}

	result.WasRepaired = true
	metrics.StatsVerifications.WithLabelValues("repaired").Inc()
	log.Info("repaired statistics: user_id=%s, repairable_days=%d", userID, result.RepairableCount())
	return result, &updated, nil
}

// GetVerifiedStats verifies and reads under one lock hold, so the returned
// record is the one the discrepancies were computed against.
func (s *statsService) GetVerifiedStats(ctx context.Context, userID string) (*models.VerificationResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	verification, us, err := s.verifyLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if verification.WasRepaired {
		logger.FromContext(ctx).Warn("statistics repaired on read: user_id=%s, discrepancies=%d", userID, len(verification.Discrepancies))
	}
	return &models.VerificationResult{
		Stats:         us,
		WasRepaired:   verification.WasRepaired,
		Discrepancies: verification.Discrepancies,
	}, nil
}
