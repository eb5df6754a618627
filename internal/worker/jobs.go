package worker

import (
	"context"

	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
)

// ReviewRefresher moves due flashcards back into the study queue.
type ReviewRefresher interface {
	RefreshReviews(ctx context.Context, userID string) (int64, error)
}

// StatsMaintainer prunes and verifies a user's daily statistics.
type StatsMaintainer interface {
	CleanOldStats(ctx context.Context, userID string) (*models.UserStatistics, error)
	VerifyAndRepairStats(ctx context.Context, userID string) (*models.RepairResult, error)
}

// RefreshReviewsJob runs the due-card sweep for one user.
type RefreshReviewsJob struct {
	Flashcards ReviewRefresher
	UserID     string
}

func (j *RefreshReviewsJob) Name() string { return "refresh_reviews" }

func (j *RefreshReviewsJob) Run(ctx context.Context) error {
	moved, err := j.Flashcards.RefreshReviews(ctx, j.UserID)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("refreshed reviews: user_id=%s, moved=%d", j.UserID, moved)
	return nil
}

// CleanOldStatsJob drops daily entries past the retention window for one user.
type CleanOldStatsJob struct {
	Stats  StatsMaintainer
	UserID string
}

func (j *CleanOldStatsJob) Name() string { return "clean_old_stats" }

func (j *CleanOldStatsJob) Run(ctx context.Context) error {
	_, err := j.Stats.CleanOldStats(ctx, j.UserID)
	return err
}

// VerifyStatsJob reconciles stored statistics with source records for one user.
type VerifyStatsJob struct {
	Stats  StatsMaintainer
	UserID string
}

func (j *VerifyStatsJob) Name() string { return "verify_stats" }

func (j *VerifyStatsJob) Run(ctx context.Context) error {
	result, err := j.Stats.VerifyAndRepairStats(ctx, j.UserID)
	if err != nil {
		return err
	}
	if result.WasRepaired {
		logger.FromContext(ctx).Info("repaired statistics: user_id=%s, days=%d", j.UserID, result.RepairableCount())
	}
	return nil
}
