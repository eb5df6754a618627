package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// StatsRepository stores one UserStatistics record per user together with its daily entries.
type StatsRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserStatistics, error)
	Create(ctx context.Context, stats models.UserStatistics) error
	// Update replaces the stored daily entries with stats.DailyStats.
	Update(ctx context.Context, stats models.UserStatistics) error
}
