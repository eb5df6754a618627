package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) FindByUserID(ctx context.Context, userID string) (*models.UserStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading statistics: user_id=%s", userID)

	var records []models.UserStatistics
	q := sqlBuilder.Select("id", "user_id", "created_at", "updated_at").
		From("user_statistics").
		Where(squirrel.Eq{"user_id": userID})
	if err := selectAll(ctx, r.db, &records, q); err != nil {
		log.Error("failed to load statistics: %v", err)
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	stats := records[0]
	stats.DailyStats = []models.DailyStats{}
	q = sqlBuilder.Select("date", "notes_created", "flashcards_studied", "flashcards_created", "created_at").
		From("daily_stats").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC")
	if err := selectAll(ctx, r.db, &stats.DailyStats, q); err != nil {
		log.Error("failed to load daily stats: %v", err)
		return nil, err
	}
	log.Debug("loaded %d daily entries", len(stats.DailyStats))
	return &stats, nil
}

func (r *statsRepository) Create(ctx context.Context, stats models.UserStatistics) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("creating statistics: user_id=%s", stats.UserID)

	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		q := sqlBuilder.Insert("user_statistics").
			Columns("id", "user_id", "created_at", "updated_at").
			Values(stats.ID, stats.UserID, utc(stats.CreatedAt), utc(stats.UpdatedAt))
		if _, err := exec(ctx, tx, q); err != nil {
			return err
		}
		return insertDaily(ctx, tx, stats.UserID, stats.DailyStats)
	})
	if err != nil {
		log.Error("failed to create statistics: %v", err)
	}
	return err
}

func (r *statsRepository) Update(ctx context.Context, stats models.UserStatistics) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("updating statistics: user_id=%s, days=%d", stats.UserID, len(stats.DailyStats))

	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		q := sqlBuilder.Update("user_statistics").
			Set("updated_at", utc(stats.UpdatedAt)).
			Where(squirrel.Eq{"user_id": stats.UserID})
		if _, err := exec(ctx, tx, q); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, sqlBuilder.Delete("daily_stats").Where(squirrel.Eq{"user_id": stats.UserID})); err != nil {
			return err
		}
		return insertDaily(ctx, tx, stats.UserID, stats.DailyStats)
	})
	if err != nil {
		log.Error("failed to update statistics: %v", err)
	}
	return err
}

func insertDaily(ctx context.Context, tx *sqlx.Tx, userID string, daily []models.DailyStats) error {
	if len(daily) == 0 {
		return nil
	}
	q := sqlBuilder.Insert("daily_stats").
		Columns("user_id", "date", "notes_created", "flashcards_studied", "flashcards_created", "created_at")
	for _, d := range daily {
		q = q.Values(userID, d.Date, d.NotesCreated, d.FlashcardsStudied, d.FlashcardsCreated, utc(d.CreatedAt))
	}
	_, err := exec(ctx, tx, q)
	return err
}
