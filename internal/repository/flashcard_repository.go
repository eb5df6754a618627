package repository

import (
	"context"
	"time"

	"github.com/vytor/neurobank/internal/models"
)

// FlashcardRepository handles flashcard data access.
// Find methods return nil without error when nothing matches.
type FlashcardRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]models.Flashcard, error)
	FindByDeckID(ctx context.Context, deckID string) ([]models.Flashcard, error)
	FindByID(ctx context.Context, id string) (*models.Flashcard, error)
	Create(ctx context.Context, card models.Flashcard) error
	CreateBatch(ctx context.Context, cards []models.Flashcard) error
	Update(ctx context.Context, card models.Flashcard) error
	Delete(ctx context.Context, id string) (bool, error)
	// MoveDueToRemaining flips every completed card of userID whose review date
	// is at or before now back to remaining, and returns how many moved.
	MoveDueToRemaining(ctx context.Context, userID string, now time.Time) (int64, error)
}
