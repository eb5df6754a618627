package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// DeckRepository handles deck data access. Returned decks carry a live FlashcardCount.
type DeckRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]models.Deck, error)
	FindByID(ctx context.Context, id string) (*models.Deck, error)
	Create(ctx context.Context, deck models.Deck) error
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id string) (bool, error)
}
