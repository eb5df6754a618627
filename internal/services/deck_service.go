package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// DeckService groups flashcards into named decks. Deleting a deck keeps its cards.
type DeckService interface {
	CreateDeck(ctx context.Context, userID string, in models.Collection) (*models.Deck, error)
	GetUserDecks(ctx context.Context, userID string) ([]models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	UpdateDeck(ctx context.Context, id string, in models.Collection) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
}

type deckService struct {
	repo  repository.DeckRepository
	users repository.UserRepository
	clock clock.Clock
}

// NewDeckService creates a new DeckService
func NewDeckService(repo repository.DeckRepository, users repository.UserRepository, c clock.Clock) DeckService {
	if c == nil {
		c = clock.System{}
	}
	return &deckService{repo: repo, users: users, clock: c}
}

func collectionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewValidationError("name", "must not be empty")
	}
	return name, nil
}

func (s *deckService) CreateDeck(ctx context.Context, userID string, in models.Collection) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	name, err := collectionName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	deck := models.Deck{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, deck); err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created deck: id=%s, user_id=%s", deck.ID, userID)
	return &deck, nil
}

func (s *deckService) GetUserDecks(ctx context.Context, userID string) ([]models.Deck, error) {
	decks, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	deck, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) UpdateDeck(ctx context.Context, id string, in models.Collection) (*models.Deck, error) {
	name, err := collectionName(in.Name)
	if err != nil {
		return nil, err
	}
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	deck.Name = name
	deck.Description = in.Description
	deck.Color = in.Color
	deck.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, *deck); err != nil {
		logger.FromContext(ctx).Error("failed to update deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("deck", id)
	}
	log.Info("deleted deck: id=%s", id)
	return nil
}
