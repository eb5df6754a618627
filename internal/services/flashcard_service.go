package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/flashcard"
	"github.com/vytor/neurobank/internal/lock"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/metrics"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	CreateFlashcard(ctx context.Context, userID string, in models.NewFlashcard) (*models.Flashcard, error)
	SaveFlashcards(ctx context.Context, userID string, in []models.NewFlashcard) ([]models.Flashcard, error)
	GetUserFlashcards(ctx context.Context, userID string) ([]models.Flashcard, error)
	GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error)
	GetDeckFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, id string, upd models.FlashcardUpdate) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, id string) error

	ReviewFlashcard(ctx context.Context, id string, outcome string) (*models.Flashcard, error)
	CustomReview(ctx context.Context, id string, amount int, unit flashcard.TimeUnit) (*models.Flashcard, error)
	RefreshReviews(ctx context.Context, userID string) (int64, error)
	ResetToRemaining(ctx context.Context, id string) (*models.Flashcard, error)
}

type flashcardService struct {
	repo  repository.FlashcardRepository
	users repository.UserRepository
	stats StatsService
	clock clock.Clock
	locks *lock.Keyed
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(repo repository.FlashcardRepository, users repository.UserRepository, stats StatsService, c clock.Clock) FlashcardService {
	if c == nil {
		c = clock.System{}
	}
	return &flashcardService{repo: repo, users: users, stats: stats, clock: c, locks: lock.NewKeyed()}
}

func (s *flashcardService) build(userID string, in models.NewFlashcard) (models.Flashcard, error) {
	question := strings.TrimSpace(in.Question)
	answer := strings.TrimSpace(in.Answer)
	if question == "" {
		return models.Flashcard{}, errors.NewValidationError("question", "must not be empty")
	}
	if answer == "" {
		return models.Flashcard{}, errors.NewValidationError("answer", "must not be empty")
	}
	categories := in.Categories
	if categories == nil {
		categories = []string{}
	}
	now := s.clock.Now()
	return models.Flashcard{
		ID:           uuid.NewString(),
		UserID:       userID,
		DeckID:       in.DeckID,
		SourceNoteID: in.SourceNoteID,
		Question:     question,
		Answer:       answer,
		Categories:   categories,
		Difficulty:   in.Difficulty,
		Status:       models.StatusRemaining,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID string, in models.NewFlashcard) (*models.Flashcard, error) {
	cards, err := s.SaveFlashcards(ctx, userID, []models.NewFlashcard{in})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *flashcardService) SaveFlashcards(ctx context.Context, userID string, in []models.NewFlashcard) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	if len(in) == 0 {
		return nil, errors.NewValidationError("flashcards", "at least one flashcard is required")
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, 0, len(in))
	for _, nf := range in {
		card, err := s.build(userID, nf)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := s.repo.CreateBatch(ctx, cards); err != nil {
		log.Error("failed to save flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("saved flashcards: user_id=%s, count=%d", userID, len(cards))

	if _, err := s.stats.RecordFlashcardsCreated(ctx, userID, len(cards)); err != nil {
		log.Warn("failed to record flashcard creation: %v", err)
	}
	return cards, nil
}

func (s *flashcardService) GetUserFlashcards(ctx context.Context, userID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)

	if _, err := s.RefreshReviews(ctx, userID); err != nil {
		return nil, err
	}
	cards, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

func (s *flashcardService) load(ctx context.Context, id string) (*models.Flashcard, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

func (s *flashcardService) GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error) {
	return s.load(ctx, id)
}

func (s *flashcardService) GetDeckFlashcards(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	cards, err := s.repo.FindByDeckID(ctx, deckID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list deck flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

// mutate runs fn on the stored card under its lock and persists the result.
func (s *flashcardService) mutate(ctx context.Context, id string, fn func(models.Flashcard) (models.Flashcard, error)) (*models.Flashcard, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	card, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := fn(*card)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		logger.FromContext(ctx).Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &updated, nil
}

func (s *flashcardService) UpdateFlashcard(ctx context.Context, id string, upd models.FlashcardUpdate) (*models.Flashcard, error) {
	return s.mutate(ctx, id, func(card models.Flashcard) (models.Flashcard, error) {
		if upd.Question != nil {
			q := strings.TrimSpace(*upd.Question)
			if q == "" {
				return card, errors.NewValidationError("question", "must not be empty")
			}
			card.Question = q
		}
		if upd.Answer != nil {
			a := strings.TrimSpace(*upd.Answer)
			if a == "" {
				return card, errors.NewValidationError("answer", "must not be empty")
			}
			card.Answer = a
		}
		if upd.Categories != nil {
			card.Categories = upd.Categories
		}
		switch {
		case upd.ClearDeck:
			card.DeckID = nil
		case upd.DeckID != nil:
			card.DeckID = upd.DeckID
		}
		card.UpdatedAt = s.clock.Now()
		return card, nil
	})
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("flashcard", id)
	}
	log.Info("deleted flashcard: id=%s", id)
	return nil
}

func (s *flashcardService) ReviewFlashcard(ctx context.Context, id string, outcome string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing flashcard: flashcard_id=%s, outcome=%s", id, outcome)

	difficulty, err := flashcard.ParseOutcome(outcome)
	if err != nil {
		return nil, err
	}

	card, err := s.mutate(ctx, id, func(card models.Flashcard) (models.Flashcard, error) {
		return flashcard.ApplyReview(card, difficulty, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	metrics.FlashcardReviews.WithLabelValues(string(difficulty)).Inc()
	log.Info("flashcard reviewed: flashcard_id=%s, outcome=%s, easy_count=%d, next_review=%v",
		id, difficulty, card.EasyCount, card.NextReviewDate)

	if _, err := s.stats.RecordFlashcardStudied(ctx, card.UserID, 1); err != nil {
		log.Warn("failed to record flashcard study: %v", err)
	}
	return card, nil
}

func (s *flashcardService) CustomReview(ctx context.Context, id string, amount int, unit flashcard.TimeUnit) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)

	card, err := s.mutate(ctx, id, func(card models.Flashcard) (models.Flashcard, error) {
		return flashcard.ApplyCustomReview(card, amount, unit, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	metrics.FlashcardReviews.WithLabelValues(string(models.DifficultyCustom)).Inc()
	log.Info("flashcard custom review: flashcard_id=%s, amount=%d, unit=%s", id, amount, unit)
	return card, nil
}

func (s *flashcardService) RefreshReviews(ctx context.Context, userID string) (int64, error) {
	log := logger.FromContext(ctx)

	moved, err := s.repo.MoveDueToRemaining(ctx, userID, s.clock.Now())
	if err != nil {
		log.Error("failed to move due flashcards: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if moved > 0 {
		metrics.FlashcardsRefreshed.Add(float64(moved))
		log.Info("moved due flashcards to remaining: user_id=%s, count=%d", userID, moved)
	}
	return moved, nil
}

func (s *flashcardService) ResetToRemaining(ctx context.Context, id string) (*models.Flashcard, error) {
	return s.mutate(ctx, id, func(card models.Flashcard) (models.Flashcard, error) {
		card = flashcard.ResetToRemaining(card)
		card.UpdatedAt = s.clock.Now()
		return card, nil
	})
}
