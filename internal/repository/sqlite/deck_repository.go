package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

type deckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sqlx.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Deck, error) {
	decks := []models.Deck{}
	q := sqlBuilder.Select(
		"d.id", "d.user_id", "d.name", "d.description", "d.color", "d.created_at", "d.updated_at",
		"(SELECT COUNT(*) FROM flashcards f WHERE f.deck_id = d.id) AS flashcard_count",
	).From("decks d").Where(where).OrderBy("d.created_at ASC", "d.id ASC")
	if err := selectAll(ctx, r.db, &decks, q); err != nil {
		return nil, err
	}
	return decks, nil
}

func (r *deckRepository) FindByUserID(ctx context.Context, userID string) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks: user_id=%s", userID)

	decks, err := r.list(ctx, squirrel.Eq{"d.user_id": userID})
	if err != nil {
		log.Error("failed to list decks: %v", err)
	}
	return decks, err
}

func (r *deckRepository) FindByID(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	decks, err := r.list(ctx, squirrel.Eq{"d.id": id})
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	if len(decks) == 0 {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	return &decks[0], nil
}

func (r *deckRepository) Create(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, name=%s", d.ID, d.Name)

	q := sqlBuilder.Insert("decks").
		Columns("id", "user_id", "name", "description", "color", "created_at", "updated_at").
		Values(d.ID, d.UserID, d.Name, d.Description, d.Color, utc(d.CreatedAt), utc(d.UpdatedAt))
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to insert deck: %v", err)
		return err
	}
	return nil
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%s", d.ID)

	q := sqlBuilder.Update("decks").
		Set("name", d.Name).
		Set("description", d.Description).
		Set("color", d.Color).
		Set("updated_at", utc(d.UpdatedAt)).
		Where(squirrel.Eq{"id": d.ID})
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to update deck: %v", err)
		return err
	}
	return nil
}

// Delete removes the deck; its flashcards stay and lose their deck reference.
func (r *deckRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	var n int64
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		detach := sqlBuilder.Update("flashcards").Set("deck_id", nil).Where(squirrel.Eq{"deck_id": id})
		if _, err := exec(ctx, tx, detach); err != nil {
			return err
		}
		var err error
		n, err = exec(ctx, tx, sqlBuilder.Delete("decks").Where(squirrel.Eq{"id": id}))
		return err
	})
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return false, err
	}
	return n > 0, nil
}
