package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

var flashcardColumns = []string{
	"id", "user_id", "deck_id", "source_note_id", "question", "answer", "categories",
	"difficulty", "status", "last_reviewed", "next_review_date", "review_count", "easy_count",
	"created_at", "updated_at",
}

// insertBatchSize keeps one INSERT well under SQLite's bound-variable limit.
const insertBatchSize = 500

type flashcardRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	DeckID         sql.NullString `db:"deck_id"`
	SourceNoteID   sql.NullString `db:"source_note_id"`
	Question       string         `db:"question"`
	Answer         string         `db:"answer"`
	Categories     string         `db:"categories"`
	Difficulty     string         `db:"difficulty"`
	Status         string         `db:"status"`
	LastReviewed   sql.NullTime   `db:"last_reviewed"`
	NextReviewDate sql.NullTime   `db:"next_review_date"`
	ReviewCount    int            `db:"review_count"`
	EasyCount      int            `db:"easy_count"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r flashcardRow) model() (models.Flashcard, error) {
	c := models.Flashcard{
		ID:          r.ID,
		UserID:      r.UserID,
		Question:    r.Question,
		Answer:      r.Answer,
		Difficulty:  models.Difficulty(r.Difficulty),
		Status:      models.Status(r.Status),
		ReviewCount: r.ReviewCount,
		EasyCount:   r.EasyCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Categories:  []string{},
	}
	if r.DeckID.Valid {
		c.DeckID = &r.DeckID.String
	}
	if r.SourceNoteID.Valid {
		c.SourceNoteID = &r.SourceNoteID.String
	}
	if r.LastReviewed.Valid {
		c.LastReviewed = &r.LastReviewed.Time
	}
	if r.NextReviewDate.Valid {
		c.NextReviewDate = &r.NextReviewDate.Time
	}
	if r.Categories != "" {
		if err := json.Unmarshal([]byte(r.Categories), &c.Categories); err != nil {
			return c, err
		}
	}
	return c, nil
}

func flashcardValues(c models.Flashcard) ([]any, error) {
	categories := c.Categories
	if categories == nil {
		categories = []string{}
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}
	status := c.Status
	if status == "" {
		status = models.StatusRemaining
	}
	return []any{
		c.ID, c.UserID, c.DeckID, c.SourceNoteID, c.Question, c.Answer, string(encoded),
		string(c.Difficulty), string(status), utcPtr(c.LastReviewed), utcPtr(c.NextReviewDate),
		c.ReviewCount, c.EasyCount, utc(c.CreatedAt), utc(c.UpdatedAt),
	}, nil
}

type flashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sqlx.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Flashcard, error) {
	var rows []flashcardRow
	q := sqlBuilder.Select(flashcardColumns...).From("flashcards").Where(where).OrderBy("created_at ASC", "id ASC")
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}
	cards := make([]models.Flashcard, 0, len(rows))
	for _, row := range rows {
		c, err := row.model()
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func (r *flashcardRepository) FindByUserID(ctx context.Context, userID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: user_id=%s", userID)

	cards, err := r.list(ctx, squirrel.Eq{"user_id": userID})
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, err
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, nil
}

func (r *flashcardRepository) FindByDeckID(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: deck_id=%s", deckID)

	cards, err := r.list(ctx, squirrel.Eq{"deck_id": deckID})
	if err != nil {
		log.Error("failed to list deck flashcards: %v", err)
		return nil, err
	}
	return cards, nil
}

func (r *flashcardRepository) FindByID(ctx context.Context, id string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	cards, err := r.list(ctx, squirrel.Eq{"id": id})
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	if len(cards) == 0 {
		log.Debug("flashcard not found: id=%s", id)
		return nil, nil
	}
	return &cards[0], nil
}

func (r *flashcardRepository) Create(ctx context.Context, c models.Flashcard) error {
	return r.CreateBatch(ctx, []models.Flashcard{c})
}

func (r *flashcardRepository) CreateBatch(ctx context.Context, cards []models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	if len(cards) == 0 {
		return nil
	}
	log.Debug("inserting %d flashcards", len(cards))

	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(cards); start += insertBatchSize {
			end := min(start+insertBatchSize, len(cards))
			q := sqlBuilder.Insert("flashcards").Columns(flashcardColumns...)
			for _, c := range cards[start:end] {
				values, err := flashcardValues(c)
				if err != nil {
					return err
				}
				q = q.Values(values...)
			}
			if _, err := exec(ctx, tx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert flashcards: %v", err)
	}
	return err
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s, status=%s, easy_count=%d", c.ID, c.Status, c.EasyCount)

	values, err := flashcardValues(c)
	if err != nil {
		return err
	}
	q := sqlBuilder.Update("flashcards")
	// id and user_id are not rewritten.
	for i, col := range flashcardColumns[2:] {
		q = q.Set(col, values[i+2])
	}
	if _, err := exec(ctx, r.db, q.Where(squirrel.Eq{"id": c.ID})); err != nil {
		log.Error("failed to update flashcard: %v", err)
		return err
	}
	return nil
}

func (r *flashcardRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%s", id)

	n, err := exec(ctx, r.db, sqlBuilder.Delete("flashcards").Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return false, err
	}
	return n > 0, nil
}

func (r *flashcardRepository) MoveDueToRemaining(ctx context.Context, userID string, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	q := sqlBuilder.Update("flashcards").
		Set("status", string(models.StatusRemaining)).
		Set("updated_at", utc(now)).
		Where(squirrel.Eq{"user_id": userID, "status": string(models.StatusCompleted)}).
		Where(squirrel.NotEq{"next_review_date": nil}).
		Where(squirrel.LtOrEq{"next_review_date": utc(now)})

	n, err := exec(ctx, r.db, q)
	if err != nil {
		log.Error("failed to move due flashcards: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Debug("moved %d flashcards back to remaining: user_id=%s", n, userID)
	}
	return n, nil
}
