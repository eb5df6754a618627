package models

import "time"

// Difficulty is the outcome of the most recent grading, not a card setting.
type Difficulty string

const (
	DifficultyUnset  Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyCustom Difficulty = "custom"
)

// Status tells whether a card sits in the active study queue.
type Status string

const (
	StatusRemaining Status = "remaining"
	StatusCompleted Status = "completed"
)

type Flashcard struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	DeckID         *string    `json:"deck_id"`
	SourceNoteID   *string    `json:"source_note_id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Categories     []string   `json:"categories"`
	Difficulty     Difficulty `json:"difficulty"`
	Status         Status     `json:"status"`
	LastReviewed   *time.Time `json:"last_reviewed"`
	NextReviewDate *time.Time `json:"next_review_date"`
	ReviewCount    int        `json:"review_count"`
	EasyCount      int        `json:"easy_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewFlashcard is the input for creating a single card or a batch of cards.
type NewFlashcard struct {
	Question     string
	Answer       string
	Categories   []string
	Difficulty   Difficulty
	DeckID       *string
	SourceNoteID *string
}

// FlashcardUpdate carries the fields a caller wants to change; nil means keep.
// ClearDeck detaches the card from its deck.
type FlashcardUpdate struct {
	Question   *string
	Answer     *string
	Categories []string
	DeckID     *string
	ClearDeck  bool
}

// GeneratedFlashcard is a question/answer pair produced by the text generation service.
type GeneratedFlashcard struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Categories []string `json:"categories"`
}
