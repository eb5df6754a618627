package flashcard

import (
	"time"

	apperrors "github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/models"
)

// EasyIntervals is the interval ladder in days, indexed by consecutive easy gradings.
var EasyIntervals = []int{1, 2, 3, 5, 8, 13, 20, 30, 45, 70, 100, 150, 210, 270, 300}

const (
	mediumFloorDays = 5
	hardFactor      = 0.6
	daysPerMonth    = 30

	MinCustomAmount = 1
	MaxCustomAmount = 30
)

// TimeUnit is the unit of a custom review interval.
type TimeUnit string

const (
	UnitDays   TimeUnit = "days"
	UnitMonths TimeUnit = "months"
)

// ParseOutcome validates a grading outcome. Only easy, medium and hard are gradable.
func ParseOutcome(s string) (models.Difficulty, error) {
	switch d := models.Difficulty(s); d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return d, nil
	}
	return "", apperrors.NewValidationError("difficulty", "must be easy, medium or hard")
}

// DaysSinceReview returns whole days since the card was last reviewed (or created), at least 1.
func DaysSinceReview(card models.Flashcard, now time.Time) int {
	ref := card.CreatedAt
	if card.LastReviewed != nil {
		ref = *card.LastReviewed
	}
	days := int(now.Sub(ref) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// ApplyReview grades card with outcome at now and returns the rescheduled card.
func ApplyReview(card models.Flashcard, outcome models.Difficulty, now time.Time) (models.Flashcard, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return card, err
	}

	since := DaysSinceReview(card, now)
	var days int
	switch outcome {
	case models.DifficultyEasy:
		card.EasyCount++
		idx := card.EasyCount - 1
		if idx >= len(EasyIntervals) {
			idx = len(EasyIntervals) - 1
		}
		days = EasyIntervals[idx]
	case models.DifficultyMedium:
		days = max(mediumFloorDays, since)
		card.EasyCount = max(0, card.EasyCount-1)
	case models.DifficultyHard:
		days = max(1, int(float64(since)*hardFactor))
		card.EasyCount = max(0, card.EasyCount-2)
	}

	return complete(card, outcome, now, days), nil
}

// ApplyCustomReview schedules the card amount days or months ahead, bypassing the ladder.
// A month is always 30 days.
func ApplyCustomReview(card models.Flashcard, amount int, unit TimeUnit, now time.Time) (models.Flashcard, error) {
	if amount < MinCustomAmount || amount > MaxCustomAmount {
		return card, apperrors.NewValidationError("amount", "must be between 1 and 30")
	}
	days := amount
	switch unit {
	case UnitDays:
	case UnitMonths:
		days = amount * daysPerMonth
	default:
		return card, apperrors.NewValidationError("unit", "must be days or months")
	}
	return complete(card, models.DifficultyCustom, now, days), nil
}

func complete(card models.Flashcard, difficulty models.Difficulty, now time.Time, days int) models.Flashcard {
	next := now.AddDate(0, 0, days)
	reviewed := now
	card.NextReviewDate = &next
	card.LastReviewed = &reviewed
	card.ReviewCount++
	card.Status = models.StatusCompleted
	card.Difficulty = difficulty
	card.UpdatedAt = now
	return card
}

// IsDue reports whether a completed card has reached its review date.
func IsDue(card models.Flashcard, now time.Time) bool {
	return card.Status == models.StatusCompleted &&
		card.NextReviewDate != nil &&
		!card.NextReviewDate.After(now)
}

// ResetToRemaining puts the card back into the study queue and clears its schedule.
func ResetToRemaining(card models.Flashcard) models.Flashcard {
	card.Status = models.StatusRemaining
	card.NextReviewDate = nil
	return card
}
