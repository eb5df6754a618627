package models

import "time"

// DailyStats is the per-user, per-day counter bucket.
// NotesCreated and FlashcardsCreated can be recomputed from source records;
// FlashcardsStudied is cumulative and cannot.
type DailyStats struct {
	Date              string    `json:"date" db:"date"`
	NotesCreated      int       `json:"notes_created" db:"notes_created"`
	FlashcardsStudied int       `json:"flashcards_studied" db:"flashcards_studied"`
	FlashcardsCreated int       `json:"flashcards_created" db:"flashcards_created"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// IsZero reports whether all three counters are zero.
func (d DailyStats) IsZero() bool {
	return d.NotesCreated == 0 && d.FlashcardsStudied == 0 && d.FlashcardsCreated == 0
}

type UserStatistics struct {
	ID         string       `json:"id" db:"id"`
	UserID     string       `json:"user_id" db:"user_id"`
	DailyStats []DailyStats `json:"daily_stats" db:"-"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// Day returns the entry for date, if stored.
func (u *UserStatistics) Day(date string) (DailyStats, bool) {
	for _, d := range u.DailyStats {
		if d.Date == date {
			return d, true
		}
	}
	return DailyStats{}, false
}

type TotalStats struct {
	TotalNotesCreated      int `json:"total_notes_created"`
	TotalFlashcardsStudied int `json:"total_flashcards_studied"`
	TotalFlashcardsCreated int `json:"total_flashcards_created"`
}

type Streaks struct {
	NoteStreak           int `json:"note_streak"`
	FlashcardStudyStreak int `json:"flashcard_study_streak"`
}

type DashboardStats struct {
	Weekly  []DailyStats `json:"weekly"`
	Total   TotalStats   `json:"total"`
	Streaks Streaks      `json:"streaks"`
	Today   DailyStats   `json:"today"`
}

// CalculatedStats is the dashboard view rebuilt from source records only.
type CalculatedStats struct {
	DashboardStats
	Source string `json:"source"`
	Note   string `json:"note"`
}

type DiscrepancyType string

const (
	DiscrepancyMissing  DiscrepancyType = "missing"
	DiscrepancyMismatch DiscrepancyType = "mismatch"
)

// Discrepancy describes a day where stored counters disagree with source records.
// Repairable is false when the only difference is on FlashcardsStudied.
type Discrepancy struct {
	Date        string          `json:"date"`
	Type        DiscrepancyType `json:"type"`
	Actual      *DailyStats     `json:"actual,omitempty"`
	Saved       *DailyStats     `json:"saved"`
	Differences []string        `json:"differences,omitempty"`
	Repairable  bool            `json:"repairable"`
}

type RepairResult struct {
	WasRepaired   bool          `json:"was_repaired"`
	RepairedStats []DailyStats  `json:"repaired_stats"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// RepairableCount returns the number of discrepancies a repair acts on.
func (r RepairResult) RepairableCount() int {
	n := 0
	for _, d := range r.Discrepancies {
		if d.Repairable {
			n++
		}
	}
	return n
}

type VerificationResult struct {
	Stats         *UserStatistics `json:"stats"`
	WasRepaired   bool            `json:"was_repaired"`
	Discrepancies []Discrepancy   `json:"discrepancies"`
}
