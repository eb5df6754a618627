// Package stats holds the pure aggregation rules behind the daily study
// statistics: weekly and total views, streaks, and the recomputation used
// to verify and repair stored counters.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/models"
)

const (
	// RetentionDays is both the cleanup horizon and the verification window.
	RetentionDays = 90
	WeekDays      = 7
	MaxStreakDays = 365
)

func byDate(daily []models.DailyStats) map[string]models.DailyStats {
	m := make(map[string]models.DailyStats, len(daily))
	for _, d := range daily {
		m[d.Date] = d
	}
	return m
}

// SortByDate sorts entries ascending by day key.
func SortByDate(daily []models.DailyStats) {
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
}

// Weekly returns one entry per day in days, zero-filled where nothing is stored.
func Weekly(daily []models.DailyStats, days []string) []models.DailyStats {
	stored := byDate(daily)
	out := make([]models.DailyStats, len(days))
	for i, date := range days {
		d := stored[date]
		out[i] = models.DailyStats{
			Date:              date,
			NotesCreated:      d.NotesCreated,
			FlashcardsStudied: d.FlashcardsStudied,
			FlashcardsCreated: d.FlashcardsCreated,
			CreatedAt:         d.CreatedAt,
		}
	}
	return out
}

// Totals sums every entry.
func Totals(daily []models.DailyStats) models.TotalStats {
	var t models.TotalStats
	for _, d := range daily {
		t.TotalNotesCreated += d.NotesCreated
		t.TotalFlashcardsStudied += d.FlashcardsStudied
		t.TotalFlashcardsCreated += d.FlashcardsCreated
	}
	return t
}

// Prune drops entries dated before cutoff.
func Prune(daily []models.DailyStats, cutoff string) []models.DailyStats {
	kept := make([]models.DailyStats, 0, len(daily))
	for _, d := range daily {
		if d.Date >= cutoff {
			kept = append(kept, d)
		}
	}
	return kept
}

// CalculateStreaks counts consecutive active days walking back from today.
// An empty today does not break the streak: counting starts from yesterday.
func CalculateStreaks(daily []models.DailyStats, today string) models.Streaks {
	stored := byDate(daily)
	return models.Streaks{
		NoteStreak:           walkBack(stored, today, func(d models.DailyStats) bool { return d.NotesCreated > 0 }),
		FlashcardStudyStreak: walkBack(stored, today, func(d models.DailyStats) bool { return d.FlashcardsStudied > 0 }),
	}
}

func walkBack(stored map[string]models.DailyStats, today string, active func(models.DailyStats) bool) int {
	streak := 0
	date := today
	for i := 0; i < MaxStreakDays; i++ {
		d, ok := stored[date]
		switch {
		case ok && active(d):
			streak++
		case i == 0:
		default:
			return streak
		}
		date = clock.ShiftDays(date, -1)
	}
	return streak
}

// StreaksFromData counts leading active entries after sorting newest first.
// It has no grace for today and does not check that entries are consecutive days.
func StreaksFromData(daily []models.DailyStats) models.Streaks {
	sorted := append([]models.DailyStats(nil), daily...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	var s models.Streaks
	for _, d := range sorted {
		if d.NotesCreated <= 0 {
			break
		}
		s.NoteStreak++
	}
	for _, d := range sorted {
		if d.FlashcardsStudied <= 0 {
			break
		}
		s.FlashcardStudyStreak++
	}
	return s
}

func zeroWindow(cal *clock.Calendar) ([]models.DailyStats, map[string]int) {
	days := cal.LastNDays(RetentionDays)
	now := cal.Now()
	out := make([]models.DailyStats, len(days))
	index := make(map[string]int, len(days))
	for i, date := range days {
		out[i] = models.DailyStats{Date: date, CreatedAt: now}
		index[date] = i
	}
	return out, index
}

// ActualFromSource rebuilds the repairable counters of the last RetentionDays
// days from notes and flashcards. FlashcardsStudied is always zero.
func ActualFromSource(cal *clock.Calendar, notes []models.Note, cards []models.Flashcard) []models.DailyStats {
	out, index := zeroWindow(cal)
	for _, n := range notes {
		if i, ok := index[cal.DateKey(n.CreatedAt)]; ok {
			out[i].NotesCreated++
		}
	}
	for _, c := range cards {
		if i, ok := index[cal.DateKey(c.CreatedAt)]; ok {
			out[i].FlashcardsCreated++
		}
	}
	return out
}

// StudiedFromSource counts one study per card on the day it was last reviewed.
// Repeat reviews are lost, so this only ever approximates the stored counter.
func StudiedFromSource(cal *clock.Calendar, cards []models.Flashcard) []models.DailyStats {
	out, index := zeroWindow(cal)
	for _, c := range cards {
		if c.LastReviewed == nil {
			continue
		}
		if i, ok := index[cal.DateKey(*c.LastReviewed)]; ok {
			out[i].FlashcardsStudied++
		}
	}
	return out
}

// MergeStudied copies FlashcardsStudied from studied onto actual by date.
func MergeStudied(actual, studied []models.DailyStats) []models.DailyStats {
	counts := byDate(studied)
	out := make([]models.DailyStats, len(actual))
	for i, d := range actual {
		d.FlashcardsStudied = counts[d.Date].FlashcardsStudied
		out[i] = d
	}
	return out
}

func repairableDiffers(saved, actual models.DailyStats) bool {
	return saved.NotesCreated != actual.NotesCreated || saved.FlashcardsCreated != actual.FlashcardsCreated
}

// NeedsRepair reports whether any day in actual disagrees with saved on a
// repairable counter. A day missing from saved counts as all zero.
func NeedsRepair(saved, actual []models.DailyStats) bool {
	stored := byDate(saved)
	for _, a := range actual {
		if repairableDiffers(stored[a.Date], a) {
			return true
		}
	}
	return false
}

// FindDiscrepancies compares saved entries with calculated ones. Differences on
// FlashcardsStudied are reported but never make a discrepancy repairable.
func FindDiscrepancies(saved, calculated []models.DailyStats) []models.Discrepancy {
	stored := byDate(saved)
	var out []models.Discrepancy
	for _, a := range calculated {
		s, ok := stored[a.Date]
		diffs := differences(s, a)
		if len(diffs) == 0 {
			continue
		}

		actual := a
		d := models.Discrepancy{
			Date:        a.Date,
			Type:        models.DiscrepancyMismatch,
			Actual:      &actual,
			Differences: diffs,
			Repairable:  repairableDiffers(s, a),
		}
		if ok {
			savedDay := s
			d.Saved = &savedDay
		} else {
			d.Type = models.DiscrepancyMissing
		}
		out = append(out, d)
	}
	return out
}

func differences(saved, actual models.DailyStats) []string {
	var diffs []string
	if saved.NotesCreated != actual.NotesCreated {
		diffs = append(diffs, fmt.Sprintf("notes: %d → %d (will be repaired)", saved.NotesCreated, actual.NotesCreated))
	}
	if saved.FlashcardsCreated != actual.FlashcardsCreated {
		diffs = append(diffs, fmt.Sprintf("created: %d → %d (will be repaired)", saved.FlashcardsCreated, actual.FlashcardsCreated))
	}
	if saved.FlashcardsStudied != actual.FlashcardsStudied {
		diffs = append(diffs, fmt.Sprintf("studied: %d vs %d (info only - NOT repaired)", saved.FlashcardsStudied, actual.FlashcardsStudied))
	}
	return diffs
}

// Repair rewrites the saved collection with the repairable counters from actual.
// FlashcardsStudied and CreatedAt are carried over from saved; entries outside
// the actual window are kept untouched. Days absent from saved are only added
// when they have something to count.
func Repair(saved, actual []models.DailyStats) []models.DailyStats {
	stored := byDate(saved)
	window := make(map[string]struct{}, len(actual))
	out := make([]models.DailyStats, 0, len(saved)+len(actual))

	for _, a := range actual {
		window[a.Date] = struct{}{}
		s, ok := stored[a.Date]
		if !ok && a.NotesCreated == 0 && a.FlashcardsCreated == 0 {
			continue
		}
		day := models.DailyStats{
			Date:              a.Date,
			NotesCreated:      a.NotesCreated,
			FlashcardsCreated: a.FlashcardsCreated,
			CreatedAt:         a.CreatedAt,
		}
		if ok {
			day.FlashcardsStudied = s.FlashcardsStudied
			day.CreatedAt = s.CreatedAt
		}
		out = append(out, day)
	}
	for _, s := range saved {
		if _, ok := window[s.Date]; !ok {
			out = append(out, s)
		}
	}
	SortByDate(out)
	return out
}

// Increment returns daily with the entry for date adjusted by fn, creating a
// zero entry stamped at now when none exists.
func Increment(daily []models.DailyStats, date string, now time.Time, fn func(*models.DailyStats)) ([]models.DailyStats, models.DailyStats) {
	for i := range daily {
		if daily[i].Date == date {
			fn(&daily[i])
			return daily, daily[i]
		}
	}
	day := models.DailyStats{Date: date, CreatedAt: now}
	fn(&day)
	daily = append(daily, day)
	return daily, day
}
