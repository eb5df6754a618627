package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/stats"
)

var now = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func calendar() *clock.Calendar {
	return clock.NewCalendar(clock.NewManual(now), time.UTC)
}

func day(date string, notes, studied, created int) models.DailyStats {
	return models.DailyStats{Date: date, NotesCreated: notes, FlashcardsStudied: studied, FlashcardsCreated: created}
}

func TestWeekly_AlwaysSevenAscending(t *testing.T) {
	days := calendar().LastNDays(stats.WeekDays)

	empty := stats.Weekly(nil, days)
	require.Len(t, empty, 7)
	assert.Equal(t, "2024-03-09", empty[0].Date)
	assert.Equal(t, "2024-03-15", empty[6].Date)
	for i, d := range empty {
		assert.True(t, d.IsZero())
		if i > 0 {
			assert.Less(t, empty[i-1].Date, d.Date)
		}
	}

	stored := []models.DailyStats{
		day("2024-03-15", 1, 2, 3),
		day("2024-03-01", 9, 9, 9),
		day("2024-03-10", 0, 4, 0),
	}
	weekly := stats.Weekly(stored, days)
	require.Len(t, weekly, 7)
	assert.Equal(t, 4, weekly[1].FlashcardsStudied)
	assert.Equal(t, 3, weekly[6].FlashcardsCreated)
	assert.Equal(t, 0, weekly[0].NotesCreated)
}

func TestTotals(t *testing.T) {
	assert.Equal(t, models.TotalStats{}, stats.Totals(nil))

	total := stats.Totals([]models.DailyStats{
		day("2024-03-14", 1, 2, 3),
		day("2024-01-01", 4, 5, 6),
	})
	assert.Equal(t, models.TotalStats{TotalNotesCreated: 5, TotalFlashcardsStudied: 7, TotalFlashcardsCreated: 9}, total)
}

func TestPrune(t *testing.T) {
	cutoff := clock.ShiftDays("2024-03-15", -stats.RetentionDays)
	kept := stats.Prune([]models.DailyStats{
		day("2023-12-15", 1, 0, 0),
		day(cutoff, 1, 0, 0),
		day("2024-03-15", 1, 0, 0),
	}, cutoff)

	require.Len(t, kept, 2)
	assert.Equal(t, cutoff, kept[0].Date)
}

func TestCalculateStreaks_TodayGrace(t *testing.T) {
	today := "2024-03-15"

	yesterdayOnly := []models.DailyStats{day("2024-03-14", 1, 1, 0)}
	s := stats.CalculateStreaks(yesterdayOnly, today)
	assert.Equal(t, 1, s.NoteStreak)
	assert.Equal(t, 1, s.FlashcardStudyStreak)

	s = stats.CalculateStreaks([]models.DailyStats{day("2024-03-13", 1, 1, 0)}, today)
	assert.Equal(t, models.Streaks{}, s)

	s = stats.CalculateStreaks(nil, today)
	assert.Equal(t, models.Streaks{}, s)
}

func TestCalculateStreaks_Run(t *testing.T) {
	daily := []models.DailyStats{
		day("2024-03-15", 2, 0, 0),
		day("2024-03-14", 1, 3, 0),
		day("2024-03-13", 1, 1, 0),
		day("2024-03-12", 0, 1, 0),
		day("2024-03-11", 5, 1, 0),
	}
	s := stats.CalculateStreaks(daily, "2024-03-15")
	assert.Equal(t, 3, s.NoteStreak)
	assert.Equal(t, 4, s.FlashcardStudyStreak)
}

func TestCalculateStreaks_Capped(t *testing.T) {
	var daily []models.DailyStats
	for i := 0; i < 400; i++ {
		daily = append(daily, day(clock.ShiftDays("2024-03-15", -i), 1, 1, 0))
	}
	s := stats.CalculateStreaks(daily, "2024-03-15")
	assert.Equal(t, stats.MaxStreakDays, s.NoteStreak)
}

func TestStreaksFromData_NoGrace(t *testing.T) {
	daily := []models.DailyStats{
		day("2024-03-14", 1, 1, 0),
		day("2024-03-15", 0, 2, 0),
		day("2024-03-13", 1, 1, 0),
	}
	s := stats.StreaksFromData(daily)
	assert.Equal(t, 0, s.NoteStreak)
	assert.Equal(t, 3, s.FlashcardStudyStreak)

	// The stored-stats variant forgives the empty today.
	assert.Equal(t, 2, stats.CalculateStreaks(daily, "2024-03-15").NoteStreak)
}

func TestActualFromSource(t *testing.T) {
	cal := calendar()
	notes := []models.Note{
		{ID: "n1", CreatedAt: now},
		{ID: "n2", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "n3", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "old", CreatedAt: now.AddDate(0, 0, -120)},
	}
	reviewed := now.AddDate(0, 0, -1)
	cards := []models.Flashcard{
		{ID: "c1", CreatedAt: now.AddDate(0, 0, -3), LastReviewed: &reviewed},
		{ID: "c2", CreatedAt: now.AddDate(0, 0, -89)},
	}

	actual := stats.ActualFromSource(cal, notes, cards)
	require.Len(t, actual, stats.RetentionDays)
	assert.Equal(t, "2024-03-15", actual[89].Date)
	assert.Equal(t, 2, actual[89].NotesCreated)
	assert.Equal(t, 1, actual[86].NotesCreated)
	assert.Equal(t, 1, actual[86].FlashcardsCreated)
	assert.Equal(t, 1, actual[0].FlashcardsCreated)
	for _, d := range actual {
		assert.Zero(t, d.FlashcardsStudied)
	}

	studied := stats.StudiedFromSource(cal, cards)
	require.Len(t, studied, stats.RetentionDays)
	assert.Equal(t, 1, studied[88].FlashcardsStudied)

	merged := stats.MergeStudied(actual, studied)
	assert.Equal(t, 1, merged[88].FlashcardsStudied)
	assert.Equal(t, 2, merged[89].NotesCreated)
}

func TestVerification_EmptyUser(t *testing.T) {
	cal := calendar()
	actual := stats.ActualFromSource(cal, nil, nil)

	assert.False(t, stats.NeedsRepair(nil, actual))
	assert.Empty(t, stats.FindDiscrepancies(nil, actual))
	assert.Empty(t, stats.Repair(nil, actual))
}

func TestRepair_PreservesStudied(t *testing.T) {
	cal := calendar()
	notes := []models.Note{{ID: "n1", CreatedAt: now}, {ID: "n2", CreatedAt: now.AddDate(0, 0, -5)}}
	cards := []models.Flashcard{{ID: "c1", CreatedAt: now.AddDate(0, 0, -5)}}
	actual := stats.ActualFromSource(cal, notes, cards)

	created := now.AddDate(0, 0, -200)
	saved := []models.DailyStats{
		{Date: "2023-08-01", NotesCreated: 3, FlashcardsStudied: 11, CreatedAt: created},
		{Date: "2024-03-15", NotesCreated: 4, FlashcardsStudied: 7, CreatedAt: created},
		{Date: "2024-03-12", FlashcardsStudied: 5, CreatedAt: created},
	}
	before := map[string]int{}
	for _, d := range saved {
		before[d.Date] = d.FlashcardsStudied
	}

	require.True(t, stats.NeedsRepair(saved, actual))
	repaired := stats.Repair(saved, actual)

	for _, d := range repaired {
		if studied, ok := before[d.Date]; ok {
			assert.Equal(t, studied, d.FlashcardsStudied, d.Date)
		} else {
			assert.Zero(t, d.FlashcardsStudied, d.Date)
		}
	}

	got := map[string]models.DailyStats{}
	for _, d := range repaired {
		got[d.Date] = d
	}
	assert.Equal(t, 1, got["2024-03-15"].NotesCreated)
	assert.Equal(t, created, got["2024-03-15"].CreatedAt)
	assert.Equal(t, 1, got["2024-03-10"].NotesCreated)
	assert.Equal(t, 1, got["2024-03-10"].FlashcardsCreated)
	assert.Equal(t, 3, got["2023-08-01"].NotesCreated)
	assert.Contains(t, got, "2024-03-12")
	assert.Len(t, repaired, 4)

	for i := 1; i < len(repaired); i++ {
		assert.Less(t, repaired[i-1].Date, repaired[i].Date)
	}

	// A second pass over the repaired data finds nothing to repair.
	assert.False(t, stats.NeedsRepair(repaired, actual))
	for _, d := range stats.FindDiscrepancies(repaired, actual) {
		assert.False(t, d.Repairable)
	}
}

func TestFindDiscrepancies(t *testing.T) {
	calculated := []models.DailyStats{
		day("2024-03-13", 1, 0, 0),
		day("2024-03-14", 2, 1, 1),
		day("2024-03-15", 0, 2, 0),
	}
	saved := []models.DailyStats{
		day("2024-03-14", 1, 4, 1),
		day("2024-03-15", 0, 2, 0),
	}

	found := stats.FindDiscrepancies(saved, calculated)
	require.Len(t, found, 2)

	missing := found[0]
	assert.Equal(t, models.DiscrepancyMissing, missing.Type)
	assert.Nil(t, missing.Saved)
	assert.True(t, missing.Repairable)

	mismatch := found[1]
	assert.Equal(t, models.DiscrepancyMismatch, mismatch.Type)
	assert.True(t, mismatch.Repairable)
	assert.Equal(t, []string{
		"notes: 1 → 2 (will be repaired)",
		"studied: 4 vs 1 (info only - NOT repaired)",
	}, mismatch.Differences)

	studiedOnly := stats.FindDiscrepancies([]models.DailyStats{day("2024-03-14", 2, 4, 1)}, calculated[1:2])
	require.Len(t, studiedOnly, 1)
	assert.False(t, studiedOnly[0].Repairable)
	assert.Equal(t, 0, models.RepairResult{Discrepancies: studiedOnly}.RepairableCount())
}

func TestIncrement(t *testing.T) {
	daily, d := stats.Increment(nil, "2024-03-15", now, func(d *models.DailyStats) { d.NotesCreated++ })
	require.Len(t, daily, 1)
	assert.Equal(t, 1, d.NotesCreated)
	assert.Equal(t, now, d.CreatedAt)

	daily, d = stats.Increment(daily, "2024-03-15", now.Add(time.Hour), func(d *models.DailyStats) { d.FlashcardsStudied += 3 })
	require.Len(t, daily, 1)
	assert.Equal(t, 1, d.NotesCreated)
	assert.Equal(t, 3, d.FlashcardsStudied)
	assert.Equal(t, now, d.CreatedAt)
}
