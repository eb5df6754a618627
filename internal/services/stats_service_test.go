package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/neurobank/internal/clock"
	apperrors "github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/services"
	"github.com/vytor/neurobank/internal/testutil/mocks"
)

type statsMocks struct {
	stats *mocks.MockStatsRepository
	notes *mocks.MockNoteRepository
	cards *mocks.MockFlashcardRepository
	users *mocks.MockUserRepository
}

func newMockedStatsService() (services.StatsService, statsMocks) {
	m := statsMocks{
		stats: &mocks.MockStatsRepository{},
		notes: &mocks.MockNoteRepository{},
		cards: &mocks.MockFlashcardRepository{},
		users: &mocks.MockUserRepository{},
	}
	cal := clock.NewCalendar(clock.NewManual(t0), time.UTC)
	return services.NewStatsService(m.stats, m.notes, m.cards, m.users, cal), m
}

func TestStatsService_StorageErrorIsInternal(t *testing.T) {
	svc, m := newMockedStatsService()
	m.stats.On("FindByUserID", mock.Anything, "u1").Return(nil, fmt.Errorf("disk I/O error"))

	_, err := svc.GetTodayStats(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestStatsService_LazyCreateOnFirstRead(t *testing.T) {
	svc, m := newMockedStatsService()
	m.stats.On("FindByUserID", mock.Anything, "u1").Return(nil, nil)
	m.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	m.stats.On("Create", mock.Anything, mock.MatchedBy(func(us models.UserStatistics) bool {
		return us.UserID == "u1" && len(us.DailyStats) == 0
	})).Return(nil)

	us, err := svc.GetUserStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", us.UserID)
	assert.NotEmpty(t, us.ID)
	m.stats.AssertExpectations(t)
}

func TestStatsService_RepairWriteFailureIsReported(t *testing.T) {
	svc, m := newMockedStatsService()
	ctx := context.Background()

	m.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	m.notes.On("FindByUserID", mock.Anything, "u1").Return([]models.Note{
		{ID: "n1", UserID: "u1", CreatedAt: t0},
	}, nil)
	m.cards.On("FindByUserID", mock.Anything, "u1").Return([]models.Flashcard{}, nil)
	m.stats.On("FindByUserID", mock.Anything, "u1").Return(&models.UserStatistics{ID: "s1", UserID: "u1"}, nil)
	m.stats.On("Update", mock.Anything, mock.Anything).Return(fmt.Errorf("database is locked"))

	result, err := svc.VerifyAndRepairStats(ctx, "u1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestStatsService_SourceFailureAborts(t *testing.T) {
	svc, m := newMockedStatsService()

	m.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	m.notes.On("FindByUserID", mock.Anything, "u1").Return(nil, fmt.Errorf("no such table: notes"))
	m.cards.On("FindByUserID", mock.Anything, "u1").Return([]models.Flashcard{}, nil).Maybe()

	_, err := svc.CalculateActualStats(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
	m.stats.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStatsService_StudiedFromSourceSkipsNotes(t *testing.T) {
	svc, m := newMockedStatsService()
	reviewed := t0.Add(-time.Hour)

	m.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	m.cards.On("FindByUserID", mock.Anything, "u1").Return([]models.Flashcard{
		{ID: "c1", UserID: "u1", CreatedAt: t0.AddDate(0, 0, -5), LastReviewed: &reviewed},
	}, nil)

	days, err := svc.CalculateFlashcardsStudiedFromSource(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, days)
	assert.Equal(t, "2024-03-10", days[len(days)-1].Date)
	assert.Equal(t, 1, days[len(days)-1].FlashcardsStudied)
	m.notes.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestStatsService_VerifiedStatsMatchRepairedRecord(t *testing.T) {
	svc, m := newMockedStatsService()

	m.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	m.notes.On("FindByUserID", mock.Anything, "u1").Return([]models.Note{
		{ID: "n1", UserID: "u1", CreatedAt: t0},
	}, nil)
	m.cards.On("FindByUserID", mock.Anything, "u1").Return([]models.Flashcard{}, nil)
	m.stats.On("FindByUserID", mock.Anything, "u1").Return(&models.UserStatistics{
		ID: "s1", UserID: "u1",
		DailyStats: []models.DailyStats{{Date: "2024-03-10", FlashcardsStudied: 3}},
	}, nil).Once()
	m.stats.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := svc.GetVerifiedStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, res.WasRepaired)
	require.NotNil(t, res.Stats)
	day, ok := res.Stats.Day("2024-03-10")
	require.True(t, ok)
	assert.Equal(t, 1, day.NotesCreated)
	assert.Equal(t, 3, day.FlashcardsStudied)
	m.stats.AssertExpectations(t)
}
