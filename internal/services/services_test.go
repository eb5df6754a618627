package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/neurobank/internal/clock"
	apperrors "github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/flashcard"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
	"github.com/vytor/neurobank/internal/repository/sqlite"
	"github.com/vytor/neurobank/internal/services"
	"github.com/vytor/neurobank/internal/testutil"
	"github.com/vytor/neurobank/internal/testutil/mocks"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type ServicesTestSuite struct {
	suite.Suite
	db    *sqlx.DB
	ctx   context.Context
	clock *clock.Manual
	user  models.User

	notes repository.NoteRepository
	cards repository.FlashcardRepository

	generator  *mocks.MockGenerator
	stats      services.StatsService
	flashcards services.FlashcardService
	noteSvc    services.NoteService
	decks      services.DeckService
	folders    services.NoteFolderService
	tasks      services.TaskService
	users      services.UserService
}

func (s *ServicesTestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.ctx = context.Background()
	s.clock = clock.NewManual(t0)
	s.user = testutil.InsertUser(s.T(), s.db, "ada@example.com")

	userRepo := sqlite.NewUserRepository(s.db)
	s.notes = sqlite.NewNoteRepository(s.db)
	s.cards = sqlite.NewFlashcardRepository(s.db)
	s.generator = &mocks.MockGenerator{}

	cal := clock.NewCalendar(s.clock, time.UTC)
	s.stats = services.NewStatsService(sqlite.NewStatsRepository(s.db), s.notes, s.cards, userRepo, cal)
	s.flashcards = services.NewFlashcardService(s.cards, userRepo, s.stats, s.clock)
	s.noteSvc = services.NewNoteService(s.notes, userRepo, s.stats, s.flashcards, s.generator, s.clock)
	s.decks = services.NewDeckService(sqlite.NewDeckRepository(s.db), userRepo, s.clock)
	s.folders = services.NewNoteFolderService(sqlite.NewNoteFolderRepository(s.db), userRepo, s.clock)
	s.tasks = services.NewTaskService(sqlite.NewTaskRepository(s.db), userRepo, s.clock)
	s.users = services.NewUserService(userRepo, s.clock, 4)
}

func (s *ServicesTestSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ServicesTestSuite) newCard(question string) *models.Flashcard {
	card, err := s.flashcards.CreateFlashcard(s.ctx, s.user.ID, models.NewFlashcard{Question: question, Answer: "42"})
	s.Require().NoError(err)
	return card
}

// insertNote stores a note without notifying the aggregator, as an import would.
func (s *ServicesTestSuite) insertNote(createdAt time.Time) {
	s.Require().NoError(s.notes.Create(s.ctx, models.Note{
		ID:          uuid.NewString(),
		UserID:      s.user.ID,
		Title:       "imported",
		ProcessType: models.ProcessNone,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}))
}

func (s *ServicesTestSuite) TestStats_NewUserHasZeroHistory() {
	weekly, err := s.stats.GetWeeklyStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(weekly, 7)
	s.Equal("2024-03-04", weekly[0].Date)
	s.Equal("2024-03-10", weekly[6].Date)
	for _, d := range weekly {
		s.True(d.IsZero())
	}

	total, err := s.stats.GetTotalStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(models.TotalStats{}, total)

	result, err := s.stats.VerifyAndRepairStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.False(result.WasRepaired)
	s.Empty(result.Discrepancies)
}

func (s *ServicesTestSuite) TestStats_UnknownUser() {
	_, err := s.stats.GetUserStats(s.ctx, "nobody")
	s.True(apperrors.IsNotFound(err))

	_, err = s.stats.GetCalculatedStats(s.ctx, "nobody")
	s.True(apperrors.IsNotFound(err))
}

func (s *ServicesTestSuite) TestStats_RecordRejectsNegativeCount() {
	_, err := s.stats.RecordFlashcardStudied(s.ctx, s.user.ID, -1)
	s.True(apperrors.IsValidation(err))
}

func (s *ServicesTestSuite) TestStats_ConcurrentRecordsAreNotLost() {
	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.stats.RecordFlashcardStudied(s.ctx, s.user.ID, 1)
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.stats.RecordNoteCreated(s.ctx, s.user.ID)
			s.NoError(err)
		}()
	}
	wg.Wait()

	today, err := s.stats.GetTodayStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(n, today.FlashcardsStudied)
	s.Equal(n, today.NotesCreated)
}

func (s *ServicesTestSuite) TestStats_StreakGraceAcrossMidnight() {
	s.clock.Set(t0.AddDate(0, 0, -1))
	_, err := s.stats.RecordNoteCreated(s.ctx, s.user.ID)
	s.Require().NoError(err)

	s.clock.Set(t0)
	streaks, err := s.stats.CalculateStreaks(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(1, streaks.NoteStreak)
	s.Equal(0, streaks.FlashcardStudyStreak)

	s.clock.Set(t0.AddDate(0, 0, 1))
	streaks, err = s.stats.CalculateStreaks(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(0, streaks.NoteStreak)
}

func (s *ServicesTestSuite) TestStats_Dashboard() {
	s.newCard("q1")
	_, err := s.stats.RecordNoteCreated(s.ctx, s.user.ID)
	s.Require().NoError(err)

	dash, err := s.stats.GetDashboard(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(dash.Weekly, 7)
	s.Equal(1, dash.Total.TotalFlashcardsCreated)
	s.Equal(1, dash.Today.NotesCreated)
	s.Equal(1, dash.Streaks.NoteStreak)
}

func (s *ServicesTestSuite) TestStats_RepairIsIdempotentAndKeepsStudied() {
	s.insertNote(t0.AddDate(0, 0, -2))
	s.clock.Set(t0.AddDate(0, 0, -2))
	_, err := s.stats.RecordFlashcardStudied(s.ctx, s.user.ID, 3)
	s.Require().NoError(err)
	s.clock.Set(t0)

	first, err := s.stats.VerifyAndRepairStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.True(first.WasRepaired)
	s.Equal(1, first.RepairableCount())

	us, err := s.stats.GetUserStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	day, ok := us.Day("2024-03-08")
	s.Require().True(ok)
	s.Equal(1, day.NotesCreated)
	s.Equal(3, day.FlashcardsStudied)

	second, err := s.stats.VerifyAndRepairStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.False(second.WasRepaired)
	s.Zero(second.RepairableCount())
}

func (s *ServicesTestSuite) TestStats_GetVerifiedStatsReturnsRepairedRecord() {
	s.insertNote(t0)

	verified, err := s.stats.GetVerifiedStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.True(verified.WasRepaired)
	day, ok := verified.Stats.Day("2024-03-10")
	s.Require().True(ok)
	s.Equal(1, day.NotesCreated)
}

func (s *ServicesTestSuite) TestStats_CalculatedStats() {
	card := s.newCard("q1")
	_, err := s.flashcards.ReviewFlashcard(s.ctx, card.ID, "easy")
	s.Require().NoError(err)

	calc, err := s.stats.GetCalculatedStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal("calculated", calc.Source)
	s.Len(calc.Weekly, 7)
	s.Equal(1, calc.Today.FlashcardsCreated)
	s.Equal(1, calc.Today.FlashcardsStudied)
	s.Equal(1, calc.Streaks.FlashcardStudyStreak)
}

func (s *ServicesTestSuite) TestStats_CleanOldStats() {
	s.clock.Set(t0.AddDate(0, 0, -120))
	_, err := s.stats.RecordNoteCreated(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.clock.Set(t0)
	_, err = s.stats.RecordNoteCreated(s.ctx, s.user.ID)
	s.Require().NoError(err)

	us, err := s.stats.CleanOldStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(us.DailyStats, 1)
	s.Equal("2024-03-10", us.DailyStats[0].Date)
}

func (s *ServicesTestSuite) TestFlashcard_EasyTwiceScenario() {
	card := s.newCard("capital of France")
	s.Equal(models.StatusRemaining, card.Status)
	s.Zero(card.ReviewCount)

	reviewed, err := s.flashcards.ReviewFlashcard(s.ctx, card.ID, "easy")
	s.Require().NoError(err)
	s.Equal(t0.AddDate(0, 0, 1), reviewed.NextReviewDate.UTC())
	s.Equal(1, reviewed.EasyCount)
	s.Equal(models.StatusCompleted, reviewed.Status)

	s.clock.Set(t0.AddDate(0, 0, 1))
	reviewed, err = s.flashcards.ReviewFlashcard(s.ctx, card.ID, "easy")
	s.Require().NoError(err)
	s.Equal(t0.AddDate(0, 0, 3), reviewed.NextReviewDate.UTC())
	s.Equal(2, reviewed.EasyCount)

	today, err := s.stats.GetTodayStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(1, today.FlashcardsStudied)
}

func (s *ServicesTestSuite) TestFlashcard_LazyTransitionOnList() {
	card := s.newCard("q1")
	_, err := s.flashcards.ReviewFlashcard(s.ctx, card.ID, "easy")
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)
	cards, err := s.flashcards.GetUserFlashcards(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal(models.StatusRemaining, cards[0].Status)

	stored, err := s.cards.FindByID(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRemaining, stored.Status)
}

func (s *ServicesTestSuite) TestFlashcard_CustomReviewDoesNotCountAsStudied() {
	card := s.newCard("q1")
	reviewed, err := s.flashcards.CustomReview(s.ctx, card.ID, 2, flashcard.UnitMonths)
	s.Require().NoError(err)
	s.Equal(t0.AddDate(0, 0, 60), reviewed.NextReviewDate.UTC())
	s.Equal(models.DifficultyCustom, reviewed.Difficulty)

	today, err := s.stats.GetTodayStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Zero(today.FlashcardsStudied)
	s.Equal(1, today.FlashcardsCreated)
}

func (s *ServicesTestSuite) TestFlashcard_ErrorsAndReset() {
	_, err := s.flashcards.ReviewFlashcard(s.ctx, "missing", "easy")
	s.True(apperrors.IsNotFound(err))

	card := s.newCard("q1")
	_, err = s.flashcards.ReviewFlashcard(s.ctx, card.ID, "custom")
	s.True(apperrors.IsValidation(err))

	_, err = s.flashcards.ReviewFlashcard(s.ctx, card.ID, "hard")
	s.Require().NoError(err)
	reset, err := s.flashcards.ResetToRemaining(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRemaining, reset.Status)
	s.Nil(reset.NextReviewDate)

	s.Require().NoError(s.flashcards.DeleteFlashcard(s.ctx, card.ID))
	s.True(apperrors.IsNotFound(s.flashcards.DeleteFlashcard(s.ctx, card.ID)))
}

func (s *ServicesTestSuite) TestFlashcard_UpdateAndDeck() {
	deck, err := s.decks.CreateDeck(s.ctx, s.user.ID, models.Collection{Name: "Geography"})
	s.Require().NoError(err)
	card := s.newCard("q1")

	q := "updated question"
	updated, err := s.flashcards.UpdateFlashcard(s.ctx, card.ID, models.FlashcardUpdate{Question: &q, DeckID: &deck.ID})
	s.Require().NoError(err)
	s.Equal(q, updated.Question)

	inDeck, err := s.flashcards.GetDeckFlashcards(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Len(inDeck, 1)

	loaded, err := s.decks.GetDeck(s.ctx, deck.ID)
	s.Require().NoError(err)
	s.Equal(1, loaded.FlashcardCount)

	s.Require().NoError(s.decks.DeleteDeck(s.ctx, deck.ID))
	kept, err := s.flashcards.GetFlashcard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Nil(kept.DeckID)
}

func (s *ServicesTestSuite) TestNote_CreateRecordsStats() {
	folder, err := s.folders.CreateFolder(s.ctx, s.user.ID, models.Collection{Name: "Biology"})
	s.Require().NoError(err)

	note, err := s.noteSvc.CreateNote(s.ctx, s.user.ID, models.NewNote{Title: "Cells", Content: "mitochondria", FolderID: &folder.ID})
	s.Require().NoError(err)
	s.Equal(models.ProcessNone, note.ProcessType)

	today, err := s.stats.GetTodayStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(1, today.NotesCreated)

	inFolder, err := s.noteSvc.GetFolderNotes(s.ctx, folder.ID)
	s.Require().NoError(err)
	s.Len(inFolder, 1)

	s.Require().NoError(s.folders.DeleteFolder(s.ctx, folder.ID))
	kept, err := s.noteSvc.GetNote(s.ctx, note.ID)
	s.Require().NoError(err)
	s.Nil(kept.FolderID)
}

func (s *ServicesTestSuite) TestNote_ProcessFailurePersistsNothing() {
	s.generator.On("ProcessText", mock.Anything, "raw", models.ProcessSummarize).
		Return("", apperrors.NewUpstreamError("text generation failed", nil))

	_, err := s.noteSvc.CreateNote(s.ctx, s.user.ID, models.NewNote{Title: "t", Content: "raw", ProcessType: models.ProcessSummarize})
	s.True(apperrors.HasCode(err, apperrors.ErrCodeUpstream))

	notes, err := s.noteSvc.GetUserNotes(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Empty(notes)
}

func (s *ServicesTestSuite) TestNote_ProcessNote() {
	note, err := s.noteSvc.CreateNote(s.ctx, s.user.ID, models.NewNote{Title: "t", Content: "long text"})
	s.Require().NoError(err)
	s.generator.On("ProcessText", mock.Anything, "long text", models.ProcessExpand).Return("longer text", nil)

	processed, err := s.noteSvc.ProcessNote(s.ctx, note.ID, models.ProcessExpand)
	s.Require().NoError(err)
	s.Equal("longer text", processed.ProcessedContent)
	s.Equal(models.ProcessExpand, processed.ProcessType)

	_, err = s.noteSvc.ProcessNote(s.ctx, note.ID, models.ProcessNone)
	s.True(apperrors.IsValidation(err))
}

func (s *ServicesTestSuite) TestNote_GenerateFlashcards() {
	note, err := s.noteSvc.CreateNote(s.ctx, s.user.ID, models.NewNote{Title: "Go", Content: "goroutines"})
	s.Require().NoError(err)
	s.generator.On("GenerateFlashcards", mock.Anything, mock.Anything).Return([]models.GeneratedFlashcard{
		{Question: "What is a goroutine?", Answer: "A lightweight thread", Categories: []string{"go"}},
		{Question: "Keyword to start one?", Answer: "go"},
	}, nil)

	cards, err := s.noteSvc.GenerateFlashcards(s.ctx, s.user.ID, []string{note.ID}, nil)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Require().NotNil(cards[0].SourceNoteID)
	s.Equal(note.ID, *cards[0].SourceNoteID)

	today, err := s.stats.GetTodayStats(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(2, today.FlashcardsCreated)

	_, err = s.noteSvc.GenerateFlashcards(s.ctx, s.user.ID, []string{"missing"}, nil)
	s.True(apperrors.IsNotFound(err))
}

func (s *ServicesTestSuite) TestNote_GenerateFlashcardsRejectsForeignNotes() {
	mine, err := s.noteSvc.CreateNote(s.ctx, s.user.ID, models.NewNote{Title: "Go", Content: "channels"})
	s.Require().NoError(err)
	other := testutil.InsertUser(s.T(), s.db, "other@example.com")
	theirs, err := s.noteSvc.CreateNote(s.ctx, other.ID, models.NewNote{Title: "Rust", Content: "ownership"})
	s.Require().NoError(err)

	_, err = s.noteSvc.GenerateFlashcards(s.ctx, s.user.ID, []string{mine.ID, theirs.ID}, nil)
	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))
	s.Contains(err.Error(), theirs.ID)
	s.NotContains(err.Error(), mine.ID)
	s.generator.AssertNotCalled(s.T(), "GenerateFlashcards", mock.Anything, mock.Anything)
}

func (s *ServicesTestSuite) TestTask_CompletionTransitions() {
	task, err := s.tasks.CreateTask(s.ctx, s.user.ID, "read chapter 3", "", "", nil)
	s.Require().NoError(err)
	s.Equal(models.PriorityMedium, task.Priority)
	s.Equal(models.TaskPending, task.Status)

	done := models.TaskCompleted
	task, err = s.tasks.UpdateTask(s.ctx, task.ID, models.TaskUpdate{Status: &done})
	s.Require().NoError(err)
	s.Require().NotNil(task.CompletedAt)

	pending := models.TaskPending
	task, err = s.tasks.UpdateTask(s.ctx, task.ID, models.TaskUpdate{Status: &pending})
	s.Require().NoError(err)
	s.Nil(task.CompletedAt)

	bad := models.TaskPriority("urgent")
	_, err = s.tasks.UpdateTask(s.ctx, task.ID, models.TaskUpdate{Priority: &bad})
	s.True(apperrors.IsValidation(err))
}

func (s *ServicesTestSuite) TestUser_RegisterAndLogin() {
	user, err := s.users.Register(s.ctx, "Grace", "Hopper", "Grace@Example.com", "cobol-1959")
	s.Require().NoError(err)
	s.Equal("grace@example.com", user.Email)
	s.NotEqual("cobol-1959", user.PasswordHash)

	_, err = s.users.Register(s.ctx, "Other", "", "grace@example.com", "secret12")
	s.True(apperrors.HasCode(err, apperrors.ErrCodeConflict))

	logged, err := s.users.Login(s.ctx, "GRACE@example.com", "cobol-1959")
	s.Require().NoError(err)
	s.Equal(user.ID, logged.ID)

	_, err = s.users.Login(s.ctx, "grace@example.com", "wrong")
	s.True(apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))

	_, err = s.users.Register(s.ctx, "Short", "", "short@example.com", "abc")
	s.True(apperrors.IsValidation(err))
}

func (s *ServicesTestSuite) TestUser_DeleteCascades() {
	s.newCard("q1")
	s.Require().NoError(s.users.DeleteUser(s.ctx, s.user.ID))

	cards, err := s.cards.FindByUserID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Empty(cards)
	s.True(apperrors.IsNotFound(s.users.DeleteUser(s.ctx, s.user.ID)))
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}
