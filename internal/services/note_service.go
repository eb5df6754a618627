package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/neurobank/internal/ai"
	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/metrics"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// NoteService handles notes and the AI features built on them.
type NoteService interface {
	CreateNote(ctx context.Context, userID string, in models.NewNote) (*models.Note, error)
	GetUserNotes(ctx context.Context, userID string) ([]models.Note, error)
	GetFolderNotes(ctx context.Context, folderID string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ProcessNote(ctx context.Context, id string, mode models.ProcessType) (*models.Note, error)
	GenerateFlashcards(ctx context.Context, userID string, noteIDs []string, deckID *string) ([]models.Flashcard, error)
}

type noteService struct {
	repo       repository.NoteRepository
	users      repository.UserRepository
	stats      StatsService
	flashcards FlashcardService
	generator  ai.Generator
	clock      clock.Clock
}

// NewNoteService creates a new NoteService
func NewNoteService(
	repo repository.NoteRepository,
	users repository.UserRepository,
	stats StatsService,
	flashcards FlashcardService,
	generator ai.Generator,
	c clock.Clock,
) NoteService {
	if generator == nil {
		generator = ai.Unavailable{}
	}
	if c == nil {
		c = clock.System{}
	}
	return &noteService{repo: repo, users: users, stats: stats, flashcards: flashcards, generator: generator, clock: c}
}

func validMode(mode models.ProcessType) bool {
	return mode == models.ProcessSummarize || mode == models.ProcessExpand
}

func (s *noteService) process(ctx context.Context, content string, mode models.ProcessType) (string, error) {
	out, err := s.generator.ProcessText(ctx, content, mode)
	metrics.AIRequests.WithLabelValues("process_text", metrics.Result(err)).Inc()
	if err != nil {
		logger.FromContext(ctx).Error("text processing failed: mode=%s, err=%v", mode, err)
		if _, ok := errors.As(err); ok {
			return "", err
		}
		return "", errors.NewUpstreamError("text processing failed", err)
	}
	return out, nil
}

func (s *noteService) CreateNote(ctx context.Context, userID string, in models.NewNote) (*models.Note, error) {
	log := logger.FromContext(ctx)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	mode := in.ProcessType
	if mode == "" {
		mode = models.ProcessNone
	}
	if mode != models.ProcessNone && !validMode(mode) {
		return nil, errors.NewValidationError("process_type", "must be none, summarize or expand")
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	note := models.Note{
		ID:          uuid.NewString(),
		UserID:      userID,
		FolderID:    in.FolderID,
		Title:       title,
		Content:     in.Content,
		ProcessType: mode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mode != models.ProcessNone {
		processed, err := s.process(ctx, in.Content, mode)
		if err != nil {
			return nil, err
		}
		note.ProcessedContent = processed
	}

	if err := s.repo.Create(ctx, note); err != nil {
		log.Error("failed to create note: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created note: id=%s, user_id=%s", note.ID, userID)

	if _, err := s.stats.RecordNoteCreated(ctx, userID); err != nil {
		log.Warn("failed to record note creation: %v", err)
	}
	return &note, nil
}

func (s *noteService) GetUserNotes(ctx context.Context, userID string) ([]models.Note, error) {
	notes, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list notes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (s *noteService) GetFolderNotes(ctx context.Context, folderID string) ([]models.Note, error) {
	notes, err := s.repo.FindByFolderID(ctx, folderID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list folder notes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (s *noteService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load note: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if note == nil {
		return nil, errors.NewNotFoundError("note", id)
	}
	return note, nil
}

func (s *noteService) save(ctx context.Context, note *models.Note, now time.Time) (*models.Note, error) {
	note.UpdatedAt = now
	if err := s.repo.Update(ctx, *note); err != nil {
		logger.FromContext(ctx).Error("failed to update note: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return note, nil
}

func (s *noteService) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, errors.NewValidationError("title", "must not be empty")
		}
		note.Title = title
	}
	if upd.Content != nil {
		note.Content = *upd.Content
	}
	switch {
	case upd.ClearFolder:
		note.FolderID = nil
	case upd.FolderID != nil:
		note.FolderID = upd.FolderID
	}
	return s.save(ctx, note, s.clock.Now())
}

func (s *noteService) DeleteNote(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete note: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("note", id)
	}
	log.Info("deleted note: id=%s", id)
	return nil
}

func (s *noteService) ProcessNote(ctx context.Context, id string, mode models.ProcessType) (*models.Note, error) {
	if !validMode(mode) {
		return nil, errors.NewValidationError("process_type", "must be summarize or expand")
	}
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	processed, err := s.process(ctx, note.Content, mode)
	if err != nil {
		return nil, err
	}
	note.ProcessType = mode
	note.ProcessedContent = processed
	return s.save(ctx, note, s.clock.Now())
}

func (s *noteService) GenerateFlashcards(ctx context.Context, userID string, noteIDs []string, deckID *string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	if len(noteIDs) == 0 {
		return nil, errors.NewValidationError("note_ids", "at least one note is required")
	}

	notes, err := s.repo.FindByIDs(ctx, userID, noteIDs)
	if err != nil {
		log.Error("failed to load notes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if missing := missingNotes(noteIDs, notes); len(missing) > 0 {
		log.Warn("notes not found for generation: user_id=%s, ids=%v", userID, missing)
		return nil, errors.NewNotFoundError("notes", strings.Join(missing, ","))
	}

	generated, err := s.generator.GenerateFlashcards(ctx, notes)
	metrics.AIRequests.WithLabelValues("generate_flashcards", metrics.Result(err)).Inc()
	if err != nil {
		log.Error("flashcard generation failed: %v", err)
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewUpstreamError("flashcard generation failed", err)
	}
	if len(generated) == 0 {
		return nil, errors.NewUpstreamError("flashcard generation returned no cards", nil)
	}

	var source *string
	if len(notes) == 1 {
		source = &notes[0].ID
	}
	in := make([]models.NewFlashcard, 0, len(generated))
	for _, g := range generated {
		in = append(in, models.NewFlashcard{
			Question:     g.Question,
			Answer:       g.Answer,
			Categories:   g.Categories,
			DeckID:       deckID,
			SourceNoteID: source,
		})
	}
	log.Info("generated flashcards: user_id=%s, notes=%d, cards=%d", userID, len(notes), len(in))
	return s.flashcards.SaveFlashcards(ctx, userID, in)
}

// missingNotes returns the requested ids absent from found, in request order.
func missingNotes(ids []string, found []models.Note) []string {
	have := make(map[string]struct{}, len(found))
	for _, n := range found {
		have[n.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
