package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

var noteColumns = []string{
	"id", "user_id", "folder_id", "title", "content", "process_type", "processed_content",
	"created_at", "updated_at",
}

type noteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sqlx.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Note, error) {
	notes := []models.Note{}
	q := sqlBuilder.Select(noteColumns...).From("notes").Where(where).OrderBy("created_at DESC", "id ASC")
	if err := selectAll(ctx, r.db, &notes, q); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) FindByUserID(ctx context.Context, userID string) ([]models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("listing notes: user_id=%s", userID)

	notes, err := r.list(ctx, squirrel.Eq{"user_id": userID})
	if err != nil {
		log.Error("failed to list notes: %v", err)
	}
	return notes, err
}

func (r *noteRepository) FindByFolderID(ctx context.Context, folderID string) ([]models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("listing notes: folder_id=%s", folderID)

	notes, err := r.list(ctx, squirrel.Eq{"folder_id": folderID})
	if err != nil {
		log.Error("failed to list folder notes: %v", err)
	}
	return notes, err
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")

	notes, err := r.list(ctx, squirrel.Eq{"id": id})
	if err != nil {
		log.Error("failed to get note: %v", err)
		return nil, err
	}
	if len(notes) == 0 {
		log.Debug("note not found: id=%s", id)
		return nil, nil
	}
	return &notes[0], nil
}

func (r *noteRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("loading %d notes: user_id=%s", len(ids), userID)

	notes, err := r.list(ctx, squirrel.Eq{"user_id": userID, "id": ids})
	if err != nil {
		log.Error("failed to load notes: %v", err)
	}
	return notes, err
}

func (r *noteRepository) Create(ctx context.Context, n models.Note) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("inserting note: id=%s", n.ID)

	q := sqlBuilder.Insert("notes").Columns(noteColumns...).Values(
		n.ID, n.UserID, n.FolderID, n.Title, n.Content, string(n.ProcessType), n.ProcessedContent,
		utc(n.CreatedAt), utc(n.UpdatedAt),
	)
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to insert note: %v", err)
		return err
	}
	return nil
}

func (r *noteRepository) Update(ctx context.Context, n models.Note) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("updating note: id=%s", n.ID)

	q := sqlBuilder.Update("notes").
		Set("folder_id", n.FolderID).
		Set("title", n.Title).
		Set("content", n.Content).
		Set("process_type", string(n.ProcessType)).
		Set("processed_content", n.ProcessedContent).
		Set("updated_at", utc(n.UpdatedAt)).
		Where(squirrel.Eq{"id": n.ID})
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to update note: %v", err)
		return err
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("deleting note: id=%s", id)

	n, err := exec(ctx, r.db, sqlBuilder.Delete("notes").Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to delete note: %v", err)
		return false, err
	}
	return n > 0, nil
}
