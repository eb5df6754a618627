package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

type noteFolderRepository struct {
	db *sqlx.DB
}

// NewNoteFolderRepository creates a new NoteFolderRepository implementation
func NewNoteFolderRepository(db *sqlx.DB) repository.NoteFolderRepository {
	return &noteFolderRepository{db: db}
}

func (r *noteFolderRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.NoteFolder, error) {
	folders := []models.NoteFolder{}
	q := sqlBuilder.Select(
		"nf.id", "nf.user_id", "nf.name", "nf.description", "nf.color", "nf.created_at", "nf.updated_at",
		"(SELECT COUNT(*) FROM notes n WHERE n.folder_id = nf.id) AS note_count",
	).From("note_folders nf").Where(where).OrderBy("nf.created_at ASC", "nf.id ASC")
	if err := selectAll(ctx, r.db, &folders, q); err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *noteFolderRepository) FindByUserID(ctx context.Context, userID string) ([]models.NoteFolder, error) {
	log := logger.FromContext(ctx).WithPrefix("folder_repo")
	log.Debug("listing folders: user_id=%s", userID)

	folders, err := r.list(ctx, squirrel.Eq{"nf.user_id": userID})
	if err != nil {
		log.Error("failed to list folders: %v", err)
	}
	return folders, err
}

func (r *noteFolderRepository) FindByID(ctx context.Context, id string) (*models.NoteFolder, error) {
	log := logger.FromContext(ctx).WithPrefix("folder_repo")

	folders, err := r.list(ctx, squirrel.Eq{"nf.id": id})
	if err != nil {
		log.Error("failed to get folder: %v", err)
		return nil, err
	}
	if len(folders) == 0 {
		log.Debug("folder not found: id=%s", id)
		return nil, nil
	}
	return &folders[0], nil
}

func (r *noteFolderRepository) Create(ctx context.Context, f models.NoteFolder) error {
	log := logger.FromContext(ctx).WithPrefix("folder_repo")
	log.Debug("inserting folder: id=%s, name=%s", f.ID, f.Name)

	q := sqlBuilder.Insert("note_folders").
		Columns("id", "user_id", "name", "description", "color", "created_at", "updated_at").
		Values(f.ID, f.UserID, f.Name, f.Description, f.Color, utc(f.CreatedAt), utc(f.UpdatedAt))
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to insert folder: %v", err)
		return err
	}
	return nil
}

func (r *noteFolderRepository) Update(ctx context.Context, f models.NoteFolder) error {
	log := logger.FromContext(ctx).WithPrefix("folder_repo")
	log.Debug("updating folder: id=%s", f.ID)

	q := sqlBuilder.Update("note_folders").
		Set("name", f.Name).
		Set("description", f.Description).
		Set("color", f.Color).
		Set("updated_at", utc(f.UpdatedAt)).
		Where(squirrel.Eq{"id": f.ID})
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to update folder: %v", err)
		return err
	}
	return nil
}

// Delete removes the folder; its notes stay and lose their folder reference.
func (r *noteFolderRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("folder_repo")
	log.Debug("deleting folder: id=%s", id)

	var n int64
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		detach := sqlBuilder.Update("notes").Set("folder_id", nil).Where(squirrel.Eq{"folder_id": id})
		if _, err := exec(ctx, tx, detach); err != nil {
			return err
		}
		var err error
		n, err = exec(ctx, tx, sqlBuilder.Delete("note_folders").Where(squirrel.Eq{"id": id}))
		return err
	})
	if err != nil {
		log.Error("failed to delete folder: %v", err)
		return false, err
	}
	return n > 0, nil
}
