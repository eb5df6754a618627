package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// NoteRepository handles note data access
type NoteRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]models.Note, error)
	FindByFolderID(ctx context.Context, folderID string) ([]models.Note, error)
	FindByID(ctx context.Context, id string) (*models.Note, error)
	FindByIDs(ctx context.Context, userID string, ids []string) ([]models.Note, error)
	Create(ctx context.Context, note models.Note) error
	Update(ctx context.Context, note models.Note) error
	Delete(ctx context.Context, id string) (bool, error)
}
