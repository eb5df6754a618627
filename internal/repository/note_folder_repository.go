package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// NoteFolderRepository handles note folder data access. Returned folders carry a live NoteCount.
type NoteFolderRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]models.NoteFolder, error)
	FindByID(ctx context.Context, id string) (*models.NoteFolder, error)
	Create(ctx context.Context, folder models.NoteFolder) error
	Update(ctx context.Context, folder models.NoteFolder) error
	Delete(ctx context.Context, id string) (bool, error)
}
