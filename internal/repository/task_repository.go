package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// TaskRepository handles task data access
type TaskRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task models.Task) error
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id string) (bool, error)
}
