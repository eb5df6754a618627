package repository

import (
	"context"

	"github.com/vytor/neurobank/internal/models"
)

// UserRepository handles user accounts
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user models.User) error
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
}
