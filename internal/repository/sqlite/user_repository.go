package sqlite

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

var userColumns = []string{"id", "first_name", "last_name", "email", "password_hash", "created_at"}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) one(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	var users []models.User
	if err := selectAll(ctx, r.db, &users, sqlBuilder.Select(userColumns...).From("users").Where(where)); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	u, err := r.one(ctx, squirrel.Eq{"id": id})
	if err != nil {
		log.Error("failed to get user: %v", err)
	}
	return u, err
}

// FindByEmail matches case-insensitively.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	u, err := r.one(ctx, squirrel.Eq{"email": strings.ToLower(email)})
	if err != nil {
		log.Error("failed to get user by email: %v", err)
	}
	return u, err
}

func (r *userRepository) Create(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting user: id=%s", u.ID)

	q := sqlBuilder.Insert("users").Columns(userColumns...).Values(
		u.ID, u.FirstName, u.LastName, strings.ToLower(u.Email), u.PasswordHash, utc(u.CreatedAt),
	)
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating user: id=%s", u.ID)

	q := sqlBuilder.Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("email", strings.ToLower(u.Email)).
		Set("password_hash", u.PasswordHash).
		Where(squirrel.Eq{"id": u.ID})
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to update user: %v", err)
		return err
	}
	return nil
}

// Delete removes the user; owned records go with it through foreign key cascades.
func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("deleting user: id=%s", id)

	n, err := exec(ctx, r.db, sqlBuilder.Delete("users").Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to delete user: %v", err)
		return false, err
	}
	return n > 0, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	users := []models.User{}
	if err := selectAll(ctx, r.db, &users, sqlBuilder.Select(userColumns...).From("users").OrderBy("created_at ASC")); err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	log.Debug("listed %d users", len(users))
	return users, nil
}
