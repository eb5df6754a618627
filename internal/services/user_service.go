package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// UserService handles accounts and credential checks.
type UserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo  repository.UserRepository
	clock clock.Clock
	cost  int
}

// NewUserService creates a new UserService. A zero cost uses bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, c clock.Clock, cost int) UserService {
	if c == nil {
		c = clock.System{}
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &userService{repo: repo, clock: c, cost: cost}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", errors.NewValidationError("email", "must be a valid address")
	}
	return email, nil
}

func (s *userService) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.NewValidationError("password", "must be at least 6 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.NewInternalError(err)
	}
	return string(h), nil
}

// emailTaken reports whether email belongs to an account other than selfID.
func (s *userService) emailTaken(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up email: %v", err)
		return errors.NewInternalError(err)
	}
	if existing != nil && existing.ID != selfID {
		return errors.NewConflictError("email already registered")
	}
	return nil
}

func (s *userService) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	if err := s.emailTaken(ctx, email, ""); err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("registered user: id=%s", user.ID)
	return &user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, error) {
	log := logger.FromContext(ctx)
	invalid := errors.NewUnauthorizedError("invalid email or password")

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Debug("password mismatch: user_id=%s", user.ID)
			return nil, invalid
		}
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list users: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		user.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		user.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		if err := s.emailTaken(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if upd.Password != nil {
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, *user); err != nil {
		logger.FromContext(ctx).Error("failed to update user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete user: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("user", id)
	}
	log.Info("deleted user and owned records: id=%s", id)
	return nil
}
