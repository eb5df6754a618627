package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// NoteFolderService organises notes into folders. Deleting a folder keeps its notes.
type NoteFolderService interface {
	CreateFolder(ctx context.Context, userID string, in models.Collection) (*models.NoteFolder, error)
	GetUserFolders(ctx context.Context, userID string) ([]models.NoteFolder, error)
	GetFolder(ctx context.Context, id string) (*models.NoteFolder, error)
	UpdateFolder(ctx context.Context, id string, in models.Collection) (*models.NoteFolder, error)
	DeleteFolder(ctx context.Context, id string) error
}

type noteFolderService struct {
	repo  repository.NoteFolderRepository
	users repository.UserRepository
	clock clock.Clock
}

// NewNoteFolderService creates a new NoteFolderService
func NewNoteFolderService(repo repository.NoteFolderRepository, users repository.UserRepository, c clock.Clock) NoteFolderService {
	if c == nil {
		c = clock.System{}
	}
	return &noteFolderService{repo: repo, users: users, clock: c}
}

func (s *noteFolderService) CreateFolder(ctx context.Context, userID string, in models.Collection) (*models.NoteFolder, error) {
	log := logger.FromContext(ctx)
	name, err := collectionName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	folder := models.NoteFolder{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, folder); err != nil {
		log.Error("failed to create folder: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created note folder: id=%s, user_id=%s", folder.ID, userID)
	return &folder, nil
}

func (s *noteFolderService) GetUserFolders(ctx context.Context, userID string) ([]models.NoteFolder, error) {
	folders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list folders: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if folders == nil {
		folders = []models.NoteFolder{}
	}
	return folders, nil
}

func (s *noteFolderService) GetFolder(ctx context.Context, id string) (*models.NoteFolder, error) {
	folder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load folder: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if folder == nil {
		return nil, errors.NewNotFoundError("note folder", id)
	}
	return folder, nil
}

func (s *noteFolderService) UpdateFolder(ctx context.Context, id string, in models.Collection) (*models.NoteFolder, error) {
	name, err := collectionName(in.Name)
	if err != nil {
		return nil, err
	}
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	folder.Name = name
	folder.Description = in.Description
	folder.Color = in.Color
	folder.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, *folder); err != nil {
		logger.FromContext(ctx).Error("failed to update folder: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return folder, nil
}

func (s *noteFolderService) DeleteFolder(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete folder: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("note folder", id)
	}
	log.Info("deleted note folder: id=%s", id)
	return nil
}
