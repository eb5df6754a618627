package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/neurobank/internal/clock"
	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

// TaskService manages a user's to-do list.
type TaskService interface {
	CreateTask(ctx context.Context, userID string, title, description string, priority models.TaskPriority, due *time.Time) (*models.Task, error)
	GetUserTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskService struct {
	repo  repository.TaskRepository
	users repository.UserRepository
	clock clock.Clock
}

// NewTaskService creates a new TaskService
func NewTaskService(repo repository.TaskRepository, users repository.UserRepository, c clock.Clock) TaskService {
	if c == nil {
		c = clock.System{}
	}
	return &taskService{repo: repo, users: users, clock: c}
}

func validPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}

func (s *taskService) CreateTask(ctx context.Context, userID string, title, description string, priority models.TaskPriority, due *time.Time) (*models.Task, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, errors.NewValidationError("priority", "must be low, medium or high")
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	task := models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      models.TaskPending,
		CreatedAt:   s.clock.Now(),
		DueDate:     due,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		log.Error("failed to create task: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created task: id=%s, user_id=%s", task.ID, userID)
	return &task, nil
}

func (s *taskService) GetUserTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tasks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load task: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if task == nil {
		return nil, errors.NewNotFoundError("task", id)
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, errors.NewValidationError("title", "must not be empty")
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		if !validPriority(*upd.Priority) {
			return nil, errors.NewValidationError("priority", "must be low, medium or high")
		}
		task.Priority = *upd.Priority
	}
	switch {
	case upd.ClearDueDate:
		task.DueDate = nil
	case upd.DueDate != nil:
		task.DueDate = upd.DueDate
	}
	if upd.Status != nil && *upd.Status != task.Status {
		switch *upd.Status {
		case models.TaskCompleted:
			now := s.clock.Now()
			task.CompletedAt = &now
		case models.TaskPending:
			task.CompletedAt = nil
		default:
			return nil, errors.NewValidationError("status", "must be pending or completed")
		}
		task.Status = *upd.Status
	}

	if err := s.repo.Update(ctx, *task); err != nil {
		logger.FromContext(ctx).Error("failed to update task: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete task: %v", err)
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("task", id)
	}
	log.Info("deleted task: id=%s", id)
	return nil
}
