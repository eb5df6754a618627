package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/repository"
)

var taskColumns = []string{
	"id", "user_id", "title", "description", "priority", "status", "created_at", "completed_at", "due_date",
}

type taskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository implementation
func NewTaskRepository(db *sqlx.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Task, error) {
	tasks := []models.Task{}
	q := sqlBuilder.Select(taskColumns...).From("tasks").Where(where).OrderBy("created_at DESC", "id ASC")
	if err := selectAll(ctx, r.db, &tasks, q); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) FindByUserID(ctx context.Context, userID string) ([]models.Task, error) {
	log := logger.FromContext(ctx).WithPrefix("task_repo")
	log.Debug("listing tasks: user_id=%s", userID)

	tasks, err := r.list(ctx, squirrel.Eq{"user_id": userID})
	if err != nil {
		log.Error("failed to list tasks: %v", err)
	}
	return tasks, err
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	log := logger.FromContext(ctx).WithPrefix("task_repo")

	tasks, err := r.list(ctx, squirrel.Eq{"id": id})
	if err != nil {
		log.Error("failed to get task: %v", err)
		return nil, err
	}
	if len(tasks) == 0 {
		log.Debug("task not found: id=%s", id)
		return nil, nil
	}
	return &tasks[0], nil
}

func (r *taskRepository) Create(ctx context.Context, t models.Task) error {
	log := logger.FromContext(ctx).WithPrefix("task_repo")
	log.Debug("inserting task: id=%s, priority=%s", t.ID, t.Priority)

	q := sqlBuilder.Insert("tasks").Columns(taskColumns...).Values(
		t.ID, t.UserID, t.Title, t.Description, string(t.Priority), string(t.Status),
		utc(t.CreatedAt), utcPtr(t.CompletedAt), utcPtr(t.DueDate),
	)
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to insert task: %v", err)
		return err
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, t models.Task) error {
	log := logger.FromContext(ctx).WithPrefix("task_repo")
	log.Debug("updating task: id=%s, status=%s", t.ID, t.Status)

	q := sqlBuilder.Update("tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("priority", string(t.Priority)).
		Set("status", string(t.Status)).
		Set("completed_at", utcPtr(t.CompletedAt)).
		Set("due_date", utcPtr(t.DueDate)).
		Where(squirrel.Eq{"id": t.ID})
	if _, err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to update task: %v", err)
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("task_repo")
	log.Debug("deleting task: id=%s", id)

	n, err := exec(ctx, r.db, sqlBuilder.Delete("tasks").Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to delete task: %v", err)
		return false, err
	}
	return n > 0, nil
}
