package api

import (
	"net/http"
	"time"

	"github.com/vytor/neurobank/internal/models"
)

type createTaskRequest struct {
	UserID      string     `json:"user_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status       *string    `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	task, err := s.Tasks.CreateTask(r.Context(), req.UserID, req.Title, req.Description, models.TaskPriority(req.Priority), req.DueDate)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, task)
}

func (s *Server) handleUserTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Tasks.GetUserTasks(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.Tasks.GetTask(r.Context(), urlParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	upd := models.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Priority != nil {
		p := models.TaskPriority(*req.Priority)
		upd.Priority = &p
	}
	if req.Status != nil {
		st := models.TaskStatus(*req.Status)
		upd.Status = &st
	}
	task, err := s.Tasks.UpdateTask(r.Context(), urlParam(r, "id"), upd)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.Tasks.DeleteTask(r.Context(), urlParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
