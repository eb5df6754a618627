package api

import (
	"net/http"

	"github.com/vytor/neurobank/internal/models"
)

type createNoteRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Content     string  `json:"content"`
	FolderID    *string `json:"folder_id"`
	ProcessType string  `json:"process_type" validate:"omitempty,oneof=none summarize expand"`
}

type updateNoteRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Content  *string `json:"content"`
	FolderID *string `json:"folder_id"`
}

type processNoteRequest struct {
	ProcessType string `json:"process_type" validate:"required,oneof=summarize expand"`
}

type generateFlashcardsRequest struct {
	UserID  string   `json:"user_id" validate:"required"`
	NoteIDs []string `json:"note_ids" validate:"required,min=1,dive,required"`
	DeckID  *string  `json:"deck_id"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	note, err := s.Notes.CreateNote(r.Context(), req.UserID, models.NewNote{
		Title:       req.Title,
		Content:     req.Content,
		FolderID:    req.FolderID,
		ProcessType: models.ProcessType(req.ProcessType),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, note)
}

func (s *Server) handleUserNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.Notes.GetUserNotes(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, notes)
}

func (s *Server) handleFolderNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.Notes.GetFolderNotes(r.Context(), urlParam(r, "folderID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.Notes.GetNote(r.Context(), urlParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	folderID, clearFolder := optionalRef(req.FolderID)
	note, err := s.Notes.UpdateNote(r.Context(), urlParam(r, "id"), models.NoteUpdate{
		Title:       req.Title,
		Content:     req.Content,
		FolderID:    folderID,
		ClearFolder: clearFolder,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.Notes.DeleteNote(r.Context(), urlParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProcessNote(w http.ResponseWriter, r *http.Request) {
	var req processNoteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	note, err := s.Notes.ProcessNote(r.Context(), urlParam(r, "id"), models.ProcessType(req.ProcessType))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, note)
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req generateFlashcardsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Notes.GenerateFlashcards(r.Context(), req.UserID, req.NoteIDs, req.DeckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, cards)
}
