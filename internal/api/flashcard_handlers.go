package api

import (
	"net/http"

	"github.com/vytor/neurobank/internal/flashcard"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
)

type flashcardInput struct {
	Question   string   `json:"question" validate:"required"`
	Answer     string   `json:"answer" validate:"required"`
	Categories []string `json:"categories"`
	Difficulty string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard custom"`
	DeckID     *string  `json:"deck_id"`
}

func (in flashcardInput) model() models.NewFlashcard {
	return models.NewFlashcard{
		Question:   in.Question,
		Answer:     in.Answer,
		Categories: in.Categories,
		Difficulty: models.Difficulty(in.Difficulty),
		DeckID:     in.DeckID,
	}
}

type createFlashcardRequest struct {
	UserID string `json:"user_id" validate:"required"`
	flashcardInput
}

type saveFlashcardsRequest struct {
	UserID     string           `json:"user_id" validate:"required"`
	Flashcards []flashcardInput `json:"flashcards" validate:"required,min=1,dive"`
}

type updateFlashcardRequest struct {
	Question   *string  `json:"question" validate:"omitempty,min=1"`
	Answer     *string  `json:"answer" validate:"omitempty,min=1"`
	Categories []string `json:"categories"`
	DeckID     *string  `json:"deck_id"`
}

type reviewRequest struct {
	Difficulty string `json:"difficulty" validate:"required"`
}

type customReviewRequest struct {
	Amount int    `json:"amount" validate:"required,gte=1,lte=30"`
	Unit   string `json:"unit" validate:"required,oneof=days months"`
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req createFlashcardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Flashcards.CreateFlashcard(r.Context(), req.UserID, req.model())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleSaveFlashcards(w http.ResponseWriter, r *http.Request) {
	var req saveFlashcardsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	in := make([]models.NewFlashcard, len(req.Flashcards))
	for i, f := range req.Flashcards {
		in[i] = f.model()
	}
	cards, err := s.Flashcards.SaveFlashcards(r.Context(), req.UserID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, cards)
}

func (s *Server) handleUserFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Flashcards.GetUserFlashcards(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleDeckFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Flashcards.GetDeckFlashcards(r.Context(), urlParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleGetFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Flashcards.GetFlashcard(r.Context(), urlParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req updateFlashcardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	deckID, clearDeck := optionalRef(req.DeckID)
	card, err := s.Flashcards.UpdateFlashcard(r.Context(), urlParam(r, "id"), models.FlashcardUpdate{
		Question:   req.Question,
		Answer:     req.Answer,
		Categories: req.Categories,
		DeckID:     deckID,
		ClearDeck:  clearDeck,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	if err := s.Flashcards.DeleteFlashcard(r.Context(), urlParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Flashcards.ReviewFlashcard(r.Context(), urlParam(r, "id"), req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleCustomReview(w http.ResponseWriter, r *http.Request) {
	var req customReviewRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Flashcards.CustomReview(r.Context(), urlParam(r, "id"), req.Amount, flashcard.TimeUnit(req.Unit))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleResetFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Flashcards.ResetToRemaining(r.Context(), urlParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleRefreshReviews(w http.ResponseWriter, r *http.Request) {
	userID := urlParam(r, "userID")
	moved, err := s.Flashcards.RefreshReviews(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("refresh reviews: user_id=%s, moved=%d", userID, moved)
	writeJSON(w, r, http.StatusOK, map[string]int64{"moved": moved})
}
