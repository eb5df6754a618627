package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/metrics"
)

const requestTimeout = 60 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Route("/flashcards", func(r chi.Router) {
			r.Post("/", s.handleCreateFlashcard)
			r.Post("/batch", s.handleSaveFlashcards)
			r.Get("/user/{userID}", s.handleUserFlashcards)
			r.Post("/user/{userID}/refresh-reviews", s.handleRefreshReviews)
			r.Get("/deck/{deckID}", s.handleDeckFlashcards)
			r.Get("/{id}", s.handleGetFlashcard)
			r.Put("/{id}", s.handleUpdateFlashcard)
			r.Delete("/{id}", s.handleDeleteFlashcard)
			r.Patch("/{id}/review", s.handleReviewFlashcard)
			r.Patch("/{id}/custom-review", s.handleCustomReview)
			r.Patch("/{id}/reset-to-remaining", s.handleResetFlashcard)
		})

		r.Route("/statistics/user/{userID}", func(r chi.Router) {
			r.Get("/weekly", s.handleWeeklyStats)
			r.Get("/total", s.handleTotalStats)
			r.Get("/streaks", s.handleStreaks)
			r.Get("/today", s.handleTodayStats)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/verified", s.handleVerifiedStats)
			r.Get("/calculated", s.handleCalculatedStats)
			r.Post("/verify", s.handleVerifyStats)
			r.Post("/record/note", s.handleRecordNote)
			r.Post("/record/flashcard-study", s.handleRecordStudy)
			r.Post("/record/flashcard-creation", s.handleRecordCreation)
			r.Delete("/cleanup", s.handleCleanupStats)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleCreateNote)
			r.Post("/generate-flashcards", s.handleGenerateFlashcards)
			r.Get("/user/{userID}", s.handleUserNotes)
			r.Get("/folder/{folderID}", s.handleFolderNotes)
			r.Get("/{id}", s.handleGetNote)
			r.Put("/{id}", s.handleUpdateNote)
			r.Delete("/{id}", s.handleDeleteNote)
			r.Post("/{id}/process", s.handleProcessNote)
		})

		r.Route("/note-folders", func(r chi.Router) {
			r.Post("/", s.handleCreateFolder)
			r.Get("/user/{userID}", s.handleUserFolders)
			r.Get("/{id}", s.handleGetFolder)
			r.Put("/{id}", s.handleUpdateFolder)
			r.Delete("/{id}", s.handleDeleteFolder)
		})

		r.Route("/decks", func(r chi.Router) {
			r.Post("/", s.handleCreateDeck)
			r.Get("/user/{userID}", s.handleUserDecks)
			r.Get("/{id}", s.handleGetDeck)
			r.Put("/{id}", s.handleUpdateDeck)
			r.Delete("/{id}", s.handleDeleteDeck)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/user/{userID}", s.handleUserTasks)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})
	return r
}
