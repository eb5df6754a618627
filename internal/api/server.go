package api

import (
	"context"

	"github.com/vytor/neurobank/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Flashcards services.FlashcardService
	Stats      services.StatsService
	Notes      services.NoteService
	Folders    services.NoteFolderService
	Decks      services.DeckService
	Tasks      services.TaskService
	Users      services.UserService
	DB         Pinger
}
