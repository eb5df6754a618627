package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/neurobank/internal/models"
)

// MockGenerator is a mock implementation of ai.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) ProcessText(ctx context.Context, content string, mode models.ProcessType) (string, error) {
	args := m.Called(ctx, content, mode)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateFlashcards(ctx context.Context, notes []models.Note) ([]models.GeneratedFlashcard, error) {
	args := m.Called(ctx, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GeneratedFlashcard), args.Error(1)
}
