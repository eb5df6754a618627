// Package ai wraps the external text generation service used to process
// notes and to turn them into flashcards.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/models"
)

// Generator produces text from notes. Implementations return UPSTREAM_ERROR
// app errors when the remote call fails or its output cannot be used.
type Generator interface {
	ProcessText(ctx context.Context, content string, mode models.ProcessType) (string, error)
	GenerateFlashcards(ctx context.Context, notes []models.Note) ([]models.GeneratedFlashcard, error)
}

// Unavailable is the Generator used when no API key is configured.
type Unavailable struct{}

func (Unavailable) ProcessText(context.Context, string, models.ProcessType) (string, error) {
	return "", apperrors.NewUpstreamError("text generation is not configured", nil)
}

func (Unavailable) GenerateFlashcards(context.Context, []models.Note) ([]models.GeneratedFlashcard, error) {
	return nil, apperrors.NewUpstreamError("text generation is not configured", nil)
}

// CombineNotes joins notes into one generation input, title first.
func CombineNotes(notes []models.Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = fmt.Sprintf("**%s**\n%s", n.Title, n.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

type rawFlashcard struct {
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Category   json.RawMessage `json:"category"`
	Categories json.RawMessage `json:"categories"`
}

// ParseFlashcards decodes a {"flashcards": [...]} reply. A category may be a
// single string or a list; surrounding markdown code fences are ignored.
// Cards without a question or answer are dropped.
func ParseFlashcards(reply string) ([]models.GeneratedFlashcard, error) {
	body := stripFences(reply)
	if body == "" {
		return nil, fmt.Errorf("empty reply")
	}

	var payload struct {
		Flashcards []rawFlashcard `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}

	cards := make([]models.GeneratedFlashcard, 0, len(payload.Flashcards))
	for _, raw := range payload.Flashcards {
		q := strings.TrimSpace(raw.Question)
		a := strings.TrimSpace(raw.Answer)
		if q == "" || a == "" {
			continue
		}
		categories, err := decodeCategories(raw.Categories)
		if err != nil {
			return nil, err
		}
		more, err := decodeCategories(raw.Category)
		if err != nil {
			return nil, err
		}
		cards = append(cards, models.GeneratedFlashcard{
			Question:   q,
			Answer:     a,
			Categories: append(categories, more...),
		})
	}
	return cards, nil
}

func decodeCategories(raw json.RawMessage) ([]string, error) {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			out = append(out, single)
		}
		return out, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
