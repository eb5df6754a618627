package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	apperrors "github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
)

const flashcardPrompt = `Generate flashcards from the following text in English. Create flashcards with questions and answers based on the content. Also categorize each flashcard with an appropriate category. Respond in the following JSON format:
{
  "flashcards": [
    {
      "question": "question here",
      "answer": "answer here",
      "category": "category here"
    }
  ]
}

Text to generate flashcards from:

%s`

var processPrompts = map[models.ProcessType]string{
	models.ProcessSummarize: "Summarize the following text, focusing on the most important points:\n\n%s",
	models.ProcessExpand:    "Expand on the following text with deeper analysis and examples:\n\n%s",
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// OpenAIGenerator calls the chat completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("openai")
	log.Debug("requesting completion: model=%s, prompt_len=%d", g.model, len(prompt))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		log.Error("completion request failed: %v", err)
		return "", apperrors.NewUpstreamError("text generation failed", err)
	}
	if len(resp.Choices) == 0 {
		log.Warn("completion returned no choices")
		return "", apperrors.NewUpstreamError("text generation returned no choices", nil)
	}
	log.Debug("completion received: finish_reason=%s", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) ProcessText(ctx context.Context, content string, mode models.ProcessType) (string, error) {
	tmpl, ok := processPrompts[mode]
	if !ok {
		return "", apperrors.NewValidationError("process_type", "must be summarize or expand")
	}
	return g.complete(ctx, fmt.Sprintf(tmpl, content))
}

func (g *OpenAIGenerator) GenerateFlashcards(ctx context.Context, notes []models.Note) ([]models.GeneratedFlashcard, error) {
	reply, err := g.complete(ctx, fmt.Sprintf(flashcardPrompt, CombineNotes(notes)))
	if err != nil {
		return nil, err
	}
	cards, err := ParseFlashcards(reply)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("openai").Warn("unusable flashcard reply: %v", err)
		return nil, apperrors.NewUpstreamError("text generation returned an invalid flashcard format", err)
	}
	return cards, nil
}
