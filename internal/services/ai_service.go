package services

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
)

// CompletionClient produces one AI reply for a system prompt and user message.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// AIService wraps the external chat-completion API. One call per turn, a
// fixed timeout, no retries: degraded-mode handling is the caller's job.
type AIService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      Logger
}

func NewAIService(apiKey, baseURL, model string, maxTokens int, temperature float32, timeout time.Duration, logger Logger) *AIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &AIService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Complete returns a non-streamed reply from the chat completion API.
func (s *AIService) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error("completion API error",
				"status", apiErr.HTTPStatusCode, "type", apiErr.Type, "message", apiErr.Message)
		}
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("language model returned empty reply")
	}
	return resp.Choices[0].Message.Content, nil
}
