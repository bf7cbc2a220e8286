package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Model Configuration
	Model       string  // chat completion model identifier
	MaxTokens   int     // maximum response tokens
	Temperature float32 // model creativity

	// Performance Configuration
	Timeout time.Duration // completion request timeout

	// Conversation Configuration
	TitleMaxLength int // auto-created conversation titles are cut to this
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TitleMaxLength <= 0 {
		return fmt.Errorf("title_max_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Model:          "gpt-3.5-turbo",
		MaxTokens:      500,
		Temperature:    0.7,
		Timeout:        30 * time.Second,
		TitleMaxLength: 50,
	}
}
