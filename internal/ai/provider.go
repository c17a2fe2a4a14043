package ai

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider turns a message history (system prompt first) into one reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ErrRateLimited marks an upstream 429. Callers surface it as a distinct
// "try again shortly" condition instead of a generic failure.
var ErrRateLimited = errors.New("ai: upstream rate limited")

// Fixed sampling parameters, matching the persona tuning the prompts were
// written against.
const (
	Temperature = 0.8
	TopP        = 0.9
	MaxTokens   = 500
)
