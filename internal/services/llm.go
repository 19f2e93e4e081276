package services

import "context"

// LLMService is a hosted chat model that answers a system+user prompt pair
// with a JSON document.
type LLMService interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
	Name() string
}
