package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/config"
	"alfredoptarigan/cv-submission/internal/models"
)

// ValidationClient decides whether the submitted form fields agree with the
// text of the CV.
type ValidationClient interface {
	Validate(ctx context.Context, req models.SubmissionRequest, cvText string) (*models.ValidationVerdict, error)
	Backend() string
}

// NewValidationClient builds the strategy selected by cfg.Backend.
func NewValidationClient(ctx context.Context, cfg config.ValidatorConfig, logger *zap.Logger) (ValidationClient, error) {
	switch cfg.Backend {
	case "", config.BackendWebhook:
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("VALIDATOR_WEBHOOK_URL is required for the webhook backend")
		}
		return NewWebhookValidator(cfg.WebhookURL, cfg.Timeout, logger), nil

	case config.BackendOpenAI:
		llm, err := NewOpenAIService(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return NewLLMValidator(llm, ruleGuard(cfg), logger), nil

	case config.BackendGemini:
		llm, err := NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, err
		}
		return NewLLMValidator(llm, ruleGuard(cfg), logger), nil

	case config.BackendRules:
		return NewRuleValidator(), nil

	default:
		return nil, fmt.Errorf("unknown validator backend: %s", cfg.Backend)
	}
}

func ruleGuard(cfg config.ValidatorConfig) *RuleValidator {
	if !cfg.RuleGuard {
		return nil
	}
	return NewRuleValidator()
}
