package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/cv-submission/internal/config"
)

func TestNewValidationClient(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	client, err := NewValidationClient(ctx, config.ValidatorConfig{
		Backend:    config.BackendWebhook,
		WebhookURL: "http://localhost:5678/webhook/validate-cv",
		Timeout:    time.Second,
	}, log)
	require.NoError(t, err)
	assert.IsType(t, &WebhookValidator{}, client)
	assert.Equal(t, "webhook", client.Backend())

	client, err = NewValidationClient(ctx, config.ValidatorConfig{Backend: config.BackendRules}, log)
	require.NoError(t, err)
	assert.Equal(t, "rules", client.Backend())

	client, err = NewValidationClient(ctx, config.ValidatorConfig{
		Backend:   config.BackendOpenAI,
		Timeout:   time.Second,
		RuleGuard: true,
		OpenAI:    config.OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"},
	}, log)
	require.NoError(t, err)
	require.IsType(t, &LLMValidator{}, client)
	assert.Equal(t, "openai", client.Backend())
	assert.NotNil(t, client.(*LLMValidator).guard)
}

func TestNewValidationClient_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  config.ValidatorConfig
	}{
		{"webhook without url", config.ValidatorConfig{Backend: config.BackendWebhook}},
		{"openai without key", config.ValidatorConfig{Backend: config.BackendOpenAI}},
		{"gemini without key", config.ValidatorConfig{Backend: config.BackendGemini}},
		{"unknown backend", config.ValidatorConfig{Backend: "carrier-pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewValidationClient(ctx, tt.cfg, zaptest.NewLogger(t))
			assert.Error(t, err)
		})
	}
}
