package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/models"
)

// maxWebhookResponse bounds how much of a webhook reply is read.
const maxWebhookResponse = 1 << 20

type webhookPayload struct {
	models.SubmissionRequest
	CVText string `json:"cvText"`
}

// WebhookValidator delegates the decision to an external workflow server.
type WebhookValidator struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhookValidator(url string, timeout time.Duration, logger *zap.Logger) *WebhookValidator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WebhookValidator{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *WebhookValidator) Backend() string {
	return "webhook"
}

// Validate posts the form and CV text and returns the service's verdict as
// is. Every transport or decoding failure wraps ErrValidationServiceUnavailable.
func (w *WebhookValidator) Validate(ctx context.Context, req models.SubmissionRequest, cvText string) (*models.ValidationVerdict, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(webhookPayload{SubmissionRequest: req, CVText: cvText})
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrValidationServiceUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrValidationServiceUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	w.logger.Info("webhook.validate.request",
		zap.String("req_id", reqID),
		zap.String("url", w.url),
		zap.Int("content_length", len(body)),
	)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		w.logger.Error("webhook.validate.send_error",
			zap.String("req_id", reqID),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("%w: %v", ErrValidationServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrValidationServiceUnavailable, err)
	}

	w.logger.Info("webhook.validate.response",
		zap.String("req_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: non-2xx status: %d", ErrValidationServiceUnavailable, resp.StatusCode)
	}

	verdict, err := decodeVerdict(raw, webhookVerdictSchema)
	if err != nil {
		w.logger.Error("webhook.validate.decode_error", zap.String("req_id", reqID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrValidationServiceUnavailable, err)
	}

	return verdict, nil
}
