package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/metrics"
	"alfredoptarigan/cv-submission/internal/models"
	"alfredoptarigan/cv-submission/internal/repositories"
)

const (
	MessageSubmitted          = "CV submitted successfully!"
	MessageUnreadableDocument = "Unable to read the uploaded CV. Please upload it again."
	MessageServiceUnavailable = "CV validation service is unavailable. Please try again later."
	MessageValidationFailed   = "CV validation failed."
)

type SubmissionService interface {
	Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionResponse, error)
}

type submissionService struct {
	storage   StorageService
	parser    PDFParserService
	validator ValidationClient
	repo      repositories.CandidateRepository
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    *zap.Logger
}

func NewSubmissionService(
	storage StorageService,
	parser PDFParserService,
	validator ValidationClient,
	repo repositories.CandidateRepository,
	m *metrics.Metrics,
	timeout time.Duration,
	logger *zap.Logger,
) SubmissionService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &submissionService{
		storage:   storage,
		parser:    parser,
		validator: validator,
		repo:      repo,
		metrics:   m,
		timeout:   timeout,
		logger:    logger,
	}
}

// Submit runs resolve, extract, validate and persist in order. Business
// failures come back as a fail response; only a storage failure of the
// candidate record is returned as an error.
func (s *submissionService) Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionResponse, error) {
	log := s.logger.With(zap.String("pdf_path", req.PdfPath), zap.String("email", req.Email))

	path, err := s.storage.Resolve(req.PdfPath)
	if err != nil {
		log.Warn("submission.resolve_failed", zap.Error(err))
		return s.fail(MessageUnreadableDocument, nil), nil
	}

	cvText, err := s.parser.ExtractText(path)
	if err != nil {
		log.Warn("submission.extract_failed", zap.Error(err))
		return s.fail(MessageUnreadableDocument, nil), nil
	}

	verdict, err := s.validate(ctx, req, cvText)
	if err != nil {
		// strategies report every failure as ErrValidationServiceUnavailable;
		// anything else is treated the same way
		log.Error("submission.validation_unavailable",
			zap.Error(err),
			zap.Bool("typed", errors.Is(err, ErrValidationServiceUnavailable)),
		)
		return s.fail(MessageServiceUnavailable, nil), nil
	}

	if !verdict.IsValid {
		log.Info("submission.rejected",
			zap.Strings("mismatched_fields", verdict.MismatchedFields),
			zap.Strings("errors", verdict.Errors),
		)
		return s.fail(failureMessage(verdict), verdict.Errors), nil
	}

	candidate := models.NewCandidate(req)
	if err := s.repo.Create(ctx, candidate); err != nil {
		log.Error("submission.persist_failed", zap.Error(err))
		return nil, fmt.Errorf("failed to save candidate: %w", err)
	}

	log.Info("submission.accepted", zap.String("candidate_id", candidate.ID.String()))
	s.metrics.ObserveSubmission(string(models.StatusSuccess))

	return &models.SubmissionResponse{
		Status:  models.StatusSuccess,
		Message: MessageSubmitted,
	}, nil
}

func (s *submissionService) validate(ctx context.Context, req models.SubmissionRequest, cvText string) (*models.ValidationVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	verdict, err := s.validator.Validate(ctx, req, cvText)
	s.metrics.ObserveValidation(s.validator.Backend(), time.Since(start))
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, fmt.Errorf("%w: empty verdict", ErrValidationServiceUnavailable)
	}

	return verdict, nil
}

func (s *submissionService) fail(message string, errs []string) *models.SubmissionResponse {
	s.metrics.ObserveSubmission(string(models.StatusFail))

	return &models.SubmissionResponse{
		Status:  models.StatusFail,
		Message: message,
		Errors:  errs,
	}
}

// failureMessage names the offending fields. Webhook verdicts without a
// mismatchedFields key list them in matchedFields instead; an empty
// mismatchedFields list means no field is to blame.
func failureMessage(verdict *models.ValidationVerdict) string {
	fields := verdict.MismatchedFields
	if fields == nil {
		fields = verdict.MatchedFields
	}
	if len(fields) == 0 {
		return MessageValidationFailed
	}

	return "CV validation failed. Mismatched fields are: " + strings.Join(fields, ", ")
}
