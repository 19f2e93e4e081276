package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/models"
)

const (
	llmTemperature float32 = 0.1

	technicalErrorMessage = "Unable to validate CV due to technical error. Please try again."
)

// FallbackVerdict is returned whenever the model cannot produce a usable answer.
func FallbackVerdict() *models.ValidationVerdict {
	return &models.ValidationVerdict{
		IsValid:       false,
		Errors:        []string{technicalErrorMessage},
		MatchedFields: []string{},
	}
}

// LLMValidator asks a language model to judge the form against the CV.
// It never returns an error: failures collapse into FallbackVerdict.
type LLMValidator struct {
	llm           LLMService
	promptBuilder *PromptBuilder
	guard         *RuleValidator
	logger        *zap.Logger
}

// NewLLMValidator builds the validator. A non-nil guard re-checks email and
// phone on every positive verdict.
func NewLLMValidator(llm LLMService, guard *RuleValidator, logger *zap.Logger) *LLMValidator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LLMValidator{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		guard:         guard,
		logger:        logger,
	}
}

func (v *LLMValidator) Backend() string {
	return v.llm.Name()
}

func (v *LLMValidator) Validate(ctx context.Context, req models.SubmissionRequest, cvText string) (*models.ValidationVerdict, error) {
	start := time.Now()
	log := v.logger.With(zap.String("backend", v.llm.Name()), zap.String("prompt_version", PromptVersion))

	prompt := v.promptBuilder.BuildValidationPrompt(req, cvText)
	log.Debug("llm.validate.prompt", zap.Int("prompt_length", len(prompt)))

	response, err := v.llm.GenerateJSON(ctx, v.promptBuilder.BuildSystemPrompt(), prompt, llmTemperature)
	if err != nil {
		log.Error("CV validation error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return FallbackVerdict(), nil
	}

	verdict, err := decodeVerdict([]byte(extractJSON(response)), llmVerdictSchema)
	if err != nil {
		log.Error("CV validation error: malformed model reply",
			zap.Error(err),
			zap.Int("response_length", len(response)),
		)
		return FallbackVerdict(), nil
	}

	// never nil: an empty list is a rejection with no field to blame
	if verdict.MismatchedFields == nil {
		verdict.MismatchedFields = mismatchedFields(req, verdict.MatchedFields)
		if verdict.MismatchedFields == nil {
			verdict.MismatchedFields = []string{}
		}
	}

	if verdict.IsValid && v.guard != nil {
		if strict := v.guard.CheckStrict(req, cvText); !strict.IsValid {
			log.Warn("llm.validate.guard_rejected", zap.Strings("fields", strict.MismatchedFields))
			verdict = mergeGuard(verdict, strict)
		}
	}

	log.Info("llm.validate.ok",
		zap.Bool("is_valid", verdict.IsValid),
		zap.Int("errors", len(verdict.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return verdict, nil
}

func mergeGuard(verdict, strict *models.ValidationVerdict) *models.ValidationVerdict {
	rejected := make(map[string]bool, len(strict.MismatchedFields))
	for _, f := range strict.MismatchedFields {
		rejected[f] = true
	}

	matched := make([]string, 0, len(verdict.MatchedFields))
	for _, f := range verdict.MatchedFields {
		if !rejected[f] {
			matched = append(matched, f)
		}
	}

	return &models.ValidationVerdict{
		IsValid:          false,
		Errors:           append(append([]string{}, verdict.Errors...), strict.Errors...),
		MatchedFields:    matched,
		MismatchedFields: appendUnique(append([]string{}, verdict.MismatchedFields...), strict.MismatchedFields...),
	}
}

func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
