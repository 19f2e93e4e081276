package services

import (
	"fmt"

	"alfredoptarigan/cv-submission/internal/models"
)

// PromptVersion identifies the wording of the validation prompt. Bump it
// whenever the rules below change so verdicts can be traced to a prompt.
const PromptVersion = "cv-validation/v1"

const validationSystemPrompt = "You are a helpful assistant that validates CV data. Always respond with valid JSON only."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

func (pb *PromptBuilder) BuildSystemPrompt() string {
	return validationSystemPrompt
}

// BuildValidationPrompt asks the model to compare the form against the CV
// text and answer with {isValid, errors, matchedFields}.
func (pb *PromptBuilder) BuildValidationPrompt(req models.SubmissionRequest, cvText string) string {
	return fmt.Sprintf(`You are a CV validation assistant. Compare the form data with the CV content and determine if they match.

Form Data:
- Full Name: %s
- Email: %s
- Phone: %s
- Skills: %s
- Experience: %s

CV Content:
%s

Please analyze if the form data matches the CV content. Return a JSON response with:
1. "isValid": boolean indicating if all provided form fields match the CV
2. "errors": array of strings describing any mismatches
3. "matchedFields": array of field names that matched successfully (use: fullName, email, phone, skills, experience)

Rules:
- Names should match approximately (consider different formats like "John Smith" vs "Smith, John")
- Email should match exactly if present in CV
- Phone should match (allow for different formatting)
- Skills should be present in the CV (exact matches or synonyms are acceptable)
- Experience should be consistent with what's mentioned in the CV
- If a field is not provided in the form, don't consider it an error
- If a field is not found in the CV, note it as a potential issue but be lenient

Return only valid JSON, no additional text.`,
		orNotProvided(req.FullName),
		orNotProvided(req.Email),
		orNotProvided(req.Phone),
		orNotProvided(req.Skills),
		orNotProvided(req.Experience),
		CleanText(cvText),
	)
}

func orNotProvided(value string) string {
	if value == "" {
		return "Not provided"
	}
	return value
}
