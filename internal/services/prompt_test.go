package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/cv-submission/internal/models"
)

func TestPromptBuilder_BuildValidationPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildValidationPrompt(models.SubmissionRequest{
		FullName: "John Smith",
		Email:    "john@x.com",
		Skills:   "Go, Rust",
	}, "\n\n  John Smith  \n\n john@x.com \n")

	assert.Contains(t, prompt, "- Full Name: John Smith")
	assert.Contains(t, prompt, "- Email: john@x.com")
	assert.Contains(t, prompt, "- Phone: Not provided")
	assert.Contains(t, prompt, "- Skills: Go, Rust")
	assert.Contains(t, prompt, "- Experience: Not provided")
	assert.Contains(t, prompt, "CV Content:\nJohn Smith\njohn@x.com\n")
	assert.Contains(t, prompt, `"matchedFields"`)
	assert.Contains(t, prompt, "If a field is not provided in the form, don't consider it an error")
}

func TestPromptBuilder_BuildSystemPrompt(t *testing.T) {
	assert.Contains(t, NewPromptBuilder().BuildSystemPrompt(), "valid JSON only")
	assert.NotEmpty(t, PromptVersion)
}
