package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/cv-submission/internal/models"
)

type fakeLLM struct {
	response string
	err      error

	systemPrompt string
	userPrompt   string
	temperature  float32
	calls        int
}

func (f *fakeLLM) GenerateJSON(_ context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	f.userPrompt = userPrompt
	f.temperature = temperature
	return f.response, f.err
}

func (f *fakeLLM) Name() string {
	return "fake"
}

var johnSmithRequest = models.SubmissionRequest{
	FullName:   "John Smith",
	Email:      "john@x.com",
	Phone:      "555-1234",
	Skills:     "Go, Rust",
	Experience: "5",
	PdfPath:    "uploads/cv.pdf",
}

func TestLLMValidator_ValidReply(t *testing.T) {
	llm := &fakeLLM{response: `{"isValid":true,"errors":[],"matchedFields":["fullName","email","phone","skills","experience"]}`}
	v := NewLLMValidator(llm, nil, zaptest.NewLogger(t))

	verdict, err := v.Validate(context.Background(), johnSmithRequest, johnSmithCV)
	require.NoError(t, err)

	assert.True(t, verdict.IsValid)
	assert.Empty(t, verdict.Errors)
	assert.Len(t, verdict.MatchedFields, 5)
	assert.NotNil(t, verdict.MismatchedFields)
	assert.Empty(t, verdict.MismatchedFields)

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, llmTemperature, llm.temperature)
	assert.Equal(t, NewPromptBuilder().BuildSystemPrompt(), llm.systemPrompt)
	assert.Contains(t, llm.userPrompt, johnSmithCV)
	assert.Equal(t, "fake", v.Backend())
}

func TestLLMValidator_FencedReply(t *testing.T) {
	llm := &fakeLLM{response: "```json\n{\"isValid\":false,\"errors\":[\"Skill Rust not found\"],\"matchedFields\":[\"fullName\",\"email\",\"phone\"]}\n```"}
	v := NewLLMValidator(llm, nil, zaptest.NewLogger(t))

	verdict, err := v.Validate(context.Background(), johnSmithRequest, johnSmithCV)
	require.NoError(t, err)

	assert.False(t, verdict.IsValid)
	assert.Equal(t, []string{"Skill Rust not found"}, verdict.Errors)
	// fields the model did not confirm are reported as mismatched
	assert.Equal(t, []string{"skills", "experience"}, verdict.MismatchedFields)
}

func TestLLMValidator_FallbackVerdict(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"call error", "", errors.New("rate limited")},
		{"malformed", `{"isValid": tru`, nil},
		{"prose only", "I think the CV matches.", nil},
		{"missing required keys", `{"isValid":true}`, nil},
		{"wrong types", `{"isValid":"true","errors":[],"matchedFields":[]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewLLMValidator(&fakeLLM{response: tt.response, err: tt.err}, nil, zaptest.NewLogger(t))

			verdict, err := v.Validate(context.Background(), johnSmithRequest, johnSmithCV)
			require.NoError(t, err)
			assert.Equal(t, FallbackVerdict(), verdict)
		})
	}
}

func TestFallbackVerdict(t *testing.T) {
	verdict := FallbackVerdict()

	assert.False(t, verdict.IsValid)
	assert.Equal(t, []string{"Unable to validate CV due to technical error. Please try again."}, verdict.Errors)
	assert.Equal(t, []string{}, verdict.MatchedFields)
}

func TestLLMValidator_RuleGuard(t *testing.T) {
	reply := `{"isValid":true,"errors":[],"matchedFields":["fullName","email","phone","skills"]}`
	req := johnSmithRequest
	req.Email = "someone.else@x.com"
	req.Experience = ""

	withoutGuard := NewLLMValidator(&fakeLLM{response: reply}, nil, zaptest.NewLogger(t))
	verdict, err := withoutGuard.Validate(context.Background(), req, johnSmithCV)
	require.NoError(t, err)
	assert.True(t, verdict.IsValid)

	withGuard := NewLLMValidator(&fakeLLM{response: reply}, NewRuleValidator(), zaptest.NewLogger(t))
	verdict, err = withGuard.Validate(context.Background(), req, johnSmithCV)
	require.NoError(t, err)

	assert.False(t, verdict.IsValid)
	assert.Equal(t, []string{"email"}, verdict.MismatchedFields)
	assert.Equal(t, []string{"fullName", "phone", "skills"}, verdict.MatchedFields)
	assert.Equal(t, []string{`Email "someone.else@x.com" does not match the email in the CV`}, verdict.Errors)
}

func TestLLMValidator_RuleGuardKeepsAgreeingVerdict(t *testing.T) {
	reply := `{"isValid":true,"errors":[],"matchedFields":["fullName","email","phone","skills","experience"]}`
	v := NewLLMValidator(&fakeLLM{response: reply}, NewRuleValidator(), zaptest.NewLogger(t))

	verdict, err := v.Validate(context.Background(), johnSmithRequest, johnSmithCV)
	require.NoError(t, err)
	assert.True(t, verdict.IsValid)
	assert.Len(t, verdict.MatchedFields, 5)
}

func TestLLMValidator_RejectionWithEveryFieldMatched(t *testing.T) {
	reply := `{"isValid":false,"errors":["Experience is not consistent with the CV"],"matchedFields":["fullName","email","phone","skills","experience"]}`
	v := NewLLMValidator(&fakeLLM{response: reply}, nil, zaptest.NewLogger(t))

	verdict, err := v.Validate(context.Background(), johnSmithRequest, johnSmithCV)
	require.NoError(t, err)

	assert.False(t, verdict.IsValid)
	assert.Equal(t, []string{}, verdict.MismatchedFields)
	assert.Equal(t, "CV validation failed.", failureMessage(verdict))
}
