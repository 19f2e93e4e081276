package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"alfredoptarigan/cv-submission/internal/models"
)

const verdictProperties = `{
	"isValid": {"type": "boolean"},
	"errors": {"type": "array", "items": {"type": "string"}},
	"matchedFields": {"type": "array", "items": {"type": "string"}},
	"mismatchedFields": {"type": "array", "items": {"type": "string"}}
}`

var (
	// webhookVerdictSchema accepts any object carrying at least isValid.
	webhookVerdictSchema = jsonschema.MustCompileString("webhook_verdict.json", `{
		"type": "object",
		"required": ["isValid"],
		"properties": `+verdictProperties+`
	}`)

	// llmVerdictSchema is the exact shape the prompt asks the model for.
	llmVerdictSchema = jsonschema.MustCompileString("llm_verdict.json", `{
		"type": "object",
		"required": ["isValid", "errors", "matchedFields"],
		"properties": `+verdictProperties+`
	}`)
)

func decodeVerdict(raw []byte, schema *jsonschema.Schema) (*models.ValidationVerdict, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("verdict does not match schema: %w", err)
	}

	var verdict models.ValidationVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}

	if verdict.Errors == nil {
		verdict.Errors = []string{}
	}
	if verdict.MatchedFields == nil {
		verdict.MatchedFields = []string{}
	}

	return &verdict, nil
}

// extractJSON pulls the outermost JSON object out of a model reply that may
// be wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// mismatchedFields lists the provided form fields that are not in matched.
func mismatchedFields(req models.SubmissionRequest, matched []string) []string {
	seen := make(map[string]bool, len(matched))
	for _, f := range matched {
		seen[f] = true
	}

	var out []string
	for _, f := range req.ProvidedFields() {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}
