package models

import "strings"

// Field names used in verdicts. They match the JSON names of SubmissionRequest.
const (
	FieldFullName   = "fullName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldSkills     = "skills"
	FieldExperience = "experience"
)

// ValidationVerdict is the outcome of comparing form fields against CV text.
type ValidationVerdict struct {
	IsValid          bool     `json:"isValid"`
	Errors           []string `json:"errors"`
	MatchedFields    []string `json:"matchedFields"`
	MismatchedFields []string `json:"mismatchedFields,omitempty"`
}

// ProvidedFields returns the names of the form fields that were filled in,
// in form order.
func (r SubmissionRequest) ProvidedFields() []string {
	var fields []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{FieldFullName, r.FullName},
		{FieldEmail, r.Email},
		{FieldPhone, r.Phone},
		{FieldSkills, r.Skills},
		{FieldExperience, r.Experience},
	} {
		if strings.TrimSpace(f.value) != "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}
