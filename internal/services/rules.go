package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"alfredoptarigan/cv-submission/internal/models"
)

var (
	emailPattern     = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phonePattern     = regexp.MustCompile(`\+?\d[\d\s().\-]{5,}\d`)
	yearRangePattern = regexp.MustCompile(`^(19|20)\d{2}\s*[-.]\s*(19|20)\d{2}$`)
	leadingNumber    = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
	statedYears      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)
)

const minPhoneDigits = 7

type matchOutcome int

const (
	outcomeMatched matchOutcome = iota
	outcomeMismatched
	outcomeAbsent
)

type fieldResult struct {
	outcome matchOutcome
	message string
}

type fieldCheck struct {
	field string
	value func(models.SubmissionRequest) string
	check func(value string, doc *cvDocument) fieldResult
}

var (
	nameCheck       = fieldCheck{models.FieldFullName, func(r models.SubmissionRequest) string { return r.FullName }, checkName}
	emailCheck      = fieldCheck{models.FieldEmail, func(r models.SubmissionRequest) string { return r.Email }, checkEmail}
	phoneCheck      = fieldCheck{models.FieldPhone, func(r models.SubmissionRequest) string { return r.Phone }, checkPhone}
	skillsCheck     = fieldCheck{models.FieldSkills, func(r models.SubmissionRequest) string { return r.Skills }, checkSkills}
	experienceCheck = fieldCheck{models.FieldExperience, func(r models.SubmissionRequest) string { return r.Experience }, checkExperience}

	allChecks    = []fieldCheck{nameCheck, emailCheck, phoneCheck, skillsCheck, experienceCheck}
	strictChecks = []fieldCheck{emailCheck, phoneCheck}
)

// RuleValidator compares the form with the CV text deterministically.
// Empty form fields are skipped and fields the CV does not mention only
// produce a note.
type RuleValidator struct{}

func NewRuleValidator() *RuleValidator {
	return &RuleValidator{}
}

func (r *RuleValidator) Backend() string {
	return "rules"
}

func (r *RuleValidator) Validate(_ context.Context, req models.SubmissionRequest, cvText string) (*models.ValidationVerdict, error) {
	return r.run(req, cvText, allChecks), nil
}

// CheckStrict only looks at the fields that must match exactly: email and phone.
func (r *RuleValidator) CheckStrict(req models.SubmissionRequest, cvText string) *models.ValidationVerdict {
	return r.run(req, cvText, strictChecks)
}

func (r *RuleValidator) run(req models.SubmissionRequest, cvText string, checks []fieldCheck) *models.ValidationVerdict {
	doc := newCVDocument(cvText)

	verdict := &models.ValidationVerdict{
		Errors:        []string{},
		MatchedFields: []string{},
	}
	var notes []string

	for _, c := range checks {
		value := strings.TrimSpace(c.value(req))
		if value == "" {
			continue
		}

		res := c.check(value, doc)
		switch res.outcome {
		case outcomeMatched:
			verdict.MatchedFields = append(verdict.MatchedFields, c.field)
		case outcomeMismatched:
			verdict.MismatchedFields = append(verdict.MismatchedFields, c.field)
			verdict.Errors = append(verdict.Errors, res.message)
		case outcomeAbsent:
			notes = append(notes, "Note: "+res.message)
		}
	}

	verdict.IsValid = len(verdict.MismatchedFields) == 0
	verdict.Errors = append(verdict.Errors, notes...)
	return verdict
}

type cvDocument struct {
	text   string
	lower  string
	tokens map[string]bool
	emails map[string]bool
	phones []string
}

func newCVDocument(text string) *cvDocument {
	doc := &cvDocument{
		text:   text,
		lower:  strings.ToLower(text),
		tokens: make(map[string]bool),
		emails: make(map[string]bool),
	}

	for _, tok := range tokenize(text) {
		doc.tokens[tok] = true
	}

	for _, email := range emailPattern.FindAllString(text, -1) {
		doc.emails[strings.ToLower(email)] = true
	}

	// emails are removed first so their digits are not read as phone numbers
	withoutEmails := emailPattern.ReplaceAllString(text, " ")
	for _, candidate := range phonePattern.FindAllString(withoutEmails, -1) {
		if yearRangePattern.MatchString(strings.TrimSpace(candidate)) {
			continue
		}
		digits := digitsOnly(candidate)
		if len(digits) >= minPhoneDigits && len(digits) <= 15 {
			doc.phones = append(doc.phones, digits)
		}
	}

	return doc
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkName(value string, doc *cvDocument) fieldResult {
	tokens := tokenize(value)
	if len(tokens) == 0 {
		return fieldResult{outcome: outcomeAbsent, message: "full name could not be checked"}
	}

	for _, tok := range tokens {
		if !doc.tokens[tok] {
			return fieldResult{outcome: outcomeMismatched, message: fmt.Sprintf("Full name %q does not match the CV", value)}
		}
	}
	return fieldResult{outcome: outcomeMatched}
}

func checkEmail(value string, doc *cvDocument) fieldResult {
	if doc.emails[strings.ToLower(value)] {
		return fieldResult{outcome: outcomeMatched}
	}
	if len(doc.emails) == 0 {
		return fieldResult{outcome: outcomeAbsent, message: "no email address found in the CV"}
	}
	return fieldResult{outcome: outcomeMismatched, message: fmt.Sprintf("Email %q does not match the email in the CV", value)}
}

func checkPhone(value string, doc *cvDocument) fieldResult {
	want := digitsOnly(value)
	if len(want) == 0 {
		return fieldResult{outcome: outcomeAbsent, message: "phone number could not be checked"}
	}

	for _, got := range doc.phones {
		if got == want {
			return fieldResult{outcome: outcomeMatched}
		}
		// country codes and neighbouring numbers may be glued on either side
		if len(want) >= minPhoneDigits && strings.Contains(got, want) {
			return fieldResult{outcome: outcomeMatched}
		}
		if strings.Contains(want, got) {
			return fieldResult{outcome: outcomeMatched}
		}
	}

	if len(doc.phones) == 0 {
		return fieldResult{outcome: outcomeAbsent, message: "no phone number found in the CV"}
	}
	return fieldResult{outcome: outcomeMismatched, message: fmt.Sprintf("Phone %q does not match the phone number in the CV", value)}
}

func checkSkills(value string, doc *cvDocument) fieldResult {
	var missing []string
	checked := 0

	for _, skill := range strings.Split(value, ",") {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		checked++

		if !doc.containsTerm(skill) {
			missing = append(missing, skill)
		}
	}

	if checked == 0 {
		return fieldResult{outcome: outcomeAbsent, message: "skills could not be checked"}
	}
	if len(missing) == 0 {
		return fieldResult{outcome: outcomeMatched}
	}

	quoted := make([]string, len(missing))
	for i, s := range missing {
		quoted[i] = strconv.Quote(s)
	}
	if len(missing) == 1 {
		return fieldResult{outcome: outcomeMismatched, message: fmt.Sprintf("Skill %s was not found in the CV", quoted[0])}
	}
	return fieldResult{outcome: outcomeMismatched, message: fmt.Sprintf("Skills %s were not found in the CV", strings.Join(quoted, ", "))}
}

// containsTerm reports whether term occurs in the CV, ignoring case, with
// no letter or digit directly before or after it.
func (d *cvDocument) containsTerm(term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return false
	}

	for offset := 0; offset < len(d.lower); {
		i := strings.Index(d.lower[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)

		before, _ := utf8.DecodeLastRuneInString(d.lower[:start])
		after, _ := utf8.DecodeRuneInString(d.lower[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}

		_, size := utf8.DecodeRuneInString(d.lower[start:])
		offset = start + size
	}
	return false
}

// isWordRune is false for utf8.RuneError, which the decoders return at
// either end of the text.
func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func checkExperience(value string, doc *cvDocument) fieldResult {
	m := leadingNumber.FindStringSubmatch(value)
	if m == nil {
		return fieldResult{outcome: outcomeAbsent, message: "experience could not be confirmed from the CV"}
	}
	claimed, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return fieldResult{outcome: outcomeAbsent, message: "experience could not be confirmed from the CV"}
	}

	stated := -1.0
	for _, sm := range statedYears.FindAllStringSubmatch(doc.text, -1) {
		if years, err := strconv.ParseFloat(sm[1], 64); err == nil && years > stated {
			stated = years
		}
	}

	if stated < 0 {
		return fieldResult{outcome: outcomeAbsent, message: "experience could not be confirmed from the CV"}
	}
	if claimed <= stated {
		return fieldResult{outcome: outcomeMatched}
	}
	return fieldResult{
		outcome: outcomeMismatched,
		message: fmt.Sprintf("Experience of %s years exceeds the %s years stated in the CV", m[1], strconv.FormatFloat(stated, 'f', -1, 64)),
	}
}
