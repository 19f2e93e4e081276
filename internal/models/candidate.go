package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the persisted form of an accepted submission.
type Candidate struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   string    `gorm:"type:text" json:"fullName"`
	Email      string    `gorm:"type:text" json:"email"`
	Phone      string    `gorm:"type:text" json:"phone"`
	Skills     string    `gorm:"type:text" json:"skills"`
	Experience string    `gorm:"type:text" json:"experience"`
	PdfPath    string    `gorm:"type:text" json:"pdfPath"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// NewCandidate copies the submitted fields into a new record.
func NewCandidate(req SubmissionRequest) *Candidate {
	return &Candidate{
		ID:         uuid.New(),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Skills:     req.Skills,
		Experience: req.Experience,
		PdfPath:    req.PdfPath,
		CreatedAt:  time.Now(),
	}
}
