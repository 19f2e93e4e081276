package models

type SubmissionStatus string

const (
	StatusSuccess SubmissionStatus = "success"
	StatusFail    SubmissionStatus = "fail"
)

type SubmissionRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	PdfPath    string `json:"pdfPath" validate:"required"`
}

type SubmissionResponse struct {
	Status  SubmissionStatus `json:"status"`
	Message string           `json:"message"`
	Errors  []string         `json:"errors,omitempty"`
}

type UploadResponse struct {
	FilePath string `json:"filePath"`
}
