package services

import "errors"

var (
	ErrMissingFile                  = errors.New("no file uploaded")
	ErrUnsupportedType              = errors.New("only PDF files are allowed")
	ErrFileTooLarge                 = errors.New("file size exceeds limit")
	ErrUnreadableDocument           = errors.New("document is unreadable")
	ErrValidationServiceUnavailable = errors.New("validation service unavailable")
)
