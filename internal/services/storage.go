package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	PDFContentType = "application/pdf"

	// DefaultMaxFileSize is the upload ceiling in bytes (5 MiB).
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
)

type StorageService interface {
	SaveFile(file *multipart.FileHeader) (string, error)
	Resolve(filePath string) (string, error)
	EnsureUploadDir() error
	MaxFileSize() int64
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile checks the upload and writes it to <root>/<uuid>/<original name>.
// Nothing is written when a check fails.
func (s *storageService) SaveFile(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrMissingFile
	}

	if mediaType(file.Header.Get("Content-Type")) != PDFContentType {
		return "", ErrUnsupportedType
	}

	if file.Size > s.maxFileSize {
		return "", ErrFileTooLarge
	}

	if err := s.EnsureUploadDir(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.store(storedName(file.Filename), src)
}

// store writes src into a fresh <uuid> directory. On failure the directory
// is removed so no partial upload is left behind.
func (s *storageService) store(name string, src io.Reader) (string, error) {
	dir := filepath.Join(s.uploadPath, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	filePath := filepath.Join(dir, name)

	if err := writeFile(filePath, src); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}

	return filePath, nil
}

func writeFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to save file: %w", err)
	}

	// write errors such as a full disk may only surface on close
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// Resolve turns a path handed out by SaveFile back into a readable file.
// Paths outside the upload root are rejected.
func (s *storageService) Resolve(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnreadableDocument)
	}

	root, err := filepath.Abs(s.uploadPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the upload directory", ErrUnreadableDocument, filePath)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a file", ErrUnreadableDocument, filePath)
	}

	return abs, nil
}

func mediaType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func storedName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload.pdf"
	}
	return name
}
