package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func TestStorageService_SaveFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	storage := NewStorageService(root, DefaultMaxFileSize)

	content := []byte("%PDF-1.4 fake body \x00\x01\x02")
	path, err := storage.SaveFile(newFileHeader(t, "cv.pdf", PDFContentType, content))
	require.NoError(t, err)

	assert.Equal(t, "cv.pdf", filepath.Base(path))
	assert.Equal(t, root, filepath.Dir(filepath.Dir(path)))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestStorageService_SaveFileSameNameDoesNotOverwrite(t *testing.T) {
	storage := NewStorageService(t.TempDir(), DefaultMaxFileSize)

	first, err := storage.SaveFile(newFileHeader(t, "cv.pdf", PDFContentType, []byte("first")))
	require.NoError(t, err)
	second, err := storage.SaveFile(newFileHeader(t, "cv.pdf", PDFContentType, []byte("second")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	got, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestStorageService_SaveFileRejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int
		wantErr     error
	}{
		{"plain text", "text/plain", 10, ErrUnsupportedType},
		{"octet stream", "application/octet-stream", 10, ErrUnsupportedType},
		{"word document", "application/msword", 10, ErrUnsupportedType},
		{"one byte over the limit", PDFContentType, int(DefaultMaxFileSize) + 1, ErrFileTooLarge},
		{"six megabytes", PDFContentType, 6 * 1024 * 1024, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "uploads")
			storage := NewStorageService(root, DefaultMaxFileSize)

			_, err := storage.SaveFile(newFileHeader(t, "cv.pdf", tt.contentType, bytes.Repeat([]byte("a"), tt.size)))
			assert.ErrorIs(t, err, tt.wantErr)

			_, statErr := os.Stat(root)
			assert.True(t, os.IsNotExist(statErr), "nothing should be written on rejection")
		})
	}
}

func TestStorageService_SaveFileAtLimit(t *testing.T) {
	storage := NewStorageService(t.TempDir(), DefaultMaxFileSize)

	path, err := storage.SaveFile(newFileHeader(t, "cv.pdf", PDFContentType, bytes.Repeat([]byte("a"), int(DefaultMaxFileSize))))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxFileSize, info.Size())
}

func TestStorageService_SaveFileMissing(t *testing.T) {
	storage := NewStorageService(t.TempDir(), DefaultMaxFileSize)

	_, err := storage.SaveFile(nil)
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestStorageService_Resolve(t *testing.T) {
	root := t.TempDir()
	storage := NewStorageService(root, DefaultMaxFileSize)

	path, err := storage.SaveFile(newFileHeader(t, "cv.pdf", PDFContentType, []byte("pdf")))
	require.NoError(t, err)

	resolved, err := storage.Resolve(path)
	require.NoError(t, err)
	assert.FileExists(t, resolved)

	outside := filepath.Join(t.TempDir(), "secret.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

	for _, bad := range []string{
		"",
		outside,
		filepath.Join(root, "..", "secret.pdf"),
		filepath.Join(root, "missing", "cv.pdf"),
		root,
		filepath.Dir(path),
	} {
		_, err := storage.Resolve(bad)
		assert.ErrorIs(t, err, ErrUnreadableDocument, "path %q", bad)
	}
}

func TestStorageService_FailedWriteLeavesNothing(t *testing.T) {
	root := t.TempDir()
	storage := NewStorageService(root, DefaultMaxFileSize).(*storageService)

	src := io.MultiReader(bytes.NewReader([]byte("%PDF-1.4 partial")), iotest.ErrReader(errors.New("connection reset")))

	path, err := storage.store("cv.pdf", src)
	require.Error(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial upload directory should be removed")
}

func TestStorageService_MaxFileSize(t *testing.T) {
	assert.Equal(t, int64(1024), NewStorageService(t.TempDir(), 1024).MaxFileSize())
	assert.Equal(t, DefaultMaxFileSize, NewStorageService(t.TempDir(), 0).MaxFileSize())
}
