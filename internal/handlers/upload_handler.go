package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/metrics"
	"alfredoptarigan/cv-submission/internal/models"
	"alfredoptarigan/cv-submission/internal/services"
)

type UploadHandler struct {
	storageService services.StorageService
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewUploadHandler(
	storageService services.StorageService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UploadHandler{
		storageService: storageService,
		metrics:        m,
		logger:         logger,
	}
}

// HandleUpload handles POST /upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		h.metrics.ObserveUpload("missing")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		status, message, result := uploadError(err, h.storageService.MaxFileSize())
		h.metrics.ObserveUpload(result)

		if status == fiber.StatusInternalServerError {
			h.logger.Error("upload.save_failed", zap.String("filename", file.Filename), zap.Error(err))
		} else {
			h.logger.Info("upload.rejected", zap.String("filename", file.Filename), zap.Error(err))
		}

		return c.Status(status).JSON(fiber.Map{
			"error": message,
		})
	}

	h.metrics.ObserveUpload("accepted")
	h.logger.Info("upload.stored", zap.String("file_path", filePath), zap.Int64("size", file.Size))

	return c.JSON(models.UploadResponse{FilePath: filePath})
}

func uploadError(err error, maxFileSize int64) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrMissingFile):
		return fiber.StatusBadRequest, "No file uploaded", "missing"
	case errors.Is(err, services.ErrUnsupportedType):
		return fiber.StatusBadRequest, "Only PDF files are allowed", "unsupported_type"
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusBadRequest, FileTooLargeMessage(maxFileSize), "too_large"
	default:
		return fiber.StatusInternalServerError, "Failed to save file", "error"
	}
}
