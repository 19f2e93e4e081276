package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-submission/internal/metrics"
)

const uploadRoute = "/api/v1/upload"

// FileTooLargeMessage is the upload size error for the configured limit,
// "File size exceeds 5MB limit" for the default.
func FileTooLargeMessage(maxFileSize int64) string {
	return fmt.Sprintf("File size exceeds %s limit", formatSize(maxFileSize))
}

func formatSize(n int64) string {
	switch {
	case n > 0 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n > 0 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// NewErrorHandler renders errors that escape the handlers as JSON. Bodies
// fiber refuses before routing are reported on the upload route with the
// same message the upload handler uses.
func NewErrorHandler(maxFileSize int64, m *metrics.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if code == fiber.StatusRequestEntityTooLarge && strings.TrimRight(c.Path(), "/") == uploadRoute {
			m.ObserveUpload("too_large")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": FileTooLargeMessage(maxFileSize),
			})
		}

		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "Internal server error"
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}
