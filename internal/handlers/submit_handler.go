package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/models"
	"alfredoptarigan/cv-submission/internal/services"
)

type SubmitHandler struct {
	submissionService services.SubmissionService
	validate          *validator.Validate
	logger            *zap.Logger
}

func NewSubmitHandler(submissionService services.SubmissionService, logger *zap.Logger) *SubmitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SubmitHandler{
		submissionService: submissionService,
		validate:          newRequestValidator(),
		logger:            logger,
	}
}

// newRequestValidator reports fields by their JSON names.
func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// HandleSubmit handles POST /cv/submit
func (h *SubmitHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.SubmissionRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}

		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid input",
			"fields": fields,
		})
	}

	resp, err := h.submissionService.Submit(c.UserContext(), req)
	if err != nil {
		h.logger.Error("submit.failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit CV",
		})
	}

	return c.JSON(resp)
}
