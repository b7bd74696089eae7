package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tarot-service/internal/api/dto"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/service"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// ReadingsHandler manages reading-history and interpretation endpoints.
type ReadingsHandler struct {
	service *service.ReadingService
}

// NewReadingsHandler constructs handler.
func NewReadingsHandler(readingService *service.ReadingService) *ReadingsHandler {
	return &ReadingsHandler{service: readingService}
}

// SaveReading POST /readings.
func (h *ReadingsHandler) SaveReading(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reading, err := h.service.SaveReading(c.UserContext(), user, service.ReadingCreateInput{
		SpreadType:     req.SpreadType,
		Question:       req.Question,
		Cards:          req.Cards,
		Interpretation: req.Interpretation,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"reading": dto.NewReadingResponse(reading)})
}

// ListReadings GET /readings.
func (h *ReadingsHandler) ListReadings(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	readings, err := h.service.ListReadings(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		items = append(items, dto.NewReadingResponse(&readings[i]))
	}
	return c.JSON(fiber.Map{"readings": items})
}

// GetReading GET /readings/:id.
func (h *ReadingsHandler) GetReading(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	reading, err := h.service.GetReading(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reading": dto.NewReadingResponse(reading)})
}

// ClearReadings DELETE /readings.
func (h *ReadingsHandler) ClearReadings(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	deleted, err := h.service.ClearHistory(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "reading history cleared", "deleted": deleted})
}

// Interpret POST /interpretations.
func (h *ReadingsHandler) Interpret(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InterpretRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	interpretation, err := h.service.Interpret(c.UserContext(), req.Question, req.DrawnCards)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"interpretation": interpretation})
}
