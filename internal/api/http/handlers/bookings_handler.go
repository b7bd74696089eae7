package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tarot-service/internal/api/dto"
	"github.com/spec-kit/tarot-service/internal/auth"
	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/service"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// BookingsHandler manages booking endpoints.
type BookingsHandler struct {
	service *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// CreateBooking POST /bookings.
func (h *BookingsHandler) CreateBooking(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ReaderID == "" || req.ScheduledAt == "" {
		return apperrors.NewValidationError("reader_id and scheduled_at required", nil)
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return apperrors.NewValidationError("scheduled_at is not a valid RFC 3339 timestamp", nil)
	}

	booking, err := h.service.CreateBooking(c.UserContext(), user, service.BookingCreateInput{
		ReaderID:    req.ReaderID,
		ScheduledAt: scheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"booking": dto.NewBookingResponse(booking)})
}

// ListBookings GET /bookings.
func (h *BookingsHandler) ListBookings(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 100)

	bookings, total, err := h.service.ListBookings(c.UserContext(), user, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bookings": dto.NewBookingResponses(bookings), "total": total})
}

// GetBooking GET /bookings/:id.
func (h *BookingsHandler) GetBooking(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	booking, err := h.service.GetBooking(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"booking": dto.NewBookingResponse(booking)})
}

// ConfirmBooking PATCH /bookings/:id/confirm.
func (h *BookingsHandler) ConfirmBooking(c *fiber.Ctx) error {
	return h.transition(c, h.service.ConfirmBooking)
}

// RejectBooking PATCH /bookings/:id/reject.
func (h *BookingsHandler) RejectBooking(c *fiber.Ctx) error {
	return h.transition(c, h.service.RejectBooking)
}

// CancelBooking PATCH /bookings/:id/cancel.
func (h *BookingsHandler) CancelBooking(c *fiber.Ctx) error {
	return h.transition(c, h.service.CancelBooking)
}

func (h *BookingsHandler) transition(c *fiber.Ctx, op func(context.Context, string, *domain.User) (*domain.Booking, error)) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	booking, err := op(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"booking": dto.NewBookingResponse(booking)})
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
