package dto

import (
	"time"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// CreateBookingRequest payload for new bookings. ScheduledAt is RFC 3339.
type CreateBookingRequest struct {
	ReaderID    string  `json:"reader_id"`
	ScheduledAt string  `json:"scheduled_at"`
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse is the wire form of a booking.
type BookingResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	ReaderID    string               `json:"reader_id"`
	ScheduledAt time.Time            `json:"scheduled_at"`
	Status      domain.BookingStatus `json:"status"`
	Notes       *string              `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewBookingResponse maps a domain booking.
func NewBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID,
		UserID:      booking.UserID,
		ReaderID:    booking.ReaderID,
		ScheduledAt: booking.ScheduledAt,
		Status:      booking.Status,
		Notes:       booking.Notes,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}

// NewBookingResponses maps a slice of domain bookings.
func NewBookingResponses(bookings []domain.Booking) []BookingResponse {
	items := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, NewBookingResponse(&bookings[i]))
	}
	return items
}
