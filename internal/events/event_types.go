package events

import (
	"time"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingRejected  EventType = "booking_rejected"
	EventBookingCancelled EventType = "booking_cancelled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookingID string      `json:"booking_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingEventPayload carries the joined booking for notification rendering.
// CancelledBy identifies which side triggered a cancellation so the
// notification goes to the counterparty.
type BookingEventPayload struct {
	Booking     *domain.BookingDetail `json:"booking"`
	CancelledBy string                `json:"cancelled_by,omitempty"`
}
