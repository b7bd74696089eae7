package domain

import "time"

// BookingStatus enumerates lifecycle states for bookings.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	// BookingStatusCompleted is terminal and currently unreachable; reserved
	// for a post-session flow.
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Terminal reports whether no further transition is permitted.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// MaxBookingNotesLength bounds the customer-supplied notes field.
const MaxBookingNotesLength = 1000

// Booking is a scheduled appointment between a customer and a reader.
// UserID, ReaderID and ScheduledAt are immutable after creation; Status moves
// only through the transitions enforced by the booking service.
type Booking struct {
	ID          string
	UserID      string
	ReaderID    string
	ScheduledAt time.Time
	Status      BookingStatus
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingDetail is a booking joined with actor display and contact fields,
// used for notification rendering.
type BookingDetail struct {
	Booking
	UserName    string
	UserEmail   string
	UserPhone   *string
	ReaderName  string
	ReaderEmail string
	ReaderPhone *string
}
