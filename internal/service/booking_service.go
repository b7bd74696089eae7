package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/events"
	"github.com/spec-kit/tarot-service/internal/repository"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// BookingService owns the booking lifecycle: creation, the status state
// machine, and the authorization rules gating each transition. Notifications
// ride on published events and never affect operation outcomes.
type BookingService struct {
	bookings   repository.BookingRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	nowFunc    func() time.Time
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo repository.BookingRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// BookingCreateInput describes booking creation payload.
type BookingCreateInput struct {
	ReaderID    string
	ScheduledAt time.Time
	Notes       *string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		bookings:   deps.BookingRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		nowFunc:    time.Now,
	}
}

// bookingTransition is one row of the lifecycle table.
type bookingTransition struct {
	action string
	next   domain.BookingStatus
	from   []domain.BookingStatus
	event  events.EventType
}

var (
	confirmTransition = bookingTransition{
		action: "confirm",
		next:   domain.BookingStatusConfirmed,
		from:   []domain.BookingStatus{domain.BookingStatusPending},
		event:  events.EventBookingConfirmed,
	}
	rejectTransition = bookingTransition{
		action: "reject",
		next:   domain.BookingStatusRejected,
		from:   []domain.BookingStatus{domain.BookingStatusPending},
		event:  events.EventBookingRejected,
	}
	cancelTransition = bookingTransition{
		action: "cancel",
		next:   domain.BookingStatusCancelled,
		from:   []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		event:  events.EventBookingCancelled,
	}
)

// CreateBooking validates and persists a new PENDING booking, then notifies
// the reader best-effort.
func (s *BookingService) CreateBooking(ctx context.Context, customer *domain.User, input BookingCreateInput) (*domain.Booking, error) {
	if input.ReaderID == "" {
		return nil, apperrors.NewValidationError("reader_id is required", nil)
	}
	if _, err := uuid.Parse(input.ReaderID); err != nil {
		return nil, apperrors.NewValidationError("reader_id is not a valid id", nil)
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.NewValidationError("scheduled_at is required", nil)
	}
	if customer.ID == input.ReaderID {
		return nil, apperrors.NewConflict("cannot book a session with yourself", nil)
	}
	// scheduled_at == now counts as not-future.
	if !input.ScheduledAt.After(s.nowFunc()) {
		return nil, apperrors.NewValidationError("scheduled_at must be in the future", nil)
	}
	if input.Notes != nil && utf8.RuneCountInString(*input.Notes) > domain.MaxBookingNotesLength {
		return nil, apperrors.NewValidationError("notes too long", map[string]any{
			"max_length": domain.MaxBookingNotesLength,
		})
	}

	reader, err := s.users.GetByID(ctx, input.ReaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("reader", nil)
		}
		return nil, err
	}
	if !reader.IsReader() {
		return nil, apperrors.NewNotFound("reader", map[string]any{"id": input.ReaderID})
	}

	booking := &domain.Booking{
		UserID:      customer.ID,
		ReaderID:    reader.ID,
		ScheduledAt: input.ScheduledAt,
		Status:      domain.BookingStatusPending,
		Notes:       input.Notes,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publishBookingEvent(ctx, events.EventBookingCreated, booking.ID, customer.ID, "")
	return booking, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED. Allowed for the
// assigned reader or an admin.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string, actor *domain.User) (*domain.Booking, error) {
	return s.applyTransition(ctx, bookingID, actor, confirmTransition)
}

// RejectBooking moves a PENDING booking to REJECTED. Allowed for the
// assigned reader or an admin.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID string, actor *domain.User) (*domain.Booking, error) {
	return s.applyTransition(ctx, bookingID, actor, rejectTransition)
}

// CancelBooking moves a PENDING or CONFIRMED booking to CANCELLED. Allowed
// for the customer, the assigned reader, or an admin.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, actor *domain.User) (*domain.Booking, error) {
	return s.applyTransition(ctx, bookingID, actor, cancelTransition)
}

func (s *BookingService) applyTransition(ctx context.Context, bookingID string, actor *domain.User, tr bookingTransition) (*domain.Booking, error) {
	// A malformed id would otherwise reach the uuid column and come back as
	// a database error.
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, apperrors.NewNotFound("booking", nil)
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", nil)
		}
		return nil, err
	}

	if err := s.authorizeTransition(actor, booking, tr); err != nil {
		return nil, err
	}
	if !statusIn(booking.Status, tr.from) {
		return nil, transitionConflict(tr.action, booking.Status)
	}

	// Conditional update so a racing writer loses cleanly instead of
	// overwriting: zero rows means the status moved (or the row vanished)
	// between the read above and this write.
	updated, err := s.bookings.UpdateStatus(ctx, bookingID, tr.next, tr.from...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, rereadErr := s.bookings.GetByID(ctx, bookingID)
			if rereadErr != nil {
				if errors.Is(rereadErr, pgx.ErrNoRows) {
					return nil, apperrors.NewNotFound("booking", nil)
				}
				return nil, rereadErr
			}
			return nil, transitionConflict(tr.action, current.Status)
		}
		return nil, err
	}

	cancelledBy := ""
	if tr.event == events.EventBookingCancelled {
		cancelledBy = actor.ID
	}
	s.publishBookingEvent(ctx, tr.event, updated.ID, actor.ID, cancelledBy)
	return updated, nil
}

func (s *BookingService) authorizeTransition(actor *domain.User, booking *domain.Booking, tr bookingTransition) error {
	if actor.Role.AtLeast(domain.RoleAdmin) {
		return nil
	}
	switch tr.action {
	case "cancel":
		if actor.ID == booking.UserID || actor.ID == booking.ReaderID {
			return nil
		}
	default:
		if actor.ID == booking.ReaderID {
			return nil
		}
	}
	return apperrors.NewForbidden(fmt.Sprintf("not allowed to %s this booking", tr.action))
}

// ListBookings returns bookings visible to the actor, newest first, plus the
// total matching count across all pages. Admins see everything via a single
// unscoped query; readers see bookings assigned to them; everyone else sees
// their own.
func (s *BookingService) ListBookings(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Booking, int64, error) {
	filter := repository.BookingFilter{Limit: limit, Offset: offset}
	switch {
	case actor.Role.AtLeast(domain.RoleAdmin):
		// unscoped
	case actor.Role == domain.RoleRender:
		filter.ReaderID = &actor.ID
	default:
		filter.UserID = &actor.ID
	}
	items, err := s.bookings.ListByActor(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookings.CountByActor(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetBooking returns a booking visible to the customer, the assigned reader,
// or an admin.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string, actor *domain.User) (*domain.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, apperrors.NewNotFound("booking", nil)
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", nil)
		}
		return nil, err
	}
	if !actor.Role.AtLeast(domain.RoleAdmin) && actor.ID != booking.UserID && actor.ID != booking.ReaderID {
		return nil, apperrors.NewForbidden("not allowed to view this booking")
	}
	return booking, nil
}

// publishBookingEvent emits the event carrying the joined booking detail.
// Any failure here is absorbed: the state transition already committed.
func (s *BookingService) publishBookingEvent(ctx context.Context, eventType events.EventType, bookingID, actorID, cancelledBy string) {
	if s.dispatcher == nil {
		return
	}
	detail, err := s.bookings.GetDetailByID(ctx, bookingID)
	if err != nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BookingID: bookingID,
		ActorID:   actorID,
		Timestamp: s.nowFunc(),
		Payload: events.BookingEventPayload{
			Booking:     detail,
			CancelledBy: cancelledBy,
		},
	})
}

func statusIn(status domain.BookingStatus, set []domain.BookingStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func transitionConflict(action string, current domain.BookingStatus) error {
	return apperrors.NewConflict(
		fmt.Sprintf("cannot %s a booking in status %s", action, current),
		map[string]any{"current_status": current},
	)
}
