package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tarot-service/internal/config"
	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/events"
)

// Notifier delivers one message over one channel (email, SMS). Callers treat
// failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// LogEmailNotifier stands in for an SMTP-backed sender.
type LogEmailNotifier struct {
	logger *zap.Logger
	from   string
}

// NewLogEmailNotifier constructs the stub email sender.
func NewLogEmailNotifier(logger *zap.Logger, from string) *LogEmailNotifier {
	return &LogEmailNotifier{logger: logger, from: from}
}

func (n *LogEmailNotifier) Notify(_ context.Context, recipient, subject, body string) error {
	n.logger.Info("email notification",
		zap.String("from", n.from),
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// LogSMSNotifier stands in for an SMS-gateway sender.
type LogSMSNotifier struct {
	logger *zap.Logger
	from   string
}

// NewLogSMSNotifier constructs the stub SMS sender.
func NewLogSMSNotifier(logger *zap.Logger, from string) *LogSMSNotifier {
	return &LogSMSNotifier{logger: logger, from: from}
}

func (n *LogSMSNotifier) Notify(_ context.Context, recipient, _ string, body string) error {
	n.logger.Info("sms notification",
		zap.String("from", n.from),
		zap.String("to", recipient),
		zap.String("body", body))
	return nil
}

// NotificationService fans booking events out to email and SMS. All delivery
// is best-effort: errors are logged and never reach the booking flow.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	email      Notifier
	sms        Notifier
}

// NewNotificationService creates the service with the stub senders from cfg.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		email:      NewLogEmailNotifier(logger, cfg.EmailFrom),
		sms:        NewLogSMSNotifier(logger, cfg.SMSFrom),
	}
}

// NewNotificationServiceWithSenders wires custom senders; used in tests.
func NewNotificationServiceWithSenders(dispatcher events.Dispatcher, logger *zap.Logger, email, sms Notifier) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger, email: email, sms: sms}
}

// RegisterHandlers subscribes to booking events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	n.dispatcher.Subscribe(events.EventBookingConfirmed, n.handleBookingConfirmed)
	n.dispatcher.Subscribe(events.EventBookingRejected, n.handleBookingRejected)
	n.dispatcher.Subscribe(events.EventBookingCancelled, n.handleBookingCancelled)
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	booking, ok := bookingFromEvent(event)
	if !ok {
		return nil
	}
	subject := "New booking request"
	body := fmt.Sprintf("%s requested a session on %s.%s",
		booking.UserName, formatSchedule(booking), notesSuffix(booking))
	n.send(ctx, booking.ReaderEmail, booking.ReaderPhone, subject, body)
	return nil
}

func (n *NotificationService) handleBookingConfirmed(ctx context.Context, event events.Event) error {
	booking, ok := bookingFromEvent(event)
	if !ok {
		return nil
	}
	subject := "Booking confirmed"
	body := fmt.Sprintf("Your session with %s on %s is confirmed.",
		booking.ReaderName, formatSchedule(booking))
	n.send(ctx, booking.UserEmail, booking.UserPhone, subject, body)
	return nil
}

func (n *NotificationService) handleBookingRejected(ctx context.Context, event events.Event) error {
	booking, ok := bookingFromEvent(event)
	if !ok {
		return nil
	}
	subject := "Booking declined"
	body := fmt.Sprintf("%s is unable to take your session on %s. Please try another time or reader.",
		booking.ReaderName, formatSchedule(booking))
	n.send(ctx, booking.UserEmail, booking.UserPhone, subject, body)
	return nil
}

// handleBookingCancelled notifies the counterparty of whoever cancelled.
// An admin cancellation notifies both sides.
func (n *NotificationService) handleBookingCancelled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BookingEventPayload)
	if !ok || payload.Booking == nil {
		return nil
	}
	booking := payload.Booking
	subject := "Booking cancelled"
	schedule := formatSchedule(booking)

	switch payload.CancelledBy {
	case booking.UserID:
		body := fmt.Sprintf("%s cancelled the session on %s.", booking.UserName, schedule)
		n.send(ctx, booking.ReaderEmail, booking.ReaderPhone, subject, body)
	case booking.ReaderID:
		body := fmt.Sprintf("%s cancelled your session on %s.", booking.ReaderName, schedule)
		n.send(ctx, booking.UserEmail, booking.UserPhone, subject, body)
	default:
		body := fmt.Sprintf("The session on %s was cancelled by an administrator.", schedule)
		n.send(ctx, booking.UserEmail, booking.UserPhone, subject, body)
		n.send(ctx, booking.ReaderEmail, booking.ReaderPhone, subject, body)
	}
	return nil
}

// send delivers over both channels, skipping SMS when no phone is on file.
func (n *NotificationService) send(ctx context.Context, email string, phone *string, subject, body string) {
	if email != "" {
		if err := n.email.Notify(ctx, email, subject, body); err != nil {
			n.logger.Warn("email delivery failed", zap.String("to", email), zap.Error(err))
		}
	}
	if phone != nil && *phone != "" {
		if err := n.sms.Notify(ctx, *phone, subject, body); err != nil {
			n.logger.Warn("sms delivery failed", zap.String("to", *phone), zap.Error(err))
		}
	}
}

func bookingFromEvent(event events.Event) (*domain.BookingDetail, bool) {
	payload, ok := event.Payload.(events.BookingEventPayload)
	if !ok || payload.Booking == nil {
		return nil, false
	}
	return payload.Booking, true
}

func formatSchedule(booking *domain.BookingDetail) string {
	return booking.ScheduledAt.Format("2006-01-02 15:04")
}

func notesSuffix(booking *domain.BookingDetail) string {
	if booking.Notes == nil || *booking.Notes == "" {
		return ""
	}
	return fmt.Sprintf(" Notes: %s", *booking.Notes)
}
