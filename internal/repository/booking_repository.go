package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// BookingFilter scopes a booking listing to one side of the appointment.
// Both fields nil means an unscoped (admin) listing.
type BookingFilter struct {
	UserID   *string
	ReaderID *string
	Limit    int
	Offset   int
}

// BookingRepository encapsulates booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// GetDetailByID returns the booking joined with both actors' display and
	// contact fields.
	GetDetailByID(ctx context.Context, id string) (*domain.BookingDetail, error)
	// ListByActor returns bookings ordered created_at DESC, id DESC (id is
	// the stable tiebreaker for rows created in the same instant).
	ListByActor(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// CountByActor returns the total matching count, ignoring Limit/Offset.
	CountByActor(ctx context.Context, filter BookingFilter) (int64, error)
	// UpdateStatus conditionally moves a booking to next only when its stored
	// status is still one of from. Returns pgx.ErrNoRows when no row matched,
	// i.e. the booking is gone or another writer got there first.
	UpdateStatus(ctx context.Context, id string, next domain.BookingStatus, from ...domain.BookingStatus) (*domain.Booking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingColumns = `id, user_id, reader_id, scheduled_at, status, notes, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (user_id, reader_id, scheduled_at, status, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		booking.UserID,
		booking.ReaderID,
		booking.ScheduledAt,
		booking.Status,
		booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id=$1`
	var booking domain.Booking
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ReaderID,
		&booking.ScheduledAt,
		&booking.Status,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) GetDetailByID(ctx context.Context, id string) (*domain.BookingDetail, error) {
	const query = `
        SELECT b.id, b.user_id, b.reader_id, b.scheduled_at, b.status, b.notes, b.created_at, b.updated_at,
               u.username, u.email, u.phone,
               rd.username, rd.email, rd.phone
        FROM bookings b
        JOIN users u ON u.id = b.user_id
        JOIN users rd ON rd.id = b.reader_id
        WHERE b.id=$1`
	var detail domain.BookingDetail
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.ReaderID,
		&detail.ScheduledAt,
		&detail.Status,
		&detail.Notes,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.UserName,
		&detail.UserEmail,
		&detail.UserPhone,
		&detail.ReaderName,
		&detail.ReaderEmail,
		&detail.ReaderPhone,
	); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *bookingRepository) ListByActor(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	where, args := bookingFilterWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		bookingColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) CountByActor(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := bookingFilterWhere(filter)
	query := `SELECT COUNT(*) FROM bookings WHERE ` + where

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func bookingFilterWhere(filter BookingFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.ReaderID != nil {
		args = append(args, *filter.ReaderID)
		clauses = append(clauses, fmt.Sprintf("reader_id=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, next domain.BookingStatus, from ...domain.BookingStatus) (*domain.Booking, error) {
	args := []any{next, id}
	placeholders := make([]string, len(from))
	for i, status := range from {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`
        UPDATE bookings SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status IN (%s)
        RETURNING `+bookingColumns, strings.Join(placeholders, ","))

	var booking domain.Booking
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ReaderID,
		&booking.ScheduledAt,
		&booking.Status,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var result []domain.Booking
	for rows.Next() {
		var booking domain.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ReaderID,
			&booking.ScheduledAt,
			&booking.Status,
			&booking.Notes,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, booking)
	}
	return result, rows.Err()
}
