package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/repository"
)

// memUserRepo is an in-memory repository.UserRepository. createErr, when
// set, is returned from Create to simulate constraint violations.
type memUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) seed(user domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = &user
	copied := user
	return &copied
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

// memBookingRepo is an in-memory repository.BookingRepository with the same
// conditional-update semantics as the Postgres implementation. beforeUpdate,
// when set, runs at the top of UpdateStatus so tests can interleave a
// concurrent writer.
type memBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]*domain.Booking
	users        *memUserRepo
	clock        time.Time
	beforeUpdate func()
}

func newMemBookingRepo(users *memUserRepo) *memBookingRepo {
	return &memBookingRepo{
		bookings: make(map[string]*domain.Booking),
		users:    users,
		clock:    time.Now(),
	}
}

// tick returns strictly increasing timestamps so ordering assertions are
// deterministic.
func (r *memBookingRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.NewString()
	booking.CreatedAt = r.tick()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *booking
	return &copied, nil
}

func (r *memBookingRepo) GetDetailByID(ctx context.Context, id string) (*domain.BookingDetail, error) {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := r.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}
	reader, err := r.users.GetByID(ctx, booking.ReaderID)
	if err != nil {
		return nil, err
	}
	return &domain.BookingDetail{
		Booking:     *booking,
		UserName:    customer.Username,
		UserEmail:   customer.Email,
		UserPhone:   customer.Phone,
		ReaderName:  reader.Username,
		ReaderEmail: reader.Email,
		ReaderPhone: reader.Phone,
	}, nil
}

func (r *memBookingRepo) ListByActor(_ context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Booking
	for _, booking := range r.bookings {
		if filter.UserID != nil && booking.UserID != *filter.UserID {
			continue
		}
		if filter.ReaderID != nil && booking.ReaderID != *filter.ReaderID {
			continue
		}
		result = append(result, *booking)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memBookingRepo) CountByActor(_ context.Context, filter repository.BookingFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, booking := range r.bookings {
		if filter.UserID != nil && booking.UserID != *filter.UserID {
			continue
		}
		if filter.ReaderID != nil && booking.ReaderID != *filter.ReaderID {
			continue
		}
		total++
	}
	return total, nil
}

func (r *memBookingRepo) UpdateStatus(_ context.Context, id string, next domain.BookingStatus, from ...domain.BookingStatus) (*domain.Booking, error) {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	matched := false
	for _, status := range from {
		if booking.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return nil, pgx.ErrNoRows
	}
	booking.Status = next
	booking.UpdatedAt = r.tick()
	copied := *booking
	return &copied, nil
}

// forceStatus mutates stored state directly, bypassing the state machine.
func (r *memBookingRepo) forceStatus(id string, status domain.BookingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking, ok := r.bookings[id]; ok {
		booking.Status = status
	}
}

// memReadingRepo is an in-memory repository.ReadingRepository.
type memReadingRepo struct {
	mu       sync.Mutex
	readings map[string]*domain.Reading
	clock    time.Time
}

func newMemReadingRepo() *memReadingRepo {
	return &memReadingRepo{readings: make(map[string]*domain.Reading), clock: time.Now()}
}

func (r *memReadingRepo) Create(_ context.Context, reading *domain.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = uuid.NewString()
	r.clock = r.clock.Add(time.Second)
	reading.CreatedAt = r.clock
	copied := *reading
	r.readings[reading.ID] = &copied
	return nil
}

func (r *memReadingRepo) GetByID(_ context.Context, id string) (*domain.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reading, ok := r.readings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *reading
	return &copied, nil
}

func (r *memReadingRepo) ListByUser(_ context.Context, userID string) ([]domain.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Reading
	for _, reading := range r.readings {
		if reading.UserID == userID {
			result = append(result, *reading)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memReadingRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, reading := range r.readings {
		if reading.UserID == userID {
			delete(r.readings, id)
			deleted++
		}
	}
	return deleted, nil
}

// memUpgradeRepo is an in-memory repository.UpgradeRepository. RecordUpgrade
// mirrors the transactional implementation: a missing user leaves no record
// behind.
type memUpgradeRepo struct {
	mu      sync.Mutex
	users   *memUserRepo
	records []domain.UpgradeRecord
}

func newMemUpgradeRepo(users *memUserRepo) *memUpgradeRepo {
	return &memUpgradeRepo{users: users}
}

func (r *memUpgradeRepo) RecordUpgrade(ctx context.Context, userID string, from, to domain.Role, amountVND int64) (*domain.User, *domain.UpgradeRecord, error) {
	user, err := r.users.UpdateRole(ctx, userID, to)
	if err != nil {
		return nil, nil, err
	}
	record := domain.UpgradeRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		FromRole:  from,
		ToRole:    to,
		AmountVND: amountVND,
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return user, &record, nil
}

func (r *memUpgradeRepo) ListByUser(_ context.Context, userID string) ([]domain.UpgradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.UpgradeRecord
	for _, record := range r.records {
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	return result, nil
}
