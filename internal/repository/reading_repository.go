package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// ReadingRepository stores tarot reading history. Cards are persisted as a
// JSONB column.
type ReadingRepository interface {
	Create(ctx context.Context, reading *domain.Reading) error
	GetByID(ctx context.Context, id string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reading, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type readingRepository struct {
	pool *pgxpool.Pool
}

// NewReadingRepository instantiates repository.
func NewReadingRepository(pool *pgxpool.Pool) ReadingRepository {
	return &readingRepository{pool: pool}
}

func (r *readingRepository) Create(ctx context.Context, reading *domain.Reading) error {
	cards, err := json.Marshal(reading.Cards)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO readings (user_id, spread_type, question, cards, interpretation)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		reading.UserID,
		reading.SpreadType,
		reading.Question,
		cards,
		reading.Interpretation,
	).Scan(&reading.ID, &reading.CreatedAt)
}

func (r *readingRepository) GetByID(ctx context.Context, id string) (*domain.Reading, error) {
	const query = `
        SELECT id, user_id, spread_type, question, cards, interpretation, created_at
        FROM readings WHERE id=$1`
	return scanReading(r.pool.QueryRow(ctx, query, id))
}

func (r *readingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reading, error) {
	const query = `
        SELECT id, user_id, spread_type, question, cards, interpretation, created_at
        FROM readings WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *reading)
	}
	return result, rows.Err()
}

func (r *readingRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM readings WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanReading(row pgx.Row) (*domain.Reading, error) {
	var reading domain.Reading
	var cards []byte
	if err := row.Scan(
		&reading.ID,
		&reading.UserID,
		&reading.SpreadType,
		&reading.Question,
		&cards,
		&reading.Interpretation,
		&reading.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &reading.Cards); err != nil {
			return nil, err
		}
	}
	return &reading, nil
}
