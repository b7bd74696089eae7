package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tarot-service/internal/domain"
)

// UpgradeRepository stores role-upgrade payment records.
type UpgradeRepository interface {
	// RecordUpgrade changes the user's role and writes the payment record in
	// one transaction, so a failed insert never leaves a role change without
	// its receipt. Returns pgx.ErrNoRows when the user does not exist.
	RecordUpgrade(ctx context.Context, userID string, from, to domain.Role, amountVND int64) (*domain.User, *domain.UpgradeRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.UpgradeRecord, error)
}

type upgradeRepository struct {
	pool *pgxpool.Pool
}

// NewUpgradeRepository instantiates repository.
func NewUpgradeRepository(pool *pgxpool.Pool) UpgradeRepository {
	return &upgradeRepository{pool: pool}
}

func (r *upgradeRepository) RecordUpgrade(ctx context.Context, userID string, from, to domain.Role, amountVND int64) (*domain.User, *domain.UpgradeRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const userQuery = `UPDATE users SET role=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + userColumns
	var user domain.User
	if err := tx.QueryRow(ctx, userQuery, to, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, nil, err
	}

	const recordQuery = `
        INSERT INTO upgrade_records (user_id, from_role, to_role, amount_vnd)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	record := &domain.UpgradeRecord{
		UserID:    userID,
		FromRole:  from,
		ToRole:    to,
		AmountVND: amountVND,
	}
	if err := tx.QueryRow(ctx, recordQuery, userID, from, to, amountVND).Scan(&record.ID, &record.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &user, record, nil
}

func (r *upgradeRepository) ListByUser(ctx context.Context, userID string) ([]domain.UpgradeRecord, error) {
	const query = `
        SELECT id, user_id, from_role, to_role, amount_vnd, created_at
        FROM upgrade_records WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UpgradeRecord
	for rows.Next() {
		var record domain.UpgradeRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.FromRole,
			&record.ToRole,
			&record.AmountVND,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
