package repository

import (
	"context"
	"time"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `id, reference, user_id, amount, method, destination, status, COALESCE(admin_notes, ''), created_at, processed_at`

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.Reference, &w.UserID, &w.Amount, &w.Method,
		&w.Destination, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWithTx inserts a pending withdrawal request inside the same
// transaction that debits the balance.
func (r *WithdrawalRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	return tx.QueryRow(ctx,
		`INSERT INTO withdrawals (reference, user_id, amount, method, destination, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		w.Reference, w.UserID, w.Amount, w.Method, w.Destination, w.Status,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByReference retrieves a withdrawal by its public reference.
func (r *WithdrawalRepository) GetByReference(ctx context.Context, reference string) (*domain.Withdrawal, error) {
	return scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE reference = $1`, reference))
}

// GetByUserID returns a user's withdrawal requests, newest first.
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(&w.ID, &w.Reference, &w.UserID, &w.Amount, &w.Method,
			&w.Destination, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// GetPending returns all withdrawals awaiting review, oldest first.
func (r *WithdrawalRepository) GetPending(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE status = $1
		 ORDER BY created_at ASC`,
		domain.WithdrawalPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		if err := rows.Scan(&w.ID, &w.Reference, &w.UserID, &w.Amount, &w.Method,
			&w.Destination, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// UpdateStatusWithTx moves a withdrawal to a new status. Only pending rows
// can transition; returns false when the row was not pending (or missing).
func (r *WithdrawalRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, notes string) (bool, error) {
	now := time.Now()
	tag, err := tx.Exec(ctx,
		`UPDATE withdrawals
		 SET status = $2, admin_notes = $3, processed_at = $4
		 WHERE id = $1 AND status = $5`,
		id, status, notes, now, domain.WithdrawalPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
