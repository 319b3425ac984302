package repository

import (
	"context"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// EarningRepository persists the append-only commission ledger. Rows are
// never updated or deleted.
type EarningRepository struct {
	db *pgxpool.Pool
}

func NewEarningRepository(db *pgxpool.Pool) *EarningRepository {
	return &EarningRepository{db: db}
}

// CreateWithTx appends an earning row inside the commission transaction.
func (r *EarningRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, e *domain.ReferralEarning) error {
	return tx.QueryRow(ctx,
		`INSERT INTO referral_earnings (edge_id, receiver_id, invoice_id, amount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.EdgeID, e.ReceiverID, e.InvoiceID, e.Amount,
	).Scan(&e.ID, &e.CreatedAt)
}

// SumByReceiver returns the total commissions ever credited to a user.
func (r *EarningRepository) SumByReceiver(ctx context.Context, receiverID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM referral_earnings WHERE receiver_id = $1`,
		receiverID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumByEdges returns per-edge earning totals for the given edges. Edges with
// no earnings are simply absent from the map.
func (r *EarningRepository) SumByEdges(ctx context.Context, edgeIDs []int64) (map[int64]decimal.Decimal, error) {
	sums := make(map[int64]decimal.Decimal, len(edgeIDs))
	if len(edgeIDs) == 0 {
		return sums, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT edge_id, SUM(amount) FROM referral_earnings
		 WHERE edge_id = ANY($1)
		 GROUP BY edge_id`,
		edgeIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var edgeID int64
		var sum decimal.Decimal
		if err := rows.Scan(&edgeID, &sum); err != nil {
			return nil, err
		}
		sums[edgeID] = sum
	}
	return sums, rows.Err()
}

// ListByReceiver returns recent earning rows for a user, newest first.
func (r *EarningRepository) ListByReceiver(ctx context.Context, receiverID int64, limit int) ([]domain.ReferralEarning, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, edge_id, receiver_id, invoice_id, amount, created_at
		 FROM referral_earnings
		 WHERE receiver_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		receiverID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []domain.ReferralEarning
	for rows.Next() {
		var e domain.ReferralEarning
		if err := rows.Scan(&e.ID, &e.EdgeID, &e.ReceiverID, &e.InvoiceID, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, rows.Err()
}
