package repository

import (
	"context"
	"errors"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// ClaimWithTx records the invoice inside the commission transaction. When the
// provider invoice ID was already recorded, claimed is false and the caller
// must not award commissions again: this is the idempotency barrier for
// webhook retries.
func (r *InvoiceRepository) ClaimWithTx(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) (claimed bool, err error) {
	err = tx.QueryRow(ctx,
		`INSERT INTO invoices (provider_invoice_id, user_id, total, paid_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (provider_invoice_id) DO NOTHING
		 RETURNING id, created_at`,
		inv.ProviderInvoiceID, inv.UserID, inv.Total, inv.PaidAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByProviderID fetches a recorded invoice, or nil when unknown.
func (r *InvoiceRepository) GetByProviderID(ctx context.Context, providerInvoiceID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.QueryRow(ctx,
		`SELECT id, provider_invoice_id, user_id, total, paid_at, created_at
		 FROM invoices WHERE provider_invoice_id = $1`,
		providerInvoiceID,
	).Scan(&inv.ID, &inv.ProviderInvoiceID, &inv.UserID, &inv.Total, &inv.PaidAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// ListByUser returns a user's recorded invoices, newest first.
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, provider_invoice_id, user_id, total, paid_at, created_at
		 FROM invoices
		 WHERE user_id = $1
		 ORDER BY paid_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.ProviderInvoiceID, &inv.UserID, &inv.Total, &inv.PaidAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
