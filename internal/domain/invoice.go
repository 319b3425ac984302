package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the record of one confirmed payment from the billing provider.
// The provider invoice ID is unique; claiming it inside the commission
// transaction is what makes commission awarding retry-safe.
type Invoice struct {
	ID                int64           `db:"id" json:"id"`
	ProviderInvoiceID string          `db:"provider_invoice_id" json:"provider_invoice_id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	Total             decimal.Decimal `db:"total" json:"total"`
	PaidAt            time.Time       `db:"paid_at" json:"paid_at"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}
