package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types recorded in the balance ledger.
const (
	TxTypeCommission       = "commission"
	TxTypeWithdrawal       = "withdrawal"
	TxTypeWithdrawalRefund = "withdrawal_refund"
	TxTypeAdjustment       = "adjustment"
)

// Transaction is one signed balance mutation. Every credit or debit against a
// user's balance writes exactly one row here.
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    decimal.Decimal        `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
