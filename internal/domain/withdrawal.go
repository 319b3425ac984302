package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a request to pay out accumulated referral earnings.
// The amount is debited from the balance when the request is created and
// refunded if the request is rejected.
type Withdrawal struct {
	ID          int64            `db:"id" json:"id"`
	Reference   string           `db:"reference" json:"reference"`
	UserID      int64            `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal  `db:"amount" json:"amount"`
	Method      string           `db:"method" json:"method"`
	Destination string           `db:"destination" json:"destination"`
	Status      WithdrawalStatus `db:"status" json:"status"`
	AdminNotes  string           `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}
