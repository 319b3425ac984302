package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64           `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	Username     string          `db:"username" json:"username"`
	PasswordHash string          `db:"password_hash" json:"-"`
	ReferralCode string          `db:"referral_code" json:"referral_code"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
