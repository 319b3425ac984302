package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralLevel is the distance between the commission receiver and the
// referred user. The chain is capped at two levels.
type ReferralLevel int

const (
	// LevelDirect marks a user introduced straight by the referrer's code.
	LevelDirect ReferralLevel = 1
	// LevelIndirect marks a user introduced by one of the referrer's own
	// direct referrals (the "grandparent" relationship).
	LevelIndirect ReferralLevel = 2
)

func (l ReferralLevel) String() string {
	switch l {
	case LevelDirect:
		return "direct"
	case LevelIndirect:
		return "indirect"
	default:
		return "unknown"
	}
}

// ReferralEdge records that referrer introduced referred at the given level.
// Edges are created once at registration and never updated or deleted.
type ReferralEdge struct {
	ID         int64         `db:"id" json:"id"`
	ReferrerID int64         `db:"referrer_id" json:"referrer_id"`
	ReferredID int64         `db:"referred_id" json:"referred_id"`
	Level      ReferralLevel `db:"level" json:"level"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// ReferralEarning is an append-only ledger row recording one commission
// payout event against a referral edge.
type ReferralEarning struct {
	ID         int64           `db:"id" json:"id"`
	EdgeID     int64           `db:"edge_id" json:"edge_id"`
	ReceiverID int64           `db:"receiver_id" json:"receiver_id"`
	InvoiceID  int64           `db:"invoice_id" json:"invoice_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// NetworkMember is one user entry in the rendered referral tree.
type NetworkMember struct {
	UserID       int64           `json:"user_id"`
	Username     string          `json:"username"`
	Earnings     decimal.Decimal `json:"earnings"`
	SecondLevel  []NetworkMember `json:"second_level,omitempty"`
	JoinedAt     time.Time       `json:"joined_at"`
}

// ReferralCounts breaks direct referrals down by subscription status.
type ReferralCounts struct {
	ActiveSubscribers   int `json:"active_subscribers"`
	InactiveSubscribers int `json:"inactive_subscribers"`
}

// ReferralNetwork is the two-level tree rendered on the referral dashboard.
type ReferralNetwork struct {
	FirstLevel             []NetworkMember `json:"first_level"`
	DirectReferralsCount   int             `json:"direct_referrals_count"`
	IndirectReferralsCount int             `json:"indirect_referrals_count"`
	TotalEarnings          decimal.Decimal `json:"total_earnings"`
	ReferralCounts         ReferralCounts  `json:"referral_counts"`
}
