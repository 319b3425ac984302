package domain

import "time"

// Audit actions
const (
	AuditActionRegister          = "register"
	AuditActionLogin             = "login"
	AuditActionReferralAttach    = "referral_attach"
	AuditActionCommissionAward   = "commission_award"
	AuditActionWithdrawalRequest = "withdrawal_request"
	AuditActionWithdrawalUpdate  = "withdrawal_update"
)

// Audit categories
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryReferral = "referral"
	AuditCategoryBilling  = "billing"
	AuditCategoryBalance  = "balance"
)

type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details,omitempty"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
