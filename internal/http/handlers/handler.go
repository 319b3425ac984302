package handlers

import (
	"sportpredict/internal/config"
	"sportpredict/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler bundles the services the HTTP layer depends on.
type Handler struct {
	DB                *pgxpool.Pool
	Cfg               *config.Config
	ReferralService   *service.ReferralService
	CommissionService *service.CommissionService
	BalanceService    *service.BalanceService
	AuditService      *service.AuditService
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config, commission *service.CommissionService) *Handler {
	return &Handler{
		DB:                db,
		Cfg:               cfg,
		ReferralService:   service.NewReferralService(db),
		CommissionService: commission,
		BalanceService:    service.NewBalanceService(db, cfg.MinWithdrawalAmount),
		AuditService:      service.NewAuditService(db),
	}
}

// getUserID extracts the authenticated user ID set by the JWT middleware.
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
