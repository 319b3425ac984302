package http

import (
	"time"

	"sportpredict/internal/config"
	"sportpredict/internal/domain"
	"sportpredict/internal/http/handlers"
	"sportpredict/internal/http/middleware"
	"sportpredict/internal/service"
	"sportpredict/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the full API surface. The returned hub receives
// commission events from the commission service after each award commits.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) *ws.Hub {
	hub := ws.NewHub()

	rates := service.RateTable{
		domain.LevelDirect:   cfg.DirectCommissionRate,
		domain.LevelIndirect: cfg.IndirectCommissionRate,
	}
	commission := service.NewCommissionService(db, rates, hub)

	h := handlers.NewHandler(db, cfg, commission)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	auth := v1.Group("/auth")
	auth.Use(middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow))
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	v1.GET("/me", middleware.JWT(), h.Me)

	// Balance & withdrawals
	v1.GET("/balance", middleware.JWT(), h.GetBalance)
	v1.GET("/transactions", middleware.JWT(), h.GetTransactions)
	withdrawRL := middleware.UserRateLimit(5, time.Minute)
	v1.POST("/withdrawals", middleware.JWT(), withdrawRL, h.RequestWithdrawal)
	v1.GET("/withdrawals", middleware.JWT(), h.GetWithdrawals)
	v1.GET("/withdrawals/:reference", middleware.JWT(), h.GetWithdrawal)

	// Plans & subscriptions
	v1.GET("/plans", h.ListPlans)
	v1.GET("/subscription", middleware.JWT(), h.GetSubscription)
	v1.GET("/invoices", middleware.JWT(), h.GetInvoices)

	// Referral dashboard
	referral := v1.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/network", h.GetReferralNetwork)
		referral.GET("/earnings", h.GetReferralEarnings)
		referral.POST("/apply", middleware.UserRateLimit(10, time.Minute), h.ApplyReferralCode)
	}

	// Billing provider webhook (authenticated by shared secret, not JWT)
	v1.POST("/billing/webhook", h.BillingWebhook)

	// Live earning events for the referral dashboard
	r.GET("/ws", middleware.JWT(), h.WS(hub))

	return hub
}
