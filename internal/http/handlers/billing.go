package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"sportpredict/internal/domain"
	"sportpredict/internal/logger"
	"sportpredict/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingEvent is the normalized webhook payload from the billing provider.
type BillingEvent struct {
	Type      string `json:"type" binding:"required"`
	UserID    int64  `json:"user_id" binding:"required"`
	InvoiceID string `json:"invoice_id"`
	Total     string `json:"total"`
	PaidAt    int64  `json:"paid_at"`

	SubscriptionID string `json:"subscription_id"`
	PlanCode       string `json:"plan_code"`
	PeriodStart    int64  `json:"period_start"`
	PeriodEnd      int64  `json:"period_end"`
	Status         string `json:"status"`
}

// BillingWebhook ingests invoice and subscription events. Invoice-paid
// events drive the commission fan-out; the provider retries on non-2xx, so
// every path through here must be idempotent.
func (h *Handler) BillingWebhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.Cfg.BillingWebhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature"})
		return
	}

	var event BillingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	switch event.Type {
	case "invoice.paid":
		h.handleInvoicePaid(c, event)
	case "subscription.updated", "subscription.created", "subscription.canceled":
		h.handleSubscriptionEvent(c, event)
	default:
		logger.Debug("ignoring billing event", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func (h *Handler) handleInvoicePaid(c *gin.Context, event BillingEvent) {
	total, err := decimal.NewFromString(event.Total)
	if err != nil || total.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice total"})
		return
	}

	providerInvoiceID := event.InvoiceID
	if providerInvoiceID == "" {
		// Providers occasionally omit the invoice ID on manual charges; mint
		// one so the idempotency barrier still holds for our own retries.
		providerInvoiceID = "local-" + uuid.NewString()
	}

	paidAt := time.Now()
	if event.PaidAt > 0 {
		paidAt = time.Unix(event.PaidAt, 0)
	}

	ctx := c.Request.Context()

	// Fast path for provider retries. The award transaction re-checks this
	// under the unique constraint, so a race here is harmless.
	if event.InvoiceID != "" {
		invoiceRepo := repository.NewInvoiceRepository(h.DB)
		if existing, err := invoiceRepo.GetByProviderID(ctx, event.InvoiceID); err == nil && existing != nil {
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
			return
		}
	}

	inv := domain.Invoice{
		ProviderInvoiceID: providerInvoiceID,
		UserID:            event.UserID,
		Total:             total,
		PaidAt:            paidAt,
	}

	awarded, err := h.CommissionService.AwardForInvoice(ctx, inv)
	if err != nil {
		logger.Error("commission fan-out failed",
			"provider_invoice_id", inv.ProviderInvoiceID, "payer_id", inv.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process invoice"})
		return
	}

	for _, e := range awarded {
		h.AuditService.Log(ctx, e.ReceiverID, domain.AuditActionCommissionAward, domain.AuditCategoryBilling,
			map[string]interface{}{
				"amount":     e.Amount.StringFixed(2),
				"invoice_id": inv.ProviderInvoiceID,
				"payer_id":   inv.UserID,
			})
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed", "commissions": len(awarded)})
}

// GetInvoices lists the authenticated user's recorded invoices.
func (h *Handler) GetInvoices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	invoices, err := repository.NewInvoiceRepository(h.DB).ListByUser(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *Handler) handleSubscriptionEvent(c *gin.Context, event BillingEvent) {
	if event.SubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription_id is required"})
		return
	}

	ctx := c.Request.Context()
	subRepo := repository.NewSubscriptionRepository(h.DB)

	plan, err := subRepo.GetPlanByCode(ctx, event.PlanCode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan"})
		return
	}

	status := domain.SubscriptionStatus(event.Status)
	if event.Type == "subscription.canceled" {
		status = domain.SubscriptionCanceled
	}
	if status == "" {
		status = domain.SubscriptionActive
	}

	sub := &domain.Subscription{
		UserID:             event.UserID,
		PlanID:             plan.ID,
		Status:             status,
		ProviderSubID:      event.SubscriptionID,
		CurrentPeriodStart: time.Unix(event.PeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(event.PeriodEnd, 0),
	}
	if err := subRepo.Upsert(ctx, sub); err != nil {
		logger.Error("failed to upsert subscription",
			"provider_sub_id", event.SubscriptionID, "user_id", event.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}
