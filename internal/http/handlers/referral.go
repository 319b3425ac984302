package handlers

import (
	"errors"
	"net/http"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns the user's referral code.
func (h *Handler) GetReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.ReferralService.GetCode(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// GetReferralLink returns the signup URL carrying the user's code.
func (h *Handler) GetReferralLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.ReferralService.GetCode(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": code,
		"link": h.Cfg.ReferralBaseURL + "?ref=" + code,
	})
}

// GetReferralNetwork returns the two-level referral tree with earnings.
func (h *Handler) GetReferralNetwork(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	network, err := h.ReferralService.BuildNetwork(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build referral network"})
		return
	}
	c.JSON(http.StatusOK, network)
}

// GetReferralEarnings returns the user's recent commission ledger.
func (h *Handler) GetReferralEarnings(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	earningRepo := repository.NewEarningRepository(h.DB)
	earnings, err := earningRepo.ListByReceiver(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list earnings"})
		return
	}
	total, err := earningRepo.SumByReceiver(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sum earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"earnings": earnings, "total": total})
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferralCode attaches an existing account to a referrer. Covers users
// who registered without a code (e.g. mobile signups that lost the landing
// page query parameter).
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	ctx := c.Request.Context()

	existing, err := repository.NewReferralRepository(h.DB).GetDirectIntroducer(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check referral status"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already referred"})
		return
	}

	if err := h.ReferralService.Attach(ctx, req.Code, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCodeNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
		case errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot refer yourself"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply referral code, please try again"})
		}
		return
	}

	h.AuditService.Log(ctx, userID, domain.AuditActionReferralAttach, domain.AuditCategoryReferral,
		map[string]interface{}{"code": req.Code})

	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}
