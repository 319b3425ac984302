package handlers

import (
	"errors"
	"net/http"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetBalance returns the user's current balance.
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.BalanceService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetTransactions returns the user's balance ledger.
func (h *Handler) GetTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var history []*domain.Transaction
	var err error
	if txType := c.Query("type"); txType != "" {
		history, err = h.BalanceService.GetTransactionHistoryByType(c.Request.Context(), userID, txType, 100)
	} else {
		history, err = h.BalanceService.GetTransactionHistory(c.Request.Context(), userID, 100)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

type WithdrawRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// RequestWithdrawal opens a withdrawal of referral earnings.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, method and destination are required"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	ctx := c.Request.Context()
	w, err := h.BalanceService.RequestWithdrawal(ctx, userID, amount, req.Method, req.Destination)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrBelowMinWithdrawal):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create withdrawal"})
		}
		return
	}

	h.AuditService.LogWithRequest(ctx, userID, domain.AuditActionWithdrawalRequest, domain.AuditCategoryBalance,
		c.ClientIP(), c.Request.UserAgent(),
		map[string]interface{}{"reference": w.Reference, "amount": w.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
}

// GetWithdrawals lists the user's withdrawal requests.
func (h *Handler) GetWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawals, err := h.BalanceService.GetWithdrawals(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// GetWithdrawal returns one of the user's withdrawals by its reference.
func (h *Handler) GetWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	w, err := h.BalanceService.GetWithdrawalByReference(c.Request.Context(), c.Param("reference"))
	if err != nil || w.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}
