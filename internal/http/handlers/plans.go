package handlers

import (
	"net/http"

	"sportpredict/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPlans returns all subscription plans.
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := repository.NewSubscriptionRepository(h.DB).ListPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetSubscription returns the user's current subscription, if any.
func (h *Handler) GetSubscription(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := repository.NewSubscriptionRepository(h.DB).GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
