package handlers

import (
	"errors"
	"net/http"
	"strings"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and, when a referral code was supplied,
// attaches the user into the referral graph. Attachment failure does not
// fail registration: the account stands and the error is reported alongside.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and a password of at least 8 characters are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	ctx := c.Request.Context()
	userRepo := repository.NewUserRepository(h.DB)

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
	}
	if err := userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	h.AuditService.LogWithRequest(ctx, user.ID, domain.AuditActionRegister, domain.AuditCategoryAuth,
		c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{"email": user.Email})

	var referralError string
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		if err := h.ReferralService.Attach(ctx, code, user.ID); err != nil {
			switch {
			case errors.Is(err, service.ErrCodeNotFound), errors.Is(err, service.ErrSelfReferral):
				referralError = err.Error()
			default:
				referralError = "could not link referral, please try again"
			}
		} else {
			h.AuditService.Log(ctx, user.ID, domain.AuditActionReferralAttach, domain.AuditCategoryReferral,
				map[string]interface{}{"code": code})
		}
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	resp := gin.H{"user": user, "token": token}
	if referralError != "" {
		resp["referral_error"] = referralError
	}
	c.JSON(http.StatusCreated, resp)
}

// Login authenticates by email and password.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	ctx := c.Request.Context()
	userRepo := repository.NewUserRepository(h.DB)

	user, err := userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.AuditService.LogWithRequest(ctx, user.ID, domain.AuditActionLogin, domain.AuditCategoryAuth,
		c.ClientIP(), c.Request.UserAgent(), nil)

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := repository.NewUserRepository(h.DB).GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
