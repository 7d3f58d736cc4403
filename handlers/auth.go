package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wapangaji/kiganjani/internal/accounts"
	"github.com/wapangaji/kiganjani/internal/config"
	"github.com/wapangaji/kiganjani/internal/otp"
	"github.com/wapangaji/kiganjani/internal/phone"
	"github.com/wapangaji/kiganjani/internal/sessions"
	"github.com/wapangaji/kiganjani/internal/tokens"
	"github.com/wapangaji/kiganjani/pkg/logger"
	"github.com/wapangaji/kiganjani/pkg/middleware"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	accountsSvc *accounts.Service
	otpSvc      *otp.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, a *accounts.Service, o *otp.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, accountsSvc: a, otpSvc: o, sessionsSvc: s}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterAccount)
	a.POST("/verify-otp", h.VerifyOTP)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.POST("/logout-all", middleware.JWTAuth(h.cfg), h.LogoutAll)
	a.POST("/password-reset", h.PasswordReset)
	a.POST("/password-reset/confirm", h.PasswordResetConfirm)
	rg.GET("/me", middleware.JWTAuth(h.cfg), h.Me)
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.accountsSvc.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type registerRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	FullName    string `json:"fullName" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Language    string `json:"language"`
}

// RegisterAccount creates a pending account and sends the verification OTP.
func (h *AuthHandler) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.accountsSvc.Register(c.Request.Context(), req.PhoneNumber, req.FullName, req.Password, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrPhoneTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "phone number already registered"})
		case errors.Is(err, accounts.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, phone.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		default:
			logger.Errorf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	if err := h.otpSvc.Begin(c.Request.Context(), u.PhoneNumber, otp.TypeRegistration); err != nil {
		logger.Errorf("otp send to %s failed: %v", u.PhoneNumber, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send verification code"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "verification code sent", "phoneNumber": u.PhoneNumber})
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

// VerifyOTP activates the account and logs the user in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	if err := h.otpSvc.Verify(c.Request.Context(), normalized, otp.TypeRegistration, req.OTP); err != nil {
		switch {
		case errors.Is(err, otp.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, request a new code"})
		case errors.Is(err, otp.ErrInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		default:
			logger.Errorf("otp verify failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed"})
		}
		return
	}
	u, err := h.accountsSvc.Activate(c.Request.Context(), normalized)
	if err != nil {
		logger.Errorf("activate %s failed: %v", normalized, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activation failed"})
		return
	}
	h.respondWithTokens(c, u.ID)
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DeviceType  string `json:"deviceType"`
}

// Login authenticates with phone+password and issues the token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.accountsSvc.Authenticate(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "account is not verified"})
		case errors.Is(err, accounts.ErrInvalidCredentials), errors.Is(err, phone.ErrInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			logger.Errorf("login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	if err := h.accountsSvc.RecordLogin(c.Request.Context(), u.ID, req.DeviceType, c.ClientIP()); err != nil {
		logger.Warnf("session audit for %s failed: %v", u.ID, err)
	}
	h.respondWithTokens(c, u.ID)
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, userID string) {
	u, err := h.accountsSvc.GetByID(c.Request.Context(), userID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	refreshTTL := h.cfg.JWT.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID, refreshTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	accessTTL := h.cfg.JWT.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	// Return camelCase response to match the mobile client's LoginResponse shape
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"user":         u,
		"expiresIn":    int(accessTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	u, err := h.accountsSvc.GetByID(c.Request.Context(), sess.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	accessTTL := h.cfg.JWT.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiresIn": int(accessTTL.Seconds())})
}

// Logout invalidates the refresh token and (optionally) blacklists the current access token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.blacklistBearer(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
		return
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// LogoutAll revokes every refresh session of the caller and closes the
// session audit trail.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.blacklistBearer(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
		return
	}
	if err := h.sessionsSvc.DeleteAllForUser(c.Request.Context(), userID); err != nil {
		logger.Errorf("logout-all for %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke sessions"})
		return
	}
	if err := h.accountsSvc.EndAllSessions(c.Request.Context(), userID); err != nil {
		logger.Warnf("ending session audit for %s failed: %v", userID, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "all sessions revoked"})
}

// blacklistBearer blacklists the Authorization bearer token for its
// remaining lifetime, when one is present.
func (h *AuthHandler) blacklistBearer(c *gin.Context) error {
	auth := c.GetHeader("Authorization")
	at, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || at == "" {
		return nil
	}
	exp, err := parseExpFromJWT(at)
	if err != nil {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return sessions.BlacklistAccessToken(c.Request.Context(), at, ttl)
}

// PasswordReset starts the reset flow. The response never reveals whether
// the phone is registered.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	u, err := h.accountsSvc.GetByPhone(c.Request.Context(), normalized)
	if err == nil && u != nil && u.IsActive {
		if err := h.otpSvc.Begin(c.Request.Context(), normalized, otp.TypePasswordReset); err != nil {
			logger.Errorf("reset otp to %s failed: %v", normalized, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the number is registered, a code has been sent"})
}

type passwordResetConfirmRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// PasswordResetConfirm verifies the code and sets the new password.
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	var req passwordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	if err := h.otpSvc.Verify(c.Request.Context(), normalized, otp.TypePasswordReset, req.OTP); err != nil {
		switch {
		case errors.Is(err, otp.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, request a new code"})
		case errors.Is(err, otp.ErrInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "verification failed"})
		}
		return
	}
	if err := h.accountsSvc.SetPassword(c.Request.Context(), normalized, req.NewPassword); err != nil {
		if errors.Is(err, accounts.ErrWeakPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("password reset for %s failed: %v", normalized, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password reset failed"})
		return
	}
	// Force re-login everywhere with the new password
	if u, err := h.accountsSvc.GetByPhone(c.Request.Context(), normalized); err == nil && u != nil {
		_ = h.sessionsSvc.DeleteAllForUser(c.Request.Context(), u.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim as time.Time.
// This performs payload-only parsing (no signature verification) and is suitable
// for computing remaining TTLs for blacklisting purposes.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	payload := parts[1]
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp float64 `json:"exp"`
	}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.Exp == 0 {
		return time.Time{}, fmt.Errorf("no exp claim")
	}
	return time.Unix(int64(claims.Exp), 0), nil
}
