// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"leaddist-service/internal/domain/admin"
	"leaddist-service/internal/middleware"
	"leaddist-service/internal/pkg/response"
	authUsecase "leaddist-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles admin registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req admin.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.FromError(c, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "Admin registered successfully", loginResp)
}

// ========== Login ==========

// Login handles admin login
func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	req.IPAddress = c.ClientIP()

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", loginResp)
}

// ========== Session ==========

// Logout revokes the current token (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), adminID, jti, middleware.GetTokenExpiry(c)); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("admin_id", adminID),
			zap.Error(err),
		)
		response.FromError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Logout successful", nil)
}

// Verify returns the admin behind the bearer token (requires auth)
func (h *AuthHandler) Verify(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	info, err := h.authService.Me(c.Request.Context(), adminID)
	if err != nil {
		response.FromError(c, "token verification failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Token is valid", gin.H{"user": info})
}
