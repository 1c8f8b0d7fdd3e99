package handler

import (
	"net/http"

	"smsnotes/internal/middleware"
	"smsnotes/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles account requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password"`
		Verify   string `json:"verify"`
		Phone    string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Username, req.Password, req.Verify, req.Phone)
	if err != nil {
		writeError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout is not behind the auth middleware: revoking an already-invalid
// session must succeed, so whatever token the client holds is accepted.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword texts a reset code to the phone on record for the account
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Username); err != nil {
		writeError(c, err, "Failed to send reset code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

// ResetPassword trades a reset code for a new password and a fresh session
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password"`
		Verify   string `json:"verify"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, token, err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password, req.Verify)
	if err != nil {
		writeError(c, err, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset",
		"user":    user,
		"token":   token,
	})
}

// Me returns the account the middleware resolved for this request
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.MustGet(middleware.AuthUserKey)})
}

// Update rewrites the authenticated account; omitted fields keep their
// current value. The response carries a fresh token; the one used for this
// request is no longer valid.
func (h *AuthHandler) Update(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Verify   string `json:"verify"`
		Phone    string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	token := c.GetString(middleware.AuthTokenKey)
	user, newToken, err := h.service.Update(c.Request.Context(), token, req.Username, req.Password, req.Verify, req.Phone)
	if err != nil {
		writeError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account updated",
		"user":    user,
		"token":   newToken,
	})
}

func (h *AuthHandler) Delete(c *gin.Context) {
	token := c.GetString(middleware.AuthTokenKey)

	if err := h.service.Delete(c.Request.Context(), token); err != nil {
		writeError(c, err, "Failed to delete account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// RegisterAuthRoutes registers account routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/forgot", h.ForgotPassword)
		authGroup.POST("/reset", h.ResetPassword)
	}

	accountGroup := rg.Group("/account")
	accountGroup.Use(authMW)
	{
		accountGroup.GET("", h.Me)
		accountGroup.PUT("", h.Update)
		accountGroup.DELETE("", h.Delete)
	}
}
