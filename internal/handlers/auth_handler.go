package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"physioplan/internal/models"
	"physioplan/internal/services"
	"physioplan/internal/utils"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	refreshTTL  time.Duration
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, refreshTTL time.Duration) *AuthHandler {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthHandler{userService: userService, authService: authService, refreshTTL: refreshTTL}
}

// @Summary      Log in
// @Description  Authenticates a user and returns access/refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userService.GetByEmail(email)
	if err != nil || user == nil {
		log.Printf("[auth][login] user not found by email=%q: err=%v", email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !h.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(req.Password)) {
		log.Printf("[auth][login] password mismatch for userID=%d email=%q", user.ID, email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := h.authService.NewAccessToken(user.ID, user.Email)
	if err != nil {
		log.Printf("[auth][login] sign access token failed for userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	// refresh (opaque) -> stored on the user row
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	rtExp := time.Now().Add(h.refreshTTL)
	if err := h.userService.UpdateRefresh(user.ID, rt, rtExp); err != nil {
		log.Printf("[auth][login] store refresh token failed for userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	log.Printf("[auth][login] success userID=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"tokens": gin.H{
			"access_token":  accessToken,
			"refresh_token": rt,
		},
	})
}

// @Summary      Rotate tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	user, err := h.userService.GetByRefreshToken(old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	rotatedUser, err := h.userService.RotateRefresh(old, newRT, time.Now().Add(h.refreshTTL))
	if err != nil || rotatedUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessToken, err := h.authService.NewAccessToken(rotatedUser.ID, rotatedUser.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRT,
	})
}
