package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physioplan/internal/services"
)

type VerifyHandler struct {
	verification services.VerificationService
}

func NewVerifyHandler(v services.VerificationService) *VerifyHandler {
	return &VerifyHandler{verification: v}
}

// @Summary      Send a verification code
// @Description  Emails a one-time code to the address being registered
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/send-otp [post]
func (h *VerifyHandler) SendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.verification.IssueCode(req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// @Summary      Verify a code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/verify-otp [post]
func (h *VerifyHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.verification.ConsumeCode(req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}
