package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"physioplan/internal/models"
	"physioplan/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary      Register an account
// @Description  Creates a user; the email must have passed OTP verification first
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "Registration data"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// @Summary      Current profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	user, err := h.userService.GetByID(identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Update profile
// @Description  Age cannot be set; it is derived from date_of_birth
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	var upd services.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.UpdateProfile(identity.UserID, &upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// @Summary      Get a user by id
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	user, err := h.userService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	// public subset only
	c.JSON(http.StatusOK, gin.H{"name": user.Name, "email": user.Email})
}
