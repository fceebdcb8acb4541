package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance/internal/domain"
	"freelance/internal/service"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is the HTTP representation of a user. The password hash is
// never serialized.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    toUserResponse(user),
	})
}

// LoginRequest is the HTTP request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

// ForgetPasswordRequest is the HTTP request body for requesting a reset link.
type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

// ForgetPassword handles POST /api/users/forget-password
func (h *UserHandler) ForgetPassword(c *gin.Context) {
	var req ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.userService.ForgetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "Password reset link sent to your email"})
}

// ResetPasswordRequest is the HTTP request body for resetting a password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword handles POST /api/users/reset-password/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "Password reset successfully"})
}
