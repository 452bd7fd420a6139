package dto

import "github.com/yourusername/hottakes-api/internal/domain/entity"

// RegisterRequest - тело POST /api/auth/register
type RegisterRequest struct {
	Nickname string  `json:"nickname" binding:"required,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest - тело POST /api/auth/login. В nickname можно передать email.
type LoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest - тело POST /api/auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest - тело POST /api/auth/reset-password
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UserResponse - пользователь в ответе клиенту
type UserResponse struct {
	ID       uint    `json:"id"`
	Nickname string  `json:"nickname"`
	Email    *string `json:"email,omitempty"`
	IsAdmin  bool    `json:"isAdmin"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(u *entity.User, isAdmin bool) *UserResponse {
	return &UserResponse{ID: u.ID, Nickname: u.Nickname, Email: u.Email, IsAdmin: isAdmin}
}
