package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	"github.com/yourusername/hottakes-api/internal/middleware"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
	cookies     *auth.CookieManager
	log         *logger.Logger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieManager, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		log:         log.Named("AuthHandler"),
	}
}

type sessionResponse struct {
	User  *dto.UserResponse `json:"user"`
	Token string            `json:"token"`
}

// Register обрабатывает регистрацию
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}

	input := service.RegisterInput{Nickname: req.Nickname, Password: req.Password}
	if req.Email != nil {
		input.Email = *req.Email
	}
	user, session, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}

	h.cookies.SetSessionCookie(c.Writer, session.Token, h.authService.SessionTTL())
	c.JSON(http.StatusCreated, sessionResponse{User: dto.NewUserResponse(user, false), Token: session.Token})
}

// Login обрабатывает вход по никнейму или email
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}

	user, session, err := h.authService.Login(c.Request.Context(), req.Nickname, req.Password)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}

	h.cookies.SetSessionCookie(c.Writer, session.Token, h.authService.SessionTTL())
	c.JSON(http.StatusOK, sessionResponse{User: dto.NewUserResponse(user, false), Token: session.Token})
}

// Logout отзывает текущую сессию и очищает cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
			// cookie все равно очищается
			h.log.Warn("Не удалось отозвать сессию", "user_id", claims.UserID, "error", err)
		}
	}
	h.cookies.ClearSessionCookie(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me возвращает текущего пользователя
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		helper.RespondError(c, h.log, apperrors.Unauthorizedf("authentication required"))
		return
	}
	user, err := h.authService.Me(c.Request.Context(), current.ID)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user, middleware.IsAdmin(c)))
}

// ForgotPassword отправляет ссылку сброса. Ответ не зависит от существования email.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

// ResetPassword меняет пароль по токену
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
