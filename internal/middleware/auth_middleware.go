package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// Ключи контекста gin
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
	ContextClaimsKey = "session_claims"
	ContextAdminKey  = "is_admin"
	contextAuthErr   = "auth_error"
)

// DefaultAdminHeader - заголовок с общим админским секретом
const DefaultAdminHeader = "X-Admin-Secret"

// Authenticator проверяет токен сессии
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, *auth.SessionClaims, error)
}

// AdminConfig - два способа получить админские права
type AdminConfig struct {
	Secret   string
	Nickname string
	Header   string
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	authenticator Authenticator
	cookies       *auth.CookieManager
	admin         AdminConfig
	log           *logger.Logger
}

// NewAuthMiddleware создает middleware аутентификации
func NewAuthMiddleware(authenticator Authenticator, cookies *auth.CookieManager, admin AdminConfig, log *logger.Logger) *AuthMiddleware {
	if admin.Header == "" {
		admin.Header = DefaultAdminHeader
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		cookies:       cookies,
		admin:         admin,
		log:           log.Named("AuthMiddleware"),
	}
}

// Identify распознает сессию и админские права, но ничего не запрещает.
// Ставится на всю группу /api.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.cookies.TokenFromRequest(c.Request); token != "" {
			user, claims, err := m.authenticator.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.Set(contextAuthErr, err)
			} else {
				c.Set(ContextUserKey, user)
				c.Set(ContextUserIDKey, user.ID)
				c.Set(ContextClaimsKey, claims)
			}
		}
		c.Set(ContextAdminKey, m.isAdminRequest(c))
		c.Next()
	}
}

func (m *AuthMiddleware) isAdminRequest(c *gin.Context) bool {
	if m.admin.Secret != "" {
		provided := c.GetHeader(m.admin.Header)
		if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(m.admin.Secret)) == 1 {
			return true
		}
	}
	if m.admin.Nickname != "" {
		if user, ok := CurrentUser(c); ok && strings.EqualFold(user.Nickname, m.admin.Nickname) {
			return true
		}
	}
	return false
}

// RequireAuth пропускает только запросы с валидной сессией
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		if err, ok := c.Get(contextAuthErr); ok {
			helper.RespondError(c, m.log, err.(error))
			return
		}
		helper.RespondError(c, m.log, apperrors.Unauthorizedf("authentication required"))
	}
}

// AdminOnly пропускает только админов (секрет в заголовке или админский никнейм)
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			m.log.Warn("Отказ в админском доступе", "path", c.FullPath(), "ip", c.ClientIP())
			helper.RespondError(c, m.log, apperrors.Unauthorizedf("admin access required"))
			return
		}
		c.Next()
	}
}

// IsAdmin возвращает true, если Identify признал запрос админским
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextAdminKey)
}

// CurrentUser возвращает пользователя сессии
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*entity.User)
	return user, ok && user != nil
}

// CurrentClaims возвращает claims токена сессии
func CurrentClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	value, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.SessionClaims)
	return claims, ok && claims != nil
}
