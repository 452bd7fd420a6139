package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/testutil"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	users map[string]*entity.User
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, *auth.SessionClaims, error) {
	user, ok := f.users[token]
	if !ok {
		return nil, nil, apperrors.Unauthorizedf("invalid session")
	}
	return user, &auth.SessionClaims{UserID: user.ID, Nickname: user.Nickname}, nil
}

func newTestRouter(admin AdminConfig) *gin.Engine {
	authn := &fakeAuthenticator{users: map[string]*entity.User{
		"player-token": {ID: 1, Nickname: "player"},
		"boss-token":   {ID: 2, Nickname: "Boss"},
	}}
	m := NewAuthMiddleware(authn, auth.NewCookieManager("hottakes_session", false), admin, logger.Nop())

	r := gin.New()
	r.Use(m.Identify())
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"nickname": user.Nickname, "isAdmin": IsAdmin(c)})
	})
	r.GET("/admin", m.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", ExtractUintParam("id", "itemID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet("itemID")})
	})
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r := newTestRouter(AdminConfig{})

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", nil).Code, "без токена - 401")
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", map[string]string{"Authorization": "Bearer nope"}).Code)

	rec := do(r, "/me", map[string]string{"Authorization": "Bearer player-token"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isAdmin":false`)
}

func TestAdminOnly(t *testing.T) {
	r := newTestRouter(AdminConfig{Secret: "s3cret", Nickname: "boss"})

	// ==================== Без прав ====================
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", map[string]string{DefaultAdminHeader: "wrong"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", map[string]string{"Authorization": "Bearer player-token"}).Code)

	// ==================== С правами ====================
	assert.Equal(t, http.StatusOK, do(r, "/admin", map[string]string{DefaultAdminHeader: "s3cret"}).Code, "секрет в заголовке дает доступ")
	assert.Equal(t, http.StatusOK, do(r, "/admin", map[string]string{"Authorization": "Bearer boss-token"}).Code, "админский никнейм дает доступ")
}

func TestAdminOnly_EmptySecretNeverMatches(t *testing.T) {
	r := newTestRouter(AdminConfig{})
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", map[string]string{DefaultAdminHeader: ""}).Code)
}

func TestExtractUintParam(t *testing.T) {
	r := newTestRouter(AdminConfig{})

	assert.Equal(t, http.StatusOK, do(r, "/items/7", nil).Code)
	rec := do(r, "/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
	assert.Equal(t, http.StatusBadRequest, do(r, "/items/0", nil).Code)
}

type failingCache struct{ *testutil.MemoryCache }

func (failingCache) IncrementWithTTL(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(testutil.NewMemoryCache(), logger.Nop())
	r := gin.New()
	r.POST("/login", limiter.Limit(RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: "rl:test"}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	limiter := NewRateLimiter(failingCache{testutil.NewMemoryCache()}, logger.Nop())
	r := gin.New()
	r.POST("/login", limiter.Limit(RateLimitConfig{MaxRequests: 1, Window: time.Minute, KeyPrefix: "rl:test"}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, rec.Code, "при недоступном кеше запросы пропускаются")
	}
}
