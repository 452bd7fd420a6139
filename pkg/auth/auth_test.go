package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("secret", 1)
	require.NoError(t, err)

	token, claims, err := svc.GenerateToken(42, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID, "jti должен быть заполнен")

	parsed, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, "alice", parsed.Nickname)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService("secret", 1)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateToken(1, "bob")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_WrongSecretAndAlg(t *testing.T) {
	issuerSvc, _ := NewJWTService("one", 1)
	otherSvc, _ := NewJWTService("two", 1)

	token, _, err := issuerSvc.GenerateToken(1, "carol")
	require.NoError(t, err)
	_, err = otherSvc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuerSvc.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("", 1)
	assert.Error(t, err)
}

func TestCookieManager(t *testing.T) {
	m := NewCookieManager("sess", true)

	rec := httptest.NewRecorder()
	m.SetSessionCookie(rec, "tok", time.Hour)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", m.TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", m.TokenFromRequest(req))

	assert.Empty(t, m.TokenFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec = httptest.NewRecorder()
	m.ClearSessionCookie(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
