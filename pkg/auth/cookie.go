package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieManager устанавливает и читает HttpOnly cookie сессии
type CookieManager struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewCookieManager создает менеджер cookie с SameSite=Lax
func NewCookieManager(name string, secure bool) *CookieManager {
	return &CookieManager{
		Name:     name,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie устанавливает токен в HttpOnly cookie
func (m *CookieManager) SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Name,
		Value:    token,
		Path:     m.Path,
		Domain:   m.Domain,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// ClearSessionCookie удаляет cookie сессии
func (m *CookieManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Name,
		Value:    "",
		Path:     m.Path,
		Domain:   m.Domain,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: m.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// TokenFromRequest достает токен из cookie или заголовка Authorization: Bearer
func (m *CookieManager) TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(m.Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
