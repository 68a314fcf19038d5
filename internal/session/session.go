// Package session manages the authenticated browser session as a signed
// JWT carried in a cookie. The Authenticate middleware resolves the cookie
// into a request-context username; RequireLogin is the gate protecting
// handlers that must only run for authenticated sessions.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/artcls/internal/flash"
)

// Claims are the JWT claims stored in the session cookie. LoggedIn and
// Username are set together at login, so a valid token either carries both
// or identifies no one.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	LoggedIn bool   `json:"logged_in"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UsernameKey is the context key under which the authenticated username is stored.
const UsernameKey ContextKey = "username"

// Manager issues, parses and clears session cookies.
type Manager struct {
	cookieName       string
	signingSecretKey []byte
	ttl              time.Duration
	notices          *flash.Stash
}

// New creates a session Manager with the given cookie name, signing key,
// token lifetime and flash stash used by the auth gate.
func New(
	cookieName string,
	signingSecretKey []byte,
	ttl time.Duration,
	notices *flash.Stash,
) *Manager {
	return &Manager{
		cookieName:       cookieName,
		signingSecretKey: signingSecretKey,
		ttl:              ttl,
		notices:          notices,
	}
}

// LogIn transitions the session to Authenticated: it signs a token carrying
// the username and sets it as the session cookie.
func (m *Manager) LogIn(response http.ResponseWriter, username string) error {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: username,
		LoggedIn: true,
	}

	tokenString, err := m.buildJWTString(claims)
	if err != nil {
		return err
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    tokenString,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	)

	return nil
}

// LogOut clears the session cookie, returning the session to Anonymous.
func (m *Manager) LogOut(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	)
}

// Authenticate is an HTTP middleware that resolves the session cookie into
// the username stored in the request context. Requests without a valid,
// unexpired token pass through as anonymous.
func (m *Manager) Authenticate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		username := m.usernameFromCookie(request)

		ctx := context.WithValue(request.Context(), UsernameKey, username)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// RequireLogin is an HTTP middleware gating protected handlers. An
// anonymous request is redirected to the login view with a danger notice
// and the wrapped handler is never invoked; an authenticated request is
// passed through unchanged.
func (m *Manager) RequireLogin(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		username, ok := Username(request.Context())
		if !ok || username == "" {
			if err := m.notices.Add(response, request, flash.LevelDanger, "Unauthorized, please login"); err != nil {
				response.WriteHeader(http.StatusInternalServerError)
				return
			}
			http.Redirect(response, request, "/login", http.StatusFound)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// Username returns the authenticated username stored in the context by the
// Authenticate middleware. The second result is false for anonymous sessions.
func Username(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	if !ok || username == "" {
		return "", false
	}

	return username, true
}

func (m *Manager) usernameFromCookie(request *http.Request) string {
	cookie, err := request.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid || !claims.LoggedIn {
		return ""
	}

	return claims.Username
}

func (m *Manager) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(m.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
