package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/artcls/internal/flash"
)

const testSigningKey = "secret123"

func newTestManager(ttl time.Duration) *Manager {
	return New("test_session", []byte(testSigningKey), ttl, flash.New("test_flash"))
}

func loggedInRequest(t *testing.T, m *Manager, username string) *http.Request {
	t.Helper()

	recorder := httptest.NewRecorder()
	require.NoError(t, m.LogIn(recorder, username))

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}

	return request
}

func TestAuthenticateResolvesUsername(t *testing.T) {
	m := newTestManager(time.Hour)

	var gotUsername string
	var gotOK bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername, gotOK = Username(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), loggedInRequest(t, m, "alice"))

	assert.True(t, gotOK)
	assert.Equal(t, "alice", gotUsername)
}

func TestAuthenticatePassesAnonymousThrough(t *testing.T) {
	m := newTestManager(time.Hour)

	var gotOK bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = Username(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles", nil))

	assert.False(t, gotOK)
}

func TestAuthenticateIgnoresExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute)

	var gotOK bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = Username(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), loggedInRequest(t, m, "alice"))

	assert.False(t, gotOK)
}

func TestAuthenticateIgnoresForgedToken(t *testing.T) {
	m := newTestManager(time.Hour)
	forger := New("test_session", []byte("another-key"), time.Hour, flash.New("test_flash"))

	var gotOK bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = Username(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), loggedInRequest(t, forger, "mallory"))

	assert.False(t, gotOK)
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	m := newTestManager(time.Hour)

	wrappedWasCalled := false
	handler := m.Authenticate(m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrappedWasCalled = true
	})))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.False(t, wrappedWasCalled)
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Result().Header.Get("Location"))

	noticeCookieIsSet := false
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "test_flash" && cookie.Value != "" {
			noticeCookieIsSet = true
		}
	}
	assert.True(t, noticeCookieIsSet)
}

func TestRequireLoginPassesAuthenticatedThrough(t *testing.T) {
	m := newTestManager(time.Hour)

	wrappedWasCalled := false
	handler := m.Authenticate(m.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrappedWasCalled = true
		w.WriteHeader(http.StatusTeapot)
	})))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, loggedInRequest(t, m, "alice"))

	assert.True(t, wrappedWasCalled)
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}

func TestLogOutExpiresTheCookie(t *testing.T) {
	m := newTestManager(time.Hour)

	recorder := httptest.NewRecorder()
	m.LogOut(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}
