package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookies(t *testing.T, recorder *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}

	return request
}

func TestAddThenPop(t *testing.T) {
	stash := New("test_flash")

	recorder := httptest.NewRecorder()
	err := stash.Add(recorder, httptest.NewRequest(http.MethodGet, "/", nil), LevelSuccess, "Article Created")
	require.NoError(t, err)

	popRecorder := httptest.NewRecorder()
	notices := stash.Pop(popRecorder, requestWithCookies(t, recorder))

	require.Len(t, notices, 1)
	assert.Equal(t, LevelSuccess, notices[0].Level)
	assert.Equal(t, "Article Created", notices[0].Message)
}

func TestPopClearsTheCookie(t *testing.T) {
	stash := New("test_flash")

	recorder := httptest.NewRecorder()
	err := stash.Add(recorder, httptest.NewRequest(http.MethodGet, "/", nil), LevelDanger, "Unauthorized, please login")
	require.NoError(t, err)

	popRecorder := httptest.NewRecorder()
	notices := stash.Pop(popRecorder, requestWithCookies(t, recorder))
	require.Len(t, notices, 1)

	cookies := popRecorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_flash", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAddAccumulates(t *testing.T) {
	stash := New("test_flash")

	first := httptest.NewRecorder()
	err := stash.Add(first, httptest.NewRequest(http.MethodGet, "/", nil), LevelSuccess, "first")
	require.NoError(t, err)

	second := httptest.NewRecorder()
	err = stash.Add(second, requestWithCookies(t, first), LevelDanger, "second")
	require.NoError(t, err)

	popRecorder := httptest.NewRecorder()
	notices := stash.Pop(popRecorder, requestWithCookies(t, second))

	require.Len(t, notices, 2)
	assert.Equal(t, "first", notices[0].Message)
	assert.Equal(t, "second", notices[1].Message)
}

func TestPopWithoutCookie(t *testing.T) {
	stash := New("test_flash")

	recorder := httptest.NewRecorder()
	notices := stash.Pop(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, notices)
	assert.Empty(t, recorder.Result().Cookies())
}
