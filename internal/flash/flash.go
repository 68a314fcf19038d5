// Package flash implements one-shot notices carried in a cookie.
// A notice set during one request is rendered on the next response and
// then discarded, matching the usual flash-message contract.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Levels used by the application when setting notices.
const (
	LevelSuccess = "success"
	LevelDanger  = "danger"
)

// Notice is a single one-shot message with a display level.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Stash reads and writes notices through a named cookie.
type Stash struct {
	cookieName string
}

// New returns a Stash operating on the given cookie name.
func New(cookieName string) *Stash {
	return &Stash{cookieName: cookieName}
}

func (s *Stash) peek(r *http.Request) []Notice {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var notices []Notice
	if err := json.Unmarshal(decoded, &notices); err != nil {
		return nil
	}

	return notices
}

// Add appends a notice to the ones already pending for this browser.
func (s *Stash) Add(w http.ResponseWriter, r *http.Request, level, message string) error {
	notices := append(s.peek(r), Notice{Level: level, Message: message})

	encoded, err := json.Marshal(notices)
	if err != nil {
		return err
	}

	http.SetCookie(
		w,
		&http.Cookie{
			Name:     s.cookieName,
			Value:    base64.URLEncoding.EncodeToString(encoded),
			Path:     "/",
			HttpOnly: true,
		},
	)

	return nil
}

// Pop returns the pending notices and clears the cookie so they are shown
// exactly once. A malformed cookie is treated as no notices.
func (s *Stash) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	notices := s.peek(r)
	if notices == nil {
		return nil
	}

	http.SetCookie(
		w,
		&http.Cookie{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	)

	return notices
}
