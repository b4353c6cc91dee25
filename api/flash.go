package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const (
	flashCookieName = "flash"
	flashSuccess    = "success"
	flashError      = "error"
)

type flashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// flashes holds the notices of one request: those carried over from a
// previous redirect plus any pushed while handling this one.
type flashes struct {
	messages []flashMessage
}

type flashContext string

const flashContextKey flashContext = "flashContextKey"

func (app *application) loadFlashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := &flashes{}
		if c, err := r.Cookie(flashCookieName); err == nil {
			if data, err := base64.RawURLEncoding.DecodeString(c.Value); err == nil {
				_ = json.Unmarshal(data, &f.messages)
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashContextKey, f)))
	})
}

func flashesFrom(r *http.Request) *flashes {
	f, _ := r.Context().Value(flashContextKey).(*flashes)
	if f == nil {
		return &flashes{}
	}
	return f
}

// pushFlash queues a notice for the next rendered page, whether that is
// this response or the one after a redirect.
func (app *application) pushFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	f := flashesFrom(r)
	f.messages = append(f.messages, flashMessage{Category: category, Message: message})

	data, err := json.Marshal(f.messages)
	if err != nil {
		app.requestLogger(r).WithError(err).Warn("could not encode flash messages")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlashes drains the queued notices and expires the cookie.
func takeFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	f := flashesFrom(r)
	msgs := f.messages
	f.messages = nil
	if _, err := r.Cookie(flashCookieName); err == nil || len(msgs) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return msgs
}
