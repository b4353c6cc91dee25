package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseRecorder {
	if rec, ok := w.(*responseRecorder); ok {
		return rec
	}
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *responseRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

type requestIDContext string

const requestIDContextKey requestIDContext = "requestIDContextKey"

// requestLogger returns a log entry tagged with the request id assigned by
// logRequest.
func (app *application) requestLogger(r *http.Request) *logrus.Entry {
	entry := app.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	if id, ok := r.Context().Value(requestIDContextKey).(string); ok {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDContextKey, id))

		start := time.Now()
		rec := wrapResponseWriter(w)
		next.ServeHTTP(rec, r)

		app.requestLogger(r).WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, fmt.Errorf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "deny")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// accountHandler receives the account resolved from the session cookie.
type accountHandler func(w http.ResponseWriter, r *http.Request, acct *account)

// currentAccount resolves the session cookie to an account. A missing,
// invalid or expired session, or an account that no longer exists, yields
// a nil account and no error.
func (app *application) currentAccount(r *http.Request) (*account, error) {
	id, err := app.sessions.resolve(r)
	if err != nil {
		if !errors.Is(err, errNoSession) {
			app.requestLogger(r).WithError(err).Debug("rejected session cookie")
		}
		return nil, nil
	}
	return app.storage.getAccountByID(r.Context(), id)
}

func (app *application) requireAuth(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")
		acct, err := app.currentAccount(r)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		if acct == nil {
			app.sessions.clear(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		next(w, r, acct)
	}
}

// requireAuthJSON is requireAuth for JSON endpoints: it answers 401 rather
// than redirecting to the login form.
func (app *application) requireAuthJSON(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")
		acct, err := app.currentAccount(r)
		if err != nil {
			app.requestLogger(r).WithError(err).Error("could not resolve session")
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		if acct == nil {
			writeError(w, errors.New("authentication required"), http.StatusUnauthorized)
			return
		}
		next(w, r, acct)
	}
}
