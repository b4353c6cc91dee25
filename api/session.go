package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const sessionCookieName = "session"

var errNoSession = errors.New("no session")

type sessionClaims struct {
	AccountID int `json:"account_id"`
	jwt.RegisteredClaims
}

// sessionManager issues and resolves the signed session cookie.
type sessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func newSessionManager(secret []byte, ttl time.Duration, secure bool) *sessionManager {
	return &sessionManager{
		secret: secret,
		ttl:    ttl,
		secure: secure,
	}
}

func (m *sessionManager) issue(w http.ResponseWriter, accountID int) error {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := sessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// resolve returns the account id carried by the request's session cookie.
// It returns errNoSession when the request carries no cookie at all.
func (m *sessionManager) resolve(r *http.Request) (int, error) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, errNoSession
	}
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid || claims.AccountID <= 0 {
		return 0, errors.New("invalid session token")
	}
	return claims.AccountID, nil
}

func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
