package server

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const (
	// loggedInSessionID names the cookie identifying a browser's session namespace
	loggedInSessionID = "loggedInSessionId"

	cookieKeyInfo = "lead-dashboard client cookie v1"
)

// clientCookie signs the browser's session namespace so a client cannot
// pick someone else's namespace.
type clientCookie struct {
	key    []byte
	issuer string
	maxAge time.Duration
}

func newClientCookie(secret, issuer string, maxAge time.Duration) (*clientCookie, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(issuer), []byte(cookieKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive cookie key: %w", err)
	}
	return &clientCookie{key: key, issuer: issuer, maxAge: maxAge}, nil
}

func (c *clientCookie) sign(namespace string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   namespace,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// parse returns the namespace carried by a signed cookie value. Any failure
// is an ErrInvalidSession.
func (c *clientCookie) parse(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.Join(apperrors.ErrInvalidSession, err), "[server parse]")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", apperrors.Wrapf(apperrors.Join(apperrors.ErrInvalidSession, err), "[server parse] namespace")
	}
	return claims.Subject, nil
}

// clientNamespace returns the caller's namespace, minting one (and setting
// the cookie) for a new or tampered client.
func (s *Server) clientNamespace(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(loggedInSessionID); err == nil {
		namespace, err := s.clientID.parse(cookie.Value)
		if err == nil {
			return namespace, nil
		}
		log.Debug().Err(err).Msg("Replacing client cookie")
	}

	namespace := uuid.NewString()
	value, err := s.clientID.sign(namespace, time.Now())
	if err != nil {
		return "", fmt.Errorf("[server clientNamespace] %w", err)
	}
	s.SetLoginSessionCookie(w, value, r, int(s.clientID.maxAge.Seconds()))
	return namespace, nil
}

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     loggedInSessionID,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
