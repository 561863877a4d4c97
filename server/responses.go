package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/lead-dashboard/backend"
	"github.com/jrsteele09/lead-dashboard/guard"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Outcome   string `json:"outcome"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, retryable bool) {
	writeJSON(w, status, errorResponse{Outcome: "error", Message: message, Retryable: retryable})
}

// writeFailure maps an error from the dashboard or backend onto a response.
// Auth failures carry a redirect to login; network failures are retryable.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, credentialMessage(err), false)
	case errors.Is(err, apperrors.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Outcome: "error", Message: "Please log in to continue.", Redirect: guard.PathLogin})
	case errors.Is(err, apperrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, validationMessage(err), false)
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", false)
	case errors.Is(err, apperrors.ErrServiceUnavailable), errors.Is(err, apperrors.ErrStorage):
		writeError(w, http.StatusServiceUnavailable, "The service is unavailable. Please try again.", true)
	case errors.Is(err, apperrors.ErrBackend), errors.Is(err, apperrors.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "The verification service returned an error. Please try again.", true)
	default:
		logError(r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error", false)
	}
}

// credentialMessage is the backend's own message when it sent one.
func credentialMessage(err error) string {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	if msg := messageAfter(err, apperrors.ErrInvalidCredentials); msg != "" {
		return msg
	}
	return "Invalid email or password"
}

func validationMessage(err error) string {
	if msg := messageAfter(err, apperrors.ErrInvalidRequest); msg != "" {
		return msg
	}
	return "invalid request"
}

// messageAfter returns the detail following "<sentinel>: " in err's text.
func messageAfter(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return ""
}
